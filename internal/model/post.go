package model

import "time"

// Post is a short text published by an account.
//
// AuthorID references the Account that created the post and is the only
// account allowed to delete it. Name and Avatar are copied from the author
// when the post is created so listing posts needs no join.
//
// Likes is ordered most-recent-first and holds at most one entry per account.
// Version increases by one on every successful write and is what the
// repository compares before applying an update or delete. It is storage
// bookkeeping and never leaves the server.
type Post struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"user"`
	Text      string    `json:"text"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar"`
	Likes     []Like    `json:"likes"`
	Version   int64     `json:"-"`
	CreatedAt time.Time `json:"date"`
}

// Like records that an account liked a post.
type Like struct {
	UserID string `json:"user"`
}

// LikedBy reports whether accountID appears in the likes list.
func (p *Post) LikedBy(accountID string) bool {
	return p.likeIndex(accountID) >= 0
}

// AddLike puts accountID at the front of the likes list. Callers check
// LikedBy first; AddLike does not deduplicate.
func (p *Post) AddLike(accountID string) {
	p.Likes = append([]Like{{UserID: accountID}}, p.Likes...)
}

// RemoveLike drops the entry for accountID and reports whether one existed.
func (p *Post) RemoveLike(accountID string) bool {
	i := p.likeIndex(accountID)
	if i < 0 {
		return false
	}
	p.Likes = append(p.Likes[:i:i], p.Likes[i+1:]...)
	return true
}

func (p *Post) likeIndex(accountID string) int {
	for i, l := range p.Likes {
		if l.UserID == accountID {
			return i
		}
	}
	return -1
}
