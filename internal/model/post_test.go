package model

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPost_AddLikePrepends(t *testing.T) {
	p := &Post{}
	p.AddLike("u1")
	p.AddLike("u2")

	assert.Equal(t, []Like{{UserID: "u2"}, {UserID: "u1"}}, p.Likes)
	assert.True(t, p.LikedBy("u1"))
	assert.False(t, p.LikedBy("u3"))
}

func TestPost_RemoveLike(t *testing.T) {
	p := &Post{Likes: []Like{{UserID: "u3"}, {UserID: "u2"}, {UserID: "u1"}}}
	before := p.Likes

	assert.True(t, p.RemoveLike("u2"))
	assert.Equal(t, []Like{{UserID: "u3"}, {UserID: "u1"}}, p.Likes)

	// The slice the post started with must not be modified in place.
	assert.Equal(t, "u2", before[1].UserID)

	assert.False(t, p.RemoveLike("u2"), "second removal should report nothing removed")
}

func TestPost_JSONOmitsVersion(t *testing.T) {
	p := Post{ID: "p1", AuthorID: "u1", Text: "hello there world", Likes: []Like{}, Version: 7}

	b, err := json.Marshal(p)
	assert.NoError(t, err)

	var fields map[string]any
	assert.NoError(t, json.Unmarshal(b, &fields))
	assert.NotContains(t, fields, "version")
	assert.Equal(t, "p1", fields["id"])
	assert.Equal(t, "u1", fields["user"])
}

func TestAccount_JSONNeverContainsPasswordHash(t *testing.T) {
	a := Account{ID: "a1", Name: "Alice", Email: "a@x.com", PasswordHash: "$2a$04$secret"}

	b, err := json.Marshal(a)
	assert.NoError(t, err)
	assert.False(t, strings.Contains(string(b), "secret"))
	assert.False(t, strings.Contains(strings.ToLower(string(b)), "password"))
}

func TestAccount_Principal(t *testing.T) {
	a := Account{ID: "a1", Name: "Alice", Avatar: "https://img", PasswordHash: "h"}
	assert.Equal(t, Principal{ID: "a1", Name: "Alice", Avatar: "https://img"}, a.Principal())
}
