// Package model defines the data structures used throughout the application.
package model

import "time"

// Account is a registered user.
//
// Email is the unique login identifier and is compared exactly as stored.
// Avatar is derived from the email at registration and never changes.
//
// PasswordHash carries `json:"-"` so encoding/json never emits it. Every
// handler that returns an Account relies on this; there is no separate
// "public" DTO to forget to use.
type Account struct {
	ID           string    `json:"id"        db:"id"`
	Name         string    `json:"name"      db:"name"`
	Email        string    `json:"email"     db:"email"`
	Avatar       string    `json:"avatar"    db:"avatar"`
	PasswordHash string    `json:"-"         db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// Principal returns the identity subset of the account that goes into a token.
func (a *Account) Principal() Principal {
	return Principal{
		ID:     a.ID,
		Name:   a.Name,
		Avatar: a.Avatar,
	}
}

// Principal is the authenticated identity for a single request, rebuilt from
// a verified token. It never carries password material.
type Principal struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
}
