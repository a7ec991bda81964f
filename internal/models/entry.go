// Package models defines the domain types for the diary.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Entry is a user-authored journal record.
type Entry struct {
	ID    uuid.UUID `json:"id"`
	Date  time.Time `json:"date"`
	Title string    `json:"title"`
	// Body holds the rich-text encoded content as written by the client.
	Body []byte `json:"body"`
}

// EntryMeta is a lightweight representation of an entry file returned by
// storage listings.
type EntryMeta struct {
	Path      string    `json:"path"`
	Checksum  string    `json:"checksum"`
	UpdatedAt time.Time `json:"updated_at"`
}
