package models

import (
	"strings"
	"time"

	"github.com/uptrace/bun"
)

type Author struct {
	bun.BaseModel `bun:"table:authors,alias:a"`

	ID         int       `bun:",pk,nullzero" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	BookID     int       `bun:",nullzero" json:"book_id"`
	LastName   string    `bun:",nullzero" json:"last_name"`
	FirstNames *string   `json:"first_names"`
	SortOrder  int       `bun:",nullzero" json:"sort_order"`
}

// DisplayName renders the author in "First Last" order.
func (a *Author) DisplayName() string {
	if a.FirstNames == nil || *a.FirstNames == "" {
		return a.LastName
	}
	return *a.FirstNames + " " + a.LastName
}

// ParseAuthorList parses a semicolon-separated author list. Each entry is
// "Last, First Names"; an entry without a comma is a bare last name. An entry
// with a comma but an empty last name is dropped.
func ParseAuthorList(value string) []*Author {
	var authors []*Author
	for _, part := range strings.Split(value, ";") {
		entry := strings.TrimSpace(part)
		if entry == "" {
			continue
		}
		last, first, found := strings.Cut(entry, ",")
		last = strings.TrimSpace(last)
		if last == "" {
			continue
		}
		author := &Author{LastName: last}
		if found {
			first = strings.TrimSpace(first)
			if first != "" {
				author.FirstNames = &first
			}
		}
		authors = append(authors, author)
	}
	return authors
}
