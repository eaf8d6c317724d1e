package models

import (
	"time"

	"github.com/uptrace/bun"
)

type List struct {
	bun.BaseModel `bun:"table:lists,alias:l"`

	ID        int       `bun:",pk,nullzero" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `bun:",nullzero" json:"name"`
	BookCount int       `bun:",scanonly" json:"book_count"`

	ListBooks []*ListBook `bun:"rel:has-many,join:id=list_id" json:"list_books,omitempty"`
}

type ListBook struct {
	bun.BaseModel `bun:"table:list_books,alias:lb"`

	ID        int       `bun:",pk,nullzero" json:"id"`
	ListID    int       `bun:",nullzero" json:"list_id"`
	List      *List     `bun:"rel:belongs-to,join:list_id=id" json:"list,omitempty"`
	BookID    int       `bun:",nullzero" json:"book_id"`
	Book      *Book     `bun:"rel:belongs-to,join:book_id=id" json:"book,omitempty"`
	AddedAt   time.Time `json:"added_at"`
	SortOrder int       `bun:",nullzero" json:"sort_order"`
}
