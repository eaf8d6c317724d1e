package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Subject struct {
	bun.BaseModel `bun:"table:subjects,alias:s"`

	ID        int       `bun:",pk,nullzero" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Name      string    `bun:",nullzero" json:"name"`
	BookCount int       `bun:",scanonly" json:"book_count"`
}

type BookSubject struct {
	bun.BaseModel `bun:"table:book_subjects,alias:bs"`

	ID        int      `bun:",pk,nullzero" json:"id"`
	BookID    int      `bun:",nullzero" json:"book_id"`
	SubjectID int      `bun:",nullzero" json:"subject_id"`
	Subject   *Subject `bun:"rel:belongs-to,join:subject_id=id" json:"subject,omitempty"`
}
