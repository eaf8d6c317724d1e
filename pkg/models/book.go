package models

import (
	"time"

	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

// Read states a book moves through.
const (
	ReadStateToRead   = "to_read"
	ReadStateReading  = "reading"
	ReadStateFinished = "finished"
)

// Progress kinds. A book tracks either a page number or a percentage, never
// both.
const (
	ProgressKindPage       = "page"
	ProgressKindPercentage = "percentage"
)

type Book struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ID              int        `bun:",pk,nullzero" json:"id"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	Title           string     `bun:",nullzero" json:"title"`
	Subtitle        *string    `json:"subtitle"`
	GoogleBooksID   *string    `json:"google_books_id"`
	ManualID        *string    `json:"manual_id"`
	ISBN13          *int64     `json:"isbn13"`
	PageCount       *int       `json:"page_count"`
	ProgressKind    *string    `json:"progress_kind"`
	ProgressValue   *int       `json:"progress_value"`
	Rating          *int       `json:"rating"`
	Notes           *string    `json:"notes"`
	Description     *string    `json:"description"`
	Publisher       *string    `json:"publisher"`
	PublicationDate *time.Time `json:"publication_date"`
	LanguageCode    *string    `json:"language_code"`
	ReadState       string     `bun:",nullzero" json:"read_state"`
	StartedAt       *time.Time `json:"started_at"`
	FinishedAt      *time.Time `json:"finished_at"`
	SortIndex       int        `json:"sort_index"`
	CoverImage      []byte     `json:"-"`
	CoverMimeType   *string    `json:"cover_mime_type"`

	Authors  []*Author      `bun:"rel:has-many,join:id=book_id" json:"authors,omitempty"`
	Subjects []*BookSubject `bun:"rel:has-many,join:id=book_id" json:"subjects,omitempty"`
}

// SetToRead puts the book on the to-read shelf and clears any reading dates.
func (b *Book) SetToRead() {
	b.ReadState = ReadStateToRead
	b.StartedAt = nil
	b.FinishedAt = nil
}

// SetReading marks the book as currently being read.
func (b *Book) SetReading(started time.Time) {
	b.ReadState = ReadStateReading
	b.StartedAt = &started
	b.FinishedAt = nil
}

// SetFinished marks the book as finished. The finish date can't precede the
// start date.
func (b *Book) SetFinished(started, finished time.Time) error {
	if finished.Before(started) {
		return errors.Errorf("finish date %s is before start date %s", finished.Format("2006-01-02"), started.Format("2006-01-02"))
	}
	b.ReadState = ReadStateFinished
	b.StartedAt = &started
	b.FinishedAt = &finished
	return nil
}

// SetProgressPage records progress as a page number. It replaces any
// percentage progress.
func (b *Book) SetProgressPage(page int) {
	kind := ProgressKindPage
	b.ProgressKind = &kind
	b.ProgressValue = &page
}

// SetProgressPercentage records progress as a percentage. It replaces any
// page progress.
func (b *Book) SetProgressPercentage(percentage int) {
	kind := ProgressKindPercentage
	b.ProgressKind = &kind
	b.ProgressValue = &percentage
}

// Validate checks the invariants that must hold before a book is persisted.
func (b *Book) Validate() error {
	if b.Title == "" {
		return errors.New("book title is required")
	}
	if len(b.Authors) == 0 {
		return errors.New("book must have at least one author")
	}
	switch b.ReadState {
	case ReadStateToRead, ReadStateReading, ReadStateFinished:
	default:
		return errors.Errorf("invalid read state %q", b.ReadState)
	}
	if b.Rating != nil && (*b.Rating < 1 || *b.Rating > 5) {
		return errors.Errorf("rating %d is out of range", *b.Rating)
	}
	if b.ProgressKind != nil {
		switch *b.ProgressKind {
		case ProgressKindPage, ProgressKindPercentage:
		default:
			return errors.Errorf("invalid progress kind %q", *b.ProgressKind)
		}
	}
	if b.StartedAt != nil && b.FinishedAt != nil && b.FinishedAt.Before(*b.StartedAt) {
		return errors.New("finish date is before start date")
	}
	return nil
}
