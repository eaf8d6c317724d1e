package search

import (
	"context"
	"strings"

	"github.com/inkwellapp/inkwell/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

// SearchBooks searches the FTS index and returns matches ordered by rank.
func (svc *Service) SearchBooks(ctx context.Context, query string, limit, offset int) ([]BookSearchResult, int, error) {
	ftsQuery := BuildPrefixQuery(query)
	if ftsQuery == "" {
		return []BookSearchResult{}, 0, nil
	}

	results := []BookSearchResult{}
	err := svc.db.NewSelect().
		TableExpr("books_fts").
		ColumnExpr("book_id AS id, title, subtitle, authors").
		Where("books_fts MATCH ?", ftsQuery).
		Order("rank").
		Limit(limit).
		Offset(offset).
		Scan(ctx, &results)
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	var total int
	err = svc.db.NewSelect().
		TableExpr("books_fts").
		ColumnExpr("COUNT(*)").
		Where("books_fts MATCH ?", ftsQuery).
		Scan(ctx, &total)
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return results, total, nil
}

// IndexBook adds or updates a book in the FTS index.
func (svc *Service) IndexBook(ctx context.Context, book *models.Book) error {
	// First, delete any existing entry
	err := svc.DeleteFromBookIndex(ctx, book.ID)
	if err != nil {
		return errors.WithStack(err)
	}

	var authorNames []string
	for _, author := range book.Authors {
		authorNames = append(authorNames, author.DisplayName())
	}

	subtitle := ""
	if book.Subtitle != nil {
		subtitle = *book.Subtitle
	}
	description := ""
	if book.Description != nil {
		description = *book.Description
	}

	_, err = svc.db.ExecContext(ctx,
		`INSERT INTO books_fts (book_id, title, subtitle, authors, description)
		 VALUES (?, ?, ?, ?, ?)`,
		book.ID,
		book.Title,
		subtitle,
		strings.Join(authorNames, " "),
		description,
	)
	return errors.WithStack(err)
}

// DeleteFromBookIndex removes a book from the FTS index.
func (svc *Service) DeleteFromBookIndex(ctx context.Context, bookID int) error {
	_, err := svc.db.NewDelete().
		TableExpr("books_fts").
		Where("book_id = ?", bookID).
		Exec(ctx)
	return errors.WithStack(err)
}

// RebuildIndex rebuilds the FTS index from scratch.
func (svc *Service) RebuildIndex(ctx context.Context) error {
	_, err := svc.db.ExecContext(ctx, "DELETE FROM books_fts")
	if err != nil {
		return errors.WithStack(err)
	}

	_, err = svc.db.ExecContext(ctx, `
		INSERT INTO books_fts (book_id, title, subtitle, authors, description)
		SELECT
			b.id,
			b.title,
			COALESCE(b.subtitle, ''),
			COALESCE((SELECT GROUP_CONCAT(TRIM(COALESCE(a.first_names, '') || ' ' || a.last_name), ' ') FROM authors a WHERE a.book_id = b.id), ''),
			COALESCE(b.description, '')
		FROM books b
	`)
	return errors.WithStack(err)
}
