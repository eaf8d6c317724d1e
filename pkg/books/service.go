package books

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/inkwellapp/inkwell/pkg/errcodes"
	"github.com/inkwellapp/inkwell/pkg/models"
	"github.com/inkwellapp/inkwell/pkg/search"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

// Sort orders for listing books.
const (
	SortTitleAsc  = "title_asc"
	SortTitleDesc = "title_desc"
)

type RetrieveBookOptions struct {
	ID            *int
	GoogleBooksID *string
	ManualID      *string
	ISBN13        *int64
}

type ListBooksOptions struct {
	Limit     *int
	Offset    *int
	Title     *string
	ReadState *string
	Sort      string

	includeTotal bool
}

type UpdateBookOptions struct {
	Columns       []string
	UpdateAuthors bool
}

type Service struct {
	db            *bun.DB
	searchService *search.Service
}

func NewService(db *bun.DB) *Service {
	return &Service{
		db:            db,
		searchService: search.NewService(db),
	}
}

// CreateBook inserts a book together with its authors and subject links. A
// book without a Google Books ID gets a generated manual ID so it still has a
// stable external identifier. The book is added to the search index.
func (svc *Service) CreateBook(ctx context.Context, book *models.Book) error {
	now := time.Now()
	if book.CreatedAt.IsZero() {
		book.CreatedAt = now
	}
	book.UpdatedAt = book.CreatedAt

	if book.GoogleBooksID == nil && book.ManualID == nil {
		id, err := uuid.NewRandom()
		if err != nil {
			return errors.WithStack(err)
		}
		manualID := id.String()
		book.ManualID = &manualID
	}

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		// Insert book.
		_, err := tx.
			NewInsert().
			Model(book).
			Returning("*").
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		// Insert authors.
		for i, author := range book.Authors {
			author.BookID = book.ID
			if author.SortOrder == 0 {
				author.SortOrder = i + 1
			}
			author.CreatedAt = book.CreatedAt
			author.UpdatedAt = book.UpdatedAt
		}

		if len(book.Authors) > 0 {
			_, err := tx.
				NewInsert().
				Model(&book.Authors).
				Returning("*").
				Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
		}

		// Insert subject links.
		for _, bs := range book.Subjects {
			bs.BookID = book.ID
		}

		if len(book.Subjects) > 0 {
			_, err := tx.
				NewInsert().
				Model(&book.Subjects).
				On("CONFLICT (book_id, subject_id) DO NOTHING").
				Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
		}

		return nil
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(svc.searchService.IndexBook(ctx, book))
}

func (svc *Service) RetrieveBook(ctx context.Context, opts RetrieveBookOptions) (*models.Book, error) {
	book := &models.Book{}

	q := svc.db.
		NewSelect().
		Model(book).
		Relation("Authors", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Order("a.sort_order ASC")
		}).
		Relation("Subjects").
		Relation("Subjects.Subject")

	if opts.ID != nil {
		q = q.Where("b.id = ?", *opts.ID)
	}
	if opts.GoogleBooksID != nil {
		q = q.Where("b.google_books_id = ?", *opts.GoogleBooksID)
	}
	if opts.ManualID != nil {
		q = q.Where("b.manual_id = ?", *opts.ManualID)
	}
	if opts.ISBN13 != nil {
		q = q.Where("b.isbn13 = ?", *opts.ISBN13)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Book")
		}
		return nil, errors.WithStack(err)
	}

	return book, nil
}

func (svc *Service) ListBooks(ctx context.Context, opts ListBooksOptions) ([]*models.Book, error) {
	b, _, err := svc.listBooksWithTotal(ctx, opts)
	return b, errors.WithStack(err)
}

func (svc *Service) ListBooksWithTotal(ctx context.Context, opts ListBooksOptions) ([]*models.Book, int, error) {
	opts.includeTotal = true
	return svc.listBooksWithTotal(ctx, opts)
}

func (svc *Service) listBooksWithTotal(ctx context.Context, opts ListBooksOptions) ([]*models.Book, int, error) {
	books := []*models.Book{}
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&books).
		Relation("Authors", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Order("a.sort_order ASC")
		})

	switch opts.Sort {
	case SortTitleAsc:
		q = q.OrderExpr("b.title COLLATE NOCASE ASC")
	case SortTitleDesc:
		q = q.OrderExpr("b.title COLLATE NOCASE DESC")
	default:
		q = q.Order("b.read_state ASC", "b.sort_index ASC")
	}

	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}
	if opts.Title != nil {
		q = q.Where("b.title LIKE ?", "%"+*opts.Title+"%")
	}
	if opts.ReadState != nil {
		q = q.Where("b.read_state = ?", *opts.ReadState)
	}

	if opts.includeTotal {
		total, err = q.ScanAndCount(ctx)
	} else {
		err = q.Scan(ctx)
	}
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return books, total, nil
}

// MaxSortIndex returns the highest sort index among books in the given read
// state, or -1 when there are none.
func (svc *Service) MaxSortIndex(ctx context.Context, readState string) (int, error) {
	var max int
	err := svc.db.
		NewSelect().
		Model((*models.Book)(nil)).
		ColumnExpr("COALESCE(MAX(sort_index), -1)").
		Where("read_state = ?", readState).
		Scan(ctx, &max)
	return max, errors.WithStack(err)
}

func (svc *Service) UpdateBook(ctx context.Context, book *models.Book, opts UpdateBookOptions) error {
	if len(opts.Columns) == 0 && !opts.UpdateAuthors {
		return nil
	}

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if opts.UpdateAuthors {
			// Delete all previous authors and save these new ones.
			_, err := tx.
				NewDelete().
				Model((*models.Author)(nil)).
				Where("book_id = ?", book.ID).
				Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}

			for i, author := range book.Authors {
				author.BookID = book.ID
				if author.SortOrder == 0 {
					author.SortOrder = i + 1
				}
				author.CreatedAt = book.CreatedAt
				author.UpdatedAt = book.UpdatedAt
			}

			if len(book.Authors) > 0 {
				_, err = tx.
					NewInsert().
					Model(&book.Authors).
					Exec(ctx)
				if err != nil {
					return errors.WithStack(err)
				}
			}
		}

		// Update updated_at.
		now := time.Now()
		book.UpdatedAt = now
		columns := append(opts.Columns, "updated_at")

		_, err := tx.
			NewUpdate().
			Model(book).
			Column(columns...).
			WherePK().
			Exec(ctx)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return errcodes.NotFound("Book")
			}
			return errors.WithStack(err)
		}

		return nil
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(svc.searchService.IndexBook(ctx, book))
}

// DeleteBook removes a book, its associations, and its search index entry.
func (svc *Service) DeleteBook(ctx context.Context, bookID int) error {
	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewDelete().
			Model((*models.Author)(nil)).
			Where("book_id = ?", bookID).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = tx.NewDelete().
			Model((*models.BookSubject)(nil)).
			Where("book_id = ?", bookID).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = tx.NewDelete().
			Model((*models.ListBook)(nil)).
			Where("book_id = ?", bookID).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = tx.NewDelete().
			Model((*models.Book)(nil)).
			Where("id = ?", bookID).
			Exec(ctx)
		return errors.WithStack(err)
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(svc.searchService.DeleteFromBookIndex(ctx, bookID))
}

// AttachCover stores cover image bytes on a book.
func (svc *Service) AttachCover(ctx context.Context, bookID int, data []byte, mimeType string) error {
	res, err := svc.db.
		NewUpdate().
		Model((*models.Book)(nil)).
		Set("cover_image = ?", data).
		Set("cover_mime_type = ?", mimeType).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", bookID).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return errcodes.NotFound("Book")
	}
	return nil
}
