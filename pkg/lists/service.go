package lists

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/inkwellapp/inkwell/pkg/errcodes"
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

func (svc *Service) CreateList(ctx context.Context, name string) (*models.List, error) {
	now := time.Now()

	list := &models.List{
		CreatedAt: now,
		UpdatedAt: now,
		Name:      name,
	}

	_, err := svc.db.
		NewInsert().
		Model(list).
		Returning("*").
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return list, nil
}

type RetrieveListOptions struct {
	ID   *int
	Name *string
}

func (svc *Service) RetrieveList(ctx context.Context, opts RetrieveListOptions) (*models.List, error) {
	list := &models.List{}

	q := svc.db.
		NewSelect().
		Model(list)

	if opts.ID != nil {
		q = q.Where("l.id = ?", *opts.ID)
	}
	if opts.Name != nil {
		// Case-insensitive match
		q = q.Where("LOWER(l.name) = LOWER(?)", *opts.Name)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("List")
		}
		return nil, errors.WithStack(err)
	}

	return list, nil
}

// FindOrCreateList finds an existing list or creates a new one
// (case-insensitive match).
func (svc *Service) FindOrCreateList(ctx context.Context, name string) (*models.List, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("list name cannot be empty")
	}

	list, err := svc.RetrieveList(ctx, RetrieveListOptions{Name: &name})
	if err == nil {
		return list, nil
	}
	if !errors.Is(err, errcodes.NotFound("List")) {
		return nil, err
	}

	return svc.CreateList(ctx, name)
}

type ListListsOptions struct {
	Limit  *int
	Offset *int

	includeTotal bool
}

func (svc *Service) ListLists(ctx context.Context, opts ListListsOptions) ([]*models.List, error) {
	lists, _, err := svc.listListsWithTotal(ctx, opts)
	return lists, errors.WithStack(err)
}

func (svc *Service) ListListsWithTotal(ctx context.Context, opts ListListsOptions) ([]*models.List, int, error) {
	opts.includeTotal = true
	return svc.listListsWithTotal(ctx, opts)
}

func (svc *Service) listListsWithTotal(ctx context.Context, opts ListListsOptions) ([]*models.List, int, error) {
	var lists []*models.List
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&lists).
		ColumnExpr("l.*").
		ColumnExpr("(SELECT COUNT(*) FROM list_books lb WHERE lb.list_id = l.id) AS book_count").
		Order("l.name ASC")

	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}

	if opts.includeTotal {
		total, err = q.ScanAndCount(ctx)
	} else {
		err = q.Scan(ctx)
	}
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return lists, total, nil
}

type ListBooksOptions struct {
	ListID int
	Limit  *int
	Offset *int

	includeTotal bool
}

func (svc *Service) ListBooks(ctx context.Context, opts ListBooksOptions) ([]*models.ListBook, error) {
	books, _, err := svc.listBooksWithTotal(ctx, opts)
	return books, errors.WithStack(err)
}

func (svc *Service) ListBooksWithTotal(ctx context.Context, opts ListBooksOptions) ([]*models.ListBook, int, error) {
	opts.includeTotal = true
	return svc.listBooksWithTotal(ctx, opts)
}

func (svc *Service) listBooksWithTotal(ctx context.Context, opts ListBooksOptions) ([]*models.ListBook, int, error) {
	var listBooks []*models.ListBook
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&listBooks).
		Relation("Book").
		Relation("Book.Authors", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Order("a.sort_order ASC")
		}).
		Where("lb.list_id = ?", opts.ListID).
		Order("lb.sort_order ASC", "lb.added_at ASC")

	if opts.Limit != nil {
		q = q.Limit(*opts.Limit)
	}
	if opts.Offset != nil {
		q = q.Offset(*opts.Offset)
	}

	if opts.includeTotal {
		total, err = q.ScanAndCount(ctx)
	} else {
		err = q.Scan(ctx)
	}
	if err != nil {
		return nil, 0, errors.WithStack(err)
	}

	return listBooks, total, nil
}

type AddBooksOptions struct {
	ListID  int
	BookIDs []int
}

// AddBooks appends books to a list in the given order. Books already in the
// list keep their position; new members continue after the current highest
// sort order.
func (svc *Service) AddBooks(ctx context.Context, opts AddBooksOptions) error {
	if len(opts.BookIDs) == 0 {
		return nil
	}

	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		var existingIDs []int
		err := tx.NewSelect().
			Model((*models.ListBook)(nil)).
			Column("book_id").
			Where("list_id = ?", opts.ListID).
			Scan(ctx, &existingIDs)
		if err != nil {
			return errors.WithStack(err)
		}
		existing := make(map[int]bool, len(existingIDs))
		for _, id := range existingIDs {
			existing[id] = true
		}

		var maxSortOrder int
		err = tx.NewSelect().
			Model((*models.ListBook)(nil)).
			ColumnExpr("COALESCE(MAX(sort_order), 0)").
			Where("list_id = ?", opts.ListID).
			Scan(ctx, &maxSortOrder)
		if err != nil {
			return errors.WithStack(err)
		}

		now := time.Now()
		listBooks := make([]*models.ListBook, 0, len(opts.BookIDs))

		for _, bookID := range opts.BookIDs {
			if existing[bookID] {
				continue
			}
			existing[bookID] = true
			maxSortOrder++
			listBooks = append(listBooks, &models.ListBook{
				ListID:    opts.ListID,
				BookID:    bookID,
				AddedAt:   now,
				SortOrder: maxSortOrder,
			})
		}

		if len(listBooks) == 0 {
			return nil
		}

		_, err = tx.NewInsert().
			Model(&listBooks).
			On("CONFLICT (list_id, book_id) DO NOTHING").
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		// Update list's updated_at
		_, err = tx.NewUpdate().
			Model((*models.List)(nil)).
			Set("updated_at = ?", now).
			Where("id = ?", opts.ListID).
			Exec(ctx)
		return errors.WithStack(err)
	})
}

type RemoveBooksOptions struct {
	ListID  int
	BookIDs []int
}

func (svc *Service) RemoveBooks(ctx context.Context, opts RemoveBooksOptions) error {
	if len(opts.BookIDs) == 0 {
		return nil
	}

	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewDelete().
			Model((*models.ListBook)(nil)).
			Where("list_id = ?", opts.ListID).
			Where("book_id IN (?)", bun.In(opts.BookIDs)).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		// Update list's updated_at
		_, err = tx.NewUpdate().
			Model((*models.List)(nil)).
			Set("updated_at = ?", time.Now()).
			Where("id = ?", opts.ListID).
			Exec(ctx)
		return errors.WithStack(err)
	})
}

func (svc *Service) DeleteList(ctx context.Context, listID int) error {
	return svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.NewDelete().
			Model((*models.ListBook)(nil)).
			Where("list_id = ?", listID).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		_, err = tx.NewDelete().
			Model((*models.List)(nil)).
			Where("id = ?", listID).
			Exec(ctx)
		return errors.WithStack(err)
	})
}
