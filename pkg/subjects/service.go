package subjects

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

type RetrieveSubjectOptions struct {
	ID   *int
	Name *string
}

type ListSubjectsOptions struct {
	Limit  *int
	Offset *int

	includeTotal bool
}

type Service struct {
	db *bun.DB
}

func NewService(db *bun.DB) *Service {
	return &Service{db}
}

func (svc *Service) CreateSubject(ctx context.Context, subject *models.Subject) error {
	now := time.Now()
	if subject.CreatedAt.IsZero() {
		subject.CreatedAt = now
	}
	subject.UpdatedAt = subject.CreatedAt

	_, err := svc.db.
		NewInsert().
		Model(subject).
		Returning("*").
		Exec(ctx)
	return errors.WithStack(err)
}

func (svc *Service) RetrieveSubject(ctx context.Context, opts RetrieveSubjectOptions) (*models.Subject, error) {
	subject := &models.Subject{}

	q := svc.db.
		NewSelect().
		Model(subject)

	if opts.ID != nil {
		q = q.Where("s.id = ?", *opts.ID)
	}
	if opts.Name != nil {
		// Case-insensitive match
		q = q.Where("LOWER(s.name) = LOWER(?)", *opts.Name)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Subject")
		}
		return nil, errors.WithStack(err)
	}

	return subject, nil
}

// FindOrCreateSubject finds an existing subject or creates a new one
// (case-insensitive match).
func (svc *Service) FindOrCreateSubject(ctx context.Context, name string) (*models.Subject, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("subject name cannot be empty")
	}

	subject, err := svc.RetrieveSubject(ctx, RetrieveSubjectOptions{Name: &name})
	if err == nil {
		return subject, nil
	}
	if !errors.Is(err, errcodes.NotFound("Subject")) {
		return nil, err
	}

	subject = &models.Subject{Name: name}
	err = svc.CreateSubject(ctx, subject)
	if err != nil {
		return nil, err
	}
	return subject, nil
}

func (svc *Service) ListSubjects(ctx context.Context, opts ListSubjectsOptions) ([]*models.Subject, error) {
	s, _, err := svc.listSubjectsWithTotal(ctx, opts)
	return s, errors.WithStack(err)
}

func (svc *Service) ListSubjectsWithTotal(ctx context.Context, opts ListSubjectsOptions) ([]*models.Subject, int, error) {
	opts.includeTotal = true
	return svc.listSubjectsWithTotal(ctx, opts)
}

func (svc *Service) listSubjectsWithTotal(ctx context.Context, opts ListSubjectsOptions) ([]*models.Subject, int, error) {
	var subjects []*models.Subject
	var total int
	var err error

	q := svc.db.
		NewSelect().
		Model(&subjects).
		ColumnExpr("s.*").
		ColumnExpr("(SELECT COUNT(*) FROM book_subjects bs WHERE bs.subject_id = s.id) AS book_count").
		Order("s.name ASC")

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

	return subjects, total, nil
}

// GetBookCount returns the count of books tagged with this subject.
func (svc *Service) GetBookCount(ctx context.Context, subjectID int) (int, error) {
	count, err := svc.db.NewSelect().
		Model((*models.BookSubject)(nil)).
		Where("subject_id = ?", subjectID).
		Count(ctx)
	return count, errors.WithStack(err)
}

// CleanupOrphanedSubjects deletes subjects with no book associations.
func (svc *Service) CleanupOrphanedSubjects(ctx context.Context) (int, error) {
	result, err := svc.db.NewDelete().
		Model((*models.Subject)(nil)).
		Where("id NOT IN (SELECT DISTINCT subject_id FROM book_subjects)").
		Exec(ctx)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	n, _ := result.RowsAffected()
	return int(n), nil
}
