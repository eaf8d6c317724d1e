package importer

import (
	"context"
	"encoding/csv"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/inkwellapp/inkwell/pkg/books"
	"github.com/inkwellapp/inkwell/pkg/config"
	"github.com/inkwellapp/inkwell/pkg/covers"
	"github.com/inkwellapp/inkwell/pkg/errcodes"
	"github.com/inkwellapp/inkwell/pkg/identifiers"
	"github.com/inkwellapp/inkwell/pkg/lists"
	"github.com/inkwellapp/inkwell/pkg/models"
	"github.com/inkwellapp/inkwell/pkg/subjects"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/logger"
	"github.com/uptrace/bun"
)

// ErrInvalidHeader is returned when the header row is missing the Title or
// Authors column. Nothing is imported in that case.
var ErrInvalidHeader = errors.New("header row must include Title and Authors columns")

// Summary reports what happened to every row of an import. The three counts
// always sum to the number of data rows in the file.
type Summary struct {
	Success   int `json:"success"`
	Invalid   int `json:"invalid"`
	Duplicate int `json:"duplicate"`
}

// Importer coordinates a CSV import run: it streams rows, dedupes against the
// store, builds and persists books, buffers list memberships, and fans out
// cover fetches that are joined before finalization.
type Importer struct {
	config *config.Config

	bookService    *books.Service
	subjectService *subjects.Service
	listService    *lists.Service
	coverClient    covers.Client
}

func New(cfg *config.Config, db *bun.DB, coverClient covers.Client) *Importer {
	return &Importer{
		config:         cfg,
		bookService:    books.NewService(db),
		subjectService: subjects.NewService(db),
		listService:    lists.NewService(db),
		coverClient:    coverClient,
	}
}

// run holds the mutable state of one import: in-run identifier sets, the sort
// allocator, the list buffer, counters, and the cover-fetch wait group.
type run struct {
	listColumns   []string
	seenGoogleIDs map[string]bool
	seenISBNs     map[int64]bool
	allocator     *sortIndexAllocator
	listBuffer    *listMembershipBuffer
	summary       Summary
	coverWG       sync.WaitGroup
}

// Run imports the CSV read from r. Rows are processed strictly in order; the
// returned summary counts every data row as a success, an invalid row, or a
// duplicate. ErrInvalidHeader is returned before any row is processed when the
// header is unusable.
func (imp *Importer) Run(ctx context.Context, r io.Reader) (*Summary, error) {
	log := logger.FromContext(ctx).Data(logger.Data{"import_id": uuid.New().String()})
	ctx = log.WithContext(ctx)

	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err != nil {
		return nil, ErrInvalidHeader
	}
	for i := range headers {
		headers[i] = strings.TrimSpace(headers[i])
	}

	hasTitle := false
	hasAuthors := false
	var listColumns []string
	for _, h := range headers {
		switch {
		case h == columnTitle:
			hasTitle = true
		case h == columnAuthors:
			hasAuthors = true
		case h != "" && !fixedColumns[h]:
			listColumns = append(listColumns, h)
		}
	}
	if !hasTitle || !hasAuthors {
		return nil, ErrInvalidHeader
	}

	rn := &run{
		listColumns:   listColumns,
		seenGoogleIDs: map[string]bool{},
		seenISBNs:     map[int64]bool{},
		allocator:     newSortIndexAllocator(imp.bookService),
		listBuffer:    newListMembershipBuffer(imp.listService),
	}

	// Cover fetches run under their own context so stragglers can be
	// abandoned once the barrier times out.
	coverCtx, cancelCovers := context.WithCancel(ctx)
	defer cancelCovers()

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			log.Warn("skipping malformed csv row", logger.Data{"error": err.Error()})
			rn.summary.Invalid++
			continue
		}

		row := map[string]string{}
		for i, h := range headers {
			if i < len(record) {
				row[h] = record[i]
			}
		}

		if err := imp.importRow(coverCtx, rn, row); err != nil {
			return nil, errors.WithStack(err)
		}
	}

	imp.waitForCovers(ctx, rn, cancelCovers)

	if err := rn.listBuffer.materialize(ctx); err != nil {
		return nil, errors.WithStack(err)
	}

	log.Info("import finished", logger.Data{
		"success":   rn.summary.Success,
		"invalid":   rn.summary.Invalid,
		"duplicate": rn.summary.Duplicate,
	})

	return &rn.summary, nil
}

func (imp *Importer) importRow(ctx context.Context, rn *run, row map[string]string) error {
	log := logger.FromContext(ctx)

	googleBooksID := strings.TrimSpace(row[columnGoogleBooksID])
	if googleBooksID != "" {
		dup, err := imp.isDuplicateGoogleBooksID(ctx, rn, googleBooksID)
		if err != nil {
			return err
		}
		if dup {
			rn.summary.Duplicate++
			return nil
		}
	}

	isbn, hasISBN := identifiers.ParseISBN13(row[columnISBN13])
	if hasISBN {
		dup, err := imp.isDuplicateISBN(ctx, rn, isbn)
		if err != nil {
			return err
		}
		if dup {
			rn.summary.Duplicate++
			return nil
		}
	}

	book, subjectNames, err := buildBook(row)
	if err != nil {
		log.Warn("skipping invalid row", logger.Data{"error": err.Error()})
		rn.summary.Invalid++
		return nil
	}

	for _, name := range subjectNames {
		subject, err := imp.subjectService.FindOrCreateSubject(ctx, name)
		if err != nil {
			return err
		}
		book.Subjects = append(book.Subjects, &models.BookSubject{SubjectID: subject.ID})
	}

	if err := book.Validate(); err != nil {
		log.Warn("skipping invalid row", logger.Data{"title": book.Title, "error": err.Error()})
		rn.summary.Invalid++
		return nil
	}

	sortIndex, err := rn.allocator.take(ctx, book.ReadState)
	if err != nil {
		return err
	}
	book.SortIndex = sortIndex

	if err := imp.bookService.CreateBook(ctx, book); err != nil {
		return err
	}

	if book.GoogleBooksID != nil {
		rn.seenGoogleIDs[*book.GoogleBooksID] = true
	}
	if book.ISBN13 != nil {
		rn.seenISBNs[*book.ISBN13] = true
	}
	rn.summary.Success++

	for _, listName := range rn.listColumns {
		if position, ok := parseInt(row[listName]); ok {
			rn.listBuffer.record(listName, book.ID, position)
		}
	}

	if imp.config.CoverFetchEnabled && imp.coverClient != nil && book.GoogleBooksID != nil {
		rn.coverWG.Add(1)
		go imp.fetchCover(ctx, &rn.coverWG, book.ID, *book.GoogleBooksID)
	}

	return nil
}

func (imp *Importer) isDuplicateGoogleBooksID(ctx context.Context, rn *run, googleBooksID string) (bool, error) {
	if rn.seenGoogleIDs[googleBooksID] {
		return true, nil
	}
	_, err := imp.bookService.RetrieveBook(ctx, books.RetrieveBookOptions{GoogleBooksID: &googleBooksID})
	if err == nil {
		return true, nil
	}
	if errors.Is(err, errcodes.NotFound("Book")) {
		return false, nil
	}
	return false, err
}

func (imp *Importer) isDuplicateISBN(ctx context.Context, rn *run, isbn int64) (bool, error) {
	if rn.seenISBNs[isbn] {
		return true, nil
	}
	_, err := imp.bookService.RetrieveBook(ctx, books.RetrieveBookOptions{ISBN13: &isbn})
	if err == nil {
		return true, nil
	}
	if errors.Is(err, errcodes.NotFound("Book")) {
		return false, nil
	}
	return false, err
}

// fetchCover downloads and attaches a cover image. Failures are logged and
// swallowed: a missing cover never turns a successful row into an error.
func (imp *Importer) fetchCover(ctx context.Context, wg *sync.WaitGroup, bookID int, googleBooksID string) {
	defer wg.Done()
	log := logger.FromContext(ctx)

	data, err := imp.coverClient.FetchCover(ctx, googleBooksID)
	if err != nil {
		log.Warn("failed to fetch cover", logger.Data{"book_id": bookID, "error": err.Error()})
		return
	}

	mime := mimetype.Detect(data)
	if !strings.HasPrefix(mime.String(), "image/") {
		log.Warn("cover response was not an image", logger.Data{"book_id": bookID, "mime_type": mime.String()})
		return
	}

	if err := imp.bookService.AttachCover(ctx, bookID, data, mime.String()); err != nil {
		log.Warn("failed to attach cover", logger.Data{"book_id": bookID, "error": err.Error()})
	}
}

// waitForCovers blocks finalization until every scheduled fetch reaches a
// terminal state or the configured timeout elapses. On timeout the remaining
// fetches are cancelled and the import proceeds without them.
func (imp *Importer) waitForCovers(ctx context.Context, rn *run, cancelCovers context.CancelFunc) {
	done := make(chan struct{})
	go func() {
		rn.coverWG.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(imp.config.ImportCoverTimeout):
		logger.FromContext(ctx).Warn("timed out waiting for cover fetches")
		cancelCovers()
		<-done
	case <-ctx.Done():
		cancelCovers()
		<-done
	}
}
