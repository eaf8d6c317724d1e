package importer

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/inkwellapp/inkwell/pkg/identifiers"
	"github.com/inkwellapp/inkwell/pkg/models"
	"github.com/pkg/errors"
)

// Fixed column headers of the import schema. Any other header is treated as a
// list name.
const (
	columnTitle             = "Title"
	columnSubtitle          = "Subtitle"
	columnAuthors           = "Authors"
	columnGoogleBooksID     = "Google Books ID"
	columnISBN13            = "ISBN-13"
	columnPageCount         = "Page Count"
	columnCurrentPage       = "Current Page"
	columnCurrentPercentage = "Current Percentage"
	columnRating            = "Rating"
	columnNotes             = "Notes"
	columnPublicationDate   = "Publication Date"
	columnPublisher         = "Publisher"
	columnDescription       = "Description"
	columnStartedReading    = "Started Reading"
	columnFinishedReading   = "Finished Reading"
	columnSubjects          = "Subjects"
	columnLanguageCode      = "Language Code"
)

const dateLayout = "2006-01-02"

var fixedColumns = map[string]bool{
	columnTitle:             true,
	columnSubtitle:          true,
	columnAuthors:           true,
	columnGoogleBooksID:     true,
	columnISBN13:            true,
	columnPageCount:         true,
	columnCurrentPage:       true,
	columnCurrentPercentage: true,
	columnRating:            true,
	columnNotes:             true,
	columnPublicationDate:   true,
	columnPublisher:         true,
	columnDescription:       true,
	columnStartedReading:    true,
	columnFinishedReading:   true,
	columnSubjects:          true,
	columnLanguageCode:      true,
}

// buildBook maps one row into a book plus the subject names it carries.
// Malformed numeric and date fields degrade to absent values; the only build
// errors are a missing title/author and a finish date before the start date.
func buildBook(row map[string]string) (*models.Book, []string, error) {
	title := strings.TrimSpace(row[columnTitle])
	if title == "" {
		return nil, nil, errors.New("title is required")
	}

	authors := models.ParseAuthorList(row[columnAuthors])
	if len(authors) == 0 {
		return nil, nil, errors.New("at least one author is required")
	}

	book := &models.Book{
		Title:   title,
		Authors: authors,
	}

	if v := strings.TrimSpace(row[columnSubtitle]); v != "" {
		book.Subtitle = &v
	}
	if v := strings.TrimSpace(row[columnGoogleBooksID]); v != "" {
		book.GoogleBooksID = &v
	}
	if isbn, ok := identifiers.ParseISBN13(row[columnISBN13]); ok {
		book.ISBN13 = &isbn
	}
	if pages, ok := parseInt(row[columnPageCount]); ok {
		book.PageCount = &pages
	}

	// Page progress wins over percentage when both parse.
	if page, ok := parseInt(row[columnCurrentPage]); ok {
		book.SetProgressPage(page)
	} else if pct, ok := parseInt(row[columnCurrentPercentage]); ok {
		book.SetProgressPercentage(pct)
	}

	if rating, ok := parseInt(row[columnRating]); ok && rating >= 1 && rating <= 5 {
		book.Rating = &rating
	}
	if v := normalizeNewlines(row[columnNotes]); v != "" {
		book.Notes = &v
	}
	if v := normalizeNewlines(row[columnDescription]); v != "" {
		book.Description = &v
	}
	if v := strings.TrimSpace(row[columnPublisher]); v != "" {
		book.Publisher = &v
	}
	if date, ok := parseDate(row[columnPublicationDate]); ok {
		book.PublicationDate = &date
	}
	if v := strings.TrimSpace(row[columnLanguageCode]); isLanguageCode(v) {
		code := strings.ToLower(v)
		book.LanguageCode = &code
	}

	started, hasStarted := parseDate(row[columnStartedReading])
	finished, hasFinished := parseDate(row[columnFinishedReading])
	switch {
	case hasStarted && hasFinished:
		if err := book.SetFinished(started, finished); err != nil {
			return nil, nil, err
		}
	case hasStarted:
		book.SetReading(started)
	default:
		book.SetToRead()
	}

	return book, parseSubjects(row[columnSubjects]), nil
}

func parseSubjects(value string) []string {
	var names []string
	for _, part := range strings.Split(value, ";") {
		name := strings.TrimSpace(part)
		if name != "" {
			names = append(names, name)
		}
	}
	return names
}

func parseInt(value string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, false
	}
	return n, true
}

func parseDate(value string) (time.Time, bool) {
	date, err := time.Parse(dateLayout, strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, false
	}
	return date, true
}

func normalizeNewlines(value string) string {
	return strings.ReplaceAll(value, "\r\n", "\n")
}

// isLanguageCode reports whether the value is a two-letter ISO 639-1 code.
func isLanguageCode(value string) bool {
	if len(value) != 2 {
		return false
	}
	for _, r := range value {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}
