package importer

import (
	"testing"

	"github.com/inkwellapp/inkwell/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildBook(t *testing.T) {
	t.Run("page progress wins over percentage", func(t *testing.T) {
		book, _, err := buildBook(map[string]string{
			columnTitle:             "Progress",
			columnAuthors:           "Author",
			columnCurrentPage:       "42",
			columnCurrentPercentage: "50",
		})
		require.NoError(t, err)
		require.NotNil(t, book.ProgressKind)
		assert.Equal(t, models.ProgressKindPage, *book.ProgressKind)
		assert.Equal(t, 42, *book.ProgressValue)
	})

	t.Run("percentage used when page missing", func(t *testing.T) {
		book, _, err := buildBook(map[string]string{
			columnTitle:             "Progress",
			columnAuthors:           "Author",
			columnCurrentPercentage: "50",
		})
		require.NoError(t, err)
		require.NotNil(t, book.ProgressKind)
		assert.Equal(t, models.ProgressKindPercentage, *book.ProgressKind)
	})

	t.Run("malformed numerics and dates degrade to absent", func(t *testing.T) {
		book, _, err := buildBook(map[string]string{
			columnTitle:           "Sloppy",
			columnAuthors:         "Author",
			columnPageCount:       "about 300",
			columnISBN13:          "not-an-isbn",
			columnPublicationDate: "last summer",
			columnRating:          "great",
		})
		require.NoError(t, err)
		assert.Nil(t, book.PageCount)
		assert.Nil(t, book.ISBN13)
		assert.Nil(t, book.PublicationDate)
		assert.Nil(t, book.Rating)
	})

	t.Run("author segment with empty last name is dropped", func(t *testing.T) {
		book, _, err := buildBook(map[string]string{
			columnTitle:   "Authored",
			columnAuthors: ", Orphaned First; Tolstoy, Leo",
		})
		require.NoError(t, err)
		require.Len(t, book.Authors, 1)
		assert.Equal(t, "Tolstoy", book.Authors[0].LastName)
	})

	t.Run("subjects split and trimmed", func(t *testing.T) {
		_, subjects, err := buildBook(map[string]string{
			columnTitle:    "Tagged",
			columnAuthors:  "Author",
			columnSubjects: " Fiction ; ; Classics ",
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"Fiction", "Classics"}, subjects)
	})

	t.Run("language code must be two letters", func(t *testing.T) {
		book, _, err := buildBook(map[string]string{
			columnTitle:        "Localized",
			columnAuthors:      "Author",
			columnLanguageCode: "eng",
		})
		require.NoError(t, err)
		assert.Nil(t, book.LanguageCode)
	})

	t.Run("finish before start errors", func(t *testing.T) {
		_, _, err := buildBook(map[string]string{
			columnTitle:           "Backwards",
			columnAuthors:         "Author",
			columnStartedReading:  "2020-01-01",
			columnFinishedReading: "2019-01-01",
		})
		assert.Error(t, err)
	})

	t.Run("started only means reading", func(t *testing.T) {
		book, _, err := buildBook(map[string]string{
			columnTitle:          "In Progress",
			columnAuthors:        "Author",
			columnStartedReading: "2023-06-15",
		})
		require.NoError(t, err)
		assert.Equal(t, models.ReadStateReading, book.ReadState)
		require.NotNil(t, book.StartedAt)
		assert.Nil(t, book.FinishedAt)
	})
}
