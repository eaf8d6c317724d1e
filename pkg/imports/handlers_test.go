package imports

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/inkwellapp/inkwell/pkg/binder"
	"github.com/inkwellapp/inkwell/pkg/config"
	"github.com/inkwellapp/inkwell/pkg/errcodes"
	"github.com/inkwellapp/inkwell/pkg/importer"
	"github.com/inkwellapp/inkwell/pkg/migrations"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

func setupTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)

	db := bun.NewDB(sqldb, sqlitedialect.New())

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func newImportsTestContext(t *testing.T, body *bytes.Buffer, contentType string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()

	e := echo.New()
	b, err := binder.New()
	require.NoError(t, err)
	e.Binder = b
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	req := httptest.NewRequest(http.MethodPost, "/imports", body)
	req.Header.Set(echo.HeaderContentType, contentType)
	rr := httptest.NewRecorder()
	return e.NewContext(req, rr), rr
}

func multipartCSV(t *testing.T, csv string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	part, err := writer.CreateFormFile("file", "books.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(csv))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func newTestHandler(t *testing.T) *handler {
	t.Helper()

	db := setupTestDB(t)
	return &handler{importer: importer.New(config.NewForTest(), db, nil)}
}

func TestHandlerCreate(t *testing.T) {
	t.Run("imports an uploaded csv and returns the summary", func(t *testing.T) {
		h := newTestHandler(t)

		body, contentType := multipartCSV(t, "Title,Authors\nDune,\"Herbert, Frank\"\nNo Author Row,\n")
		c, rr := newImportsTestContext(t, body, contentType)

		err := h.create(c)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, rr.Code)

		var summary importer.Summary
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &summary))
		assert.Equal(t, importer.Summary{Success: 1, Invalid: 1, Duplicate: 0}, summary)
	})

	t.Run("rejects a csv missing the authors column", func(t *testing.T) {
		h := newTestHandler(t)

		body, contentType := multipartCSV(t, "Title\nDune\n")
		c, _ := newImportsTestContext(t, body, contentType)

		err := h.create(c)
		require.Error(t, err)
		codedErr := &errcodes.Error{}
		require.ErrorAs(t, err, &codedErr)
		assert.Equal(t, http.StatusUnprocessableEntity, codedErr.HTTPCode)
	})

	t.Run("rejects a request without a file", func(t *testing.T) {
		h := newTestHandler(t)

		body := &bytes.Buffer{}
		writer := multipart.NewWriter(body)
		require.NoError(t, writer.Close())
		c, _ := newImportsTestContext(t, body, writer.FormDataContentType())

		err := h.create(c)
		require.Error(t, err)
		codedErr := &errcodes.Error{}
		require.ErrorAs(t, err, &codedErr)
		assert.Equal(t, http.StatusUnprocessableEntity, codedErr.HTTPCode)
	})
}
