package lists

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/inkwellapp/inkwell/pkg/errcodes"
	"github.com/inkwellapp/inkwell/pkg/migrations"
	"github.com/inkwellapp/inkwell/pkg/models"
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

func createTestBook(t *testing.T, db *bun.DB, title string) *models.Book {
	t.Helper()

	now := time.Now()
	book := &models.Book{
		CreatedAt: now,
		UpdatedAt: now,
		Title:     title,
		ReadState: models.ReadStateToRead,
	}
	_, err := db.NewInsert().Model(book).Exec(context.Background())
	require.NoError(t, err)

	author := &models.Author{
		BookID:    book.ID,
		LastName:  "Author",
		SortOrder: 1,
	}
	_, err = db.NewInsert().Model(author).Exec(context.Background())
	require.NoError(t, err)

	return book
}

func TestService_CreateList(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	t.Run("creates a list", func(t *testing.T) {
		list, err := svc.CreateList(ctx, "To Read Soon")
		require.NoError(t, err)
		assert.NotZero(t, list.ID)
		assert.Equal(t, "To Read Soon", list.Name)
	})
}

func TestService_RetrieveList(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	created, err := svc.CreateList(ctx, "Favourites")
	require.NoError(t, err)

	t.Run("retrieves by id", func(t *testing.T) {
		list, err := svc.RetrieveList(ctx, RetrieveListOptions{ID: &created.ID})
		require.NoError(t, err)
		assert.Equal(t, "Favourites", list.Name)
	})

	t.Run("retrieves by name case-insensitively", func(t *testing.T) {
		name := "FAVOURITES"
		list, err := svc.RetrieveList(ctx, RetrieveListOptions{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, created.ID, list.ID)
	})

	t.Run("returns not found for unknown id", func(t *testing.T) {
		id := 9999
		_, err := svc.RetrieveList(ctx, RetrieveListOptions{ID: &id})
		assert.ErrorIs(t, err, errcodes.NotFound("List"))
	})
}

func TestService_FindOrCreateList(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	t.Run("creates when missing", func(t *testing.T) {
		list, err := svc.FindOrCreateList(ctx, "Summer Reading")
		require.NoError(t, err)
		assert.NotZero(t, list.ID)
	})

	t.Run("returns the existing list", func(t *testing.T) {
		first, err := svc.FindOrCreateList(ctx, "Book Club")
		require.NoError(t, err)
		second, err := svc.FindOrCreateList(ctx, "book club")
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("trims surrounding whitespace", func(t *testing.T) {
		first, err := svc.FindOrCreateList(ctx, "Trimmed")
		require.NoError(t, err)
		second, err := svc.FindOrCreateList(ctx, "  Trimmed  ")
		require.NoError(t, err)
		assert.Equal(t, first.ID, second.ID)
	})

	t.Run("rejects empty names", func(t *testing.T) {
		_, err := svc.FindOrCreateList(ctx, "   ")
		assert.Error(t, err)
	})
}

func TestService_ListLists(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	_, err := svc.CreateList(ctx, "Beta")
	require.NoError(t, err)
	alpha, err := svc.CreateList(ctx, "Alpha")
	require.NoError(t, err)

	book := createTestBook(t, db, "A Book")
	err = svc.AddBooks(ctx, AddBooksOptions{ListID: alpha.ID, BookIDs: []int{book.ID}})
	require.NoError(t, err)

	t.Run("orders by name and includes book counts", func(t *testing.T) {
		lists, total, err := svc.ListListsWithTotal(ctx, ListListsOptions{})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		require.Len(t, lists, 2)
		assert.Equal(t, "Alpha", lists[0].Name)
		assert.Equal(t, 1, lists[0].BookCount)
		assert.Equal(t, "Beta", lists[1].Name)
		assert.Equal(t, 0, lists[1].BookCount)
	})

	t.Run("applies limit and offset", func(t *testing.T) {
		limit := 1
		offset := 1
		lists, total, err := svc.ListListsWithTotal(ctx, ListListsOptions{Limit: &limit, Offset: &offset})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		require.Len(t, lists, 1)
		assert.Equal(t, "Beta", lists[0].Name)
	})
}

func TestService_AddBooks(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	list, err := svc.CreateList(ctx, "Queue")
	require.NoError(t, err)

	b1 := createTestBook(t, db, "First")
	b2 := createTestBook(t, db, "Second")
	b3 := createTestBook(t, db, "Third")

	t.Run("appends books in order", func(t *testing.T) {
		err := svc.AddBooks(ctx, AddBooksOptions{ListID: list.ID, BookIDs: []int{b1.ID, b2.ID}})
		require.NoError(t, err)

		listBooks, err := svc.ListBooks(ctx, ListBooksOptions{ListID: list.ID})
		require.NoError(t, err)
		require.Len(t, listBooks, 2)
		assert.Equal(t, b1.ID, listBooks[0].BookID)
		assert.Equal(t, 1, listBooks[0].SortOrder)
		assert.Equal(t, b2.ID, listBooks[1].BookID)
		assert.Equal(t, 2, listBooks[1].SortOrder)
	})

	t.Run("existing members keep their position", func(t *testing.T) {
		err := svc.AddBooks(ctx, AddBooksOptions{ListID: list.ID, BookIDs: []int{b2.ID, b3.ID}})
		require.NoError(t, err)

		listBooks, err := svc.ListBooks(ctx, ListBooksOptions{ListID: list.ID})
		require.NoError(t, err)
		require.Len(t, listBooks, 3)
		assert.Equal(t, b2.ID, listBooks[1].BookID)
		assert.Equal(t, 2, listBooks[1].SortOrder)
		assert.Equal(t, b3.ID, listBooks[2].BookID)
		assert.Equal(t, 3, listBooks[2].SortOrder)
	})

	t.Run("ignores duplicate ids in the same call", func(t *testing.T) {
		other, err := svc.CreateList(ctx, "Dupes")
		require.NoError(t, err)

		err = svc.AddBooks(ctx, AddBooksOptions{ListID: other.ID, BookIDs: []int{b1.ID, b1.ID, b2.ID}})
		require.NoError(t, err)

		listBooks, err := svc.ListBooks(ctx, ListBooksOptions{ListID: other.ID})
		require.NoError(t, err)
		require.Len(t, listBooks, 2)
	})

	t.Run("no-op with no book ids", func(t *testing.T) {
		err := svc.AddBooks(ctx, AddBooksOptions{ListID: list.ID})
		require.NoError(t, err)
	})
}

func TestService_ListBooks(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	list, err := svc.CreateList(ctx, "With Relations")
	require.NoError(t, err)

	book := createTestBook(t, db, "Loaded")
	err = svc.AddBooks(ctx, AddBooksOptions{ListID: list.ID, BookIDs: []int{book.ID}})
	require.NoError(t, err)

	t.Run("loads book and authors", func(t *testing.T) {
		listBooks, total, err := svc.ListBooksWithTotal(ctx, ListBooksOptions{ListID: list.ID})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, listBooks, 1)
		require.NotNil(t, listBooks[0].Book)
		assert.Equal(t, "Loaded", listBooks[0].Book.Title)
		require.Len(t, listBooks[0].Book.Authors, 1)
		assert.Equal(t, "Author", listBooks[0].Book.Authors[0].LastName)
	})
}

func TestService_RemoveBooks(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	list, err := svc.CreateList(ctx, "Shrinking")
	require.NoError(t, err)

	b1 := createTestBook(t, db, "Keep")
	b2 := createTestBook(t, db, "Drop")
	err = svc.AddBooks(ctx, AddBooksOptions{ListID: list.ID, BookIDs: []int{b1.ID, b2.ID}})
	require.NoError(t, err)

	t.Run("removes only the given books", func(t *testing.T) {
		err := svc.RemoveBooks(ctx, RemoveBooksOptions{ListID: list.ID, BookIDs: []int{b2.ID}})
		require.NoError(t, err)

		listBooks, err := svc.ListBooks(ctx, ListBooksOptions{ListID: list.ID})
		require.NoError(t, err)
		require.Len(t, listBooks, 1)
		assert.Equal(t, b1.ID, listBooks[0].BookID)
	})
}

func TestService_DeleteList(t *testing.T) {
	db := setupTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	list, err := svc.CreateList(ctx, "Doomed")
	require.NoError(t, err)

	book := createTestBook(t, db, "Member")
	err = svc.AddBooks(ctx, AddBooksOptions{ListID: list.ID, BookIDs: []int{book.ID}})
	require.NoError(t, err)

	t.Run("deletes the list and its memberships", func(t *testing.T) {
		err := svc.DeleteList(ctx, list.ID)
		require.NoError(t, err)

		_, err = svc.RetrieveList(ctx, RetrieveListOptions{ID: &list.ID})
		assert.ErrorIs(t, err, errcodes.NotFound("List"))

		count, err := db.NewSelect().
			Model((*models.ListBook)(nil)).
			Where("list_id = ?", list.ID).
			Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, count)
	})
}
