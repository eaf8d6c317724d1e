package importer

import (
	"context"

	"github.com/inkwellapp/inkwell/pkg/books"
	"github.com/pkg/errors"
)

// sortIndexAllocator hands out strictly increasing sort indices per read
// state. Each state's counter is seeded lazily from the highest index already
// in the store, so imported books always sort after pre-existing ones.
type sortIndexAllocator struct {
	bookService *books.Service
	next        map[string]int
}

func newSortIndexAllocator(bookService *books.Service) *sortIndexAllocator {
	return &sortIndexAllocator{
		bookService: bookService,
		next:        map[string]int{},
	}
}

func (a *sortIndexAllocator) take(ctx context.Context, readState string) (int, error) {
	if _, ok := a.next[readState]; !ok {
		max, err := a.bookService.MaxSortIndex(ctx, readState)
		if err != nil {
			return 0, errors.WithStack(err)
		}
		a.next[readState] = max + 1
	}

	idx := a.next[readState]
	a.next[readState]++
	return idx, nil
}
