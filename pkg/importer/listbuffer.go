package importer

import (
	"context"
	"sort"

	"github.com/inkwellapp/inkwell/pkg/lists"
	"github.com/pkg/errors"
)

type listPlacement struct {
	bookID   int
	position int
}

// listMembershipBuffer accumulates (list name, book, position) tuples during
// row processing. Nothing touches the lists store until materialize runs: a
// list referenced early in a file can gain members from later rows, and
// positions must be applied in position order rather than discovery order.
type listMembershipBuffer struct {
	listService *lists.Service
	placements  map[string][]listPlacement
	names       []string
}

func newListMembershipBuffer(listService *lists.Service) *listMembershipBuffer {
	return &listMembershipBuffer{
		listService: listService,
		placements:  map[string][]listPlacement{},
	}
}

func (b *listMembershipBuffer) record(listName string, bookID, position int) {
	if _, ok := b.placements[listName]; !ok {
		b.names = append(b.names, listName)
	}
	b.placements[listName] = append(b.placements[listName], listPlacement{
		bookID:   bookID,
		position: position,
	})
}

// materialize resolves each buffered list and appends its books ordered by
// their row-supplied positions. Books already in a list keep their place; the
// lists service filters them out.
func (b *listMembershipBuffer) materialize(ctx context.Context) error {
	for _, name := range b.names {
		placements := b.placements[name]
		sort.SliceStable(placements, func(i, j int) bool {
			return placements[i].position < placements[j].position
		})

		list, err := b.listService.FindOrCreateList(ctx, name)
		if err != nil {
			return errors.WithStack(err)
		}

		bookIDs := make([]int, 0, len(placements))
		for _, p := range placements {
			bookIDs = append(bookIDs, p.bookID)
		}

		err = b.listService.AddBooks(ctx, lists.AddBooksOptions{
			ListID:  list.ID,
			BookIDs: bookIDs,
		})
		if err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}
