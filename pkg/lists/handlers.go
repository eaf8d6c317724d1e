package lists

import (
	"net/http"
	"strconv"

	"github.com/inkwellapp/inkwell/pkg/errcodes"
	"github.com/inkwellapp/inkwell/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	listsService *Service
}

func (h *handler) list(c echo.Context) error {
	ctx := c.Request().Context()

	params := ListListsQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	opts := ListListsOptions{
		Limit:  &params.Limit,
		Offset: &params.Offset,
	}

	lists, total, err := h.listsService.ListListsWithTotal(ctx, opts)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, echo.Map{
		"lists": lists,
		"total": total,
	}))
}

func (h *handler) retrieve(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("List")
	}

	list, err := h.listsService.RetrieveList(ctx, RetrieveListOptions{ID: &id})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, list))
}

func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	params := CreateListPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	list, err := h.listsService.FindOrCreateList(ctx, params.Name)
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusCreated, list))
}

func (h *handler) listBooks(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("List")
	}

	params := ListBooksQuery{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	// Ensure the list exists so we return a 404 for unknown IDs.
	if _, err := h.listsService.RetrieveList(ctx, RetrieveListOptions{ID: &id}); err != nil {
		return errors.WithStack(err)
	}

	listBooks, total, err := h.listsService.ListBooksWithTotal(ctx, ListBooksOptions{
		ListID: id,
		Limit:  &params.Limit,
		Offset: &params.Offset,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	resp := struct {
		Books []*models.ListBook `json:"books"`
		Total int                `json:"total"`
	}{listBooks, total}

	return errors.WithStack(c.JSON(http.StatusOK, resp))
}

func (h *handler) addBooks(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("List")
	}

	params := AddBooksPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	if _, err := h.listsService.RetrieveList(ctx, RetrieveListOptions{ID: &id}); err != nil {
		return errors.WithStack(err)
	}

	err = h.listsService.AddBooks(ctx, AddBooksOptions{
		ListID:  id,
		BookIDs: params.BookIDs,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}

func (h *handler) removeBooks(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.NotFound("List")
	}

	params := RemoveBooksPayload{}
	if err := c.Bind(&params); err != nil {
		return errors.WithStack(err)
	}

	if _, err := h.listsService.RetrieveList(ctx, RetrieveListOptions{ID: &id}); err != nil {
		return errors.WithStack(err)
	}

	err = h.listsService.RemoveBooks(ctx, RemoveBooksOptions{
		ListID:  id,
		BookIDs: params.BookIDs,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return errors.WithStack(c.NoContent(http.StatusNoContent))
}
