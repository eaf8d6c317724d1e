package imports

import (
	"net/http"

	"github.com/inkwellapp/inkwell/pkg/errcodes"
	"github.com/inkwellapp/inkwell/pkg/importer"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	importer *importer.Importer
}

// create runs an import from an uploaded CSV file and responds with the
// per-row summary.
func (h *handler) create(c echo.Context) error {
	ctx := c.Request().Context()

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return errcodes.ValidationError("A CSV file upload named 'file' is required.")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return errors.WithStack(err)
	}
	defer file.Close()

	summary, err := h.importer.Run(ctx, file)
	if err != nil {
		if errors.Is(err, importer.ErrInvalidHeader) {
			return errcodes.ValidationError("The CSV header must include Title and Authors columns.")
		}
		return errors.WithStack(err)
	}

	return errors.WithStack(c.JSON(http.StatusOK, summary))
}
