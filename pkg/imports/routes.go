package imports

import (
	"github.com/inkwellapp/inkwell/pkg/config"
	"github.com/inkwellapp/inkwell/pkg/covers"
	"github.com/inkwellapp/inkwell/pkg/importer"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers import routes on a pre-configured group.
func RegisterRoutesWithGroup(g *echo.Group, cfg *config.Config, db *bun.DB, coverClient covers.Client) {
	h := &handler{
		importer: importer.New(cfg, db, coverClient),
	}

	g.POST("", h.create)
}
