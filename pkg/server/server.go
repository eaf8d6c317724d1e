package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/inkwellapp/inkwell/pkg/binder"
	"github.com/inkwellapp/inkwell/pkg/books"
	"github.com/inkwellapp/inkwell/pkg/config"
	"github.com/inkwellapp/inkwell/pkg/covers"
	"github.com/inkwellapp/inkwell/pkg/errcodes"
	"github.com/inkwellapp/inkwell/pkg/imports"
	"github.com/inkwellapp/inkwell/pkg/lists"
	"github.com/inkwellapp/inkwell/pkg/search"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/robinjoseph08/golib/echo/v4/health"
	"github.com/robinjoseph08/golib/echo/v4/middleware/logger"
	"github.com/robinjoseph08/golib/echo/v4/middleware/recovery"
	"github.com/uptrace/bun"
)

func New(cfg *config.Config, db *bun.DB) (*http.Server, error) {
	e := echo.New()

	b, err := binder.New()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	e.Binder = b

	e.Use(logger.Middleware())
	e.Use(recovery.Middleware())
	e.Use(middleware.CORS())

	health.RegisterRoutes(e)

	var coverClient covers.Client
	if cfg.CoverFetchEnabled {
		coverClient = covers.NewGoogleClient(cfg)
	}

	books.RegisterRoutesWithGroup(e.Group("/books"), db)
	lists.RegisterRoutesWithGroup(e.Group("/lists"), db)
	search.RegisterRoutesWithGroup(e.Group("/search"), db)
	imports.RegisterRoutesWithGroup(e.Group("/imports"), cfg, db, coverClient)

	echo.NotFoundHandler = notFoundHandler
	e.HTTPErrorHandler = errcodes.NewHandler().Handle

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.ServerHost, cfg.ServerPort),
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
	}

	return srv, nil
}

func notFoundHandler(c echo.Context) error {
	c.SetPath("/:path")
	return errcodes.NotFound("Page")
}
