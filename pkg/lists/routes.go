package lists

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutesWithGroup registers list routes on a pre-configured group.
func RegisterRoutesWithGroup(g *echo.Group, db *bun.DB) {
	listsService := NewService(db)

	h := &handler{
		listsService: listsService,
	}

	g.GET("", h.list)
	g.POST("", h.create)
	g.GET("/:id", h.retrieve)
	g.GET("/:id/books", h.listBooks)
	g.POST("/:id/books", h.addBooks)
	g.DELETE("/:id/books", h.removeBooks)
}
