package book

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"bookborrow/app/echoServer/controller"
	"bookborrow/app/echoServer/validation"
	booksvc "bookborrow/service/book"
)

type Controller struct {
	Svc booksvc.Service
	Log *slog.Logger
}

func parseID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

// POST /v1/books
func (h *Controller) Create(c echo.Context) error {
	var req CreateBookReq
	if err := c.Bind(&req); err != nil {
		return controller.BadRequest(c, "invalid json", nil)
	}
	if err := c.Validate(&req); err != nil {
		return controller.BadRequest(c, "validation error", validation.Fields(err))
	}
	id, err := h.Svc.Create(c.Request().Context(), req.toModel())
	if err != nil {
		return controller.Fail(c, h.Log, "book create", err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// PATCH /v1/books/:id
func (h *Controller) Update(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return controller.BadRequest(c, "invalid id", nil)
	}
	var req UpdateBookReq
	if err := c.Bind(&req); err != nil {
		return controller.BadRequest(c, "invalid json", nil)
	}
	if err := c.Validate(&req); err != nil {
		return controller.BadRequest(c, "validation error", validation.Fields(err))
	}
	b, err := h.Svc.Update(c.Request().Context(), id, req.toModel())
	if err != nil {
		return controller.Fail(c, h.Log, "book update", err)
	}
	return c.JSON(http.StatusOK, b)
}

// DELETE /v1/books/:id
func (h *Controller) Delete(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return controller.BadRequest(c, "invalid id", nil)
	}
	if err := h.Svc.Delete(c.Request().Context(), id); err != nil {
		return controller.Fail(c, h.Log, "book delete", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GET /v1/books
func (h *Controller) List(c echo.Context) error {
	rows, err := h.Svc.List(c.Request().Context())
	if err != nil {
		return controller.Fail(c, h.Log, "book list", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

// GET /v1/books/:id
func (h *Controller) Detail(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return controller.BadRequest(c, "invalid id", nil)
	}
	row, err := h.Svc.Detail(c.Request().Context(), id)
	if err != nil {
		return controller.Fail(c, h.Log, "book detail", err)
	}
	return c.JSON(http.StatusOK, row)
}
