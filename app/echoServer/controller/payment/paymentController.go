package payment

import (
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"bookborrow/app/echoServer/controller"
	paymentsvc "bookborrow/service/payment"
)

type Controller struct {
	Svc paymentsvc.Service
	Log *slog.Logger
}

const maxCallbackBody = 1 << 20

// POST /v1/payment/xendit
func (h *Controller) HandleXendit(c echo.Context) error {
	sig := c.Request().Header.Get("X-Callback-Token")
	raw, err := io.ReadAll(io.LimitReader(c.Request().Body, maxCallbackBody))
	if err != nil {
		return controller.BadRequest(c, "unreadable body", nil)
	}
	if err := h.Svc.HandleXendit(c.Request().Context(), sig, raw); err != nil {
		return controller.Fail(c, h.Log, "payment callback", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "ok"})
}

// GET /v1/borrows/:id/payments
func (h *Controller) ListByBorrow(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return controller.BadRequest(c, "invalid id", nil)
	}
	rows, err := h.Svc.ListByBorrow(c.Request().Context(), id)
	if err != nil {
		return controller.Fail(c, h.Log, "payment list", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}
