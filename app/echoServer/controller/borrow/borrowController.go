package borrow

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"bookborrow/app/echoServer/controller"
	"bookborrow/app/echoServer/jwtx"
	"bookborrow/app/echoServer/validation"
	"bookborrow/model"
	borrowsvc "bookborrow/service/borrow"
)

type Controller struct {
	Svc borrowsvc.Service
	Log *slog.Logger
}

func parseID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

// respond handles the case where the ledger committed but the charge step
// failed: the borrow exists, so the caller gets it back with a note.
func (h *Controller) respond(c echo.Context, op string, status int, d *model.BorrowDetail, err error) error {
	if err != nil && d == nil {
		return controller.Fail(c, h.Log, op, err)
	}
	resp := BorrowResp{BorrowDetail: *d}
	switch {
	case err == nil:
	case errors.Is(err, model.ErrObligationSessionPending):
		resp.PaymentNote = "payment session pending"
	default:
		h.Log.Error(op+" charge", "borrow_id", d.ID, "err", err)
		resp.PaymentNote = "payment could not be recorded"
	}
	return c.JSON(status, resp)
}

// POST /v1/borrows
func (h *Controller) Open(c echo.Context) error {
	borrower, err := jwtx.BorrowerIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	var req OpenBorrowReq
	if err := c.Bind(&req); err != nil {
		return controller.BadRequest(c, "invalid json", nil)
	}
	if err := c.Validate(&req); err != nil {
		return controller.BadRequest(c, "validation error", validation.Fields(err))
	}
	d, err := h.Svc.Open(c.Request().Context(), req.toModel(borrower))
	return h.respond(c, "borrow open", http.StatusCreated, d, err)
}

// POST /v1/borrows/:id/return
func (h *Controller) Close(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return controller.BadRequest(c, "invalid id", nil)
	}
	d, err := h.Svc.Close(c.Request().Context(), id)
	return h.respond(c, "borrow close", http.StatusOK, d, err)
}

// GET /v1/borrows/:id
func (h *Controller) Get(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return controller.BadRequest(c, "invalid id", nil)
	}
	d, err := h.Svc.Get(c.Request().Context(), id)
	if err != nil {
		return controller.Fail(c, h.Log, "borrow get", err)
	}
	return c.JSON(http.StatusOK, d)
}

// GET /v1/borrows?is_active=true
func (h *Controller) List(c echo.Context) error {
	borrower, err := jwtx.BorrowerIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	f := model.BorrowFilter{BorrowerID: &borrower}
	if v := c.QueryParam("is_active"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			return controller.BadRequest(c, "is_active must be true or false", nil)
		}
		f.IsActive = &active
	}
	rows, err := h.Svc.List(c.Request().Context(), f)
	if err != nil {
		return controller.Fail(c, h.Log, "borrow list", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}
