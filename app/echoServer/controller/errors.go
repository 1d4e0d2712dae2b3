package controller

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"bookborrow/model"
)

var statusByCode = map[model.ErrCode]int{
	model.CodeOutOfStock:            http.StatusConflict,
	model.CodeInvalidDateRange:      http.StatusBadRequest,
	model.CodeAlreadyClosed:         http.StatusConflict,
	model.CodeDuplicateCatalogEntry: http.StatusConflict,
	model.CodeUnknownSession:        http.StatusNotFound,
	model.CodeInventoryConsistency:  http.StatusInternalServerError,
	model.CodeBookNotFound:          http.StatusNotFound,
	model.CodeBorrowNotFound:        http.StatusNotFound,
	model.CodeBookHasOpenBorrows:    http.StatusConflict,
	model.CodeInvalidInput:          http.StatusBadRequest,
	model.CodeInvalidInventory:      http.StatusUnprocessableEntity,
	model.CodeInvalidCallbackToken:  http.StatusUnauthorized,
}

// Status maps a service error to an HTTP status and the code sent to clients.
func Status(err error) (int, model.ErrCode) {
	code := model.Code(err)
	if st, ok := statusByCode[code]; ok {
		return st, code
	}
	return http.StatusInternalServerError, ""
}

// Fail writes the error response for err. Server-side failures are logged with
// their cause and reported without it.
func Fail(c echo.Context, log *slog.Logger, op string, err error) error {
	st, code := Status(err)
	rid := c.Response().Header().Get(echo.HeaderXRequestID)
	if st >= http.StatusInternalServerError {
		log.Error(op, "err", err, "req_id", rid)
		msg := "internal error"
		if code == model.CodeInventoryConsistency {
			msg = err.Error()
		}
		return c.JSON(st, echo.Map{"message": msg, "code": code})
	}
	log.Info(op+" rejected", "code", code, "err", err, "req_id", rid)
	return c.JSON(st, echo.Map{"message": err.Error(), "code": code})
}

func BadRequest(c echo.Context, msg string, fields map[string]string) error {
	body := echo.Map{"message": msg, "code": model.CodeInvalidInput}
	if len(fields) > 0 {
		body["errors"] = fields
	}
	return c.JSON(http.StatusBadRequest, body)
}
