package model

import "errors"

type ErrCode string

const (
	CodeOutOfStock            ErrCode = "OUT_OF_STOCK"
	CodeInvalidDateRange      ErrCode = "INVALID_DATE_RANGE"
	CodeAlreadyClosed         ErrCode = "ALREADY_CLOSED"
	CodeDuplicateCatalogEntry ErrCode = "DUPLICATE_CATALOG_ENTRY"
	CodeUnknownSession        ErrCode = "UNKNOWN_SESSION"
	CodeSessionPending        ErrCode = "OBLIGATION_SESSION_PENDING"
	CodeInventoryConsistency  ErrCode = "INVENTORY_CONSISTENCY_FAILURE"
	CodeBookNotFound          ErrCode = "BOOK_NOT_FOUND"
	CodeBorrowNotFound        ErrCode = "BORROW_NOT_FOUND"
	CodeBookHasOpenBorrows    ErrCode = "BOOK_HAS_OPEN_BORROWS"
	CodeInvalidInput          ErrCode = "INVALID_INPUT"
	CodeInvalidInventory      ErrCode = "INVALID_INVENTORY"
	CodeInvalidCallbackToken  ErrCode = "INVALID_CALLBACK_TOKEN"
)

type codedError struct {
	code ErrCode
	msg  string
}

func (e *codedError) Error() string { return e.msg }
func (e *codedError) Code() ErrCode { return e.code }

func newErr(c ErrCode, msg string) error { return &codedError{code: c, msg: msg} }

var (
	ErrOutOfStock               = newErr(CodeOutOfStock, "book is out of stock")
	ErrInvalidDateRange         = newErr(CodeInvalidDateRange, "expected return date must be after borrow date")
	ErrAlreadyClosed            = newErr(CodeAlreadyClosed, "borrow is already closed")
	ErrDuplicateCatalogEntry    = newErr(CodeDuplicateCatalogEntry, "book with this title, author and cover already exists")
	ErrUnknownSession           = newErr(CodeUnknownSession, "unknown payment session")
	ErrObligationSessionPending = newErr(CodeSessionPending, "payment session could not be created yet")
	ErrInventoryConsistency     = newErr(CodeInventoryConsistency, "inventory consistency failure")
	ErrBookNotFound             = newErr(CodeBookNotFound, "book not found")
	ErrBorrowNotFound           = newErr(CodeBorrowNotFound, "borrow not found")
	ErrBookHasOpenBorrows       = newErr(CodeBookHasOpenBorrows, "book has open borrows")
	ErrInvalidInput             = newErr(CodeInvalidInput, "invalid input")
	ErrInvalidInventory         = newErr(CodeInvalidInventory, "total copies below copies currently lent out")
	ErrInvalidCallbackToken     = newErr(CodeInvalidCallbackToken, "invalid callback token")
)

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}
