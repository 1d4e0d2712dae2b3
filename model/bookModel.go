// model/bookModel.go
package model

import "github.com/shopspring/decimal"

type Cover string

const (
	CoverHard Cover = "hard"
	CoverSoft Cover = "soft"
)

func (c Cover) Valid() bool { return c == CoverHard || c == CoverSoft }

type Book struct {
	ID              int64           `json:"id"`
	Title           string          `json:"title"`
	Author          string          `json:"author"`
	Cover           Cover           `json:"cover"`
	DailyFee        decimal.Decimal `json:"daily_fee"`
	AvailableCopies int64           `json:"available_copies"`
	TotalCopies     int64           `json:"total_copies"`
}

// NewBook is the catalog input for creating a title.
type NewBook struct {
	Title       string
	Author      string
	Cover       Cover
	DailyFee    decimal.Decimal
	TotalCopies int64
}

// BookPatch carries optional updates; nil fields are left untouched.
type BookPatch struct {
	Title       *string
	Author      *string
	Cover       *Cover
	DailyFee    *decimal.Decimal
	TotalCopies *int64
}
