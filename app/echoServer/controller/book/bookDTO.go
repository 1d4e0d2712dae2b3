package book

import (
	"github.com/shopspring/decimal"

	"bookborrow/model"
)

type CreateBookReq struct {
	Title       string          `json:"title" validate:"required,max=255"`
	Author      string          `json:"author" validate:"required,max=255"`
	Cover       string          `json:"cover" validate:"required,oneof=hard soft"`
	DailyFee    decimal.Decimal `json:"daily_fee"`
	TotalCopies int64           `json:"total_copies" validate:"required,gt=0"`
}

func (r CreateBookReq) toModel() model.NewBook {
	return model.NewBook{
		Title:       r.Title,
		Author:      r.Author,
		Cover:       model.Cover(r.Cover),
		DailyFee:    r.DailyFee,
		TotalCopies: r.TotalCopies,
	}
}

type UpdateBookReq struct {
	Title       *string          `json:"title" validate:"omitempty,max=255"`
	Author      *string          `json:"author" validate:"omitempty,max=255"`
	Cover       *string          `json:"cover" validate:"omitempty,oneof=hard soft"`
	DailyFee    *decimal.Decimal `json:"daily_fee"`
	TotalCopies *int64           `json:"total_copies" validate:"omitempty,gt=0"`
}

func (r UpdateBookReq) toModel() model.BookPatch {
	p := model.BookPatch{
		Title:       r.Title,
		Author:      r.Author,
		DailyFee:    r.DailyFee,
		TotalCopies: r.TotalCopies,
	}
	if r.Cover != nil {
		c := model.Cover(*r.Cover)
		p.Cover = &c
	}
	return p
}
