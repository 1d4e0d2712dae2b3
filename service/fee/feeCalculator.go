// Package fee computes what a borrow costs. Amounts are truncated toward zero
// to whole currency units.
package fee

import (
	"time"

	"github.com/shopspring/decimal"
)

const FineMultiplier = 2

const secondsPerDay = 24 * 60 * 60

// Date drops the clock part, in UTC.
func Date(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DaysBetween counts calendar days from `from` to `to`; negative when `to` is earlier.
func DaysBetween(from, to time.Time) int64 {
	return (Date(to).Unix() - Date(from).Unix()) / secondsPerDay
}

func RentalFee(dailyFee decimal.Decimal, borrowDate, expectedReturnDate time.Time) decimal.Decimal {
	days := DaysBetween(borrowDate, expectedReturnDate)
	if days < 0 {
		days = 0
	}
	return dailyFee.Mul(decimal.NewFromInt(days)).Truncate(0)
}

// FineAmount does not check that the return was late; callers only ask when it was.
func FineAmount(dailyFee decimal.Decimal, expectedReturnDate, actualReturnDate time.Time) decimal.Decimal {
	daysLate := DaysBetween(expectedReturnDate, actualReturnDate)
	return dailyFee.Mul(decimal.NewFromInt(daysLate * FineMultiplier)).Truncate(0)
}
