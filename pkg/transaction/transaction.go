package transaction

import (
	"github.com/moneta/moneta/internal/dates"
	"github.com/shopspring/decimal"
)

// Type is the kind of money movement a transaction records.
type Type string

const (
	TypeExpense    Type = "expense"
	TypeIncome     Type = "income"
	TypeInvestment Type = "investment"
)

// Valid reports whether t is one of the three known transaction types.
func (t Type) Valid() bool {
	switch t {
	case TypeExpense, TypeIncome, TypeInvestment:
		return true
	}
	return false
}

type Transaction struct {
	Uid         string
	Type        Type
	Amount      decimal.Decimal
	Description string
	// BucketId groups expense transactions; 0 means no bucket.
	BucketId int
	Date     dates.Date
	// IsRecurring marks transactions materialized from a recurring template.
	IsRecurring bool
	// RecurringId is a lookup back-reference to the generating template;
	// 0 means the transaction was entered by hand. It is not an ownership
	// edge: deleting the template keeps the transaction unless the caller
	// explicitly asks for a cascade.
	RecurringId int
	Tags        []string
	Notes       string
}

// RecurringFields is the subset of transaction fields rewritten when a
// recurring template edit is propagated to already-materialized history.
// Dates are never rewritten.
type RecurringFields struct {
	Type        Type
	Amount      decimal.Decimal
	Description string
	BucketId    int
}

// Filter narrows List results. Zero values mean "no constraint".
type Filter struct {
	From     dates.Date
	To       dates.Date
	BucketId int
	Type     Type
}
