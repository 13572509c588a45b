package event_bus

import (
	"github.com/moneta/moneta/internal/dates"
	"github.com/shopspring/decimal"
)

const (
	TransactionCreatedEvent EventType = "transaction.created"
	RecurringGeneratedEvent EventType = "recurring.generated"
)

// TransactionCreated is published whenever a transaction is persisted,
// whether entered by the user or materialized from a recurring template.
type TransactionCreated struct {
	Uid      string
	Type     string
	Amount   decimal.Decimal
	BucketId int
	Date     dates.Date
}

// RecurringGenerated is published after a reconcile pass that materialized
// at least one transaction for a template.
type RecurringGenerated struct {
	TemplateId int
	Created    int
	Watermark  dates.Date
}
