package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DepositConfirmation represents a row of the deposit_confirmations table.
type DepositConfirmation struct {
	RequestID   string          `db:"request_id"`
	Amount      decimal.Decimal `db:"amount"`
	Reference   string          `db:"reference"`
	Source      string          `db:"source"`
	ConfirmedBy string          `db:"confirmed_by"`
	ConfirmedAt time.Time       `db:"confirmed_at"`
}
