package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DepositSource identifies where a deposit confirmation came from.
type DepositSource string

const (
	DepositSourceAPI   DepositSource = "api"
	DepositSourceKafka DepositSource = "kafka"
)

// DepositConfirmation is the banking-side assertion that capital was deposited for a request.
type DepositConfirmation struct {
	RequestID   string          `json:"requestID"`
	Amount      decimal.Decimal `json:"amount"`
	Reference   string          `json:"reference"`
	Source      DepositSource   `json:"source"`
	ConfirmedBy string          `json:"confirmedBy"`
	ConfirmedAt time.Time       `json:"confirmedAt"`
}
