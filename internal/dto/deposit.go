package dto

import (
	"github.com/shopspring/decimal"
)

// ConfirmDepositRequest is the bank-side confirmation that share capital arrived.
type ConfirmDepositRequest struct {
	Amount    decimal.Decimal `json:"amount"`
	Reference string          `json:"reference" binding:"required"`
}

// DepositSignal is the message published on the deposit confirmation topic.
type DepositSignal struct {
	RequestID   string          `json:"requestID"`
	Amount      decimal.Decimal `json:"amount"`
	Reference   string          `json:"reference"`
	ConfirmedBy string          `json:"confirmedBy"`
}
