package domain

import (
	"fmt"
)

// RequestStatus is the integer-coded workflow state of an onboarding request.
type RequestStatus int

const (
	StatusDraft            RequestStatus = 0
	StatusCompleted        RequestStatus = 1
	StatusSigned           RequestStatus = 2
	StatusSubmitted        RequestStatus = 3
	StatusCorrectionN0     RequestStatus = 4
	StatusClientCorrected  RequestStatus = 5
	StatusCTOReview        RequestStatus = 6
	StatusCorrectionN1     RequestStatus = 7
	StatusCTOCorrectionN1  RequestStatus = 8
	StatusCTON2Review      RequestStatus = 9
	StatusN2Review         RequestStatus = 10
	StatusCorrectionN2     RequestStatus = 11
	StatusN2Correction     RequestStatus = 12
	StatusCapitalPending   RequestStatus = 13
	StatusCapitalPendingN1 RequestStatus = 14
	StatusCapitalPendingN2 RequestStatus = 15
	StatusInitialTransfer  RequestStatus = 16
	StatusKbisPending      RequestStatus = 17
	StatusKbisReceived     RequestStatus = 18
	StatusBankSigned       RequestStatus = 19
	StatusAccountOpened    RequestStatus = 20
	StatusRejectedN0       RequestStatus = 21
	StatusRejectedN1       RequestStatus = 22
	StatusRejectedN2       RequestStatus = 23
	StatusClosed           RequestStatus = 24
)

var statusCodes = [...]string{
	StatusDraft:            "DRAFT",
	StatusCompleted:        "COMPLETED",
	StatusSigned:           "SIGNED",
	StatusSubmitted:        "SUBMITTED",
	StatusCorrectionN0:     "CORRECTION_N0",
	StatusClientCorrected:  "CLIENT_CORRECTED",
	StatusCTOReview:        "CTO_REVIEW",
	StatusCorrectionN1:     "CORRECTION_N1",
	StatusCTOCorrectionN1:  "CTO_CORRECTION_N1",
	StatusCTON2Review:      "CTO_N2_REVIEW",
	StatusN2Review:         "N2_REVIEW",
	StatusCorrectionN2:     "CORRECTION_N2",
	StatusN2Correction:     "N2_CORRECTION",
	StatusCapitalPending:   "CAPITAL_PENDING",
	StatusCapitalPendingN1: "CAPITAL_PENDING_N1",
	StatusCapitalPendingN2: "CAPITAL_PENDING_N2",
	StatusInitialTransfer:  "INITIAL_TRANSFER",
	StatusKbisPending:      "KBIS_PENDING",
	StatusKbisReceived:     "KBIS_RECEIVED",
	StatusBankSigned:       "BANK_SIGNED",
	StatusAccountOpened:    "ACCOUNT_OPENED",
	StatusRejectedN0:       "REJECTED_N0",
	StatusRejectedN1:       "REJECTED_N1",
	StatusRejectedN2:       "REJECTED_N2",
	StatusClosed:           "CLOSED",
}

// AllStatuses returns every status in code order.
func AllStatuses() []RequestStatus {
	out := make([]RequestStatus, len(statusCodes))
	for i := range statusCodes {
		out[i] = RequestStatus(i)
	}
	return out
}

// IsValid reports whether s is a member of the enumeration.
func (s RequestStatus) IsValid() bool {
	return s >= 0 && int(s) < len(statusCodes)
}

func (s RequestStatus) String() string {
	if !s.IsValid() {
		return fmt.Sprintf("RequestStatus(%d)", int(s))
	}
	return statusCodes[s]
}

// ParseRequestStatus converts a stable code such as "CTO_REVIEW" to its status.
func ParseRequestStatus(code string) (RequestStatus, error) {
	for i, c := range statusCodes {
		if c == code {
			return RequestStatus(i), nil
		}
	}
	return 0, fmt.Errorf("unknown request status %q", code)
}

// MarshalText encodes the status as its stable code.
func (s RequestStatus) MarshalText() ([]byte, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("invalid request status %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes a stable code.
func (s *RequestStatus) UnmarshalText(text []byte) error {
	parsed, err := ParseRequestStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
