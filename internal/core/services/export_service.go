package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/SscSPs/agent_onboarding_portal/internal/apperrors"
	"github.com/SscSPs/agent_onboarding_portal/internal/core/domain"
	portsrepo "github.com/SscSPs/agent_onboarding_portal/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/agent_onboarding_portal/internal/core/ports/services"
	"github.com/xuri/excelize/v2"
)

const (
	requestsSheet = "Requests"
	historySheet  = "History"
)

var (
	requestsHeader = []any{"Request ID", "Agency ID", "Agent ID", "Status", "Status code", "Company", "SIRET", "Contact email", "Submitted at", "Created at", "Last updated at"}
	historyHeader  = []any{"Request ID", "From", "To", "Action", "User ID", "Role", "Comment", "At"}
)

type exportService struct {
	BaseService
	requestRepo portsrepo.OnboardingRequestReader
}

// NewExportService creates a new XLSX export service
func NewExportService(requestRepo portsrepo.OnboardingRequestReader) portssvc.ExportSvc {
	return &exportService{requestRepo: requestRepo}
}

var _ portssvc.ExportSvc = (*exportService)(nil)

func (s *exportService) ExportRequests(ctx context.Context, actor domain.Actor, bankID string, w io.Writer) error {
	if actor.Role == domain.RoleAgent {
		return apperrors.NewForbiddenError("agents cannot export requests")
	}
	if !actor.InBank(bankID) {
		return apperrors.NewForbiddenError("cannot export another bank")
	}

	requests, err := s.requestRepo.ListRequestsForExport(ctx, bankID)
	if err != nil {
		return fmt.Errorf("failed to list requests for export: %w", err)
	}
	ids := make([]string, len(requests))
	for i, r := range requests {
		ids[i] = r.RequestID
	}
	history, err := s.requestRepo.ListStatusHistoryForRequests(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to list history for export: %w", err)
	}

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", requestsSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if _, err := f.NewSheet(historySheet); err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}

	if err := writeRow(f, requestsSheet, 1, requestsHeader); err != nil {
		return err
	}
	if err := writeRow(f, historySheet, 1, historyHeader); err != nil {
		return err
	}

	historyRow := 2
	for i, r := range requests {
		if err := writeRow(f, requestsSheet, i+2, requestRow(r)); err != nil {
			return err
		}
		for _, e := range history[r.RequestID] {
			if err := writeRow(f, historySheet, historyRow, historyRowValues(e)); err != nil {
				return err
			}
			historyRow++
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	s.LogInfo(ctx, "Requests exported", slog.String("bank_id", bankID), slog.Int("count", len(requests)))
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write %s row %d: %w", sheet, row, err)
	}
	return nil
}

func requestRow(r domain.OnboardingRequest) []any {
	var company, siret, email string
	if r.BusinessInfo != nil {
		company = r.BusinessInfo.CompanyName
		siret = r.BusinessInfo.Siret
	}
	if r.PersonalInfo != nil {
		email = r.PersonalInfo.Email
	}
	return []any{
		r.RequestID, r.AgencyID, r.AgentID, r.Status.String(), int(r.Status),
		company, siret, email, formatTime(r.SubmittedAt), r.CreatedAt.Format(time.RFC3339), r.LastUpdatedAt.Format(time.RFC3339),
	}
}

func historyRowValues(e domain.StatusHistoryEntry) []any {
	from := ""
	if e.PreviousStatus != nil {
		from = e.PreviousStatus.String()
	}
	comment := ""
	if e.Comment != nil {
		comment = *e.Comment
	}
	return []any{e.RequestID, from, e.Status.String(), e.Action, e.UserID, string(e.Role), comment, e.CreatedAt.Format(time.RFC3339)}
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}
