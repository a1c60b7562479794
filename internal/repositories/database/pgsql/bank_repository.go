package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/agent_onboarding_portal/internal/apperrors"
	"github.com/SscSPs/agent_onboarding_portal/internal/core/domain"
	portsrepo "github.com/SscSPs/agent_onboarding_portal/internal/core/ports/repositories"
	"github.com/SscSPs/agent_onboarding_portal/internal/models"
	"github.com/SscSPs/agent_onboarding_portal/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxBankRepository struct {
	BaseRepository
}

func newPgxBankRepository(db *pgxpool.Pool) portsrepo.BankRepositoryFacade {
	return &PgxBankRepository{BaseRepository: BaseRepository{Pool: db}}
}

var _ portsrepo.BankRepositoryFacade = (*PgxBankRepository)(nil)

const (
	selectBankFields   = `bank_id, name, code, is_active, created_at, created_by, last_updated_at, last_updated_by, version`
	selectAgencyFields = `agency_id, bank_id, name, city, is_active, created_at, created_by, last_updated_at, last_updated_by, version`

	insertBankQuery = `
		INSERT INTO banks (` + selectBankFields + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9);
	`
	findBankByIDQuery = `SELECT ` + selectBankFields + ` FROM banks WHERE bank_id = $1;`
	listBanksQuery    = `SELECT ` + selectBankFields + ` FROM banks ORDER BY name, bank_id LIMIT $1 OFFSET $2;`

	insertAgencyQuery = `
		INSERT INTO agencies (` + selectAgencyFields + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10);
	`
	findAgencyByIDQuery     = `SELECT ` + selectAgencyFields + ` FROM agencies WHERE agency_id = $1;`
	listAgenciesByBankQuery = `SELECT ` + selectAgencyFields + ` FROM agencies WHERE bank_id = $1 ORDER BY name, agency_id;`
)

func scanBank(row pgx.Row) (*models.Bank, error) {
	var m models.Bank
	if err := row.Scan(&m.BankID, &m.Name, &m.Code, &m.IsActive,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy, &m.Version); err != nil {
		return nil, err
	}
	return &m, nil
}

func scanAgency(row pgx.Row) (*models.Agency, error) {
	var m models.Agency
	if err := row.Scan(&m.AgencyID, &m.BankID, &m.Name, &m.City, &m.IsActive,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy, &m.Version); err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *PgxBankRepository) SaveBank(ctx context.Context, bank domain.Bank) error {
	m := mapping.ToModelBank(bank)
	_, err := r.Pool.Exec(ctx, insertBankQuery, m.BankID, m.Name, m.Code, m.IsActive,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy, m.Version)
	if err != nil {
		return mapWriteError(err, "bank")
	}
	return nil
}

func (r *PgxBankRepository) FindBankByID(ctx context.Context, bankID string) (*domain.Bank, error) {
	m, err := scanBank(r.Pool.QueryRow(ctx, findBankByIDQuery, bankID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("bank not found")
		}
		return nil, fmt.Errorf("failed to find bank %s: %w", bankID, err)
	}
	bank := mapping.ToDomainBank(*m)
	return &bank, nil
}

func (r *PgxBankRepository) ListBanks(ctx context.Context, limit int, offset int) ([]domain.Bank, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.Pool.Query(ctx, listBanksQuery, limit, max(offset, 0))
	if err != nil {
		return nil, fmt.Errorf("failed to query banks: %w", err)
	}
	defer rows.Close()

	banks := []domain.Bank{}
	for rows.Next() {
		m, err := scanBank(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan bank row: %w", err)
		}
		banks = append(banks, mapping.ToDomainBank(*m))
	}
	return banks, rows.Err()
}

func (r *PgxBankRepository) SaveAgency(ctx context.Context, agency domain.Agency) error {
	m := mapping.ToModelAgency(agency)
	_, err := r.Pool.Exec(ctx, insertAgencyQuery, m.AgencyID, m.BankID, m.Name, m.City, m.IsActive,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy, m.Version)
	if err != nil {
		return mapWriteError(err, "agency")
	}
	return nil
}

func (r *PgxBankRepository) FindAgencyByID(ctx context.Context, agencyID string) (*domain.Agency, error) {
	m, err := scanAgency(r.Pool.QueryRow(ctx, findAgencyByIDQuery, agencyID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("agency not found")
		}
		return nil, fmt.Errorf("failed to find agency %s: %w", agencyID, err)
	}
	agency := mapping.ToDomainAgency(*m)
	return &agency, nil
}

func (r *PgxBankRepository) ListAgenciesByBank(ctx context.Context, bankID string) ([]domain.Agency, error) {
	rows, err := r.Pool.Query(ctx, listAgenciesByBankQuery, bankID)
	if err != nil {
		return nil, fmt.Errorf("failed to query agencies: %w", err)
	}
	defer rows.Close()

	agencies := []domain.Agency{}
	for rows.Next() {
		m, err := scanAgency(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan agency row: %w", err)
		}
		agencies = append(agencies, mapping.ToDomainAgency(*m))
	}
	return agencies, rows.Err()
}
