package agency

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"attestry/internal/registry/models"
	id "attestry/pkg/domain"
	"attestry/pkg/platform/sentinel"
)

// PostgresStore is the durable agency store. Execute uses SELECT ... FOR
// UPDATE to give the same atomic validate-then-mutate guarantee as the
// in-memory mutex.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the agencies table when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS agencies (
			address             TEXT PRIMARY KEY,
			registration_number BIGINT NOT NULL UNIQUE,
			name                TEXT NOT NULL,
			status              TEXT NOT NULL,
			enrolled_at         TIMESTAMPTZ NOT NULL,
			updated_at          TIMESTAMPTZ NOT NULL,
			seq                 BIGSERIAL
		)`)
	if err != nil {
		return fmt.Errorf("ensure agencies schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, agency *models.Agency) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO agencies (address, registration_number, name, status, enrolled_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		string(agency.Address), int64(agency.RegistrationNumber), agency.Name,
		string(agency.Status), agency.EnrolledAt, agency.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			if pqErr.Constraint == "agencies_pkey" {
				return sentinel.ErrAlreadyUsed
			}
			return sentinel.ErrInvalidState
		}
		return fmt.Errorf("insert agency: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByAddress(ctx context.Context, address id.AgencyID) (*models.Agency, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT address, registration_number, name, status, enrolled_at, updated_at
		FROM agencies WHERE address = $1`, string(address))
	return scanAgency(row)
}

func (s *PostgresStore) Execute(ctx context.Context, address id.AgencyID, validate func(*models.Agency) error, mutate func(*models.Agency)) (*models.Agency, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `
		SELECT address, registration_number, name, status, enrolled_at, updated_at
		FROM agencies WHERE address = $1 FOR UPDATE`, string(address))
	agency, err := scanAgency(row)
	if err != nil {
		return nil, err
	}
	if err := validate(agency); err != nil {
		return nil, err
	}
	mutate(agency)

	_, err = tx.ExecContext(ctx, `
		UPDATE agencies SET name = $2, status = $3, updated_at = $4 WHERE address = $1`,
		string(agency.Address), agency.Name, string(agency.Status), agency.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("update agency: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit agency update: %w", err)
	}
	return agency, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Agency, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT address, registration_number, name, status, enrolled_at, updated_at
		FROM agencies ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list agencies: %w", err)
	}
	defer rows.Close()

	var out []*models.Agency
	for rows.Next() {
		agency, err := scanAgency(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, agency)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAgency(row rowScanner) (*models.Agency, error) {
	var (
		agency models.Agency
		addr   string
		regnum int64
		status string
	)
	err := row.Scan(&addr, &regnum, &agency.Name, &status, &agency.EnrolledAt, &agency.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan agency: %w", err)
	}
	agency.Address = id.AgencyID(addr)
	agency.RegistrationNumber = id.RegistrationNumber(regnum)
	agency.Status = models.AgencyStatus(status)
	return &agency, nil
}
