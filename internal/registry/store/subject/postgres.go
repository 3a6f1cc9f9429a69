package subject

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

// PostgresStore is the durable subject store. Execute uses SELECT ... FOR
// UPDATE so score changes and the ban transition are atomic per record.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the subjects table when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS subjects (
			id                 TEXT PRIMARY KEY,
			profile_hash       BYTEA NOT NULL,
			name               TEXT NOT NULL,
			gender             TEXT NOT NULL,
			date_of_birth      TEXT NOT NULL,
			verification_score INT NOT NULL,
			status             TEXT NOT NULL,
			registered_at      TIMESTAMPTZ NOT NULL,
			updated_at         TIMESTAMPTZ NOT NULL,
			seq                BIGSERIAL
		)`)
	if err != nil {
		return fmt.Errorf("ensure subjects schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, subject *models.Subject) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO subjects (id, profile_hash, name, gender, date_of_birth, verification_score, status, registered_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		string(subject.ID), subject.ProfileHash[:], subject.Name, string(subject.Gender),
		subject.DateOfBirth, subject.VerificationScore, string(subject.Status),
		subject.RegisteredAt, subject.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return sentinel.ErrAlreadyUsed
		}
		return fmt.Errorf("insert subject: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, subjectID id.SubjectID) (*models.Subject, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, profile_hash, name, gender, date_of_birth, verification_score, status, registered_at, updated_at
		FROM subjects WHERE id = $1`, string(subjectID))
	return scanSubject(row)
}

func (s *PostgresStore) Execute(ctx context.Context, subjectID id.SubjectID, validate func(*models.Subject) error, mutate func(*models.Subject)) (*models.Subject, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	row := tx.QueryRowContext(ctx, `
		SELECT id, profile_hash, name, gender, date_of_birth, verification_score, status, registered_at, updated_at
		FROM subjects WHERE id = $1 FOR UPDATE`, string(subjectID))
	subject, err := scanSubject(row)
	if err != nil {
		return nil, err
	}
	if err := validate(subject); err != nil {
		return nil, err
	}
	mutate(subject)

	_, err = tx.ExecContext(ctx, `
		UPDATE subjects SET verification_score = $2, status = $3, updated_at = $4 WHERE id = $1`,
		string(subject.ID), subject.VerificationScore, string(subject.Status), subject.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("update subject: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit subject update: %w", err)
	}
	return subject, nil
}

func (s *PostgresStore) List(ctx context.Context) ([]*models.Subject, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, profile_hash, name, gender, date_of_birth, verification_score, status, registered_at, updated_at
		FROM subjects ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	defer rows.Close()

	var out []*models.Subject
	for rows.Next() {
		subject, err := scanSubject(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, subject)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSubject(row rowScanner) (*models.Subject, error) {
	var (
		subject models.Subject
		key     string
		hash    []byte
		gender  string
		status  string
	)
	err := row.Scan(&key, &hash, &subject.Name, &gender, &subject.DateOfBirth,
		&subject.VerificationScore, &status, &subject.RegisteredAt, &subject.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan subject: %w", err)
	}
	subject.ID = id.SubjectID(key)
	copy(subject.ProfileHash[:], hash)
	subject.Gender = models.Gender(gender)
	subject.Status = models.SubjectStatus(status)
	return &subject, nil
}
