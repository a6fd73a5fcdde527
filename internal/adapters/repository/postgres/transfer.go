package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"object-gateway/internal/core/domain"
	"object-gateway/internal/core/port"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// SQLQuerier is satisfied by both *sql.DB and *sql.Tx
type SQLQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type sqlTransferRepository struct {
	db SQLQuerier
}

// NewSQLTransferRepository creates a new sqlTransferRepository
func NewSQLTransferRepository(db SQLQuerier) port.TransferRepository {
	return &sqlTransferRepository{db: db}
}

const transferColumns = `id, direction, bucket, object_key, state, total_bytes, transferred_bytes,
	part_count, provider_upload_id, error, created_at, updated_at`

// Create inserts a transfer record
func (s *sqlTransferRepository) Create(ctx context.Context, record domain.TransferRecord) error {
	query := `
		INSERT INTO transfers (` + transferColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err := s.db.ExecContext(
		ctx,
		query,
		record.ID,
		record.Direction,
		record.Location.Bucket,
		record.Location.Key,
		record.State,
		record.TotalBytes,
		record.TransferredBytes,
		record.PartCount,
		record.ProviderUploadID,
		record.Error,
		record.CreatedAt,
		record.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("transfer %s already recorded: %w", record.ID, err)
		}
		return err
	}
	return nil
}

func (s *sqlTransferRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.TransferRecord, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers WHERE id = $1`

	record, err := scanTransfer(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrTransferNotFound
		}
		return nil, err
	}
	return record, nil
}

// UpdateState moves a transfer to state. Terminal records are never rewritten.
func (s *sqlTransferRepository) UpdateState(ctx context.Context, id uuid.UUID, state domain.TransferState, transferredBytes int64, errMsg string) error {
	query := `
		UPDATE transfers
		SET state = $1, transferred_bytes = GREATEST(transferred_bytes, $2), error = $3, updated_at = now()
		WHERE id = $4 AND state IN ('planned', 'in_progress')`

	result, err := s.db.ExecContext(ctx, query, state, transferredBytes, errMsg, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return fmt.Errorf("%w: %s", domain.ErrTransferNotFound, id)
	}
	return nil
}

// UpdateProviderUploadID stores the multipart session id of a transfer
func (s *sqlTransferRepository) UpdateProviderUploadID(ctx context.Context, id uuid.UUID, uploadID string) error {
	query := `UPDATE transfers SET provider_upload_id = $1, updated_at = now() WHERE id = $2`

	result, err := s.db.ExecContext(ctx, query, uploadID, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return fmt.Errorf("%w: %s", domain.ErrTransferNotFound, id)
	}
	return nil
}

// UpdateProgress records the bytes moved so far by a running transfer and keeps it out of the stale sweep
func (s *sqlTransferRepository) UpdateProgress(ctx context.Context, id uuid.UUID, transferredBytes int64) error {
	query := `
		UPDATE transfers
		SET transferred_bytes = GREATEST(transferred_bytes, $1), updated_at = now()
		WHERE id = $2 AND state = 'in_progress'`

	result, err := s.db.ExecContext(ctx, query, transferredBytes, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return fmt.Errorf("%w: %s", domain.ErrTransferNotFound, id)
	}
	return nil
}

// FindStale returns active transfers not updated since updatedBefore
func (s *sqlTransferRepository) FindStale(ctx context.Context, updatedBefore time.Time) ([]domain.TransferRecord, error) {
	query := `
		SELECT ` + transferColumns + `
		FROM transfers
		WHERE state IN ('planned', 'in_progress') AND updated_at < $1
		ORDER BY updated_at`

	rows, err := s.db.QueryContext(ctx, query, updatedBefore)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.TransferRecord
	for rows.Next() {
		record, err := scanTransfer(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return records, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTransfer(row scanner) (*domain.TransferRecord, error) {
	var r dbTransfer
	err := row.Scan(
		&r.ID,
		&r.Direction,
		&r.Bucket,
		&r.ObjectKey,
		&r.State,
		&r.TotalBytes,
		&r.TransferredBytes,
		&r.PartCount,
		&r.ProviderUploadID,
		&r.Error,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return r.ToDomain(), nil
}

type dbTransfer struct {
	ID               uuid.UUID `db:"id"`
	Direction        string    `db:"direction"`
	Bucket           string    `db:"bucket"`
	ObjectKey        string    `db:"object_key"`
	State            string    `db:"state"`
	TotalBytes       int64     `db:"total_bytes"`
	TransferredBytes int64     `db:"transferred_bytes"`
	PartCount        int       `db:"part_count"`
	ProviderUploadID string    `db:"provider_upload_id"`
	Error            string    `db:"error"`
	CreatedAt        time.Time `db:"created_at"`
	UpdatedAt        time.Time `db:"updated_at"`
}

// ToDomain converts db obj to domain
func (t *dbTransfer) ToDomain() *domain.TransferRecord {
	return &domain.TransferRecord{
		ID:               t.ID,
		Direction:        domain.TransferDirection(t.Direction),
		Location:         domain.ObjectLocation{Bucket: t.Bucket, Key: t.ObjectKey},
		State:            domain.TransferState(t.State),
		TotalBytes:       t.TotalBytes,
		TransferredBytes: t.TransferredBytes,
		PartCount:        t.PartCount,
		ProviderUploadID: t.ProviderUploadID,
		Error:            t.Error,
		CreatedAt:        t.CreatedAt,
		UpdatedAt:        t.UpdatedAt,
	}
}
