package repository

import (
	"context"

	"apexbox/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

type SetupRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewSetupRepository(db *pgxpool.Pool, logger *zap.Logger) *SetupRepository {
	return &SetupRepository{
		db:     db,
		logger: logger,
	}
}

// InsertIfAbsent writes the record unless one with the same fingerprint
// already exists. The whole check-and-insert is a single statement guarded
// by the UNIQUE constraint on fingerprint, so two concurrent calls with the
// same fingerprint can never both return true. Returns true when a new row
// was written.
func (r *SetupRepository) InsertIfAbsent(ctx context.Context, rec *models.SetupRecord) (bool, error) {
	query := squirrel.Insert("setups").
		Columns("id", "car", "track", "url", "source", "notes", "fingerprint", "created_at").
		Values(rec.ID, rec.Car, rec.Track, rec.URL, rec.Source, rec.Notes, rec.Fingerprint, rec.CreatedAt).
		Suffix("ON CONFLICT (fingerprint) DO NOTHING").
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return false, err
	}

	tag, err := r.db.Exec(ctx, sql, args...)
	if err != nil {
		return false, err
	}

	return tag.RowsAffected() == 1, nil
}

// Exists reports whether a record with the given fingerprint is stored.
// Callers that intend to insert should not check first; InsertIfAbsent is
// the race-free path.
func (r *SetupRepository) Exists(ctx context.Context, fingerprint string) (bool, error) {
	query := squirrel.Select("1").
		From("setups").
		Where(squirrel.Eq{"fingerprint": fingerprint}).
		Limit(1).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return false, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return false, err
	}
	defer rows.Close()

	return rows.Next(), rows.Err()
}

// Recent returns the newest records, ordered by creation time descending.
func (r *SetupRepository) Recent(ctx context.Context, limit int) ([]*models.SetupRecord, error) {
	query := squirrel.Select("id", "car", "track", "url", "source", "notes", "fingerprint", "created_at").
		From("setups").
		OrderBy("created_at DESC").
		Limit(uint64(limit)).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []*models.SetupRecord
	for rows.Next() {
		var rec models.SetupRecord
		if err := rows.Scan(
			&rec.ID, &rec.Car, &rec.Track, &rec.URL, &rec.Source, &rec.Notes, &rec.Fingerprint, &rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, &rec)
	}

	return records, rows.Err()
}
