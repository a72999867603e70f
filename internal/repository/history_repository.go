package repository

import (
	"context"

	"apexbox/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// HistoryRepository stores completed chat exchanges. The table is
// append-only; there is no update or delete path.
type HistoryRepository struct {
	db     *pgxpool.Pool
	logger *zap.Logger
}

func NewHistoryRepository(db *pgxpool.Pool, logger *zap.Logger) *HistoryRepository {
	return &HistoryRepository{
		db:     db,
		logger: logger,
	}
}

func (r *HistoryRepository) Append(ctx context.Context, ex *models.ChatExchange) error {
	query := squirrel.Insert("chat_history").
		Columns("id", "prompt", "response", "created_at").
		Values(ex.ID, ex.Prompt, ex.Response, ex.CreatedAt).
		PlaceholderFormat(squirrel.Dollar)

	sql, args, err := query.ToSql()
	if err != nil {
		return err
	}

	_, err = r.db.Exec(ctx, sql, args...)
	return err
}

func (r *HistoryRepository) Recent(ctx context.Context, limit int) ([]*models.ChatExchange, error) {
	query := squirrel.Select("id", "prompt", "response", "created_at").
		From("chat_history").
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

	var exchanges []*models.ChatExchange
	for rows.Next() {
		var ex models.ChatExchange
		if err := rows.Scan(&ex.ID, &ex.Prompt, &ex.Response, &ex.CreatedAt); err != nil {
			return nil, err
		}
		exchanges = append(exchanges, &ex)
	}

	return exchanges, rows.Err()
}
