package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/yourorg/dca-backtest-platform/services/historical-data-service/internal/model"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// SymbolRepository handles database operations for symbols
type SymbolRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewSymbolRepository creates a new symbol repository
func NewSymbolRepository(db *sqlx.DB, logger *zap.Logger) *SymbolRepository {
	return &SymbolRepository{
		db:     db,
		logger: logger,
	}
}

// GetSymbolByID retrieves a symbol by ID, nil when it does not exist
func (r *SymbolRepository) GetSymbolByID(ctx context.Context, id int) (*model.Symbol, error) {
	query := `
		SELECT
			id, symbol, name, exchange, asset_type,
			is_active, data_available, created_at, updated_at
		FROM symbols
		WHERE id = $1
	`

	var symbol model.Symbol
	err := r.db.GetContext(ctx, &symbol, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		r.logger.Error("Failed to get symbol by ID", zap.Error(err), zap.Int("id", id))
		return nil, err
	}

	return &symbol, nil
}
