package storage

import (
	"context"
	"database/sql"
	"errors"

	myErr "storefront/internal/types/errors"

	"go.uber.org/zap"
)

// PostgresSlot хранит слоты в таблице storage_slot
type PostgresSlot struct {
	DB     *sql.DB
	Logger *zap.SugaredLogger
}

func NewPostgresSlot(db *sql.DB, logger *zap.SugaredLogger) *PostgresSlot {
	return &PostgresSlot{
		DB:     db,
		Logger: logger,
	}
}

// Get достаёт значение слота
func (ps *PostgresSlot) Get(ctx context.Context, scope, key string) (string, error) {
	query := `
	SELECT value FROM storage_slot
	WHERE scope = $1 AND key = $2
`
	var value string
	err := ps.DB.QueryRowContext(ctx, query, scope, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", myErr.ErrNotFound
		}

		ps.Logger.Errorf("Ошибка при чтении слота %s/%s: %v", scope, key, err)
		return "", myErr.ErrDBInternal
	}

	return value, nil
}

// Set перезаписывает значение слота целиком
func (ps *PostgresSlot) Set(ctx context.Context, scope, key, value string) error {
	query := `
	INSERT INTO storage_slot(scope, key, value, updated_at)
	VALUES ($1, $2, $3, NOW()) ON CONFLICT (scope, key)
	DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
`
	_, err := ps.DB.ExecContext(ctx, query, scope, key, value)
	if err != nil {
		ps.Logger.Errorf("Ошибка при записи слота %s/%s: %v", scope, key, err)
		return myErr.ErrDBInternal
	}

	return nil
}
