package analytics

import (
	"context"
	"database/sql"
	"sort"

	"go.uber.org/zap"
)

const (
	upsertPopularity = `
			INSERT INTO product_popularity (product_id, weight)
			VALUES ($1, $2)
			ON CONFLICT (product_id)
			DO UPDATE SET weight = product_popularity.weight + EXCLUDED.weight
		`
	upsertScopeInterest = `
			INSERT INTO scope_interest (scope_id, product_id, weight)
			VALUES ($1, $2, $3)
			ON CONFLICT (scope_id, product_id)
			DO UPDATE SET weight = scope_interest.weight + EXCLUDED.weight
		`
)

type Repository struct {
	db     *sql.DB
	logger *zap.SugaredLogger
}

func NewRepository(db *sql.DB, logger *zap.SugaredLogger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// UpdateWeights прибавляет веса к популярности товаров и, если scope известен,
// к интересам посетителя. Всё в одной транзакции.
func (r *Repository) UpdateWeights(ctx context.Context, scopeID string, weights map[string]int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// фиксированный порядок, чтобы параллельные транзакции брали блокировки одинаково
	ids := make([]string, 0, len(weights))
	for id := range weights {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, upsertPopularity, id, weights[id]); err != nil {
			r.logger.Errorw("failed to update product popularity", "product_id", id, "err", err)
			return err
		}

		if scopeID == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, upsertScopeInterest, scopeID, id, weights[id]); err != nil {
			r.logger.Errorw("failed to update scope interest", "scope_id", scopeID, "product_id", id, "err", err)
			return err
		}
	}

	return tx.Commit()
}

func (r *Repository) GetTopProducts(ctx context.Context, limit int) ([]ProductScore, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT product_id, weight
		FROM product_popularity
		ORDER BY weight DESC, product_id
		LIMIT $1
	`, limit)

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scores []ProductScore
	for rows.Next() {
		var s ProductScore
		if err := rows.Scan(&s.ProductID, &s.Weight); err != nil {
			return nil, err
		}
		scores = append(scores, s)
	}

	return scores, rows.Err()
}

func (r *Repository) GetScopePreferences(ctx context.Context, scopeID string, limit int) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT product_id
		FROM scope_interest
		WHERE scope_id = $1
		ORDER BY weight DESC
		LIMIT $2
	`, scopeID, limit)

	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		products = append(products, id)
	}

	return products, rows.Err()
}
