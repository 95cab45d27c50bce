package contextutil

import (
	"context"

	"storefront/internal/middleware"
)

// GetScopeFromContext извлекает scope посетителя (ID его сессии) из контекста
func GetScopeFromContext(ctx context.Context) (string, bool) {
	sess, ok := middleware.GetSessionFromContext(ctx)
	if !ok || sess == nil {
		return "", false
	}
	return sess.ID, true
}
