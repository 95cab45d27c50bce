package middleware

import (
	"context"
	"net/http"

	"storefront/internal/session"
	myErr "storefront/internal/types/errors"

	"go.uber.org/zap"
)

type SessKey string

var sessKey SessKey = "sessionKey"

// Scope пускает дальше только запросы с действующей сессией посетителя
// и продлевает эту сессию
func Scope(sm session.SessionRepo, logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Проверка сессии посетителя
			sess, err := sm.CheckSession(r)
			if err != nil {
				myErr.SendErrorTo(w, err, http.StatusUnauthorized, logger)
				return
			}

			if err := sm.ExtendSession(r.Context(), sess.ID); err != nil {
				logger.Warnw("failed to extend session", "sessionID", sess.ID, "err", err)
			}

			// Добавляем сессию в контекст и передаем дальше
			ctx := ContextWithSession(r.Context(), sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalScope кладет сессию в контекст, если токен валиден, но не требует его.
// Нужен публичным ручкам каталога, чтобы события аналитики знали посетителя.
func OptionalScope(sm session.SessionRepo) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Header.Get("Authorization") == "" {
				next.ServeHTTP(w, r)
				return
			}

			sess, err := sm.CheckSession(r)
			if err != nil {
				next.ServeHTTP(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(ContextWithSession(r.Context(), sess)))
		})
	}
}

func ContextWithSession(ctx context.Context, s *session.Session) context.Context {
	// создаем новый контекст с нашим ключом и сессией
	return context.WithValue(ctx, sessKey, s)
}

func GetSessionFromContext(ctx context.Context) (*session.Session, bool) {
	s, ok := ctx.Value(sessKey).(*session.Session)
	return s, ok
}
