package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"storefront/internal/session"
	myErr "storefront/internal/types/errors"

	"go.uber.org/zap"
)

// SessionHandler выдаёт анонимные сессии посетителям витрины
type SessionHandler struct {
	Logger         *zap.SugaredLogger
	SessionManager session.SessionRepo
}

func NewSessionHandler(l *zap.SugaredLogger, sm session.SessionRepo) *SessionHandler {
	return &SessionHandler{
		Logger:         l,
		SessionManager: sm,
	}
}

type SessionResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Create handles POST /api/session
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	sess, token, err := h.SessionManager.CreateSession(r.Context())
	if err != nil {
		myErr.SendErrorTo(w, err, http.StatusInternalServerError, h.Logger)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(SessionResponse{Token: token, ExpiresAt: sess.EndTime}); err != nil {
		h.Logger.Warnw("error writing response", "err", err)
		return
	}

	h.Logger.Infof("created session %s", sess.ID)
}
