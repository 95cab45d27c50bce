package errors

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

var (
	ErrDBInternal = errors.New("database internal error")
	ErrNotFound   = errors.New("record not found")

	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionIsExpired = errors.New("session is expired")
	ErrNoAuth           = errors.New("authorization required")

	ErrBadID              = errors.New("bad id")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInvalidJSONPayload = errors.New("invalid JSON payload")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrEmptyCart          = errors.New("cart is empty")

	ErrMalformedSnapshot = errors.New("malformed cart snapshot")
	ErrCartUnavailable   = errors.New("cart storage unavailable")

	ErrCatalogUnavailable = errors.New("catalog service unavailable")
	ErrCatalogResponse    = errors.New("catalog service error")
	ErrAccountResponse    = errors.New("account service error")

	ErrIndexing = errors.New("indexing error")
	ErrSearch   = errors.New("search error")
)

type ErrorServer struct {
	Message string `json:"message"`
}

func (e *ErrorServer) Error() string {
	return e.Message
}

/*
NewErrorServer
Функция имеет возможность принимать "nil ошибку"
при получении nil наша функция понимает, что нам
просто надо отдать саксесс клиенту
*/
func NewErrorServer(err error) ErrorServer {
	if err == nil {
		return ErrorServer{
			Message: "success",
		}
	}

	return ErrorServer{
		Message: err.Error(),
	}
}

// SendErrorTo пишет ошибку клиенту в виде {"message": ...} с нужным статусом
func SendErrorTo(w http.ResponseWriter, err error, statusCode int, logger *zap.SugaredLogger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if errEncode := json.NewEncoder(w).Encode(NewErrorServer(err)); errEncode != nil {
		logger.Error(errEncode)
	}
}
