package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"storefront/internal/account"
	myErr "storefront/internal/types/errors"

	"go.uber.org/zap"
)

// максимальный размер формы регистрации вместе с аватаром
const maxSignupMemory = 10 << 20

type AccountHandler struct {
	Logger   *zap.SugaredLogger
	Accounts account.Service
}

func NewAccountHandler(l *zap.SugaredLogger, as account.Service) *AccountHandler {
	return &AccountHandler{
		Logger:   l,
		Accounts: as,
	}
}

// Login handles POST /api/admin/login
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	var form account.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		myErr.SendErrorTo(w, myErr.ErrInvalidJSONPayload, http.StatusBadRequest, h.Logger)
		return
	}

	resp, err := h.Accounts.Login(r.Context(), form.Email, form.Password)
	if err != nil {
		h.sendAccountError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, resp)
	h.Logger.Infof("admin logged in: %s", form.Email)
}

// Signup handles POST /api/user/signup (multipart/form-data)
func (h *AccountHandler) Signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxSignupMemory); err != nil {
		myErr.SendErrorTo(w, err, http.StatusBadRequest, h.Logger)
		return
	}

	form := account.SignupForm{
		FirstName: r.FormValue("first_name"),
		LastName:  r.FormValue("last_name"),
		Email:     r.FormValue("email"),
		Password:  r.FormValue("password"),
	}

	// Аватар необязателен
	file, header, err := r.FormFile("profile_pic")
	switch {
	case err == nil:
		defer file.Close()
		form.ProfilePic = file
		form.ProfilePicName = header.Filename
	case errors.Is(err, http.ErrMissingFile):
	default:
		myErr.SendErrorTo(w, err, http.StatusBadRequest, h.Logger)
		return
	}

	resp, err := h.Accounts.Signup(r.Context(), form)
	if err != nil {
		h.sendAccountError(w, err)
		return
	}

	h.writeJSON(w, http.StatusCreated, resp)
	h.Logger.Infof("user signed up: %s", form.Normalize().Email)
}

// sendAccountError отдаёт клиенту отказ сервиса аккаунтов как есть
func (h *AccountHandler) sendAccountError(w http.ResponseWriter, err error) {
	var respErr *account.ResponseError
	switch {
	case errors.As(err, &respErr):
		h.writeJSON(w, respErr.StatusCode, respErr)
	case errors.Is(err, myErr.ErrInvalidEmail):
		myErr.SendErrorTo(w, err, http.StatusBadRequest, h.Logger)
	default:
		h.Logger.Warnw("account service call failed", "err", err)
		myErr.SendErrorTo(w, myErr.ErrAccountResponse, http.StatusBadGateway, h.Logger)
	}
}

func (h *AccountHandler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.Logger.Warnw("error writing response", "err", err)
	}
}
