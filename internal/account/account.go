package account

import (
	"context"
	"fmt"
	"io"
	"net/mail"
	"strings"

	myErr "storefront/internal/types/errors"
)

// Service - удалённый сервис аккаунтов (вход администратора и регистрация покупателя)
//
//go:generate mockgen -source=account.go -destination=../mocks/mock_account.go -package=mocks -mock_names=Service=MockAccountService
type Service interface {
	Login(ctx context.Context, email, password string) (*AuthResponse, error)
	Signup(ctx context.Context, form SignupForm) (*AuthResponse, error)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignupForm - поля формы регистрации. ProfilePic необязателен.
type SignupForm struct {
	FirstName string
	LastName  string
	Email     string
	Password  string

	ProfilePic     io.Reader
	ProfilePicName string
}

// Normalize обрезает пробелы в именах и приводит email к нижнему регистру
func (f SignupForm) Normalize() SignupForm {
	f.FirstName = strings.TrimSpace(f.FirstName)
	f.LastName = strings.TrimSpace(f.LastName)
	f.Email = strings.ToLower(strings.TrimSpace(f.Email))
	return f
}

type AuthResponse struct {
	Token   string `json:"token,omitempty"`
	Message string `json:"message,omitempty"`
	Status  bool   `json:"status,omitempty"`
}

// ResponseError - отказ сервиса аккаунтов с его статусом и сообщением
type ResponseError struct {
	StatusCode int                 `json:"-"`
	Message    string              `json:"message"`
	Errors     map[string][]string `json:"errors,omitempty"`
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("%s: %d %s", myErr.ErrAccountResponse, e.StatusCode, e.Message)
}

func (e *ResponseError) Unwrap() error {
	return myErr.ErrAccountResponse
}

func validateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return myErr.ErrInvalidEmail
	}
	return nil
}
