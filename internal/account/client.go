package account

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *zap.SugaredLogger
}

func NewClient(baseURL string, timeout time.Duration, logger *zap.SugaredLogger) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: timeout},
		Logger:     logger,
	}
}

// Login обертка на POST {base}/admin/login
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	requestBody, err := json.Marshal(LoginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/admin/login", bytes.NewReader(requestBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

// Signup обертка на POST {base}/user/signup (multipart/form-data)
func (c *Client) Signup(ctx context.Context, form SignupForm) (*AuthResponse, error) {
	form = form.Normalize()
	if err := validateEmail(form.Email); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fields := [][2]string{
		{"first_name", form.FirstName},
		{"last_name", form.LastName},
		{"email", form.Email},
		{"password", form.Password},
	}
	for _, f := range fields {
		if err := mw.WriteField(f[0], f[1]); err != nil {
			return nil, err
		}
	}

	if form.ProfilePic != nil {
		name := form.ProfilePicName
		if name == "" {
			name = "profile_pic"
		}
		part, err := mw.CreateFormFile("profile_pic", name)
		if err != nil {
			return nil, err
		}
		if _, err := io.Copy(part, form.ProfilePic); err != nil {
			return nil, fmt.Errorf("copy profile picture: %w", err)
		}
	}

	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/user/signup", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return c.do(req)
}

func (c *Client) do(req *http.Request) (*AuthResponse, error) {
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		c.Logger.Warnw("account request failed", "url", req.URL.String(), "err", err)
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respErr := &ResponseError{StatusCode: resp.StatusCode}
		if err := json.Unmarshal(body, respErr); err != nil || respErr.Message == "" {
			respErr.Message = http.StatusText(resp.StatusCode)
		}
		c.Logger.Infow("account service rejected request", "url", req.URL.Path, "status", resp.StatusCode, "message", respErr.Message)
		return nil, respErr
	}

	var authResp AuthResponse
	if err := json.Unmarshal(body, &authResp); err != nil {
		return nil, &ResponseError{StatusCode: resp.StatusCode, Message: "invalid response body"}
	}

	return &authResp, nil
}
