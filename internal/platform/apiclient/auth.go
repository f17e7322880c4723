package apiclient

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/myhealth/myhealth/pkg/clinicmodels"
)

// Credentials for POST /api/login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignUp is the request body for a new customer account.
type SignUp struct {
	FullName    string `json:"fullName"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	Phone       string `json:"phone,omitempty"`
	Gender      string `json:"gender,omitempty"`
	DateOfBirth string `json:"dateOfBirth,omitempty"`
	Address     string `json:"address,omitempty"`
}

type ResetPassword struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// Login returns the raw login body; the session package decides which
// fields make up the bundle.
func (c *Client) Login(ctx context.Context, creds Credentials) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.sendJSON(ctx, http.MethodPost, "/api/login", creds, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (c *Client) Register(ctx context.Context, req SignUp) (*clinicmodels.Customer, error) {
	var out clinicmodels.Customer
	if err := c.sendJSON(ctx, http.MethodPost, "/api/register", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ForgotPassword(ctx context.Context, email string) error {
	return c.sendJSON(ctx, http.MethodPost, "/api/forgot-password", map[string]string{"email": email}, nil)
}

func (c *Client) ResetPassword(ctx context.Context, req ResetPassword) error {
	return c.sendJSON(ctx, http.MethodPost, "/api/reset-password", req, nil)
}

func (c *Client) GetAdminMe(ctx context.Context) (*clinicmodels.Admin, error) {
	return getOne[clinicmodels.Admin](ctx, c, "/api/admins/me", nil)
}

func (c *Client) UpdateAdmin(ctx context.Context, id int64, a *clinicmodels.Admin) (*clinicmodels.Admin, error) {
	var out clinicmodels.Admin
	if err := c.sendJSON(ctx, http.MethodPut, "/api/admins/"+itoa(id), a, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
