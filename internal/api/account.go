package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"
)

// RegisterInput is the locally validated registration payload.
type RegisterInput struct {
	Name         string `json:"name" validate:"required,min=2"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=6"`
	ProfileImage string `json:"profileImage" validate:"omitempty,url"`
}

// LoginInput is the locally validated login payload. Identifier accepts an
// email or a username.
type LoginInput struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

// Register creates an account. Input is validated before the call goes out.
func (c *Client) Register(ctx context.Context, input RegisterInput) (*RegisterResponse, error) {
	if err := ValidateInput(input); err != nil {
		return nil, err
	}

	var res RegisterResponse
	err := c.do(ctx, callOptions{
		operation: "register",
		method:    http.MethodPost,
		path:      "/register",
		body: RegisterRequest{
			Name:         input.Name,
			Email:        input.Email,
			Password:     input.Password,
			ProfileImage: input.ProfileImage,
		},
	}, &res)
	if err != nil {
		return nil, err
	}
	if !res.Success {
		return nil, remoteFailure(res.Message, "registration failed")
	}
	return &res, nil
}

// Login exchanges credentials for the identity handshake payload.
func (c *Client) Login(ctx context.Context, input LoginInput) (*LoginResponse, error) {
	if err := ValidateInput(input); err != nil {
		return nil, err
	}

	var res LoginResponse
	err := c.do(ctx, callOptions{
		operation: "login",
		method:    http.MethodPost,
		path:      "/login",
		body: LoginRequest{
			Identifier: input.Identifier,
			Password:   input.Password,
		},
	}, &res)
	if err != nil {
		return nil, err
	}
	if !res.Success {
		return nil, remoteFailure(res.Message, "login failed")
	}
	return &res, nil
}

// UpdateProfile updates the display name and email of the given account.
func (c *Client) UpdateProfile(ctx context.Context, userID string, req UpdateProfileRequest) (*UpdateProfileResponse, error) {
	var res UpdateProfileResponse
	err := c.do(ctx, callOptions{
		operation: "update_profile",
		method:    http.MethodPut,
		path:      "/users/" + url.PathEscape(userID),
		body:      req,
		authed:    true,
	}, &res)
	if err != nil {
		return nil, err
	}
	if !res.Success {
		return nil, remoteFailure(res.Message, "profile update failed")
	}
	return &res, nil
}

// MyGames fetches the server-side owned library.
func (c *Client) MyGames(ctx context.Context) ([]Game, error) {
	var raw json.RawMessage
	err := c.do(ctx, callOptions{
		operation: "my_games",
		method:    http.MethodGet,
		path:      "/users/my-games",
		authed:    true,
	}, &raw)
	if err != nil {
		return []Game{}, err
	}
	return listFromPayload[Game](raw, "games")
}

// OrderHistory fetches the caller's past checkouts.
func (c *Client) OrderHistory(ctx context.Context) ([]Order, error) {
	var raw json.RawMessage
	err := c.do(ctx, callOptions{
		operation: "order_history",
		method:    http.MethodGet,
		path:      "/orders/my-history",
		authed:    true,
	}, &raw)
	if err != nil {
		return []Order{}, err
	}
	return listFromPayload[Order](raw, "orders", "history")
}

// TopUp requests a wallet top-up. The response's newWallet, when present, is
// the authoritative balance.
func (c *Client) TopUp(ctx context.Context, amount decimal.Decimal, method string) (*TopUpResponse, error) {
	var res TopUpResponse
	err := c.do(ctx, callOptions{
		operation: "topup",
		method:    http.MethodPost,
		path:      "/users/topup",
		body:      TopUpRequest{Amount: amount, Method: method},
		authed:    true,
	}, &res)
	if err != nil {
		return nil, err
	}
	if !res.Success {
		return nil, remoteFailure(res.Message, "top-up failed")
	}
	return &res, nil
}

// TopUpHistory fetches past wallet top-ups.
func (c *Client) TopUpHistory(ctx context.Context) ([]TopUpRecord, error) {
	var raw json.RawMessage
	err := c.do(ctx, callOptions{
		operation: "topup_history",
		method:    http.MethodGet,
		path:      "/users/topup/history",
		authed:    true,
	}, &raw)
	if err != nil {
		return []TopUpRecord{}, err
	}
	return listFromPayload[TopUpRecord](raw, "history")
}
