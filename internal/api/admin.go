package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

// Back-office operations. Authorization is enforced server-side; the admin
// service additionally gates these on the local role to avoid doomed calls.

// CreateGame adds a catalog item.
func (c *Client) CreateGame(ctx context.Context, game Game) (*Game, error) {
	var res struct {
		Success bool   `json:"success"`
		Game    *Game  `json:"game"`
		Message string `json:"message"`
	}
	err := c.do(ctx, callOptions{
		operation: "create_game",
		method:    http.MethodPost,
		path:      "/games",
		body:      game,
		authed:    true,
	}, &res)
	if err != nil {
		return nil, err
	}
	if !res.Success {
		return nil, remoteFailure(res.Message, "creating game failed")
	}
	if res.Game != nil {
		return res.Game, nil
	}
	return &game, nil
}

// UpdateGame updates a catalog item.
func (c *Client) UpdateGame(ctx context.Context, id string, game Game) error {
	var res statusResponse
	err := c.do(ctx, callOptions{
		operation: "update_game",
		method:    http.MethodPut,
		path:      "/games/" + url.PathEscape(id),
		body:      game,
		authed:    true,
	}, &res)
	if err != nil {
		return err
	}
	if !res.Success {
		return remoteFailure(res.Message, "updating game failed")
	}
	return nil
}

// DeleteGame removes a catalog item.
func (c *Client) DeleteGame(ctx context.Context, id string) error {
	var res statusResponse
	err := c.do(ctx, callOptions{
		operation: "delete_game",
		method:    http.MethodDelete,
		path:      "/games/" + url.PathEscape(id),
		authed:    true,
	}, &res)
	if err != nil {
		return err
	}
	if !res.Success {
		return remoteFailure(res.Message, "deleting game failed")
	}
	return nil
}

// ListDiscounts fetches every promo definition.
func (c *Client) ListDiscounts(ctx context.Context) ([]Discount, error) {
	var raw json.RawMessage
	err := c.do(ctx, callOptions{
		operation: "list_discounts",
		method:    http.MethodGet,
		path:      "/discounts",
		authed:    true,
	}, &raw)
	if err != nil {
		return []Discount{}, err
	}
	return listFromPayload[Discount](raw, "discounts")
}

// CreateDiscount adds a promo definition.
func (c *Client) CreateDiscount(ctx context.Context, discount Discount) error {
	var res statusResponse
	err := c.do(ctx, callOptions{
		operation: "create_discount",
		method:    http.MethodPost,
		path:      "/discounts",
		body:      discount,
		authed:    true,
	}, &res)
	if err != nil {
		return err
	}
	if !res.Success {
		return remoteFailure(res.Message, "creating discount failed")
	}
	return nil
}

// UpdateDiscount updates a promo definition.
func (c *Client) UpdateDiscount(ctx context.Context, id string, discount Discount) error {
	var res statusResponse
	err := c.do(ctx, callOptions{
		operation: "update_discount",
		method:    http.MethodPut,
		path:      "/discounts/" + url.PathEscape(id),
		body:      discount,
		authed:    true,
	}, &res)
	if err != nil {
		return err
	}
	if !res.Success {
		return remoteFailure(res.Message, "updating discount failed")
	}
	return nil
}

// ToggleDiscount flips a promo definition's active flag.
func (c *Client) ToggleDiscount(ctx context.Context, id string, active bool) error {
	var res statusResponse
	err := c.do(ctx, callOptions{
		operation: "toggle_discount",
		method:    http.MethodPut,
		path:      "/discounts/" + url.PathEscape(id) + "/toggle",
		body:      map[string]bool{"isActive": active},
		authed:    true,
	}, &res)
	if err != nil {
		return err
	}
	if !res.Success {
		return remoteFailure(res.Message, "toggling discount failed")
	}
	return nil
}

// DeleteDiscount removes a promo definition.
func (c *Client) DeleteDiscount(ctx context.Context, id string) error {
	var res statusResponse
	err := c.do(ctx, callOptions{
		operation: "delete_discount",
		method:    http.MethodDelete,
		path:      "/discounts/" + url.PathEscape(id),
		authed:    true,
	}, &res)
	if err != nil {
		return err
	}
	if !res.Success {
		return remoteFailure(res.Message, "deleting discount failed")
	}
	return nil
}

// AllTransactions fetches the full transaction log.
func (c *Client) AllTransactions(ctx context.Context) ([]Transaction, error) {
	var raw json.RawMessage
	err := c.do(ctx, callOptions{
		operation: "all_transactions",
		method:    http.MethodGet,
		path:      "/transactions/all",
		authed:    true,
	}, &raw)
	if err != nil {
		return []Transaction{}, err
	}
	return listFromPayload[Transaction](raw, "transactions")
}
