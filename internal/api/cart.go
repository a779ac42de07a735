package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/shopspring/decimal"
	pkgerrors "github.com/siriwatk/gamestore-client/pkg/errors"
)

// AddCartItem mirrors a local cart addition to the server. Callers treat this
// as best-effort; the local cart stays the source of truth between checkouts.
func (c *Client) AddCartItem(ctx context.Context, gameID string, quantity int) error {
	var res statusResponse
	err := c.do(ctx, callOptions{
		operation:    "cart_add",
		method:       http.MethodPost,
		path:         "/users/cart/items",
		body:         CartSyncRequest{GameID: gameID, Quantity: quantity},
		optionalAuth: true,
	}, &res)
	if err != nil {
		return err
	}
	if !res.Success {
		return remoteFailure(res.Message, "cart sync failed")
	}
	return nil
}

// RemoveCartItem mirrors a local cart removal to the server. Best-effort.
func (c *Client) RemoveCartItem(ctx context.Context, gameID string) error {
	var res statusResponse
	err := c.do(ctx, callOptions{
		operation:    "cart_remove",
		method:       http.MethodDelete,
		path:         "/users/cart/items/" + url.PathEscape(gameID),
		optionalAuth: true,
	}, &res)
	if err != nil {
		return err
	}
	if !res.Success {
		return remoteFailure(res.Message, "cart sync failed")
	}
	return nil
}

// ValidatePromo checks a promo code against the current subtotal. The returned
// discount value is the only one totals may use.
func (c *Client) ValidatePromo(ctx context.Context, code string, subtotal decimal.Decimal) (*PromoValidationResponse, error) {
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "promo code is required")
	}

	var res PromoValidationResponse
	err := c.do(ctx, callOptions{
		operation:    "validate_promo",
		method:       http.MethodPost,
		path:         "/users/cart/validate-promo",
		body:         PromoValidationRequest{PromoCode: code, Subtotal: subtotal},
		optionalAuth: true,
	}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// CheckoutCart submits purchase intent plus promo code. Only the response
// values may be applied to local state.
func (c *Client) CheckoutCart(ctx context.Context, items []CheckoutItem, promoCode string) (*CheckoutResponse, error) {
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no items selected for checkout")
	}

	var res CheckoutResponse
	err := c.do(ctx, callOptions{
		operation: "checkout",
		method:    http.MethodPost,
		path:      "/users/cart/checkout",
		body:      CheckoutRequest{Items: items, PromoCode: promoCode},
		authed:    true,
	}, &res)
	if err != nil {
		return nil, err
	}
	if !res.Success {
		return nil, remoteFailure(res.Message, "checkout failed")
	}
	return &res, nil
}

// BuyGame performs the buy-now path for a single item.
func (c *Client) BuyGame(ctx context.Context, gameID string) (*BuyResponse, error) {
	if gameID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "game id is required")
	}

	var res BuyResponse
	err := c.do(ctx, callOptions{
		operation: "buy_game",
		method:    http.MethodPost,
		path:      "/orders/buy",
		body:      map[string]string{"gameId": gameID},
		authed:    true,
	}, &res)
	if err != nil {
		return nil, err
	}
	if !res.Success {
		message := res.Message
		if message == "" && res.Order != nil {
			message = res.Order.Message
		}
		return nil, remoteFailure(message, "purchase failed")
	}
	return &res, nil
}
