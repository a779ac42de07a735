package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	pkgerrors "github.com/siriwatk/gamestore-client/pkg/errors"
)

// listFromPayload tolerates the shapes the catalog endpoints are known to
// emit: a bare array, or an object wrapping the array under one of the given
// keys. Anything else is an empty result plus a decode error.
func listFromPayload[T any](raw json.RawMessage, wrapperKeys ...string) ([]T, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return []T{}, nil
	}

	var direct []T
	if err := json.Unmarshal(raw, &direct); err == nil {
		return direct, nil
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapped); err == nil {
		for _, key := range wrapperKeys {
			inner, ok := wrapped[key]
			if !ok {
				continue
			}
			var list []T
			if err := json.Unmarshal(inner, &list); err == nil {
				return list, nil
			}
		}
	}

	return []T{}, pkgerrors.New(pkgerrors.CodeDecode, "unexpected list payload")
}

// ListGames fetches the catalog, optionally filtered by search text and
// category.
func (c *Client) ListGames(ctx context.Context, search, categoryID string) ([]Game, error) {
	query := url.Values{}
	if search != "" {
		query.Set("search", search)
	}
	if categoryID != "" {
		query.Set("categoryId", categoryID)
	}

	var raw json.RawMessage
	err := c.do(ctx, callOptions{
		operation:    "list_games",
		method:       http.MethodGet,
		path:         "/games",
		query:        query,
		optionalAuth: true,
	}, &raw)
	if err != nil {
		return []Game{}, err
	}
	return listFromPayload[Game](raw, "games")
}

// GetGame fetches one catalog item.
func (c *Client) GetGame(ctx context.Context, id string) (*Game, error) {
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "game id is required")
	}

	var raw json.RawMessage
	err := c.do(ctx, callOptions{
		operation:    "get_game",
		method:       http.MethodGet,
		path:         "/games/" + url.PathEscape(id),
		optionalAuth: true,
	}, &raw)
	if err != nil {
		return nil, err
	}

	// Detail arrives bare or wrapped as {game: {...}}.
	var wrapped struct {
		Game *Game `json:"game"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Game != nil {
		return wrapped.Game, nil
	}
	var game Game
	if err := json.Unmarshal(raw, &game); err != nil || game.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDecode, "unexpected game payload")
	}
	return &game, nil
}

// ListCategories fetches the category index.
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var raw json.RawMessage
	err := c.do(ctx, callOptions{
		operation: "list_categories",
		method:    http.MethodGet,
		path:      "/categories",
	}, &raw)
	if err != nil {
		return []Category{}, err
	}
	return listFromPayload[Category](raw, "categories")
}

// TopGames fetches the current best sellers.
func (c *Client) TopGames(ctx context.Context, limit int) ([]Game, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	var raw json.RawMessage
	err := c.do(ctx, callOptions{
		operation:    "top_games",
		method:       http.MethodGet,
		path:         "/games/top/list",
		query:        query,
		optionalAuth: true,
	}, &raw)
	if err != nil {
		return []Game{}, err
	}
	return listFromPayload[Game](raw, "games", "data")
}

// RankingByDateRange fetches sales rankings for the given window.
func (c *Client) RankingByDateRange(ctx context.Context, start, end time.Time) ([]RankingEntry, error) {
	query := url.Values{}
	query.Set("start", start.UTC().Format(time.RFC3339))
	query.Set("end", end.UTC().Format(time.RFC3339))

	var raw json.RawMessage
	err := c.do(ctx, callOptions{
		operation: "ranking",
		method:    http.MethodGet,
		path:      "/games/ranking",
		query:     query,
		authed:    true,
	}, &raw)
	if err != nil {
		return []RankingEntry{}, err
	}
	return listFromPayload[RankingEntry](raw, "ranking", "data")
}
