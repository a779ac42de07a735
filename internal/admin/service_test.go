package admin

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/siriwatk/gamestore-client/internal/api"
	"github.com/siriwatk/gamestore-client/internal/session"
	pkgerrors "github.com/siriwatk/gamestore-client/pkg/errors"
)

type stubAPI struct {
	calls []string
}

func (a *stubAPI) CreateGame(ctx context.Context, game api.Game) (*api.Game, error) {
	a.calls = append(a.calls, "create_game")
	return &game, nil
}

func (a *stubAPI) UpdateGame(ctx context.Context, id string, game api.Game) error {
	a.calls = append(a.calls, "update_game")
	return nil
}

func (a *stubAPI) DeleteGame(ctx context.Context, id string) error {
	a.calls = append(a.calls, "delete_game")
	return nil
}

func (a *stubAPI) ListDiscounts(ctx context.Context) ([]api.Discount, error) {
	a.calls = append(a.calls, "list_discounts")
	return nil, nil
}

func (a *stubAPI) CreateDiscount(ctx context.Context, discount api.Discount) error {
	a.calls = append(a.calls, "create_discount")
	return nil
}

func (a *stubAPI) UpdateDiscount(ctx context.Context, id string, discount api.Discount) error {
	a.calls = append(a.calls, "update_discount")
	return nil
}

func (a *stubAPI) ToggleDiscount(ctx context.Context, id string, active bool) error {
	a.calls = append(a.calls, "toggle_discount")
	return nil
}

func (a *stubAPI) DeleteDiscount(ctx context.Context, id string) error {
	a.calls = append(a.calls, "delete_discount")
	return nil
}

func (a *stubAPI) AllTransactions(ctx context.Context) ([]api.Transaction, error) {
	a.calls = append(a.calls, "all_transactions")
	return nil, nil
}

type stubSessions struct {
	identity session.Identity
	loggedIn bool
}

func (s *stubSessions) Identity() (session.Identity, bool) {
	return s.identity, s.loggedIn
}

func TestOperationsRequireLogin(t *testing.T) {
	client := &stubAPI{}
	svc := NewService(client, &stubSessions{})

	_, err := svc.AllTransactions(context.Background())
	if pkgerrors.CodeOf(err) != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if len(client.calls) != 0 {
		t.Fatal("no remote call expected")
	}
}

func TestOperationsRequireAdminRole(t *testing.T) {
	client := &stubAPI{}
	svc := NewService(client, &stubSessions{
		loggedIn: true,
		identity: session.Identity{ID: "u1", Role: session.RoleUser},
	})

	ctx := context.Background()
	game := api.Game{ID: "g1", Name: "One", Price: decimal.NewFromInt(100)}
	discount := api.Discount{Code: "SAVE10", Type: "percent", Value: decimal.NewFromInt(10)}

	checks := []error{}
	_, err := svc.CreateGame(ctx, game)
	checks = append(checks, err)
	checks = append(checks, svc.UpdateGame(ctx, "g1", game))
	checks = append(checks, svc.DeleteGame(ctx, "g1"))
	_, err = svc.ListDiscounts(ctx)
	checks = append(checks, err)
	checks = append(checks, svc.CreateDiscount(ctx, discount))
	checks = append(checks, svc.UpdateDiscount(ctx, "d1", discount))
	checks = append(checks, svc.ToggleDiscount(ctx, "d1", false))
	checks = append(checks, svc.DeleteDiscount(ctx, "d1"))
	_, err = svc.AllTransactions(ctx)
	checks = append(checks, err)

	for i, err := range checks {
		if pkgerrors.CodeOf(err) != pkgerrors.CodeForbidden {
			t.Fatalf("check %d: expected forbidden, got %v", i, err)
		}
	}
	if len(client.calls) != 0 {
		t.Fatalf("remote calls leaked past the guard: %v", client.calls)
	}
}

func TestAdminOperationsPassThrough(t *testing.T) {
	client := &stubAPI{}
	svc := NewService(client, &stubSessions{
		loggedIn: true,
		identity: session.Identity{ID: "u1", Role: session.RoleAdmin},
	})

	ctx := context.Background()
	if _, err := svc.CreateGame(ctx, api.Game{ID: "g1"}); err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	if err := svc.ToggleDiscount(ctx, "d1", true); err != nil {
		t.Fatalf("ToggleDiscount: %v", err)
	}
	if _, err := svc.AllTransactions(ctx); err != nil {
		t.Fatalf("AllTransactions: %v", err)
	}
	if len(client.calls) != 3 {
		t.Fatalf("calls: %v", client.calls)
	}
}
