package admin

import (
	"context"

	"github.com/siriwatk/gamestore-client/internal/api"
	"github.com/siriwatk/gamestore-client/internal/session"
	pkgerrors "github.com/siriwatk/gamestore-client/pkg/errors"
)

type apiClient interface {
	CreateGame(ctx context.Context, game api.Game) (*api.Game, error)
	UpdateGame(ctx context.Context, id string, game api.Game) error
	DeleteGame(ctx context.Context, id string) error
	ListDiscounts(ctx context.Context) ([]api.Discount, error)
	CreateDiscount(ctx context.Context, discount api.Discount) error
	UpdateDiscount(ctx context.Context, id string, discount api.Discount) error
	ToggleDiscount(ctx context.Context, id string, active bool) error
	DeleteDiscount(ctx context.Context, id string) error
	AllTransactions(ctx context.Context) ([]api.Transaction, error)
}

type sessionReader interface {
	Identity() (session.Identity, bool)
}

// Service is the back-office facade. Every operation is gated on the local
// admin role before a remote call goes out; the server enforces the same rule
// authoritatively.
type Service struct {
	api      apiClient
	sessions sessionReader
}

func NewService(client apiClient, sessions sessionReader) *Service {
	return &Service{api: client, sessions: sessions}
}

func (s *Service) guard() error {
	identity, ok := s.sessions.Identity()
	if !ok {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "please log in first")
	}
	if !identity.IsAdmin() {
		return pkgerrors.New(pkgerrors.CodeForbidden, "admin access required")
	}
	return nil
}

func (s *Service) CreateGame(ctx context.Context, game api.Game) (*api.Game, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	return s.api.CreateGame(ctx, game)
}

func (s *Service) UpdateGame(ctx context.Context, id string, game api.Game) error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.api.UpdateGame(ctx, id, game)
}

func (s *Service) DeleteGame(ctx context.Context, id string) error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.api.DeleteGame(ctx, id)
}

func (s *Service) ListDiscounts(ctx context.Context) ([]api.Discount, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	return s.api.ListDiscounts(ctx)
}

func (s *Service) CreateDiscount(ctx context.Context, discount api.Discount) error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.api.CreateDiscount(ctx, discount)
}

func (s *Service) UpdateDiscount(ctx context.Context, id string, discount api.Discount) error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.api.UpdateDiscount(ctx, id, discount)
}

func (s *Service) ToggleDiscount(ctx context.Context, id string, active bool) error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.api.ToggleDiscount(ctx, id, active)
}

func (s *Service) DeleteDiscount(ctx context.Context, id string) error {
	if err := s.guard(); err != nil {
		return err
	}
	return s.api.DeleteDiscount(ctx, id)
}

func (s *Service) AllTransactions(ctx context.Context) ([]api.Transaction, error) {
	if err := s.guard(); err != nil {
		return nil, err
	}
	return s.api.AllTransactions(ctx)
}
