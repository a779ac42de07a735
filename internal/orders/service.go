package orders

import (
	"context"
	"sort"

	"github.com/siriwatk/gamestore-client/internal/api"
	pkgerrors "github.com/siriwatk/gamestore-client/pkg/errors"
)

type apiClient interface {
	OrderHistory(ctx context.Context) ([]api.Order, error)
	TopUpHistory(ctx context.Context) ([]api.TopUpRecord, error)
	MyGames(ctx context.Context) ([]api.Game, error)
}

type sessionReader interface {
	LoggedIn() bool
}

// Service exposes the account's purchase and top-up history, newest first.
// Timestamps are already normalized at the API boundary.
type Service struct {
	api      apiClient
	sessions sessionReader
}

func NewService(client apiClient, sessions sessionReader) *Service {
	return &Service{api: client, sessions: sessions}
}

// History lists past checkouts.
func (s *Service) History(ctx context.Context) ([]api.Order, error) {
	if !s.sessions.LoggedIn() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "please log in to view your history")
	}
	history, err := s.api.OrderHistory(ctx)
	if err != nil {
		return history, err
	}
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].CreatedAt.After(history[j].CreatedAt.Time)
	})
	return history, nil
}

// TopUps lists past wallet top-ups.
func (s *Service) TopUps(ctx context.Context) ([]api.TopUpRecord, error) {
	if !s.sessions.LoggedIn() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "please log in to view your history")
	}
	history, err := s.api.TopUpHistory(ctx)
	if err != nil {
		return history, err
	}
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].CreatedAt.After(history[j].CreatedAt.Time)
	})
	return history, nil
}

// Library lists the server-confirmed owned items.
func (s *Service) Library(ctx context.Context) ([]api.Game, error) {
	if !s.sessions.LoggedIn() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "please log in to view your library")
	}
	return s.api.MyGames(ctx)
}
