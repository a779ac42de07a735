package catalog

import (
	"context"
	"time"

	"github.com/siriwatk/gamestore-client/internal/api"
	"github.com/siriwatk/gamestore-client/internal/session"
	"github.com/siriwatk/gamestore-client/pkg/logger"
)

type apiClient interface {
	ListGames(ctx context.Context, search, categoryID string) ([]api.Game, error)
	GetGame(ctx context.Context, id string) (*api.Game, error)
	ListCategories(ctx context.Context) ([]api.Category, error)
	TopGames(ctx context.Context, limit int) ([]api.Game, error)
	RankingByDateRange(ctx context.Context, start, end time.Time) ([]api.RankingEntry, error)
}

type sessionReader interface {
	Identity() (session.Identity, bool)
}

// GameView is a catalog item annotated with the viewer's ownership, so
// presentation can disable re-purchase without consulting the session itself.
type GameView struct {
	api.Game
	Owned bool
}

// Service exposes catalog browsing with ownership annotation. Decode
// anomalies surface as an error alongside an empty list; callers display the
// notice and render the empty result.
type Service struct {
	api      apiClient
	sessions sessionReader
	logg     *logger.Logger
}

func NewService(client apiClient, sessions sessionReader, logg *logger.Logger) *Service {
	return &Service{api: client, sessions: sessions, logg: logg}
}

// Browse lists catalog items matching the search text and category.
func (s *Service) Browse(ctx context.Context, search, categoryID string) ([]GameView, error) {
	games, err := s.api.ListGames(ctx, search, categoryID)
	views := s.annotate(games)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "catalog listing degraded")
		return views, err
	}
	return views, nil
}

// Detail loads a single catalog item.
func (s *Service) Detail(ctx context.Context, id string) (*GameView, error) {
	game, err := s.api.GetGame(ctx, id)
	if err != nil {
		return nil, err
	}
	view := s.annotate([]api.Game{*game})
	return &view[0], nil
}

// Categories lists the category index.
func (s *Service) Categories(ctx context.Context) ([]api.Category, error) {
	return s.api.ListCategories(ctx)
}

// Top lists current best sellers.
func (s *Service) Top(ctx context.Context, limit int) ([]GameView, error) {
	games, err := s.api.TopGames(ctx, limit)
	return s.annotate(games), err
}

// Ranking lists sales rankings over a window.
func (s *Service) Ranking(ctx context.Context, start, end time.Time) ([]api.RankingEntry, error) {
	return s.api.RankingByDateRange(ctx, start, end)
}

func (s *Service) annotate(games []api.Game) []GameView {
	identity, _ := s.sessions.Identity()
	views := make([]GameView, 0, len(games))
	for _, game := range games {
		views = append(views, GameView{
			Game:  game,
			Owned: identity.Owns(game.ID),
		})
	}
	return views
}
