package account

import (
	"context"

	"github.com/siriwatk/gamestore-client/internal/api"
	"github.com/siriwatk/gamestore-client/internal/session"
	pkgerrors "github.com/siriwatk/gamestore-client/pkg/errors"
	"github.com/siriwatk/gamestore-client/pkg/logger"
)

type apiClient interface {
	Register(ctx context.Context, input api.RegisterInput) (*api.RegisterResponse, error)
	Login(ctx context.Context, input api.LoginInput) (*api.LoginResponse, error)
	UpdateProfile(ctx context.Context, userID string, req api.UpdateProfileRequest) (*api.UpdateProfileResponse, error)
}

type sessionStore interface {
	Identity() (session.Identity, bool)
	SetIdentity(identity session.Identity)
	ClearIdentity()
}

// Service runs the login/registration handshake and feeds its result into
// the session store, which treats the response as the source of truth.
type Service struct {
	api      apiClient
	sessions sessionStore
	logg     *logger.Logger
}

func NewService(client apiClient, sessions sessionStore, logg *logger.Logger) *Service {
	return &Service{api: client, sessions: sessions, logg: logg}
}

// Register creates an account and returns the new user id. The caller logs in
// separately, matching the storefront flow.
func (s *Service) Register(ctx context.Context, input api.RegisterInput) (string, error) {
	res, err := s.api.Register(ctx, input)
	if err != nil {
		return "", err
	}
	return res.UserID, nil
}

// Login exchanges credentials for an identity and activates it.
func (s *Service) Login(ctx context.Context, identifier, password string) (session.Identity, error) {
	res, err := s.api.Login(ctx, api.LoginInput{Identifier: identifier, Password: password})
	if err != nil {
		return session.Identity{}, err
	}

	role := res.Role
	if role == "" {
		role = session.RoleUser
	}
	identity := session.Identity{
		ID:           res.UserID,
		Name:         res.Name,
		Email:        res.Email,
		Role:         role,
		Wallet:       res.Wallet,
		ProfileImage: res.ProfileImage,
		Token:        res.Token,
	}
	s.sessions.SetIdentity(identity)

	s.logg.Info(s.logg.WithUserID(ctx, identity.ID), "identity activated")
	return identity, nil
}

// Logout clears the active identity. The per-identity cart and library stay
// persisted for the next login of the same account.
func (s *Service) Logout() {
	s.sessions.ClearIdentity()
}

// UpdateProfile updates name/email and refreshes the active identity from the
// server's echo, keeping token, wallet, and library intact.
func (s *Service) UpdateProfile(ctx context.Context, name, email string) (session.Identity, error) {
	identity, ok := s.sessions.Identity()
	if !ok {
		return session.Identity{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "please log in first")
	}

	res, err := s.api.UpdateProfile(ctx, identity.ID, api.UpdateProfileRequest{Name: name, Email: email})
	if err != nil {
		return session.Identity{}, err
	}

	if res.User != nil {
		identity.Name = res.User.Name
		identity.Email = res.User.Email
		identity.ProfileImage = res.User.ProfileImage
	} else {
		identity.Name = name
		identity.Email = email
	}
	s.sessions.SetIdentity(identity)
	return identity, nil
}
