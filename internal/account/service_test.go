package account

import (
	"context"
	"io"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/siriwatk/gamestore-client/internal/api"
	"github.com/siriwatk/gamestore-client/internal/session"
	pkgerrors "github.com/siriwatk/gamestore-client/pkg/errors"
	"github.com/siriwatk/gamestore-client/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{Component: "test", Output: io.Discard})
}

type stubAPI struct {
	loginRes   *api.LoginResponse
	loginErr   error
	lastLogin  api.LoginInput
	updateRes  *api.UpdateProfileResponse
	updateErr  error
	lastUpdate api.UpdateProfileRequest
}

func (a *stubAPI) Register(ctx context.Context, input api.RegisterInput) (*api.RegisterResponse, error) {
	return &api.RegisterResponse{Success: true, UserID: "new-user"}, nil
}

func (a *stubAPI) Login(ctx context.Context, input api.LoginInput) (*api.LoginResponse, error) {
	a.lastLogin = input
	return a.loginRes, a.loginErr
}

func (a *stubAPI) UpdateProfile(ctx context.Context, userID string, req api.UpdateProfileRequest) (*api.UpdateProfileResponse, error) {
	a.lastUpdate = req
	return a.updateRes, a.updateErr
}

type stubSessions struct {
	identity session.Identity
	loggedIn bool
	sets     []session.Identity
	cleared  int
}

func (s *stubSessions) Identity() (session.Identity, bool) {
	return s.identity, s.loggedIn
}

func (s *stubSessions) SetIdentity(identity session.Identity) {
	s.identity = identity
	s.loggedIn = true
	s.sets = append(s.sets, identity)
}

func (s *stubSessions) ClearIdentity() {
	s.cleared++
	s.loggedIn = false
}

func TestLoginActivatesIdentity(t *testing.T) {
	client := &stubAPI{loginRes: &api.LoginResponse{
		Success: true,
		UserID:  "u1",
		Name:    "Siri",
		Email:   "siri@example.com",
		Wallet:  decimal.NewFromInt(700),
		Token:   "tok-1",
	}}
	sessions := &stubSessions{}
	svc := NewService(client, sessions, testLogger())

	identity, err := svc.Login(context.Background(), "siri@example.com", "secret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if identity.ID != "u1" || identity.Token != "tok-1" {
		t.Fatalf("identity: %+v", identity)
	}
	if identity.Role != session.RoleUser {
		t.Fatalf("role should default to user, got %q", identity.Role)
	}
	if len(sessions.sets) != 1 {
		t.Fatalf("SetIdentity calls: %d", len(sessions.sets))
	}
	if client.lastLogin.Identifier != "siri@example.com" {
		t.Fatalf("login input: %+v", client.lastLogin)
	}
}

func TestLoginFailureDoesNotTouchSession(t *testing.T) {
	client := &stubAPI{loginErr: pkgerrors.New(pkgerrors.CodeRemote, "wrong password")}
	sessions := &stubSessions{}
	svc := NewService(client, sessions, testLogger())

	_, err := svc.Login(context.Background(), "siri@example.com", "nope")
	if err == nil {
		t.Fatal("expected login failure")
	}
	if len(sessions.sets) != 0 {
		t.Fatal("failed login must not activate an identity")
	}
}

func TestRegisterReturnsUserID(t *testing.T) {
	svc := NewService(&stubAPI{}, &stubSessions{}, testLogger())

	userID, err := svc.Register(context.Background(), api.RegisterInput{
		Name:     "Siri",
		Email:    "siri@example.com",
		Password: "secret1",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if userID != "new-user" {
		t.Fatalf("user id %q", userID)
	}
}

func TestLogoutClearsIdentity(t *testing.T) {
	sessions := &stubSessions{loggedIn: true, identity: session.Identity{ID: "u1"}}
	svc := NewService(&stubAPI{}, sessions, testLogger())

	svc.Logout()
	if sessions.cleared != 1 {
		t.Fatal("expected ClearIdentity to be called")
	}
}

func TestUpdateProfileMergesServerEcho(t *testing.T) {
	client := &stubAPI{updateRes: &api.UpdateProfileResponse{
		Success: true,
		User: &struct {
			UserID       string          `json:"userId"`
			Name         string          `json:"name"`
			Email        string          `json:"email"`
			Role         string          `json:"role"`
			Wallet       decimal.Decimal `json:"wallet"`
			ProfileImage string          `json:"profileImage"`
		}{Name: "New Name", Email: "new@example.com"},
	}}
	sessions := &stubSessions{loggedIn: true, identity: session.Identity{
		ID:      "u1",
		Name:    "Old Name",
		Token:   "tok-1",
		Wallet:  decimal.NewFromInt(700),
		Library: []string{"g1"},
	}}
	svc := NewService(client, sessions, testLogger())

	identity, err := svc.UpdateProfile(context.Background(), "New Name", "new@example.com")
	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}
	if identity.Name != "New Name" || identity.Email != "new@example.com" {
		t.Fatalf("identity: %+v", identity)
	}
	if identity.Token != "tok-1" || !identity.Wallet.Equal(decimal.NewFromInt(700)) {
		t.Fatal("token and wallet must survive a profile update")
	}
	if len(identity.Library) != 1 {
		t.Fatal("library must survive a profile update")
	}
}

func TestUpdateProfileRequiresLogin(t *testing.T) {
	svc := NewService(&stubAPI{}, &stubSessions{}, testLogger())
	_, err := svc.UpdateProfile(context.Background(), "Name", "mail@example.com")
	if pkgerrors.CodeOf(err) != pkgerrors.CodeUnauthorized {
		t.Fatalf("expected unauthorized, got %v", err)
	}
}
