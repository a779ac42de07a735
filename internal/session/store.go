package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/siriwatk/gamestore-client/pkg/kv"
	"github.com/siriwatk/gamestore-client/pkg/logger"
	"go.uber.org/multierr"
)

// Persisted key names, shared with the original browser-storage layout.
const (
	keyUserID       = "userId"
	keyName         = "name"
	keyEmail        = "email"
	keyRole         = "role"
	keyWallet       = "wallet"
	keyProfileImage = "profileImage"
	keyToken        = "token"
)

var identityKeys = []string{
	keyUserID, keyName, keyEmail, keyRole, keyWallet, keyProfileImage, keyToken,
}

// LibraryKey is the per-identity owned-library storage key.
func LibraryKey(userID string) string {
	return "library_" + userID
}

// Subscriber receives every identity change, including the transition to
// logged out (ok=false). Notification is synchronous; subscribers must work
// from the snapshot they are handed and not call back into the store.
type Subscriber func(identity Identity, ok bool)

// Store owns the current Identity and its persistence lifecycle. It is a pure
// cache over the kv store: a missing identity is the valid logged-out state,
// and storage write failures are logged, never surfaced to callers.
type Store struct {
	mu          sync.Mutex
	store       kv.Store
	logg        *logger.Logger
	current     *Identity
	hydrated    bool
	subscribers []Subscriber
}

func NewStore(store kv.Store, logg *logger.Logger) *Store {
	return &Store{store: store, logg: logg}
}

// Subscribe registers fn and immediately delivers the current state, so late
// subscribers converge without a separate read.
func (s *Store) Subscribe(fn Subscriber) {
	s.mu.Lock()
	s.hydrateLocked()
	s.subscribers = append(s.subscribers, fn)
	identity, ok := s.snapshotLocked()
	s.mu.Unlock()
	fn(identity, ok)
}

// SetIdentity replaces the current identity, persists every field, and
// notifies subscribers. The caller (a login/registration response) is the
// source of truth; no field validation happens here. A login response carries
// no library, so a nil Library is backfilled from the persisted
// library_{userId} before anything is persisted or announced.
func (s *Store) SetIdentity(identity Identity) {
	s.mu.Lock()
	if identity.Library == nil {
		identity.Library = s.libraryFromStore(context.Background(), identity.ID)
	}
	copied := identity.clone()
	s.current = &copied
	s.hydrated = true
	s.persistLocked()
	s.mu.Unlock()
	s.notify(identity.clone(), true)
}

// ClearIdentity removes the persisted identity fields and notifies with the
// logged-out state. Safe to call when nothing was persisted.
func (s *Store) ClearIdentity() {
	s.mu.Lock()
	s.current = nil
	s.hydrated = true
	if err := s.store.Delete(context.Background(), identityKeys...); err != nil {
		s.logg.Warn(s.logg.WithField(context.Background(), "error", err.Error()), "clearing identity state failed")
	}
	s.mu.Unlock()
	s.notify(Identity{}, false)
}

// Identity returns the in-memory identity, lazily rehydrating from the kv
// store (including the per-identity library) on first access.
func (s *Store) Identity() (Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hydrateLocked()
	return s.snapshotLocked()
}

// Token returns the active identity's token, falling back to the directly
// persisted token value.
func (s *Store) Token() (string, bool) {
	identity, ok := s.Identity()
	if ok && identity.Token != "" {
		return identity.Token, true
	}
	if value, err := s.store.Get(context.Background(), keyToken); err == nil && value != "" {
		return value, true
	}
	return "", false
}

// LoggedIn reports whether an identity is active.
func (s *Store) LoggedIn() bool {
	_, ok := s.Identity()
	return ok
}

// UpdateWallet overwrites the wallet balance with an authoritative server
// value. No-op when logged out.
func (s *Store) UpdateWallet(balance decimal.Decimal) {
	s.mu.Lock()
	s.hydrateLocked()
	if s.current == nil {
		s.mu.Unlock()
		return
	}
	s.current.Wallet = balance
	s.persistLocked()
	snapshot := s.current.clone()
	s.mu.Unlock()
	s.notify(snapshot, true)
}

// AddToLibrary unions the given item ids into the owned library. No-op when
// logged out.
func (s *Store) AddToLibrary(itemIDs []string) {
	s.mu.Lock()
	s.hydrateLocked()
	if s.current == nil {
		s.mu.Unlock()
		return
	}
	s.current.Library = unionLibrary(s.current.Library, itemIDs)
	s.persistLocked()
	snapshot := s.current.clone()
	s.mu.Unlock()
	s.notify(snapshot, true)
}

// ApplyPurchase merges purchased ids into the library and overwrites the
// wallet in one persisted snapshot and one notification, so no observer sees
// the library move without the wallet.
func (s *Store) ApplyPurchase(itemIDs []string, newWallet decimal.Decimal) {
	s.mu.Lock()
	s.hydrateLocked()
	if s.current == nil {
		s.mu.Unlock()
		return
	}
	s.current.Library = unionLibrary(s.current.Library, itemIDs)
	s.current.Wallet = newWallet
	s.persistLocked()
	snapshot := s.current.clone()
	s.mu.Unlock()
	s.notify(snapshot, true)
}

func (s *Store) notify(identity Identity, ok bool) {
	s.mu.Lock()
	subscribers := append([]Subscriber(nil), s.subscribers...)
	s.mu.Unlock()
	for _, fn := range subscribers {
		fn(identity.clone(), ok)
	}
}

func (s *Store) snapshotLocked() (Identity, bool) {
	if s.current == nil {
		return Identity{}, false
	}
	return s.current.clone(), true
}

func (s *Store) hydrateLocked() {
	if s.hydrated {
		return
	}
	s.hydrated = true

	ctx := context.Background()
	userID, err := s.store.Get(ctx, keyUserID)
	if err != nil || userID == "" {
		return
	}

	identity := Identity{
		ID:           userID,
		Name:         s.getOr(ctx, keyName, "User"),
		Email:        s.getOr(ctx, keyEmail, ""),
		Role:         s.getOr(ctx, keyRole, RoleUser),
		ProfileImage: s.getOr(ctx, keyProfileImage, ""),
		Token:        s.getOr(ctx, keyToken, ""),
		Wallet:       s.walletFromStore(ctx),
		Library:      s.libraryFromStore(ctx, userID),
	}
	s.current = &identity
}

func (s *Store) getOr(ctx context.Context, key, fallback string) string {
	value, err := s.store.Get(ctx, key)
	if err != nil || value == "" {
		return fallback
	}
	return value
}

func (s *Store) walletFromStore(ctx context.Context) decimal.Decimal {
	raw, err := s.store.Get(ctx, keyWallet)
	if err != nil || raw == "" {
		return decimal.Zero
	}
	balance, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero
	}
	return balance
}

func (s *Store) libraryFromStore(ctx context.Context, userID string) []string {
	raw, err := s.store.Get(ctx, LibraryKey(userID))
	if err != nil || raw == "" {
		return nil
	}
	var library []string
	if err := json.Unmarshal([]byte(raw), &library); err != nil {
		return nil
	}
	return library
}

// persistLocked writes the complete identity snapshot. The token key is
// removed, not stored empty, when the identity has no token.
func (s *Store) persistLocked() {
	if s.current == nil {
		return
	}
	ctx := context.Background()
	identity := s.current

	var err error
	err = multierr.Append(err, s.store.Set(ctx, keyUserID, identity.ID))
	err = multierr.Append(err, s.store.Set(ctx, keyName, identity.Name))
	err = multierr.Append(err, s.store.Set(ctx, keyEmail, identity.Email))
	err = multierr.Append(err, s.store.Set(ctx, keyRole, identity.Role))
	err = multierr.Append(err, s.store.Set(ctx, keyWallet, identity.Wallet.String()))
	err = multierr.Append(err, s.store.Set(ctx, keyProfileImage, identity.ProfileImage))
	if identity.Token != "" {
		err = multierr.Append(err, s.store.Set(ctx, keyToken, identity.Token))
	} else {
		deleteErr := s.store.Delete(ctx, keyToken)
		if deleteErr != nil && !errors.Is(deleteErr, kv.ErrNotFound) {
			err = multierr.Append(err, deleteErr)
		}
	}
	if identity.Library != nil {
		raw, marshalErr := json.Marshal(identity.Library)
		if marshalErr == nil {
			err = multierr.Append(err, s.store.Set(ctx, LibraryKey(identity.ID), string(raw)))
		} else {
			err = multierr.Append(err, marshalErr)
		}
	}

	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "persisting identity state failed")
	}
}

func unionLibrary(library, itemIDs []string) []string {
	seen := make(map[string]struct{}, len(library))
	out := append([]string(nil), library...)
	for _, id := range library {
		seen[id] = struct{}{}
	}
	for _, id := range itemIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
