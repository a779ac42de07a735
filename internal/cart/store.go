package cart

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/siriwatk/gamestore-client/internal/session"
	pkgerrors "github.com/siriwatk/gamestore-client/pkg/errors"
	"github.com/siriwatk/gamestore-client/pkg/kv"
	"github.com/siriwatk/gamestore-client/pkg/logger"
)

// CartKey is the per-identity cart storage key.
func CartKey(userID string) string {
	return "cart_" + userID
}

// RemoteSyncer mirrors local cart mutations to the server. Calls are
// best-effort: the local cart is the source of truth between checkouts and a
// failed sync never rolls back a local mutation.
type RemoteSyncer interface {
	AddCartItem(ctx context.Context, itemID string, quantity int) error
	RemoveCartItem(ctx context.Context, itemID string) error
}

// Subscriber receives the full line list after every cart change.
type Subscriber func(lines []Line)

// Store holds the pending, unpurchased selections of the active identity,
// persisted per identity id. It follows the session store: an identity switch
// swaps the visible cart, and library growth disables newly owned lines.
type Store struct {
	mu          sync.Mutex
	store       kv.Store
	logg        *logger.Logger
	remote      RemoteSyncer
	syncTimeout time.Duration

	activeUser  string
	library     map[string]struct{}
	lines       []Line
	subscribers []Subscriber
}

// NewStore builds a cart store bound to the session store's identity stream.
func NewStore(store kv.Store, sessions *session.Store, remote RemoteSyncer, syncTimeout time.Duration, logg *logger.Logger) *Store {
	if syncTimeout <= 0 {
		syncTimeout = 5 * time.Second
	}
	s := &Store{
		store:       store,
		logg:        logg,
		remote:      remote,
		syncTimeout: syncTimeout,
		library:     map[string]struct{}{},
	}
	sessions.Subscribe(s.onIdentity)
	return s
}

func (s *Store) onIdentity(identity session.Identity, ok bool) {
	s.mu.Lock()
	if !ok {
		s.activeUser = ""
		s.library = map[string]struct{}{}
		s.lines = nil
		s.mu.Unlock()
		s.emit()
		return
	}

	s.library = make(map[string]struct{}, len(identity.Library))
	for _, id := range identity.Library {
		s.library[id] = struct{}{}
	}

	if identity.ID != s.activeUser {
		s.activeUser = identity.ID
		s.lines = s.loadLocked()
	}

	if s.recomputeDisabledLocked() {
		s.persistLocked()
	}
	s.mu.Unlock()
	s.emit()
}

// Subscribe registers fn and immediately delivers the current line list.
func (s *Store) Subscribe(fn Subscriber) {
	s.mu.Lock()
	s.subscribers = append(s.subscribers, fn)
	lines := s.snapshotLocked()
	s.mu.Unlock()
	fn(lines)
}

// Lines returns the current line list for the active identity.
func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// AddLine merges the line into the cart: an existing item id has its quantity
// incremented, a new id is appended. The mutation is persisted and emitted,
// then mirrored to the server fire-and-forget.
func (s *Store) AddLine(line Line) {
	s.mu.Lock()
	if _, owned := s.library[line.ItemID]; owned {
		line.Disabled = true
		line.Selected = false
	}
	merged := false
	for i := range s.lines {
		if s.lines[i].ItemID == line.ItemID {
			s.lines[i].Quantity += line.Quantity
			merged = true
			break
		}
	}
	if !merged {
		s.lines = append(s.lines, line)
	}
	s.persistLocked()
	s.mu.Unlock()
	s.emit()

	s.syncRemote("cart add", func(ctx context.Context) error {
		return s.remote.AddCartItem(ctx, line.ItemID, line.Quantity)
	})
}

// RemoveLine drops the matching line. No-op when absent.
func (s *Store) RemoveLine(itemID string) {
	s.mu.Lock()
	kept := s.lines[:0]
	removed := false
	for _, line := range s.lines {
		if line.ItemID == itemID {
			removed = true
			continue
		}
		kept = append(kept, line)
	}
	s.lines = kept
	if removed {
		s.persistLocked()
	}
	s.mu.Unlock()
	if !removed {
		return
	}
	s.emit()

	s.syncRemote("cart remove", func(ctx context.Context) error {
		return s.remote.RemoveCartItem(ctx, itemID)
	})
}

// Clear empties the cart and persists the empty list.
func (s *Store) Clear() {
	s.mu.Lock()
	s.lines = nil
	s.persistLocked()
	s.mu.Unlock()
	s.emit()
}

// SetLineSelection toggles the selection flag. Selecting a line the identity
// already owns is rejected so owned items never re-enter the totals.
func (s *Store) SetLineSelection(itemID string, selected bool) error {
	s.mu.Lock()
	for i := range s.lines {
		if s.lines[i].ItemID != itemID {
			continue
		}
		if s.lines[i].Disabled && selected {
			s.mu.Unlock()
			return pkgerrors.New(pkgerrors.CodeConflict, "you already own this item")
		}
		s.lines[i].Selected = selected
		s.persistLocked()
		s.mu.Unlock()
		s.emit()
		return nil
	}
	s.mu.Unlock()
	return nil
}

// Subtotal sums price x quantity over selected, non-disabled lines.
func (s *Store) Subtotal() decimal.Decimal {
	s.mu.Lock()
	defer s.mu.Unlock()
	subtotal := decimal.Zero
	for _, line := range s.lines {
		if line.Selected && !line.Disabled {
			subtotal = subtotal.Add(line.Total())
		}
	}
	return subtotal
}

// SelectedItems snapshots the purchase intent: item id plus quantity for
// every selected, non-disabled line.
func (s *Store) SelectedItems() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	var selected []Line
	for _, line := range s.lines {
		if line.Selected && !line.Disabled {
			selected = append(selected, line)
		}
	}
	return selected
}

func (s *Store) snapshotLocked() []Line {
	return append([]Line(nil), s.lines...)
}

func (s *Store) emit() {
	s.mu.Lock()
	subscribers := append([]Subscriber(nil), s.subscribers...)
	lines := s.snapshotLocked()
	s.mu.Unlock()
	for _, fn := range subscribers {
		fn(append([]Line(nil), lines...))
	}
}

// recomputeDisabledLocked re-derives the disabled flag from the owned library
// and force-deselects newly owned lines. Returns true when anything changed.
func (s *Store) recomputeDisabledLocked() bool {
	changed := false
	for i := range s.lines {
		_, owned := s.library[s.lines[i].ItemID]
		if owned != s.lines[i].Disabled {
			s.lines[i].Disabled = owned
			changed = true
		}
		if owned && s.lines[i].Selected {
			s.lines[i].Selected = false
			changed = true
		}
	}
	return changed
}

func (s *Store) loadLocked() []Line {
	if s.activeUser == "" {
		return nil
	}
	raw, err := s.store.Get(context.Background(), CartKey(s.activeUser))
	if err != nil || raw == "" {
		return nil
	}
	var lines []Line
	if err := json.Unmarshal([]byte(raw), &lines); err != nil {
		s.logg.Warn(context.Background(), "discarding unreadable persisted cart")
		return nil
	}
	return lines
}

// persistLocked writes the complete line list for the active identity. The
// cart of a logged-out session stays in memory only.
func (s *Store) persistLocked() {
	if s.activeUser == "" {
		return
	}
	raw, err := json.Marshal(s.lines)
	if err != nil {
		s.logg.Warn(context.Background(), "encoding cart state failed")
		return
	}
	if err := s.store.Set(context.Background(), CartKey(s.activeUser), string(raw)); err != nil {
		s.logg.Warn(s.logg.WithField(context.Background(), "error", err.Error()), "persisting cart state failed")
	}
}

func (s *Store) syncRemote(what string, call func(ctx context.Context) error) {
	if s.remote == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.syncTimeout)
		defer cancel()
		if err := call(ctx); err != nil {
			s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), what+" sync failed")
		}
	}()
}
