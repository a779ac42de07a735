package cart

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/siriwatk/gamestore-client/internal/session"
	pkgerrors "github.com/siriwatk/gamestore-client/pkg/errors"
	"github.com/siriwatk/gamestore-client/pkg/kv"
	"github.com/siriwatk/gamestore-client/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{Component: "test", Output: io.Discard})
}

type recordingSyncer struct {
	mu      sync.Mutex
	added   []string
	removed []string
	err     error
	calls   chan struct{}
}

func newRecordingSyncer() *recordingSyncer {
	return &recordingSyncer{calls: make(chan struct{}, 16)}
}

func (r *recordingSyncer) AddCartItem(ctx context.Context, itemID string, quantity int) error {
	r.mu.Lock()
	r.added = append(r.added, itemID)
	r.mu.Unlock()
	r.calls <- struct{}{}
	return r.err
}

func (r *recordingSyncer) RemoveCartItem(ctx context.Context, itemID string) error {
	r.mu.Lock()
	r.removed = append(r.removed, itemID)
	r.mu.Unlock()
	r.calls <- struct{}{}
	return r.err
}

func (r *recordingSyncer) wait(t *testing.T) {
	t.Helper()
	select {
	case <-r.calls:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for remote sync call")
	}
}

func testStores(t *testing.T, remote RemoteSyncer) (*session.Store, *Store, *kv.Memory) {
	t.Helper()
	mem := kv.NewMemory()
	sessions := session.NewStore(mem, testLogger())
	carts := NewStore(mem, sessions, remote, time.Second, testLogger())
	return sessions, carts, mem
}

func login(sessions *session.Store, userID string, library ...string) {
	sessions.SetIdentity(session.Identity{
		ID:      userID,
		Name:    "Tester",
		Role:    session.RoleUser,
		Token:   "tok-" + userID,
		Library: library,
	})
}

func line(id string, price int64) Line {
	return Line{
		ItemID:    id,
		Name:      "Game " + id,
		UnitPrice: decimal.NewFromInt(price),
		Quantity:  1,
		Selected:  true,
	}
}

func TestAddLineMergesQuantity(t *testing.T) {
	_, carts, _ := testStores(t, nil)

	carts.AddLine(line("g1", 100))
	carts.AddLine(line("g1", 100))

	lines := carts.Lines()
	if len(lines) != 1 {
		t.Fatalf("expected one merged line, got %d", len(lines))
	}
	if lines[0].Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", lines[0].Quantity)
	}
	if !carts.Subtotal().Equal(decimal.NewFromInt(200)) {
		t.Fatalf("subtotal %s, want 200", carts.Subtotal())
	}
}

func TestAddLineOwnedItemArrivesDisabled(t *testing.T) {
	sessions, carts, _ := testStores(t, nil)
	login(sessions, "u1", "g1")

	carts.AddLine(line("g1", 100))

	lines := carts.Lines()
	if !lines[0].Disabled || lines[0].Selected {
		t.Fatalf("owned line should be disabled and deselected: %+v", lines[0])
	}
	if !carts.Subtotal().IsZero() {
		t.Fatalf("disabled line leaked into subtotal: %s", carts.Subtotal())
	}
}

func TestLibraryGrowthDisablesAndDeselects(t *testing.T) {
	sessions, carts, _ := testStores(t, nil)
	login(sessions, "u1")

	carts.AddLine(line("g1", 100))
	carts.AddLine(line("g2", 50))

	sessions.AddToLibrary([]string{"g1"})

	var g1, g2 Line
	for _, l := range carts.Lines() {
		switch l.ItemID {
		case "g1":
			g1 = l
		case "g2":
			g2 = l
		}
	}
	if !g1.Disabled || g1.Selected {
		t.Fatalf("g1 should be disabled and deselected: %+v", g1)
	}
	if g2.Disabled || !g2.Selected {
		t.Fatalf("g2 should be untouched: %+v", g2)
	}
	if !carts.Subtotal().Equal(decimal.NewFromInt(50)) {
		t.Fatalf("subtotal %s, want 50", carts.Subtotal())
	}
}

func TestSetLineSelectionRejectsOwnedLine(t *testing.T) {
	sessions, carts, _ := testStores(t, nil)
	login(sessions, "u1", "g1")
	carts.AddLine(line("g1", 100))

	err := carts.SetLineSelection("g1", true)
	if pkgerrors.CodeOf(err) != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}

	// Deselecting a disabled line is allowed, toggling an absent line is a
	// silent no-op.
	if err := carts.SetLineSelection("g1", false); err != nil {
		t.Fatalf("deselect: %v", err)
	}
	if err := carts.SetLineSelection("missing", true); err != nil {
		t.Fatalf("absent line: %v", err)
	}
}

func TestIdentitySwitchSwapsPersistedCarts(t *testing.T) {
	sessions, carts, _ := testStores(t, nil)

	login(sessions, "u1")
	carts.AddLine(line("g1", 100))

	login(sessions, "u2")
	if len(carts.Lines()) != 0 {
		t.Fatalf("u2 should start with an empty cart, got %v", carts.Lines())
	}
	carts.AddLine(line("g9", 30))

	login(sessions, "u1")
	lines := carts.Lines()
	if len(lines) != 1 || lines[0].ItemID != "g1" {
		t.Fatalf("u1's cart should be restored, got %v", lines)
	}
}

func TestLogoutClearsVisibleCartButKeepsPersisted(t *testing.T) {
	sessions, carts, mem := testStores(t, nil)
	login(sessions, "u1")
	carts.AddLine(line("g1", 100))

	sessions.ClearIdentity()

	if len(carts.Lines()) != 0 {
		t.Fatal("visible cart should be empty after logout")
	}
	if _, err := mem.Get(context.Background(), CartKey("u1")); err != nil {
		t.Fatal("persisted cart should survive logout")
	}

	login(sessions, "u1")
	if len(carts.Lines()) != 1 {
		t.Fatal("cart should be restored on re-login")
	}
}

func TestLoginWithoutLibraryKeepsOwnedLinesDisabled(t *testing.T) {
	mem := kv.NewMemory()
	ctx := context.Background()
	if err := mem.Set(ctx, "library_u1", `["g1"]`); err != nil {
		t.Fatal(err)
	}
	persisted := `[{"id":"g1","name":"Game g1","imageUrl":"","description":"","price":"100","quantity":1,"selected":false,"disabled":true}]`
	if err := mem.Set(ctx, CartKey("u1"), persisted); err != nil {
		t.Fatal(err)
	}

	sessions := session.NewStore(mem, testLogger())
	carts := NewStore(mem, sessions, nil, time.Second, testLogger())

	// The login handshake response carries no library.
	sessions.SetIdentity(session.Identity{ID: "u1", Name: "Tester", Role: session.RoleUser, Token: "tok"})

	identity, _ := sessions.Identity()
	if !identity.Owns("g1") {
		t.Fatalf("persisted library lost after login: %v", identity.Library)
	}

	lines := carts.Lines()
	if len(lines) != 1 || !lines[0].Disabled || lines[0].Selected {
		t.Fatalf("owned line must stay disabled after login: %+v", lines)
	}
	if err := carts.SetLineSelection("g1", true); pkgerrors.CodeOf(err) != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict selecting an owned line, got %v", err)
	}
	if !carts.Subtotal().IsZero() {
		t.Fatalf("owned line leaked into subtotal: %s", carts.Subtotal())
	}
}

func TestSelectedItemsSkipDisabledAndDeselected(t *testing.T) {
	sessions, carts, _ := testStores(t, nil)
	login(sessions, "u1", "g3")

	carts.AddLine(line("g1", 100))
	carts.AddLine(line("g2", 50))
	carts.AddLine(line("g3", 10))
	if err := carts.SetLineSelection("g2", false); err != nil {
		t.Fatal(err)
	}

	selected := carts.SelectedItems()
	if len(selected) != 1 || selected[0].ItemID != "g1" {
		t.Fatalf("purchase intent should be g1 only, got %v", selected)
	}
}

func TestRemoveLineAbsentIsNoop(t *testing.T) {
	syncer := newRecordingSyncer()
	_, carts, _ := testStores(t, syncer)

	carts.RemoveLine("missing")

	select {
	case <-syncer.calls:
		t.Fatal("no remote sync expected for an absent line")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestMutationsMirrorToRemote(t *testing.T) {
	syncer := newRecordingSyncer()
	sessions, carts, _ := testStores(t, syncer)
	login(sessions, "u1")

	carts.AddLine(line("g1", 100))
	syncer.wait(t)
	carts.RemoveLine("g1")
	syncer.wait(t)

	syncer.mu.Lock()
	defer syncer.mu.Unlock()
	if len(syncer.added) != 1 || syncer.added[0] != "g1" {
		t.Fatalf("adds: %v", syncer.added)
	}
	if len(syncer.removed) != 1 || syncer.removed[0] != "g1" {
		t.Fatalf("removes: %v", syncer.removed)
	}
}

func TestRemoteFailureDoesNotRollBackLocalCart(t *testing.T) {
	syncer := newRecordingSyncer()
	syncer.err = pkgerrors.New(pkgerrors.CodeRemote, "server down")
	sessions, carts, _ := testStores(t, syncer)
	login(sessions, "u1")

	carts.AddLine(line("g1", 100))
	syncer.wait(t)

	if len(carts.Lines()) != 1 {
		t.Fatal("local cart must keep the line despite the failed sync")
	}
}

func TestSubscribeEmitsOnEveryChange(t *testing.T) {
	sessions, carts, _ := testStores(t, nil)
	login(sessions, "u1")

	var mu sync.Mutex
	var emissions [][]Line
	carts.Subscribe(func(lines []Line) {
		mu.Lock()
		emissions = append(emissions, lines)
		mu.Unlock()
	})

	carts.AddLine(line("g1", 100))
	carts.Clear()

	mu.Lock()
	defer mu.Unlock()
	// Immediate emit on subscribe, then one per mutation.
	if len(emissions) != 3 {
		t.Fatalf("expected 3 emissions, got %d", len(emissions))
	}
	if len(emissions[1]) != 1 || len(emissions[2]) != 0 {
		t.Fatalf("unexpected emission contents: %v", emissions)
	}
}
