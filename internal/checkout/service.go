package checkout

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/shopspring/decimal"
	"github.com/siriwatk/gamestore-client/internal/api"
	"github.com/siriwatk/gamestore-client/internal/cart"
	"github.com/siriwatk/gamestore-client/internal/session"
	pkgerrors "github.com/siriwatk/gamestore-client/pkg/errors"
	"github.com/siriwatk/gamestore-client/pkg/logger"
)

var minTopUp = decimal.NewFromInt(100)

var topUpMethods = map[string]struct{}{
	"ais": {}, "truemoney": {}, "qr": {}, "visa": {},
	"true": {}, "kplus": {}, "dtac": {}, "scb": {},
}

type sessionStore interface {
	Identity() (session.Identity, bool)
	Token() (string, bool)
	ApplyPurchase(itemIDs []string, newWallet decimal.Decimal)
	UpdateWallet(balance decimal.Decimal)
}

type cartStore interface {
	SelectedItems() []cart.Line
	Subtotal() decimal.Decimal
	Clear()
	Subscribe(fn cart.Subscriber)
}

type apiClient interface {
	ValidatePromo(ctx context.Context, code string, subtotal decimal.Decimal) (*api.PromoValidationResponse, error)
	CheckoutCart(ctx context.Context, items []api.CheckoutItem, promoCode string) (*api.CheckoutResponse, error)
	BuyGame(ctx context.Context, gameID string) (*api.BuyResponse, error)
	TopUp(ctx context.Context, amount decimal.Decimal, method string) (*api.TopUpResponse, error)
}

// Promo is the ephemeral promo application state. Discount is only ever
// derived from a server validation response; Invalid flags a rejected code
// for display.
type Promo struct {
	Code     string
	Discount decimal.Decimal
	Valid    bool
	Invalid  bool
}

// Totals is the display snapshot of the current cart economy.
type Totals struct {
	Subtotal decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// Result reports a completed purchase reconciliation.
type Result struct {
	PurchasedIDs []string
	NewWallet    decimal.Decimal
	Discount     decimal.Decimal
	FinalTotal   decimal.Decimal
}

// Service enforces the synchronization discipline between the session store,
// the cart store, and server truth: local state only moves on a successful
// server response and only with values from that response.
type Service struct {
	sessions sessionStore
	carts    cartStore
	api      apiClient
	logg     *logger.Logger

	// inFlight is the single re-submission guard for checkout, buy-now, and
	// top-up. Overlapping submissions fail fast rather than racing.
	inFlight atomic.Bool

	mu    sync.Mutex
	promo Promo
}

func NewService(sessions sessionStore, carts cartStore, client apiClient, logg *logger.Logger) *Service {
	s := &Service{
		sessions: sessions,
		carts:    carts,
		api:      client,
		logg:     logg,
	}
	// A promo belongs to the lines it was validated against; whoever empties
	// the cart, the pending discount goes with it.
	carts.Subscribe(func(lines []cart.Line) {
		if len(lines) == 0 {
			s.setPromo(Promo{})
		}
	})
	return s
}

// Promo returns the current promo application state.
func (s *Service) Promo() Promo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.promo
}

// Totals returns subtotal, discount, and total for display. The discount is
// the last server-validated amount, never a local guess; a discount larger
// than the subtotal clamps the total at zero.
func (s *Service) Totals() Totals {
	subtotal := s.carts.Subtotal()
	s.mu.Lock()
	discount := s.promo.Discount
	s.mu.Unlock()
	total := subtotal.Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	return Totals{
		Subtotal: subtotal,
		Discount: discount,
		Total:    total,
	}
}

// ApplyPromo validates a promo code against the current subtotal. The stored
// discount comes from the server response: a fixed discount verbatim, a
// percent discount interpreted against the subtotal the server validated.
// Rejection or failure resets the discount to zero and flags the promo
// invalid.
func (s *Service) ApplyPromo(ctx context.Context, code string) (Promo, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return s.Promo(), pkgerrors.New(pkgerrors.CodeValidation, "please enter a promo code")
	}

	subtotal := s.carts.Subtotal()
	res, err := s.api.ValidatePromo(ctx, code, subtotal)
	if err != nil {
		s.setPromo(Promo{Code: code, Invalid: true})
		return s.Promo(), err
	}

	if !res.Valid {
		s.setPromo(Promo{Code: code, Invalid: true})
		message := res.Message
		if message == "" {
			message = "this promo code cannot be used"
		}
		return s.Promo(), pkgerrors.New(pkgerrors.CodeValidation, message)
	}

	discount := res.DiscountValue
	if res.DiscountType != "fixed" {
		discount = subtotal.Mul(res.DiscountValue).Div(decimal.NewFromInt(100))
	}
	s.setPromo(Promo{Code: code, Discount: discount, Valid: true})
	return s.Promo(), nil
}

// Checkout submits the selected, non-disabled lines as purchase intent and,
// on success, applies the three reconciliation effects in an order no reader
// can observe half-done: library+wallet in one session snapshot, then cart
// clear, then promo reset. A failed call leaves everything untouched.
func (s *Service) Checkout(ctx context.Context) (*Result, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "another purchase is still in progress")
	}
	defer s.inFlight.Store(false)

	if _, ok := s.sessions.Identity(); !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "please log in before checking out")
	}
	if _, ok := s.sessions.Token(); !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "please log in before checking out")
	}

	intent := s.carts.SelectedItems()
	if len(intent) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no items selected for checkout")
	}

	items := make([]api.CheckoutItem, 0, len(intent))
	ids := make([]string, 0, len(intent))
	for _, line := range intent {
		items = append(items, api.CheckoutItem{GameID: line.ItemID, Quantity: line.Quantity})
		ids = append(ids, line.ItemID)
	}

	s.mu.Lock()
	promoCode := s.promo.Code
	if s.promo.Invalid {
		promoCode = ""
	}
	s.mu.Unlock()

	res, err := s.api.CheckoutCart(ctx, items, promoCode)
	if err != nil {
		return nil, err
	}

	s.sessions.ApplyPurchase(ids, res.NewWallet)
	s.carts.Clear()
	s.setPromo(Promo{})

	ctx = s.logg.WithFields(ctx, map[string]any{
		"items":      len(ids),
		"new_wallet": res.NewWallet.String(),
	})
	s.logg.Info(ctx, "checkout reconciled")

	return &Result{
		PurchasedIDs: ids,
		NewWallet:    res.NewWallet,
		Discount:     res.Discount,
		FinalTotal:   res.FinalTotal,
	}, nil
}

// BuyNow purchases a single item, bypassing the cart. An item already in the
// owned library blocks the attempt before any remote call.
func (s *Service) BuyNow(ctx context.Context, gameID string) (*Result, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "another purchase is still in progress")
	}
	defer s.inFlight.Store(false)

	identity, ok := s.sessions.Identity()
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "please log in before buying")
	}
	if identity.Owns(gameID) {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "you already own this item")
	}

	res, err := s.api.BuyGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	s.sessions.ApplyPurchase([]string{gameID}, res.NewWallet)

	return &Result{
		PurchasedIDs: []string{gameID},
		NewWallet:    res.NewWallet,
	}, nil
}

// TopUp requests a wallet top-up. The wallet is set from the balance the
// server reported for this response; only when the response omits it does the
// client fall back to current+amount, optimism bounded to the response
// already received.
func (s *Service) TopUp(ctx context.Context, amount decimal.Decimal, method string) (decimal.Decimal, error) {
	if !s.inFlight.CompareAndSwap(false, true) {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeConflict, "another operation is still in progress")
	}
	defer s.inFlight.Store(false)

	identity, ok := s.sessions.Identity()
	if !ok {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeUnauthorized, "please log in before topping up")
	}
	if amount.LessThan(minTopUp) {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "the minimum top-up is 100")
	}
	if _, ok := topUpMethods[strings.ToLower(method)]; !ok {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}

	res, err := s.api.TopUp(ctx, amount, strings.ToLower(method))
	if err != nil {
		return decimal.Zero, err
	}

	newWallet := identity.Wallet.Add(amount)
	if res.NewWallet != nil {
		newWallet = *res.NewWallet
	}
	s.sessions.UpdateWallet(newWallet)
	return newWallet, nil
}

// ClearPromo drops any pending promo state, e.g. when the cart is emptied.
func (s *Service) ClearPromo() {
	s.setPromo(Promo{})
}

func (s *Service) setPromo(promo Promo) {
	s.mu.Lock()
	s.promo = promo
	s.mu.Unlock()
}
