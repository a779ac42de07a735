package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/siriwatk/gamestore-client/internal/account"
	"github.com/siriwatk/gamestore-client/internal/admin"
	"github.com/siriwatk/gamestore-client/internal/api"
	"github.com/siriwatk/gamestore-client/internal/cart"
	"github.com/siriwatk/gamestore-client/internal/catalog"
	"github.com/siriwatk/gamestore-client/internal/checkout"
	"github.com/siriwatk/gamestore-client/internal/orders"
	"github.com/siriwatk/gamestore-client/internal/session"
	"github.com/siriwatk/gamestore-client/pkg/config"
	pkgerrors "github.com/siriwatk/gamestore-client/pkg/errors"
	"github.com/siriwatk/gamestore-client/pkg/kv"
	"github.com/siriwatk/gamestore-client/pkg/logger"
	"github.com/siriwatk/gamestore-client/pkg/metrics"
)

type app struct {
	sessions *session.Store
	carts    *cart.Store
	accounts *account.Service
	catalog  *catalog.Service
	checkout *checkout.Service
	orders   *orders.Service
	admin    *admin.Service
}

func main() {
	logg := logger.New(logger.Options{Component: "storefront"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		Component: "storefront",
		Level:     logger.ParseLevel(cfg.App.LogLevel),
		WarnStack: cfg.App.LogWarnStack,
	})

	store, closeStore, err := openStateStore(cfg)
	if err != nil {
		logg.Error(context.Background(), "failed to open state store", err)
		os.Exit(1)
	}
	defer func() {
		if err := closeStore(); err != nil {
			logg.Error(context.Background(), "error closing state store", err)
		}
	}()

	sessions := session.NewStore(store, logg)

	apiMetrics := metrics.NewAPIMetrics(prometheus.DefaultRegisterer)
	client, err := api.NewClient(cfg.API, sessions, logg, apiMetrics)
	if err != nil {
		logg.Error(context.Background(), "failed to build api client", err)
		os.Exit(1)
	}

	carts := cart.NewStore(store, sessions, client, cfg.API.SyncTimeout, logg)

	application := &app{
		sessions: sessions,
		carts:    carts,
		accounts: account.NewService(client, sessions, logg),
		catalog:  catalog.NewService(client, sessions, logg),
		checkout: checkout.NewService(sessions, carts, client, logg),
		orders:   orders.NewService(client, sessions),
		admin:    admin.NewService(client, sessions),
	}

	if err := application.run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, notice(err))
		os.Exit(1)
	}
}

func openStateStore(cfg *config.Config) (kv.Store, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Storage.Normalized() {
	case config.StorageMemory:
		return kv.NewMemory(), noop, nil
	case config.StorageFile:
		store, err := kv.NewFile(cfg.Storage.Path)
		return store, noop, err
	case config.StorageSQLite:
		store, err := kv.NewSQLite(cfg.Storage.Path)
		if err != nil {
			return nil, noop, err
		}
		return store, store.Close, nil
	case config.StorageRedis:
		store, err := kv.NewRedis(context.Background(), cfg.Redis)
		if err != nil {
			return nil, noop, err
		}
		return store, store.Close, nil
	}
	return nil, noop, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
}

func notice(err error) string {
	if typed := pkgerrors.As(err); typed != nil {
		return typed.Notice()
	}
	return err.Error()
}

func (a *app) run(args []string) error {
	if len(args) == 0 {
		usage()
		return nil
	}

	ctx := context.Background()
	command, rest := args[0], args[1:]

	switch command {
	case "register":
		return a.register(ctx, rest)
	case "login":
		return a.login(ctx, rest)
	case "logout":
		a.accounts.Logout()
		fmt.Println("logged out")
		return nil
	case "whoami":
		return a.whoami()
	case "games":
		return a.games(ctx, rest)
	case "top":
		return a.top(ctx)
	case "add":
		return a.add(ctx, rest)
	case "cart":
		return a.showCart()
	case "remove":
		return a.remove(rest)
	case "select":
		return a.selectLine(rest)
	case "promo":
		return a.promo(ctx, rest)
	case "checkout":
		return a.runCheckout(ctx)
	case "buy":
		return a.buy(ctx, rest)
	case "topup":
		return a.topup(ctx, rest)
	case "library":
		return a.library(ctx)
	case "history":
		return a.history(ctx)
	case "topups":
		return a.topups(ctx)
	case "transactions":
		return a.transactions(ctx)
	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func usage() {
	fmt.Println(`usage: storefront <command>

  register <name> <email> <password>    create an account
  login <identifier> <password>         log in
  logout                                log out
  whoami                                show the active identity
  games [search]                        browse the catalog
  top                                   best sellers
  add <game-id>                         add a game to the cart
  cart                                  show the cart and totals
  remove <game-id>                      remove a cart line
  select <game-id> <on|off>             toggle a line's selection
  promo <code>                          apply a promo code
  checkout                              check out the selected lines
  buy <game-id>                         buy one game directly
  topup <amount> <method>               top up the wallet
  library                               show owned games
  history                               show order history
  topups                                show top-up history
  transactions                          (admin) show all transactions`)
}

func (a *app) register(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return pkgerrors.New(pkgerrors.CodeValidation, "usage: register <name> <email> <password>")
	}
	userID, err := a.accounts.Register(ctx, api.RegisterInput{
		Name:     args[0],
		Email:    args[1],
		Password: args[2],
	})
	if err != nil {
		return err
	}
	fmt.Printf("registered, user id %s\n", userID)
	return nil
}

func (a *app) login(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return pkgerrors.New(pkgerrors.CodeValidation, "usage: login <identifier> <password>")
	}
	identity, err := a.accounts.Login(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	fmt.Printf("welcome %s (wallet %s)\n", identity.Name, identity.Wallet.StringFixed(2))
	return nil
}

func (a *app) whoami() error {
	identity, ok := a.sessions.Identity()
	if !ok {
		fmt.Println("not logged in")
		return nil
	}
	fmt.Printf("%s <%s> role=%s wallet=%s owned=%d\n",
		identity.Name, identity.Email, identity.Role, identity.Wallet.StringFixed(2), len(identity.Library))
	return nil
}

func (a *app) games(ctx context.Context, args []string) error {
	search := strings.Join(args, " ")
	views, err := a.catalog.Browse(ctx, search, "")
	for _, view := range views {
		marker := " "
		if view.Owned {
			marker = "*"
		}
		fmt.Printf("%s %-24s %-30s %s\n", marker, view.ID, view.Name, view.Price.StringFixed(2))
	}
	return err
}

func (a *app) top(ctx context.Context) error {
	views, err := a.catalog.Top(ctx, 10)
	for _, view := range views {
		fmt.Printf("%-30s sold=%d\n", view.Name, view.TotalSold)
	}
	return err
}

func (a *app) add(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "usage: add <game-id>")
	}
	view, err := a.catalog.Detail(ctx, args[0])
	if err != nil {
		return err
	}
	a.carts.AddLine(cart.Line{
		ItemID:      view.ID,
		Name:        view.Name,
		ImageURL:    view.ImageURL,
		Description: view.Description,
		UnitPrice:   view.Price,
		Quantity:    1,
		Selected:    true,
	})
	fmt.Printf("added %s to cart\n", view.Name)
	return nil
}

func (a *app) showCart() error {
	lines := a.carts.Lines()
	if len(lines) == 0 {
		fmt.Println("cart is empty")
		return nil
	}
	for _, line := range lines {
		state := " "
		switch {
		case line.Disabled:
			state = "owned"
		case line.Selected:
			state = "x"
		}
		fmt.Printf("[%s] %-24s %-30s x%d  %s\n", state, line.ItemID, line.Name, line.Quantity, line.Total().StringFixed(2))
	}
	totals := a.checkout.Totals()
	fmt.Printf("subtotal %s  discount %s  total %s\n",
		totals.Subtotal.StringFixed(2), totals.Discount.StringFixed(2), totals.Total.StringFixed(2))
	return nil
}

func (a *app) remove(args []string) error {
	if len(args) < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "usage: remove <game-id>")
	}
	a.carts.RemoveLine(args[0])
	fmt.Println("removed")
	return nil
}

func (a *app) selectLine(args []string) error {
	if len(args) < 2 {
		return pkgerrors.New(pkgerrors.CodeValidation, "usage: select <game-id> <on|off>")
	}
	return a.carts.SetLineSelection(args[0], args[1] == "on")
}

func (a *app) promo(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "usage: promo <code>")
	}
	promo, err := a.checkout.ApplyPromo(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Printf("promo %s applied, discount %s\n", promo.Code, promo.Discount.StringFixed(2))
	return nil
}

func (a *app) runCheckout(ctx context.Context) error {
	result, err := a.checkout.Checkout(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("purchased %d game(s), discount %s, paid %s, wallet %s\n",
		len(result.PurchasedIDs), result.Discount.StringFixed(2),
		result.FinalTotal.StringFixed(2), result.NewWallet.StringFixed(2))
	return nil
}

func (a *app) buy(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "usage: buy <game-id>")
	}
	result, err := a.checkout.BuyNow(ctx, args[0])
	if err != nil {
		return err
	}
	fmt.Printf("bought %s, wallet %s\n", args[0], result.NewWallet.StringFixed(2))
	return nil
}

func (a *app) topup(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return pkgerrors.New(pkgerrors.CodeValidation, "usage: topup <amount> <method>")
	}
	amount, err := decimal.NewFromString(args[0])
	if err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "amount must be a number")
	}
	wallet, err := a.checkout.TopUp(ctx, amount, args[1])
	if err != nil {
		return err
	}
	fmt.Printf("wallet is now %s\n", wallet.StringFixed(2))
	return nil
}

func (a *app) library(ctx context.Context) error {
	games, err := a.orders.Library(ctx)
	if err != nil {
		return err
	}
	for _, game := range games {
		fmt.Printf("%-24s %s\n", game.ID, game.Name)
	}
	return nil
}

func (a *app) history(ctx context.Context) error {
	history, err := a.orders.History(ctx)
	if err != nil {
		return err
	}
	for _, order := range history {
		fmt.Printf("%s  items=%d  total=%s  %s\n",
			order.ID, len(order.Items), order.FinalTotal.StringFixed(2), formatWhen(order.CreatedAt.Time))
	}
	return nil
}

func (a *app) topups(ctx context.Context) error {
	history, err := a.orders.TopUps(ctx)
	if err != nil {
		return err
	}
	for _, record := range history {
		fmt.Printf("%s  +%s via %s  %s\n",
			record.ID, record.Amount.StringFixed(2), record.Method, formatWhen(record.CreatedAt.Time))
	}
	return nil
}

func (a *app) transactions(ctx context.Context) error {
	transactions, err := a.admin.AllTransactions(ctx)
	if err != nil {
		return err
	}
	var total decimal.Decimal
	for _, tx := range transactions {
		total = total.Add(tx.Amount)
		fmt.Printf("%s  %-10s %-20s %s  %s\n",
			tx.ID, tx.Kind, tx.UserName, tx.Amount.StringFixed(2), formatWhen(tx.CreatedAt.Time))
	}
	fmt.Printf("total volume %s over %d transaction(s)\n", total.StringFixed(2), len(transactions))
	return nil
}

func formatWhen(when time.Time) string {
	if when.IsZero() {
		return "-"
	}
	return when.Local().Format("2006-01-02 15:04")
}
