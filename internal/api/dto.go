package api

import (
	"github.com/shopspring/decimal"
	"github.com/siriwatk/gamestore-client/pkg/timeutil"
)

// Game is a catalog item as the marketplace returns it.
type Game struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Price       decimal.Decimal   `json:"price"`
	CategoryID  string            `json:"categoryId"`
	Description string            `json:"description,omitempty"`
	ImageURL    string            `json:"imageUrl,omitempty"`
	TotalSold   int               `json:"totalSold,omitempty"`
	ReleasedAt  timeutil.FlexTime `json:"releasedAt,omitempty"`
}

type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type RegisterRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	ProfileImage string `json:"profileImage,omitempty"`
}

type RegisterResponse struct {
	Success bool   `json:"success"`
	UserID  string `json:"userId,omitempty"`
	Message string `json:"message,omitempty"`
}

type LoginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

type LoginResponse struct {
	Success      bool            `json:"success"`
	UserID       string          `json:"userId,omitempty"`
	Name         string          `json:"name,omitempty"`
	Email        string          `json:"email,omitempty"`
	Role         string          `json:"role,omitempty"`
	Wallet       decimal.Decimal `json:"wallet,omitempty"`
	ProfileImage string          `json:"profileImage,omitempty"`
	Token        string          `json:"token,omitempty"`
	Message      string          `json:"message,omitempty"`
}

type UpdateProfileRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type UpdateProfileResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	User    *struct {
		UserID       string          `json:"userId"`
		Name         string          `json:"name"`
		Email        string          `json:"email"`
		Role         string          `json:"role"`
		Wallet       decimal.Decimal `json:"wallet"`
		ProfileImage string          `json:"profileImage"`
	} `json:"user,omitempty"`
}

// BuyResponse carries the authoritative wallet balance after a direct
// purchase. The client never recomputes the balance itself.
type BuyResponse struct {
	Success   bool            `json:"success"`
	NewWallet decimal.Decimal `json:"newWallet,omitempty"`
	Order     *OrderSummary   `json:"order,omitempty"`
	Message   string          `json:"message,omitempty"`
}

type OrderSummary struct {
	ID        string            `json:"id,omitempty"`
	GameID    string            `json:"gameId,omitempty"`
	Total     decimal.Decimal   `json:"total,omitempty"`
	Message   string            `json:"message,omitempty"`
	CreatedAt timeutil.FlexTime `json:"createdAt,omitempty"`
}

type Order struct {
	ID         string            `json:"id"`
	Items      []OrderItem       `json:"items,omitempty"`
	Discount   decimal.Decimal   `json:"discount,omitempty"`
	FinalTotal decimal.Decimal   `json:"finalTotal,omitempty"`
	CreatedAt  timeutil.FlexTime `json:"createdAt,omitempty"`
}

type OrderItem struct {
	GameID   string          `json:"gameId"`
	Name     string          `json:"name,omitempty"`
	Price    decimal.Decimal `json:"price,omitempty"`
	Quantity int             `json:"quantity"`
}

type TopUpRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method"`
}

type TopUpResponse struct {
	Success   bool             `json:"success"`
	NewWallet *decimal.Decimal `json:"newWallet,omitempty"`
	Message   string           `json:"message,omitempty"`
}

type TopUpRecord struct {
	ID        string            `json:"id,omitempty"`
	Amount    decimal.Decimal   `json:"amount"`
	Method    string            `json:"method,omitempty"`
	Status    string            `json:"status,omitempty"`
	CreatedAt timeutil.FlexTime `json:"createdAt,omitempty"`
}

type PromoValidationRequest struct {
	PromoCode string          `json:"promoCode"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

type PromoValidationResponse struct {
	Valid         bool            `json:"valid"`
	DiscountType  string          `json:"discountType,omitempty"`
	DiscountValue decimal.Decimal `json:"discountValue,omitempty"`
	Message       string          `json:"message,omitempty"`
}

// CheckoutItem is one line of purchase intent: item id plus quantity.
type CheckoutItem struct {
	GameID   string `json:"gameId"`
	Quantity int    `json:"quantity"`
}

type CheckoutRequest struct {
	Items     []CheckoutItem `json:"items"`
	PromoCode string         `json:"promoCode,omitempty"`
}

type CheckoutResponse struct {
	Success    bool            `json:"success"`
	NewWallet  decimal.Decimal `json:"newWallet,omitempty"`
	Discount   decimal.Decimal `json:"discount,omitempty"`
	FinalTotal decimal.Decimal `json:"finalTotal,omitempty"`
	Message    string          `json:"message,omitempty"`
}

type CartSyncRequest struct {
	GameID   string `json:"gameId"`
	Quantity int    `json:"quantity,omitempty"`
}

// Discount is an admin-managed promo code definition.
type Discount struct {
	ID          string            `json:"id,omitempty"`
	Code        string            `json:"code"`
	Type        string            `json:"type"`
	Value       decimal.Decimal   `json:"value"`
	MinSpend    *decimal.Decimal  `json:"minSpend,omitempty"`
	MaxDiscount *decimal.Decimal  `json:"maxDiscount,omitempty"`
	UsageLimit  *int              `json:"usageLimit,omitempty"`
	UsedCount   int               `json:"usedCount,omitempty"`
	ExpireAt    timeutil.FlexTime `json:"expireAt,omitempty"`
	IsActive    bool              `json:"isActive"`
	CreatedAt   timeutil.FlexTime `json:"createdAt,omitempty"`
}

type Transaction struct {
	ID        string            `json:"id"`
	UserID    string            `json:"userId,omitempty"`
	UserName  string            `json:"userName,omitempty"`
	Kind      string            `json:"kind,omitempty"`
	Amount    decimal.Decimal   `json:"amount"`
	CreatedAt timeutil.FlexTime `json:"createdAt,omitempty"`
}

type RankingEntry struct {
	GameID    string          `json:"gameId"`
	Name      string          `json:"name,omitempty"`
	TotalSold int             `json:"totalSold"`
	Revenue   decimal.Decimal `json:"revenue,omitempty"`
}

type statusResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}
