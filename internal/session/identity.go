package session

import "github.com/shopspring/decimal"

// Roles the marketplace assigns at login.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Identity is the authenticated user's client-held profile snapshot. Wallet
// always holds the last server-confirmed balance; Library is the set of owned
// item ids, unique and unordered.
type Identity struct {
	ID           string
	Name         string
	Email        string
	Role         string
	Wallet       decimal.Decimal
	ProfileImage string
	Token        string
	Library      []string
}

// Owns reports whether the item id is already in the owned library.
func (i Identity) Owns(itemID string) bool {
	for _, id := range i.Library {
		if id == itemID {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the identity carries the admin role.
func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}

// clone returns a copy safe to hand to subscribers.
func (i Identity) clone() Identity {
	out := i
	if i.Library != nil {
		out.Library = append([]string(nil), i.Library...)
	}
	return out
}
