package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Deposit-token statuses.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
)

// MaturationWindow is how long a consumed deposit token ripens before its
// payout is credited to the owner's prop balance.
const MaturationWindow = 5 * 24 * time.Hour

// DepositToken is one deposit attempt, created by the external
// confirmation process and consumed by bot activation. After the
// maturation window the payout is credited and the record deleted.
type DepositToken struct {
	ID          string          `gorm:"primaryKey;size:36" json:"id"`
	UserID      string          `gorm:"index;size:36;not null" json:"user_id"`
	Token       string          `gorm:"size:64;not null" json:"token"`
	Password    string          `gorm:"size:255" json:"-"`
	Status      string          `gorm:"size:20;not null;default:'pending'" json:"status"`
	WeeklySales decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0" json:"weekly_sales"`
	Price       decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0" json:"price"`
	Email       string          `gorm:"size:255" json:"email"`
	Activated   bool            `gorm:"default:false" json:"activated"`
	Timestamp   time.Time       `gorm:"autoCreateTime" json:"timestamp"`
}

// Payout is the prop-balance credit a matured token yields.
func (t *DepositToken) Payout() decimal.Decimal {
	return t.Price.Mul(t.WeeklySales)
}

// Matured reports whether the activated token has passed its window.
func (t *DepositToken) Matured(now time.Time) bool {
	return t.Activated && now.Sub(t.Timestamp) >= MaturationWindow
}

// ListedToken is a listing created from an unlisted deposit token, deleted
// by the owning user on demand.
type ListedToken struct {
	ID          string          `gorm:"primaryKey;size:36" json:"id"`
	TokenID     string          `gorm:"index;size:36;not null" json:"token_id"`
	RandomToken string          `gorm:"size:64;not null" json:"random_token"`
	Password    string          `gorm:"size:255" json:"-"`
	UserID      string          `gorm:"index;size:36;not null" json:"user_id"`
	Name        string          `gorm:"size:64;not null" json:"name"`
	Supply      decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0" json:"supply"`
	ListedAt    time.Time       `gorm:"autoCreateTime" json:"listed_at"`
}

// CreateDepositTokenRequest is posted by the external confirmation process.
type CreateDepositTokenRequest struct {
	UserID      string          `json:"user_id" binding:"required"`
	Token       string          `json:"token" binding:"required"`
	Password    string          `json:"password"`
	Status      string          `json:"status"`
	WeeklySales decimal.Decimal `json:"weekly_sales"`
	Price       decimal.Decimal `json:"price"`
	Email       string          `json:"email"`
}

// ListTokenRequest creates a listing for an owned deposit token.
type ListTokenRequest struct {
	TokenID string          `json:"token_id" binding:"required"`
	Name    string          `json:"name" binding:"required"`
	Supply  decimal.Decimal `json:"supply"`
}
