package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction statuses and types.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
	StatusActive    = "active"

	TypePurchase = "purchase"
	TypeProp     = "prop"
)

// Transaction is an immutable ledger entry appended with every successful
// purchase. Rows are only ever inserted.
type Transaction struct {
	ID        string          `gorm:"primaryKey;size:36" json:"id"`
	UserID    string          `gorm:"index;size:36;not null" json:"user_id"`
	Type      string          `gorm:"size:20;not null" json:"type"`
	Amount    decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"amount"`
	Points    decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0" json:"points"`
	Status    string          `gorm:"size:20;not null" json:"status"`
	Timestamp time.Time       `gorm:"autoCreateTime" json:"timestamp"`
}

// PropPurchase tracks a pending prop unlock awaiting email verification.
type PropPurchase struct {
	ID        string          `gorm:"primaryKey;size:36" json:"id"`
	UserID    string          `gorm:"index;size:36;not null" json:"user_id"`
	Email     string          `gorm:"size:255;not null" json:"email"`
	Amount    decimal.Decimal `gorm:"type:decimal(20,8);not null" json:"amount"`
	Code      string          `gorm:"size:8;not null" json:"-"`
	Status    string          `gorm:"size:20;not null;default:'pending'" json:"status"`
	Timestamp time.Time       `gorm:"autoCreateTime" json:"timestamp"`
}

// PurchaseRequest is the processPurchase payload.
type PurchaseRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// PropPurchaseRequest is the processPropPurchase payload.
type PropPurchaseRequest struct {
	Email string `json:"email" binding:"required"`
}

// VerifyRequest is the verifyPropCode payload.
type VerifyRequest struct {
	Code string `json:"code" binding:"required"`
}

// Result is the uniform RPC response body.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
