package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account status values.
const (
	StatusActive = "active"
	StatusBanned = "banned"
)

// User is the full account record. Balance is the spendable USDT wallet
// balance; MainBalance and Points belong to the transactional purchase
// subsystem; PropBalance is the simulated-trading balance unlocked by the
// prop purchase flow.
type User struct {
	ID            string `gorm:"primaryKey;size:36" json:"id"`
	Email         string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	PasswordHash  string `gorm:"size:255" json:"-"`
	Name          string `gorm:"size:64" json:"name"`
	PhoneNumber   string `gorm:"size:32" json:"phone_number"`
	Avatar        string `gorm:"size:512" json:"avatar"`
	AccountStatus string `gorm:"size:20;default:'active'" json:"account_status"`

	Balance     decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0" json:"balance"`
	MainBalance decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0" json:"main_balance"`
	Points      decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0" json:"points"`
	PropBalance decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0" json:"prop_balance"`
	PropStatus  bool            `gorm:"default:false" json:"prop_status"`

	// MainBalanceInitialized marks whether the purchase subsystem has
	// applied the one-time starting balance.
	MainBalanceInitialized bool `gorm:"default:false" json:"-"`

	ReferralCode         string          `gorm:"uniqueIndex;size:16;not null" json:"referral_code"`
	ReferredBy           string          `gorm:"size:16" json:"referred_by,omitempty"`
	ReferralCount        int             `gorm:"default:0" json:"referral_count"`
	ClaimedReferralBonus decimal.Decimal `gorm:"type:decimal(20,8);not null;default:0" json:"claimed_referral_bonus"`

	HasSignupBonus              bool `gorm:"default:false" json:"has_signup_bonus"`
	HasSignupBonusClaimed       bool `gorm:"default:false" json:"has_signup_bonus_claimed"`
	HasFirstDepositBonus        bool `gorm:"default:false" json:"has_first_deposit_bonus"`
	HasFirstDepositBonusClaimed bool `gorm:"default:false" json:"has_first_deposit_bonus_claimed"`

	BotActivated bool      `gorm:"default:false" json:"bot_activated"`
	LastLogin    time.Time `json:"last_login"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserResponse is the public view of an account returned by the API.
type UserResponse struct {
	ID            string `json:"id"`
	Email         string `json:"email" example:"john@example.com"`
	Name          string `json:"name" example:"John"`
	PhoneNumber   string `json:"phone_number,omitempty"`
	Avatar        string `json:"avatar,omitempty"`
	AccountStatus string `json:"account_status" enums:"active,banned"`

	Balance     decimal.Decimal `json:"balance"`
	MainBalance decimal.Decimal `json:"main_balance"`
	Points      decimal.Decimal `json:"points"`
	PropBalance decimal.Decimal `json:"prop_balance"`
	PropStatus  bool            `json:"prop_status"`

	ReferralCode         string          `json:"referral_code"`
	ReferralCount        int             `json:"referral_count"`
	ClaimedReferralBonus decimal.Decimal `json:"claimed_referral_bonus"`

	HasSignupBonus              bool `json:"has_signup_bonus"`
	HasSignupBonusClaimed       bool `json:"has_signup_bonus_claimed"`
	HasFirstDepositBonus        bool `json:"has_first_deposit_bonus"`
	HasFirstDepositBonusClaimed bool `json:"has_first_deposit_bonus_claimed"`

	BotActivated bool      `json:"bot_activated"`
	LastLogin    time.Time `json:"last_login"`
	CreatedAt    time.Time `json:"created_at"`
}

// ProfileUpdate is the mutable subset of the profile.
type ProfileUpdate struct {
	Name        string `json:"name"`
	PhoneNumber string `json:"phone_number"`
	Avatar      string `json:"avatar"`
}
