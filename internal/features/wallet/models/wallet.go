package models

import (
	"github.com/shopspring/decimal"
)

// Deposit channels charge a flat network fee.
const (
	ChannelBEP20 = "BEP20"
	ChannelERC20 = "ERC20"
	ChannelTRC20 = "TRC20"
)

var (
	// MinimumDeposit is the smallest accepted deposit amount in USDT.
	MinimumDeposit = decimal.NewFromInt(5)

	// WithdrawalFloor is the lowest possible minimum withdrawal.
	WithdrawalFloor = decimal.NewFromInt(5)

	// SignupBonusAmount and FirstDepositBonusAmount are the flat one-time
	// task rewards.
	SignupBonusAmount       = decimal.NewFromInt(5)
	FirstDepositBonusAmount = decimal.NewFromInt(10)

	// ReferralBonusRate is paid per successful referral.
	ReferralBonusRate = decimal.NewFromInt(2)

	channelFees = map[string]decimal.Decimal{
		ChannelBEP20: decimal.NewFromFloat(0.5),
		ChannelERC20: decimal.NewFromInt(2),
		ChannelTRC20: decimal.NewFromInt(1),
	}
)

// FeeFor returns the network fee for a deposit channel; unknown channels
// carry no fee.
func FeeFor(channel string) decimal.Decimal {
	if fee, ok := channelFees[channel]; ok {
		return fee
	}
	return decimal.Zero
}

// DepositRequest is the deposit form payload.
type DepositRequest struct {
	Amount  decimal.Decimal `json:"amount" binding:"required"`
	Channel string          `json:"channel" binding:"required"`
}

// WithdrawRequest is the withdrawal form payload.
type WithdrawRequest struct {
	Amount  decimal.Decimal `json:"amount" binding:"required"`
	Address string          `json:"address" binding:"required"`
	Channel string          `json:"channel" binding:"required"`
}

// BalanceResponse reports the ledger fields a flow changed.
type BalanceResponse struct {
	Balance              decimal.Decimal `json:"balance"`
	Credited             decimal.Decimal `json:"credited,omitempty"`
	Debited              decimal.Decimal `json:"debited,omitempty"`
	Fee                  decimal.Decimal `json:"fee,omitempty"`
	ClaimedReferralBonus decimal.Decimal `json:"claimed_referral_bonus,omitempty"`
}
