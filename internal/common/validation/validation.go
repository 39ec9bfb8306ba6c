package validation

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	MaxNameLength  = 64
	MaxEmailLength = 255

	MinPasswordLength = 8
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

	// Hex addresses for the EVM-style channels, base58 for TRON.
	evmAddressRegex  = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
	tronAddressRegex = regexp.MustCompile(`^T[1-9A-HJ-NP-Za-km-z]{33}$`)

	phoneRegex = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
)

// ValidateEmail checks a recipient or account email address.
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return fmt.Errorf("email cannot be empty")
	}
	if len(email) > MaxEmailLength {
		return fmt.Errorf("email cannot exceed %d characters", MaxEmailLength)
	}
	if !emailRegex.MatchString(email) {
		return fmt.Errorf("malformed email address")
	}
	return nil
}

// ValidateName checks a display name.
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if len(name) > MaxNameLength {
		return fmt.Errorf("name cannot exceed %d characters", MaxNameLength)
	}
	return nil
}

// ValidatePassword enforces the minimum password length.
func ValidatePassword(password string) error {
	if len(password) < MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters long", MinPasswordLength)
	}
	return nil
}

// ValidatePhone checks an optional phone number.
func ValidatePhone(phone string) error {
	if phone == "" {
		return nil
	}
	if !phoneRegex.MatchString(phone) {
		return fmt.Errorf("malformed phone number")
	}
	return nil
}

// ValidateAmount requires a strictly positive amount.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("amount must be positive")
	}
	return nil
}

// ValidateAddress checks a withdrawal address against the channel's format.
func ValidateAddress(address, channel string) error {
	address = strings.TrimSpace(address)
	if address == "" {
		return fmt.Errorf("address cannot be empty")
	}
	switch channel {
	case "TRC20":
		if !tronAddressRegex.MatchString(address) {
			return fmt.Errorf("invalid TRC20 address")
		}
	case "BEP20", "ERC20":
		if !evmAddressRegex.MatchString(address) {
			return fmt.Errorf("invalid %s address", channel)
		}
	}
	return nil
}
