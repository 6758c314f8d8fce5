package model

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	MinChallengeSize = 50
	MaxChallengeSize = 300
)

// Deposit describes where participants send their contribution.
type Deposit struct {
	BankName      string `json:"bank_name"`
	AccountName   string `json:"account_name"`
	AccountNumber string `json:"account_number"`
	NationalID    string `json:"national_id"`
	ContactPhone  string `json:"contact_phone"`
}

// ChallengeConfig is the single mutable configuration record.
type ChallengeConfig struct {
	ChallengeSize int             `json:"challenge_size"`
	UnitAmount    decimal.Decimal `json:"unit_amount"`
	Currency      string          `json:"currency"`
	Deposit       Deposit         `json:"deposit"`
	UpdatedAt     time.Time       `json:"-"`
}

// ValidChallengeSize reports whether n is an accepted challenge size.
func ValidChallengeSize(n int) bool {
	return n >= MinChallengeSize && n <= MaxChallengeSize
}

// AmountFor returns the amount a participant deposits for number.
func (c ChallengeConfig) AmountFor(number int) decimal.Decimal {
	return c.UnitAmount.Mul(decimal.NewFromInt(int64(number)))
}

// DepositInstructions is what a participant sees when reserving a number.
type DepositInstructions struct {
	Number   int             `json:"number"`
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
	Deposit  Deposit         `json:"deposit"`
}

// SetChallengeSizeRequest is the DTO for resizing the challenge.
type SetChallengeSizeRequest struct {
	ChallengeSize int `json:"challenge_size" validate:"required"`
}

// DepositPatch carries a partial deposit update; nil fields are left untouched.
type DepositPatch struct {
	BankName      *string `json:"bank_name" validate:"omitempty,max=255"`
	AccountName   *string `json:"account_name" validate:"omitempty,max=255"`
	AccountNumber *string `json:"account_number" validate:"omitempty,max=64"`
	NationalID    *string `json:"national_id" validate:"omitempty,max=64"`
	ContactPhone  *string `json:"contact_phone" validate:"omitempty,max=64"`
}

// Empty reports whether the patch changes nothing.
func (p DepositPatch) Empty() bool {
	return p.BankName == nil && p.AccountName == nil && p.AccountNumber == nil &&
		p.NationalID == nil && p.ContactPhone == nil
}
