package grpc

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/simaogato/ledger-backend/internal/domain"
)

// Limits bounds what a request may carry
type Limits struct {
	MaxAmount            decimal.Decimal
	MaxNameLength        int
	MaxDescriptionLength int
}

// DefaultLimits returns the limits used when none are configured
func DefaultLimits() Limits {
	return Limits{
		MaxAmount:            decimal.NewFromInt(1_000_000),
		MaxNameLength:        domain.MaxAccountNameLength,
		MaxDescriptionLength: domain.MaxDescriptionLength,
	}
}

func (l Limits) validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return status.Error(codes.InvalidArgument, "Account name is required")
	}
	if utf8.RuneCountInString(name) > l.MaxNameLength {
		return status.Errorf(codes.InvalidArgument, "Account name cannot exceed %d characters", l.MaxNameLength)
	}
	return nil
}

func (l Limits) parseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, status.Errorf(codes.InvalidArgument, "invalid amount format: %v", err)
	}
	// Bound the representation before any arithmetic rescales it
	if amount.Exponent() < -domain.MaxAmountScale {
		return decimal.Zero, status.Errorf(codes.InvalidArgument, "Amount cannot have more than %d decimal places", domain.MaxAmountScale)
	}
	if amount.Exponent() > domain.MaxAmountPrecision || amount.NumDigits() > domain.MaxAmountPrecision {
		return decimal.Zero, status.Errorf(codes.InvalidArgument, "Amount cannot have more than %d digits", domain.MaxAmountPrecision)
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, status.Error(codes.InvalidArgument, "Amount must be greater than zero")
	}
	if amount.GreaterThan(l.MaxAmount) {
		return decimal.Zero, status.Errorf(codes.InvalidArgument, "Amount cannot exceed %s", l.MaxAmount)
	}
	return amount, nil
}

func (l Limits) validateDescription(description string) error {
	if utf8.RuneCountInString(description) > l.MaxDescriptionLength {
		return status.Errorf(codes.InvalidArgument, "Description cannot exceed %d characters", l.MaxDescriptionLength)
	}
	return nil
}

func parseTransactionType(raw string) (domain.TransactionType, error) {
	txType, err := domain.ParseTransactionType(raw)
	if err != nil {
		return "", status.Error(codes.InvalidArgument, "Invalid transaction type")
	}
	return txType, nil
}

func parseID(field, raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, status.Errorf(codes.InvalidArgument, "invalid %s format: %v", field, err)
	}
	return id, nil
}
