package validator

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type sample struct {
	ID    uuid.UUID       `validate:"uuid_required"`
	Name  string          `validate:"required"`
	Price decimal.Decimal `validate:"dec_gte=0"`
	Value decimal.Decimal `validate:"dec_gt=0"`
}

func TestValidateAcceptsValidStruct(t *testing.T) {
	s := sample{ID: uuid.New(), Name: "x", Price: decimal.Zero, Value: decimal.RequireFromString("0.01")}
	if err := Validate(&s); err != nil {
		t.Fatalf("expected valid struct, got %v", err)
	}
}

func TestValidateCollectsEveryField(t *testing.T) {
	s := sample{Price: decimal.NewFromInt(-1), Value: decimal.Zero}
	err := Validate(&s)

	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
	if len(verr.Fields) != 4 {
		t.Fatalf("expected 4 failed fields, got %d (%v)", len(verr.Fields), verr)
	}
}
