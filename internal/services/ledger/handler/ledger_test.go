package handler

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"stocktrack/internal/apperrors"
	"stocktrack/internal/database/models"
)

func strPtr(s string) *string {
	return &s
}

func int64Ptr(i int64) *int64 {
	return &i
}

func decPtr(s string) *decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return &d
}

func validInput() MoveInput {
	return MoveInput{
		ItemID:     1,
		LocationID: int64Ptr(1),
		Type:       models.MoveTypeIn,
		Qty:        decimal.NewFromInt(10),
	}
}

func TestValidateMoveAcceptsValidInput(t *testing.T) {
	if err := validateMove(validInput()); err != nil {
		t.Fatalf("expected valid input to pass, got %v", err)
	}
}

func TestValidateMoveRejections(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*MoveInput)
		wantField string
	}{
		{"zero qty", func(in *MoveInput) { in.Qty = decimal.Zero }, "qty"},
		{"negative qty", func(in *MoveInput) { in.Qty = decimal.NewFromInt(-3) }, "qty"},
		{"missing item", func(in *MoveInput) { in.ItemID = 0 }, "itemId"},
		{"bad type", func(in *MoveInput) { in.Type = "TRANSFER" }, "type"},
		{"empty type", func(in *MoveInput) { in.Type = "" }, "type"},
		{"negative unit cost", func(in *MoveInput) { in.UnitCost = decPtr("-1") }, "unitCost"},
		{"negative sell price", func(in *MoveInput) { in.SellPrice = decPtr("-0.01") }, "sellPrice"},
		{"ref too long", func(in *MoveInput) { in.Ref = strPtr(strings.Repeat("r", 101)) }, "ref"},
		{"note too long", func(in *MoveInput) { in.Note = strPtr(strings.Repeat("n", 501)) }, "note"},
		{"user name too long", func(in *MoveInput) { in.UserName = strPtr(strings.Repeat("u", 101)) }, "userName"},
		{"both location forms", func(in *MoveInput) {
			in.LocationName = strPtr("Warehouse")
		}, "location"},
		{"neither location form", func(in *MoveInput) {
			in.LocationID = nil
		}, "location"},
		{"location name too long", func(in *MoveInput) {
			in.LocationID = nil
			in.LocationName = strPtr(strings.Repeat("l", 101))
		}, "locationName"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)

			err := validateMove(in)
			if err == nil {
				t.Fatal("expected a validation error, got nil")
			}
			if !apperrors.Is(err, apperrors.KindValidation) {
				t.Fatalf("expected a validation error, got %v", err)
			}
			var appErr *apperrors.Error
			if !asError(err, &appErr) || appErr.Field != tt.wantField {
				t.Errorf("expected field %q, got %v", tt.wantField, err)
			}
		})
	}
}

func asError(err error, target **apperrors.Error) bool {
	e, ok := err.(*apperrors.Error)
	if ok {
		*target = e
	}
	return ok
}

func TestValidateLocationRefAcceptsExactlyOneForm(t *testing.T) {
	if err := validateLocationRef(int64Ptr(3), nil); err != nil {
		t.Errorf("id form: expected nil, got %v", err)
	}
	if err := validateLocationRef(nil, strPtr("Warehouse")); err != nil {
		t.Errorf("name form: expected nil, got %v", err)
	}
	if err := validateLocationRef(nil, nil); !apperrors.Is(err, apperrors.KindValidation) {
		t.Errorf("neither form: expected validation error, got %v", err)
	}
	if err := validateLocationRef(int64Ptr(3), strPtr("Warehouse")); !apperrors.Is(err, apperrors.KindValidation) {
		t.Errorf("both forms: expected validation error, got %v", err)
	}
	// A zero id or empty name counts as absent, not as a supplied form.
	if err := validateLocationRef(int64Ptr(0), strPtr("Warehouse")); err != nil {
		t.Errorf("zero id with name: expected nil, got %v", err)
	}
	if err := validateLocationRef(int64Ptr(3), strPtr("")); err != nil {
		t.Errorf("id with empty name: expected nil, got %v", err)
	}
}
