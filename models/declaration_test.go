package models_test

import (
	"testing"

	"github.com/comexdata/customs_backend/models"
	"github.com/shopspring/decimal"
)

func TestDeriveInsuranceValue(t *testing.T) {
	fob := decimal.NewFromInt(1000)
	got := models.DeriveInsuranceValue(fob)
	want := decimal.NewFromFloat(20.00)
	if !got.Equal(want) {
		t.Fatalf("insurance for FOB 1000 = %s, want %s", got, want)
	}
}

func TestDeriveInsuranceValueRounds(t *testing.T) {
	// 2% of 1234.56 is 24.6912, which must round to 24.69.
	fob := decimal.NewFromFloat(1234.56)
	got := models.DeriveInsuranceValue(fob)
	want := decimal.NewFromFloat(24.69)
	if !got.Equal(want) {
		t.Fatalf("insurance for FOB 1234.56 = %s, want %s", got, want)
	}
}

func TestDeriveCifValue(t *testing.T) {
	fob := decimal.NewFromInt(1000)
	freight := decimal.NewFromInt(150)
	insurance := models.DeriveInsuranceValue(fob)
	got := models.DeriveCifValue(fob, freight, insurance)
	want := decimal.NewFromFloat(1170.00)
	if !got.Equal(want) {
		t.Fatalf("CIF = %s, want %s", got, want)
	}
}

func TestParseDeclarationType(t *testing.T) {
	if _, err := models.ParseDeclarationType("PRELIMINARY"); err != nil {
		t.Fatalf("PRELIMINARY: %v", err)
	}
	if _, err := models.ParseDeclarationType("FINAL"); err != nil {
		t.Fatalf("FINAL: %v", err)
	}
	if _, err := models.ParseDeclarationType("AMENDED"); err == nil {
		t.Fatal("expected error for unknown declaration type")
	}
}

func TestInspectionTypeGattRequirement(t *testing.T) {
	cases := []struct {
		inspection models.InspectionType
		want       bool
	}{
		{models.InspectionTypeExpresso, false},
		{models.InspectionTypeVisual, true},
		{models.InspectionTypeFisica, true},
	}
	for _, tc := range cases {
		if got := tc.inspection.RequiresGattAdjustment(); got != tc.want {
			t.Errorf("RequiresGattAdjustment(%s) = %v, want %v", tc.inspection, got, tc.want)
		}
	}
}
