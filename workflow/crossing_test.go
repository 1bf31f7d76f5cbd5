package workflow

import (
	"reflect"
	"testing"

	"github.com/comexdata/customs_backend/models"
	"github.com/shopspring/decimal"
)

func declarationFixture(declarationType models.DeclarationType) *models.Declaration {
	return &models.Declaration{
		DeclarationType: declarationType,
		FobValue:        decimal.NewFromInt(1000),
		FreightValue:    decimal.NewFromInt(150),
		InsuranceValue:  decimal.NewFromInt(20),
		CifValue:        decimal.NewFromInt(1170),
		TaxableBase:     decimal.NewFromInt(1170),
		TotalTaxes:      decimal.NewFromFloat(140.40),
		TariffLines: []models.TariffLine{
			{
				LineNumber: 1,
				TariffCode: "8471.30.00",
				Quantity:   decimal.NewFromInt(10),
				TotalValue: decimal.NewFromInt(700),
				TaxAmount:  decimal.NewFromInt(84),
			},
			{
				LineNumber: 2,
				TariffCode: "8473.30.00",
				Quantity:   decimal.NewFromInt(5),
				TotalValue: decimal.NewFromInt(470),
				TaxAmount:  decimal.NewFromFloat(56.40),
			},
		},
	}
}

func TestCompareDeclarationsIdenticalIsMatch(t *testing.T) {
	preliminary := declarationFixture(models.DeclarationTypePreliminary)
	final := declarationFixture(models.DeclarationTypeFinal)

	discrepancies := CompareDeclarations(preliminary, final)
	if len(discrepancies) != 0 {
		t.Fatalf("identical declarations produced %d discrepancies: %+v", len(discrepancies), discrepancies)
	}
}

func TestCompareDeclarationsWithinEpsilonIsMatch(t *testing.T) {
	preliminary := declarationFixture(models.DeclarationTypePreliminary)
	final := declarationFixture(models.DeclarationTypeFinal)
	// One cent of drift is within tolerance.
	final.CifValue = preliminary.CifValue.Add(decimal.NewFromFloat(0.01))

	if discrepancies := CompareDeclarations(preliminary, final); len(discrepancies) != 0 {
		t.Fatalf("0.01 drift should be tolerated, got %+v", discrepancies)
	}
}

func TestCompareDeclarationsHeaderDiscrepancy(t *testing.T) {
	preliminary := declarationFixture(models.DeclarationTypePreliminary)
	final := declarationFixture(models.DeclarationTypeFinal)
	preliminary.CifValue = decimal.NewFromInt(1200)
	final.CifValue = decimal.NewFromInt(1250)

	discrepancies := CompareDeclarations(preliminary, final)
	if len(discrepancies) != 1 {
		t.Fatalf("expected exactly one discrepancy, got %d: %+v", len(discrepancies), discrepancies)
	}
	d := discrepancies[0]
	if d.Field != models.DiscrepancyFieldCifValue {
		t.Fatalf("Field = %s, want CIF_VALUE", d.Field)
	}
	if d.PreliminaryValue != "1200.00" || d.FinalValue != "1250.00" {
		t.Fatalf("values = %s / %s", d.PreliminaryValue, d.FinalValue)
	}
	if !d.Difference.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("Difference = %s, want 50", d.Difference)
	}
}

func TestCompareDeclarationsLineMissingInFinal(t *testing.T) {
	preliminary := declarationFixture(models.DeclarationTypePreliminary)
	final := declarationFixture(models.DeclarationTypeFinal)
	final.TariffLines = final.TariffLines[:1]

	discrepancies := CompareDeclarations(preliminary, final)
	if len(discrepancies) != 1 {
		t.Fatalf("expected one discrepancy, got %+v", discrepancies)
	}
	d := discrepancies[0]
	if d.Field != models.DiscrepancyFieldTariffLineMissing {
		t.Fatalf("Field = %s, want TARIFF_LINE_MISSING", d.Field)
	}
	if d.LineNumber == nil || *d.LineNumber != 2 {
		t.Fatalf("LineNumber = %v, want 2", d.LineNumber)
	}
	if d.FinalValue != "-" {
		t.Fatalf("FinalValue = %q, want \"-\"", d.FinalValue)
	}
	if !d.Difference.Equal(decimal.NewFromInt(-470)) {
		t.Fatalf("Difference = %s, want -470", d.Difference)
	}
}

func TestCompareDeclarationsLineAddedInFinal(t *testing.T) {
	preliminary := declarationFixture(models.DeclarationTypePreliminary)
	final := declarationFixture(models.DeclarationTypeFinal)
	final.TariffLines = append(final.TariffLines, models.TariffLine{
		LineNumber: 3,
		TariffCode: "8504.40.00",
		Quantity:   decimal.NewFromInt(2),
		TotalValue: decimal.NewFromInt(90),
		TaxAmount:  decimal.NewFromFloat(10.80),
	})

	discrepancies := CompareDeclarations(preliminary, final)
	if len(discrepancies) != 1 {
		t.Fatalf("expected one discrepancy, got %+v", discrepancies)
	}
	d := discrepancies[0]
	if d.Field != models.DiscrepancyFieldTariffLineMissing {
		t.Fatalf("Field = %s, want TARIFF_LINE_MISSING", d.Field)
	}
	if d.PreliminaryValue != "-" {
		t.Fatalf("PreliminaryValue = %q, want \"-\"", d.PreliminaryValue)
	}
	if !d.Difference.Equal(decimal.NewFromInt(90)) {
		t.Fatalf("Difference = %s, want 90", d.Difference)
	}
}

func TestCompareDeclarationsLineFieldDiscrepancies(t *testing.T) {
	preliminary := declarationFixture(models.DeclarationTypePreliminary)
	final := declarationFixture(models.DeclarationTypeFinal)
	final.TariffLines[0].Quantity = decimal.NewFromInt(12)
	final.TariffLines[0].TotalValue = decimal.NewFromInt(840)
	final.TariffLines[0].TaxAmount = decimal.NewFromFloat(100.80)

	discrepancies := CompareDeclarations(preliminary, final)
	if len(discrepancies) != 3 {
		t.Fatalf("expected 3 discrepancies on line 1, got %d: %+v", len(discrepancies), discrepancies)
	}
	wantFields := []models.DiscrepancyField{
		models.DiscrepancyFieldTariffLineQuantity,
		models.DiscrepancyFieldTariffLineValue,
		models.DiscrepancyFieldTariffLineTax,
	}
	for i, want := range wantFields {
		if discrepancies[i].Field != want {
			t.Errorf("discrepancy[%d].Field = %s, want %s", i, discrepancies[i].Field, want)
		}
		if discrepancies[i].LineNumber == nil || *discrepancies[i].LineNumber != 1 {
			t.Errorf("discrepancy[%d].LineNumber = %v, want 1", i, discrepancies[i].LineNumber)
		}
	}
}

// Crossing must be deterministic: the same pair of declarations always yields
// the same discrepancy list, in the same order.
func TestCompareDeclarationsDeterministic(t *testing.T) {
	preliminary := declarationFixture(models.DeclarationTypePreliminary)
	final := declarationFixture(models.DeclarationTypeFinal)
	final.TaxableBase = decimal.NewFromInt(1300)
	final.TariffLines[1].TotalValue = decimal.NewFromInt(500)
	final.TariffLines = append(final.TariffLines, models.TariffLine{
		LineNumber: 7,
		TariffCode: "9999.99.99",
		TotalValue: decimal.NewFromInt(10),
	})

	first := CompareDeclarations(preliminary, final)
	for i := 0; i < 50; i++ {
		again := CompareDeclarations(preliminary, final)
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d produced a different discrepancy list:\nfirst: %+v\nagain: %+v", i, first, again)
		}
	}
}
