package workflow

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/comexdata/customs_backend/config"
	"github.com/comexdata/customs_backend/models"
	"github.com/comexdata/customs_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// headerField pairs a comparable header value with its discrepancy field.
type headerField struct {
	field models.DiscrepancyField
	label string
	value func(*models.Declaration) decimal.Decimal
}

// Comparison order is fixed so re-executing crossing on identical input
// yields an identical discrepancy list.
var headerFields = []headerField{
	{models.DiscrepancyFieldTaxableBase, "Taxable base", func(d *models.Declaration) decimal.Decimal { return d.TaxableBase }},
	{models.DiscrepancyFieldTotalTaxes, "Total taxes", func(d *models.Declaration) decimal.Decimal { return d.TotalTaxes }},
	{models.DiscrepancyFieldFobValue, "FOB value", func(d *models.Declaration) decimal.Decimal { return d.FobValue }},
	{models.DiscrepancyFieldCifValue, "CIF value", func(d *models.Declaration) decimal.Decimal { return d.CifValue }},
	{models.DiscrepancyFieldFreightValue, "Freight value", func(d *models.Declaration) decimal.Decimal { return d.FreightValue }},
	{models.DiscrepancyFieldInsuranceValue, "Insurance value", func(d *models.Declaration) decimal.Decimal { return d.InsuranceValue }},
}

// CompareDeclarations computes the discrepancy list between a preliminary
// and a final declaration: header monetary fields first, then tariff lines
// matched by line number. Values within utils.MonetaryEpsilon are equal.
// Pure function; deterministic for identical input.
func CompareDeclarations(preliminary, final *models.Declaration) []models.Discrepancy {
	discrepancies := make([]models.Discrepancy, 0)

	for _, hf := range headerFields {
		prelimValue := hf.value(preliminary)
		finalValue := hf.value(final)
		if utils.MoneyEquals(prelimValue, finalValue) {
			continue
		}
		difference := finalValue.Sub(prelimValue)
		discrepancies = append(discrepancies, models.Discrepancy{
			Field:            hf.field,
			PreliminaryValue: prelimValue.StringFixed(2),
			FinalValue:       finalValue.StringFixed(2),
			Difference:       difference,
			Description: fmt.Sprintf("%s differs: preliminary %s, final %s (difference %s)",
				hf.label, prelimValue.StringFixed(2), finalValue.StringFixed(2), difference.StringFixed(2)),
		})
	}

	discrepancies = append(discrepancies, compareTariffLines(preliminary.TariffLines, final.TariffLines)...)
	return discrepancies
}

func compareTariffLines(preliminary, final []models.TariffLine) []models.Discrepancy {
	prelimByLine := make(map[int]*models.TariffLine, len(preliminary))
	for i := range preliminary {
		prelimByLine[preliminary[i].LineNumber] = &preliminary[i]
	}
	finalByLine := make(map[int]*models.TariffLine, len(final))
	for i := range final {
		finalByLine[final[i].LineNumber] = &final[i]
	}

	lineNumbers := make([]int, 0, len(prelimByLine)+len(finalByLine))
	for n := range prelimByLine {
		lineNumbers = append(lineNumbers, n)
	}
	for n := range finalByLine {
		if _, ok := prelimByLine[n]; !ok {
			lineNumbers = append(lineNumbers, n)
		}
	}
	sort.Ints(lineNumbers)

	discrepancies := make([]models.Discrepancy, 0)
	for _, n := range lineNumbers {
		lineNo := n
		prelimLine, inPrelim := prelimByLine[n]
		finalLine, inFinal := finalByLine[n]

		if !inFinal {
			discrepancies = append(discrepancies, models.Discrepancy{
				Field:            models.DiscrepancyFieldTariffLineMissing,
				LineNumber:       &lineNo,
				PreliminaryValue: prelimLine.TotalValue.StringFixed(2),
				FinalValue:       "-",
				Difference:       prelimLine.TotalValue.Neg(),
				Description:      fmt.Sprintf("Tariff line %d is present in the preliminary declaration but absent in the final one", n),
			})
			continue
		}
		if !inPrelim {
			discrepancies = append(discrepancies, models.Discrepancy{
				Field:            models.DiscrepancyFieldTariffLineMissing,
				LineNumber:       &lineNo,
				PreliminaryValue: "-",
				FinalValue:       finalLine.TotalValue.StringFixed(2),
				Difference:       finalLine.TotalValue,
				Description:      fmt.Sprintf("Tariff line %d is present in the final declaration but absent in the preliminary one", n),
			})
			continue
		}

		if !utils.MoneyEquals(prelimLine.Quantity, finalLine.Quantity) {
			difference := finalLine.Quantity.Sub(prelimLine.Quantity)
			discrepancies = append(discrepancies, models.Discrepancy{
				Field:            models.DiscrepancyFieldTariffLineQuantity,
				LineNumber:       &lineNo,
				PreliminaryValue: prelimLine.Quantity.String(),
				FinalValue:       finalLine.Quantity.String(),
				Difference:       difference,
				Description: fmt.Sprintf("Tariff line %d quantity differs: preliminary %s, final %s",
					n, prelimLine.Quantity.String(), finalLine.Quantity.String()),
			})
		}
		if !utils.MoneyEquals(prelimLine.TotalValue, finalLine.TotalValue) {
			difference := finalLine.TotalValue.Sub(prelimLine.TotalValue)
			discrepancies = append(discrepancies, models.Discrepancy{
				Field:            models.DiscrepancyFieldTariffLineValue,
				LineNumber:       &lineNo,
				PreliminaryValue: prelimLine.TotalValue.StringFixed(2),
				FinalValue:       finalLine.TotalValue.StringFixed(2),
				Difference:       difference,
				Description: fmt.Sprintf("Tariff line %d total value differs: preliminary %s, final %s (difference %s)",
					n, prelimLine.TotalValue.StringFixed(2), finalLine.TotalValue.StringFixed(2), difference.StringFixed(2)),
			})
		}
		if !utils.MoneyEquals(prelimLine.TaxAmount, finalLine.TaxAmount) {
			difference := finalLine.TaxAmount.Sub(prelimLine.TaxAmount)
			discrepancies = append(discrepancies, models.Discrepancy{
				Field:            models.DiscrepancyFieldTariffLineTax,
				LineNumber:       &lineNo,
				PreliminaryValue: prelimLine.TaxAmount.StringFixed(2),
				FinalValue:       finalLine.TaxAmount.StringFixed(2),
				Difference:       difference,
				Description: fmt.Sprintf("Tariff line %d tax amount differs: preliminary %s, final %s (difference %s)",
					n, prelimLine.TaxAmount.StringFixed(2), finalLine.TaxAmount.StringFixed(2), difference.StringFixed(2)),
			})
		}
	}
	return discrepancies
}

// ExecuteCrossing reconciles the operation's PRELIMINARY declaration against
// its FINAL one and stores the result, replacing any prior PENDING, MATCH or
// DISCREPANCY result. A RESOLVED result is never silently overwritten:
// re-execution against it fails unless the caller passes an explicit
// override.
func ExecuteCrossing(ctx context.Context, operationId int, override bool) (*models.CrossingResult, error) {
	db := config.GetDB()

	var crossingResult *models.CrossingResult

	releaseFastLock := tryRedisOperationLock(ctx, operationId)
	defer releaseFastLock()

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := AcquireOperationLock(tx, operationId); err != nil {
			return err
		}
		defer ReleaseOperationLock(tx, operationId)

		if _, err := models.GetOperationById(ctx, tx, operationId); err != nil {
			return err
		}

		prior, err := models.GetCrossingResult(ctx, tx, operationId)
		if err != nil && err != utils.ErrorRecordNotFound {
			return err
		}
		if prior != nil && prior.Status == models.CrossingStatusResolved && !override {
			return &utils.InvalidStateError{
				Status: string(prior.Status),
				Detail: "crossing result is resolved; pass override to re-execute",
			}
		}

		preliminary, err := models.GetDeclarationByType(ctx, tx, operationId, models.DeclarationTypePreliminary)
		if err != nil {
			return err
		}
		final, err := models.GetDeclarationByType(ctx, tx, operationId, models.DeclarationTypeFinal)
		if err != nil {
			return err
		}

		discrepancies := CompareDeclarations(preliminary, final)
		status := models.CrossingStatusMatch
		if len(discrepancies) > 0 {
			status = models.CrossingStatusDiscrepancy
		}

		crossingResult = &models.CrossingResult{
			OperationId:              operationId,
			PreliminaryDeclarationId: preliminary.ID,
			FinalDeclarationId:       final.ID,
			Status:                   status,
			Discrepancies:            discrepancies,
			ExecutedAt:               time.Now().UTC(),
		}
		return models.ReplaceCrossingResult(ctx, tx, crossingResult)
	})
	if err != nil {
		return nil, err
	}
	return crossingResult, nil
}
