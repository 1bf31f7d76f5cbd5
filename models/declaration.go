package models

import (
	"context"
	"time"

	"github.com/comexdata/customs_backend/config"
	"github.com/comexdata/customs_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// insuranceRate: declared insurance defaults to 2% of FOB at intake.
// This mirrors the derivation used for existing declarations; do not change
// without a data migration.
var insuranceRate = decimal.NewFromFloat(0.02)

// Declaration is a customs filing, PRELIMINARY (pre-shipment estimate) or
// FINAL (post-arrival actual). At most one of each type per operation,
// enforced at intake.
type Declaration struct {
	ID              int             `gorm:"primary_key" json:"id"`
	OperationId     int             `gorm:"index;not null" json:"operation_id" binding:"required"`
	DeclarationType DeclarationType `gorm:"type:enum('PRELIMINARY','FINAL');not null" json:"declaration_type" binding:"required"`
	DeclarationNo   string          `gorm:"size:50" json:"declaration_no"`
	FobValue        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"fob_value"`
	FreightValue    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"freight_value"`
	InsuranceValue  decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"insurance_value"`
	CifValue        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"cif_value"`
	TaxableBase     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"taxable_base"`
	TotalTaxes      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_taxes"`
	GattMethod      string          `gorm:"size:100" json:"gatt_method"`
	TariffLines     []TariffLine    `gorm:"foreignKey:DeclarationId" json:"tariff_lines"`
	GattForm        *GattForm       `gorm:"foreignKey:DeclarationId" json:"gatt_form"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

// TariffLine is one line item of a declaration with its own tax computation.
// LineNumber is the cross-declaration matching key for crossing.
type TariffLine struct {
	ID            int             `gorm:"primary_key" json:"id"`
	DeclarationId int             `gorm:"index;not null" json:"declaration_id" binding:"required"`
	LineNumber    int             `gorm:"not null" json:"line_number" binding:"required"`
	TariffCode    string          `gorm:"size:20;not null" json:"tariff_code" binding:"required"`
	Quantity      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"quantity"`
	UnitValue     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_value"`
	TotalValue    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_value"`
	TaxRate       decimal.Decimal `gorm:"type:decimal(10,4);default:0" json:"tax_rate"`
	TaxAmount     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"tax_amount"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewDeclaration struct {
	DeclarationType string          `json:"declaration_type" binding:"required,oneof=PRELIMINARY FINAL"`
	DeclarationNo   string          `json:"declaration_no"`
	FobValue        decimal.Decimal `json:"fob_value"`
	FreightValue    decimal.Decimal `json:"freight_value"`
	TotalTaxes      decimal.Decimal `json:"total_taxes"`
	GattMethod      string          `json:"gatt_method"`
	TaxableBase     *decimal.Decimal `json:"taxable_base"`
	TariffLines     []NewTariffLine `json:"tariff_lines" binding:"dive"`
}

type NewTariffLine struct {
	LineNumber int             `json:"line_number" binding:"required"`
	TariffCode string          `json:"tariff_code" binding:"required"`
	Quantity   decimal.Decimal `json:"quantity"`
	UnitValue  decimal.Decimal `json:"unit_value"`
	TotalValue decimal.Decimal `json:"total_value"`
	TaxRate    decimal.Decimal `json:"tax_rate"`
	TaxAmount  decimal.Decimal `json:"tax_amount"`
}

// DeriveInsuranceValue computes the default declared insurance: 2% of FOB,
// rounded to 2 decimal places.
func DeriveInsuranceValue(fobValue decimal.Decimal) decimal.Decimal {
	return utils.RoundMoney(fobValue.Mul(insuranceRate))
}

// DeriveCifValue computes CIF = FOB + freight + insurance, rounded to 2
// decimal places.
func DeriveCifValue(fobValue, freightValue, insuranceValue decimal.Decimal) decimal.Decimal {
	return utils.RoundMoney(fobValue.Add(freightValue).Add(insuranceValue))
}

// CreateDeclaration performs declaration intake: derives insurance, CIF and
// the default taxable base, enforces the one-PRELIMINARY/one-FINAL rule, and
// persists the declaration with its tariff lines.
func CreateDeclaration(ctx context.Context, operationId int, input NewDeclaration) (*Declaration, error) {
	db := config.GetDB()

	declarationType, err := ParseDeclarationType(input.DeclarationType)
	if err != nil {
		return nil, &utils.ValidationError{Field: "declaration_type", Detail: err.Error()}
	}

	var declaration *Declaration
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := GetOperationById(ctx, tx, operationId); err != nil {
			return err
		}

		var count int64
		if err := tx.WithContext(ctx).Model(&Declaration{}).
			Where("operation_id = ? AND declaration_type = ?", operationId, declarationType).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return &utils.InvalidStateError{
				Status: string(declarationType),
				Detail: "operation already has a declaration of this type",
			}
		}

		insuranceValue := DeriveInsuranceValue(input.FobValue)
		cifValue := DeriveCifValue(input.FobValue, input.FreightValue, insuranceValue)
		// Taxable base mirrors CIF by default; the caller may override and it
		// remains independently editable afterwards.
		taxableBase := cifValue
		if input.TaxableBase != nil {
			taxableBase = utils.RoundMoney(*input.TaxableBase)
		}

		declaration = &Declaration{
			OperationId:     operationId,
			DeclarationType: declarationType,
			DeclarationNo:   input.DeclarationNo,
			FobValue:        input.FobValue,
			FreightValue:    input.FreightValue,
			InsuranceValue:  insuranceValue,
			CifValue:        cifValue,
			TaxableBase:     taxableBase,
			TotalTaxes:      input.TotalTaxes,
			GattMethod:      input.GattMethod,
		}
		for _, line := range input.TariffLines {
			declaration.TariffLines = append(declaration.TariffLines, TariffLine{
				LineNumber: line.LineNumber,
				TariffCode: line.TariffCode,
				Quantity:   line.Quantity,
				UnitValue:  line.UnitValue,
				TotalValue: line.TotalValue,
				TaxRate:    line.TaxRate,
				TaxAmount:  line.TaxAmount,
			})
		}

		return tx.WithContext(ctx).Create(declaration).Error
	})
	if err != nil {
		return nil, err
	}
	return declaration, nil
}

// GetDeclarationByType loads one declaration variant of an operation with its
// tariff lines ordered by line number.
func GetDeclarationByType(ctx context.Context, tx *gorm.DB, operationId int, declarationType DeclarationType) (*Declaration, error) {
	var declaration Declaration
	err := tx.WithContext(ctx).
		Preload("TariffLines", func(db *gorm.DB) *gorm.DB {
			return db.Order("line_number ASC")
		}).
		Where("operation_id = ? AND declaration_type = ?", operationId, declarationType).
		First(&declaration).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, &utils.MissingDeclarationError{
				OperationId:     operationId,
				DeclarationType: string(declarationType),
			}
		}
		return nil, err
	}
	return &declaration, nil
}
