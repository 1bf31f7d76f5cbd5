package models

import (
	"context"
	"time"

	"github.com/comexdata/customs_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GattForm holds the GATT Article 1 valuation adjustment for a declaration.
// One-to-one with the declaration; immutable once CompletedAt is set.
type GattForm struct {
	ID                  int             `gorm:"primary_key" json:"id"`
	DeclarationId       int             `gorm:"uniqueIndex;not null" json:"declaration_id" binding:"required"`
	CommercialLinks     *bool           `gorm:"not null;default:false" json:"commercial_links"`
	Commissions         decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"commissions"`
	UnrecordedTransport decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unrecorded_transport"`
	AdjustmentAmount    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"adjustment_amount"`
	Justification       string          `gorm:"type:text" json:"justification"`
	AdjustedTaxableBase decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"adjusted_taxable_base"`
	CompletedAt         *time.Time      `json:"completed_at"`
	CreatedAt           time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewGattForm struct {
	CommercialLinks     *bool           `json:"commercial_links" binding:"required"`
	Commissions         decimal.Decimal `json:"commissions"`
	UnrecordedTransport decimal.Decimal `json:"unrecorded_transport"`
	AdjustmentAmount    decimal.Decimal `json:"adjustment_amount"`
	Justification       string          `json:"justification"`
	Complete            bool            `json:"complete"`
}

func GetGattForm(ctx context.Context, tx *gorm.DB, declarationId int) (*GattForm, error) {
	var form GattForm
	err := tx.WithContext(ctx).Where("declaration_id = ?", declarationId).First(&form).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, utils.ErrorRecordNotFound
		}
		return nil, err
	}
	return &form, nil
}
