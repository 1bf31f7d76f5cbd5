package utils

import (
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// MonetaryEpsilon is the tolerance used when comparing monetary values.
// Values are fixed-point decimals, but upstream systems occasionally round
// differently at the last place; treat differences <= 0.01 as equal.
var MonetaryEpsilon = decimal.NewFromFloat(0.01)

// RoundMoney rounds to 2 decimal places (currency units).
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// MoneyEquals reports whether two monetary values agree within MonetaryEpsilon.
func MoneyEquals(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(MonetaryEpsilon)
}

func ProcessValidationErrors(err error) map[string]string {

	validationErrors := err.(validator.ValidationErrors)

	errorResponse := make(map[string]string)

	for _, ve := range validationErrors {
		errorResponse[ve.Field()] = ve.Tag()
	}

	return errorResponse
}

func NewTrue() *bool {
	b := true
	return &b
}
