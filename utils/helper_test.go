package utils_test

import (
	"errors"
	"testing"

	"github.com/comexdata/customs_backend/utils"
	"github.com/shopspring/decimal"
)

func TestMoneyEquals(t *testing.T) {
	cases := []struct {
		a, b string
		want bool
	}{
		{"100.00", "100.00", true},
		{"100.00", "100.01", true},  // exactly epsilon
		{"100.00", "100.011", false},
		{"100.00", "99.99", true},
		{"-5.00", "-5.005", true},
		{"0", "0.02", false},
	}
	for _, tc := range cases {
		a, _ := decimal.NewFromString(tc.a)
		b, _ := decimal.NewFromString(tc.b)
		if got := utils.MoneyEquals(a, b); got != tc.want {
			t.Errorf("MoneyEquals(%s, %s) = %v, want %v", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestRoundMoney(t *testing.T) {
	in := decimal.NewFromFloat(19.996)
	if got := utils.RoundMoney(in); got.String() != "20" {
		t.Fatalf("RoundMoney(19.996) = %s", got)
	}
	in = decimal.NewFromFloat(19.994)
	if got := utils.RoundMoney(in); got.String() != "19.99" {
		t.Fatalf("RoundMoney(19.994) = %s", got)
	}
}

func TestErrorKind(t *testing.T) {
	err := error(&utils.InvalidTransitionError{From: "DRAFT", To: "CLOSED"})
	if got := utils.ErrorKind(err); got != utils.ErrKindInvalidTransition {
		t.Fatalf("ErrorKind = %q", got)
	}
	if got := utils.ErrorKind(errors.New("plain")); got != "" {
		t.Fatalf("ErrorKind(plain) = %q, want empty", got)
	}
}
