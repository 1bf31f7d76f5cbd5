package workflow

import (
	"errors"
	"testing"

	"github.com/comexdata/customs_backend/models"
	"github.com/comexdata/customs_backend/utils"
)

func TestValidateResolutionRejectsEmptyComment(t *testing.T) {
	for _, comment := range []string{"", "   ", "\t\n"} {
		err := validateResolution(models.CrossingStatusDiscrepancy, comment)
		var validationErr *utils.ValidationError
		if !errors.As(err, &validationErr) {
			t.Fatalf("validateResolution(DISCREPANCY, %q) = %v, want ValidationError", comment, err)
		}
		if validationErr.Field != "comment" {
			t.Fatalf("Field = %q, want comment", validationErr.Field)
		}
	}
}

func TestValidateResolutionRejectsNonDiscrepancyStatuses(t *testing.T) {
	for _, status := range []models.CrossingStatus{
		models.CrossingStatusPending,
		models.CrossingStatusMatch,
		models.CrossingStatusResolved,
	} {
		err := validateResolution(status, "verified against shipping docs")
		var invalidState *utils.InvalidStateError
		if !errors.As(err, &invalidState) {
			t.Fatalf("validateResolution(%s) = %v, want InvalidStateError", status, err)
		}
		if invalidState.Status != string(status) {
			t.Fatalf("error status = %s, want %s", invalidState.Status, status)
		}
	}
}

func TestValidateResolutionAcceptsDiscrepancyWithComment(t *testing.T) {
	if err := validateResolution(models.CrossingStatusDiscrepancy, "quantity confirmed by warehouse count"); err != nil {
		t.Fatalf("validateResolution = %v, want nil", err)
	}
}
