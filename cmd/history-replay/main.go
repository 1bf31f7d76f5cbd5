package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/comexdata/customs_backend/config"
	"github.com/comexdata/customs_backend/models"
)

// history-replay prints the full status trail of one operation and verifies
// that the audit chain is contiguous: each row's previous_status must equal
// the prior row's new_status, the first row must start from DRAFT, and the
// last row must land on the operation's current status.
//
// Example:
//
//	go run ./cmd/history-replay/ -operation-id=42
func main() {
	operationID := flag.Int("operation-id", 0, "Required: operation id")
	flag.Parse()

	if *operationID <= 0 {
		fmt.Fprintln(os.Stderr, "--operation-id is required")
		os.Exit(1)
	}

	config.ConnectDatabaseWithRetry()
	db := config.GetDB()
	if db == nil {
		fmt.Fprintln(os.Stderr, "database not initialized")
		os.Exit(1)
	}

	ctx := context.Background()
	operation, err := models.GetOperationById(ctx, db, *operationID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load operation %d: %v\n", *operationID, err)
		os.Exit(1)
	}
	history, err := models.GetStatusHistory(ctx, *operationID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load history: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("operation_id=%d number=%q current_status=%s version=%d history_rows=%d\n",
		operation.ID, operation.OperationNumber, operation.CurrentStatus, operation.Version, len(history))

	if len(history) == 0 {
		if operation.CurrentStatus != models.OperationStatusDraft {
			fmt.Fprintf(os.Stderr, "BROKEN: no history rows but current status is %s\n", operation.CurrentStatus)
			os.Exit(2)
		}
		fmt.Println("OK: no transitions yet")
		return
	}

	broken := 0
	replayed := models.OperationStatusDraft
	for i, h := range history {
		fmt.Printf("%4d  %s  %s -> %s  user=%s comment=%q correlation=%s\n",
			h.ID, h.CreatedAt.Format("2006-01-02 15:04:05"), h.PreviousStatus, h.NewStatus, h.UserName, h.Comment, h.CorrelationId)
		if h.PreviousStatus != replayed {
			fmt.Fprintf(os.Stderr, "BROKEN at row %d: previous_status=%s but replayed state is %s\n", i, h.PreviousStatus, replayed)
			broken++
		}
		replayed = h.NewStatus
	}

	if replayed != operation.CurrentStatus {
		fmt.Fprintf(os.Stderr, "BROKEN: replay ends at %s but operation.current_status is %s\n", replayed, operation.CurrentStatus)
		broken++
	}
	if broken > 0 {
		os.Exit(2)
	}
	fmt.Println("OK: audit chain is contiguous")
}
