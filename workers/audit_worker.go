package workers

import (
	"context"
	"log"
	"time"

	"coin-earning-system/services"
)

// PollLedgerAudit periodically re-sums every user's wallet transactions and
// compares against the stored balance. Mismatches are logged and left for an
// operator to investigate; the worker never mutates balances itself.
func PollLedgerAudit(ctx context.Context, ledger *services.LedgerService, pollInterval time.Duration) {
	log.Println("Starting ledger audit polling...")

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Ledger audit polling stopped.")
			return
		case <-ticker.C:
			mismatched, err := ledger.ReconcileAll()
			if err != nil {
				log.Printf("❌ Ledger audit failed: %v", err)
				continue
			}

			if len(mismatched) == 0 {
				log.Println("✅ Ledger audit clean: all balances match transaction sums.")
				continue
			}

			log.Printf("🚨 Ledger audit found %d mismatched user(s): %v", len(mismatched), mismatched)
		}
	}
}
