// services/scheduler.go
package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"log"
	"time"

	"coin-earning-system/models"
	"coin-earning-system/utils"

	"github.com/go-co-op/gocron/v2"
)

// MaintenanceScheduler runs the periodic housekeeping jobs: stale task
// expiry, the nightly ledger reconciliation audit, and the daily ledger
// export to object storage.
type MaintenanceScheduler struct {
	Tasks  *TaskService
	Ledger *LedgerService
}

func NewMaintenanceScheduler(tasks *TaskService, ledger *LedgerService) *MaintenanceScheduler {
	return &MaintenanceScheduler{Tasks: tasks, Ledger: ledger}
}

func (m *MaintenanceScheduler) Start() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	// Every 15 minutes: cancel attempts left pending for over a day.
	_, _ = sched.NewJob(
		gocron.DurationJob(15*time.Minute),
		gocron.NewTask(func() {
			n, err := m.Tasks.ExpireStale(24 * time.Hour)
			if err != nil {
				log.Printf("[Scheduler] stale task expiry failed: %v", err)
				return
			}
			if n > 0 {
				log.Printf("[Scheduler] cancelled %d stale pending tasks", n)
			}
		}),
	)

	// Daily: verify every balance against its ledger sum. A mismatch means
	// a lost or duplicated credit and needs an operator.
	_, _ = sched.NewJob(
		gocron.DurationJob(24*time.Hour),
		gocron.NewTask(func() {
			ids, err := m.Ledger.ReconcileAll()
			if err != nil {
				log.Printf("[Scheduler] reconciliation audit failed: %v", err)
				return
			}
			if len(ids) == 0 {
				log.Printf("[Scheduler] reconciliation audit clean")
				return
			}
			for _, id := range ids {
				log.Printf("❌ [Scheduler] ledger mismatch for user %s", id)
			}
		}),
	)

	// Daily: export yesterday's ledger entries as CSV to R2.
	_, _ = sched.NewJob(
		gocron.DurationJob(24*time.Hour),
		gocron.NewTask(func() {
			if err := m.ExportLedgerDay(time.Now().AddDate(0, 0, -1)); err != nil {
				log.Printf("[Scheduler] ledger export failed: %v", err)
			}
		}),
	)
}

// ExportLedgerDay uploads one day's wallet transactions as a CSV object.
func (m *MaintenanceScheduler) ExportLedgerDay(day time.Time) error {
	dayStart := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	var txs []models.WalletTransaction
	if err := m.Ledger.DB.
		Where("created_at >= ? AND created_at < ?", dayStart, dayEnd).
		Order("created_at ASC").
		Find(&txs).Error; err != nil {
		return fmt.Errorf("ledger export query: %w", err)
	}

	buf := new(bytes.Buffer)
	w := csv.NewWriter(buf)
	_ = w.Write([]string{"id", "user_id", "type", "coins", "amount_rs", "note", "created_at"})
	for _, tx := range txs {
		_ = w.Write([]string{
			tx.ID, tx.UserID, string(tx.Type),
			fmt.Sprintf("%d", tx.Coins), tx.AmountRs.String(), tx.Note,
			tx.CreatedAt.Format(time.RFC3339),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("ledger export encode: %w", err)
	}

	key := fmt.Sprintf("ledger-exports/%s.csv", models.DateStamp(dayStart))
	url, err := utils.UploadLedgerExport(key, buf.Bytes())
	if err != nil {
		return err
	}
	log.Printf("[Scheduler] exported %d ledger entries to %s", len(txs), url)
	return nil
}
