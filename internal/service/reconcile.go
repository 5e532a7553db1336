package service

import (
	"context"
	"log"
	"time"

	"github.com/presenced/presenced/internal/calc"
	"github.com/presenced/presenced/internal/record"
)

// ReconcileDetail reports the outcome for one swept record.
type ReconcileDetail struct {
	ID          string `json:"id"`
	Status      string `json:"status"`
	WorkMinutes int    `json:"work_minutes,omitempty"`
	Error       string `json:"error,omitempty"`
}

type ReconcileResult struct {
	Processed int               `json:"processed"`
	Errors    int               `json:"errors"`
	Details   []ReconcileDetail `json:"details"`
}

// Reconcile closes every past-day record that was never checked out and
// never received a duration snapshot (the machine was simply powered
// off). Each gets an assumed end per the calculator's reconciliation
// rule and becomes an automatic snapshot, so every past day eventually
// reaches a closed state. The sweep covers all users in the store.
func (s *Service) Reconcile(ctx context.Context, now time.Time) (ReconcileResult, error) {
	var result ReconcileResult

	unprocessed, err := s.store.Unprocessed(ctx, today(now))
	if err != nil {
		return result, err
	}
	if len(unprocessed) == 0 {
		return result, nil
	}

	w := s.Windows()
	log.Printf("found %d unprocessed attendance record(s)", len(unprocessed))

	for i := range unprocessed {
		rec := &unprocessed[i]
		if rec.CheckIn == nil {
			result.Errors++
			result.Details = append(result.Details, ReconcileDetail{
				ID: rec.ID, Status: "error", Error: record.ErrNoActiveSession.Error(),
			})
			continue
		}

		mins := calc.ReconcileMinutes(*rec.CheckIn, w)
		rec.Snapshot(mins)
		if err := s.store.SaveAttendance(ctx, rec); err != nil {
			log.Printf("failed to reconcile record %s: %v", rec.ID, err)
			result.Errors++
			result.Details = append(result.Details, ReconcileDetail{
				ID: rec.ID, Status: "error", Error: err.Error(),
			})
			continue
		}

		result.Processed++
		result.Details = append(result.Details, ReconcileDetail{
			ID: rec.ID, Status: "success", WorkMinutes: mins,
		})
	}

	return result, nil
}
