package service

import (
	"context"
	"fmt"
	"log"
	"time"
)

// Mailer sends the sweep summary. Nil disables mailing.
type Mailer interface {
	Send(subject, body string) error
}

// RunSweeper runs the unprocessed-record sweep shortly after each local
// midnight until ctx is done. Deployments that prefer an external cron
// hit the dashboard's cleanup endpoint instead; running both is safe,
// the sweep is idempotent.
func (s *Service) RunSweeper(ctx context.Context, mailer Mailer) {
	for {
		next := nextMidnight(time.Now()).Add(5 * time.Minute)
		timer := time.NewTimer(time.Until(next))

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case now := <-timer.C:
			result, err := s.Reconcile(ctx, now)
			if err != nil {
				log.Printf("sweep failed: %v", err)
				continue
			}
			log.Printf("sweep done: %d processed, %d error(s)", result.Processed, result.Errors)
			if mailer != nil && (result.Processed > 0 || result.Errors > 0) {
				body := fmt.Sprintf("Reconciled %d attendance record(s), %d error(s).",
					result.Processed, result.Errors)
				for _, d := range result.Details {
					body += fmt.Sprintf("\n%s: %s", d.ID, d.Status)
					if d.Status == "success" {
						body += fmt.Sprintf(" (%d min)", d.WorkMinutes)
					}
				}
				if err := mailer.Send("Attendance reconciliation report", body); err != nil {
					log.Printf("sweep mail failed: %v", err)
				}
			}
		}
	}
}

func nextMidnight(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
}
