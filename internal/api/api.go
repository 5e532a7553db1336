// Package api serves the aggregation dashboard endpoints over the
// shared store.
package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/presenced/presenced/internal/calc"
	"github.com/presenced/presenced/internal/config"
	"github.com/presenced/presenced/internal/record"
	"github.com/presenced/presenced/internal/service"
	"github.com/presenced/presenced/internal/store"
)

type Handler struct {
	Store      *store.Store
	Svc        *service.Service
	Windows    config.Windows
	CronSecret string
}

func NewRouter(h *Handler) *gin.Engine {
	r := gin.Default()

	api := r.Group("/api/v1")
	{
		api.GET("/attendance/today", h.Today)
		api.GET("/daily/:date", h.Daily)
		api.GET("/users/:id/history", h.History)
		api.GET("/cron/cleanup-attendance", h.Cleanup)
	}

	return r
}

// dayEntry is one user's row in the daily views, with derived minutes.
type dayEntry struct {
	record.Attendance
	WorkMinutes    int  `json:"work_minutes"`
	AwayMinutes    int  `json:"away_minutes"`
	NetWorkMinutes int  `json:"net_work_minutes"`
	CurrentlyAway  bool `json:"currently_away"`
}

func (h *Handler) dayEntries(records []record.Attendance, aways []record.Away, now time.Time) []dayEntry {
	byUser := make(map[string][]record.Away)
	for _, aw := range aways {
		byUser[aw.UserID] = append(byUser[aw.UserID], aw)
	}

	entries := make([]dayEntry, 0, len(records))
	for _, rec := range records {
		userAways := byUser[rec.UserID]
		away := calc.TotalAwayMinutes(userAways)
		work := calc.WorkMinutes(rec, h.Windows, now)
		currentlyAway := false
		for _, aw := range userAways {
			if aw.IsOpen() {
				currentlyAway = true
				break
			}
		}
		entries = append(entries, dayEntry{
			Attendance:     rec,
			WorkMinutes:    work,
			AwayMinutes:    away,
			NetWorkMinutes: calc.NetWorkMinutes(rec, userAways, h.Windows, now),
			CurrentlyAway:  currentlyAway,
		})
	}
	return entries
}

func (h *Handler) Today(c *gin.Context) {
	now := time.Now()
	h.renderDay(c, now.Format(record.DateLayout), now)
}

func (h *Handler) Daily(c *gin.Context) {
	date := c.Param("date")
	if _, err := time.ParseInLocation(record.DateLayout, date, time.Local); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid date, expected YYYY-MM-DD"})
		return
	}
	h.renderDay(c, date, time.Now())
}

func (h *Handler) renderDay(c *gin.Context, date string, now time.Time) {
	dayStart, _ := time.ParseInLocation(record.DateLayout, date, time.Local)

	records, err := h.Store.AttendanceForDate(c.Request.Context(), date)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load", "detail": err.Error()})
		return
	}
	aways, err := h.Store.AwaysForAll(c.Request.Context(), dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load", "detail": err.Error()})
		return
	}

	entries := h.dayEntries(records, aways, now)

	totalWork, totalAway, working, left, away := 0, 0, 0, 0, 0
	for _, e := range entries {
		totalWork += e.WorkMinutes
		totalAway += e.AwayMinutes
		switch {
		case e.CurrentlyAway:
			away++
		case e.IsClosed():
			left++
		default:
			working++
		}
	}
	avgWork := 0
	if len(entries) > 0 {
		avgWork = totalWork / len(entries)
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"date":   date,
		"data":   entries,
		"stats": gin.H{
			"total_users":        len(entries),
			"working":            working,
			"away":               away,
			"left":               left,
			"avg_work_minutes":   avgWork,
			"total_away_minutes": totalAway,
		},
	})
}

// historyFrom is the first date of an inclusive last-N-days range ending
// today; the store filters on date >= from.
func historyFrom(now time.Time, days int) string {
	return now.AddDate(0, 0, 1-days).Format(record.DateLayout)
}

func (h *Handler) History(c *gin.Context) {
	userID := c.Param("id")
	days := 30
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be a positive integer"})
			return
		}
		days = parsed
	}

	now := time.Now()
	records, err := h.Store.History(c.Request.Context(), userID, historyFrom(now, days))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load", "detail": err.Error()})
		return
	}

	type historyEntry struct {
		record.Attendance
		WorkMinutes int `json:"work_minutes"`
	}
	entries := make([]historyEntry, 0, len(records))
	total := 0
	for _, rec := range records {
		mins := calc.WorkMinutes(rec, h.Windows, now)
		total += mins
		entries = append(entries, historyEntry{Attendance: rec, WorkMinutes: mins})
	}

	c.JSON(http.StatusOK, gin.H{
		"status":             "ok",
		"data":               entries,
		"total_work_minutes": total,
	})
}

// Cleanup runs the unprocessed-record sweep; meant to be hit by an
// external cron once a day. Protected by a bearer secret when one is
// configured.
func (h *Handler) Cleanup(c *gin.Context) {
	if h.CronSecret != "" && c.GetHeader("Authorization") != "Bearer "+h.CronSecret {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	result, err := h.Svc.Reconcile(c.Request.Context(), time.Now())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	msg := "no unprocessed attendance records"
	if result.Processed > 0 || result.Errors > 0 {
		msg = strconv.Itoa(result.Processed) + " processed, " + strconv.Itoa(result.Errors) + " failed"
	}
	c.JSON(http.StatusOK, gin.H{
		"message":   msg,
		"processed": result.Processed,
		"errors":    result.Errors,
		"details":   result.Details,
	})
}
