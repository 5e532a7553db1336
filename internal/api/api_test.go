package api

import (
	"testing"
	"time"
)

func TestHistoryFrom(t *testing.T) {
	now := time.Date(2024, 6, 30, 15, 0, 0, 0, time.Local)

	tests := []struct {
		days int
		want string
	}{
		{1, "2024-06-30"}, // today only
		{7, "2024-06-24"},
		{30, "2024-06-01"}, // 30 calendar days, today included
	}

	for _, tt := range tests {
		if got := historyFrom(now, tt.days); got != tt.want {
			t.Errorf("historyFrom(now, %d) = %s, want %s", tt.days, got, tt.want)
		}
	}
}
