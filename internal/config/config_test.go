package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadFromBytes(t *testing.T) {
	tomlData := `
user_id = "u-1234"
user_name = "alice"

[windows]
lunch_start = "12:00"
lunch_end = "13:30"
work_end = "17:30"

[api]
listen = ":9090"

[mail]
enabled = true
host = "smtp.example.com"
port = 587
from = "bot@example.com"
to = ["admin@example.com"]
`
	cfg, err := LoadFromBytes([]byte(tomlData))
	if err != nil {
		t.Fatalf("LoadFromBytes: %v", err)
	}

	assert.Equal(t, "u-1234", cfg.UserID)
	assert.Equal(t, TimeOfDay{Hour: 12}, cfg.Windows.LunchStart)
	assert.Equal(t, TimeOfDay{Hour: 13, Minute: 30}, cfg.Windows.LunchEnd)
	assert.Equal(t, TimeOfDay{Hour: 17, Minute: 30}, cfg.Windows.WorkEnd)
	assert.Equal(t, ":9090", cfg.API.Listen)
	assert.True(t, cfg.Mail.Enabled)
}

func TestLoadFromBytes_Defaults(t *testing.T) {
	cfg, err := LoadFromBytes([]byte(`user_id = "u-1"`))
	if err != nil {
		t.Fatalf("LoadFromBytes: %v", err)
	}

	assert.Equal(t, TimeOfDay{Hour: 11, Minute: 30}, cfg.Windows.LunchStart)
	assert.Equal(t, TimeOfDay{Hour: 13}, cfg.Windows.LunchEnd)
	assert.Equal(t, TimeOfDay{Hour: 18}, cfg.Windows.WorkEnd)
	assert.Equal(t, ":8080", cfg.API.Listen)
}

func TestLoadFromBytes_InvalidWindowOrder(t *testing.T) {
	tomlData := `
[windows]
lunch_start = "14:00"
lunch_end = "13:00"
work_end = "18:00"
`
	_, err := LoadFromBytes([]byte(tomlData))
	assert.Error(t, err)
}

func TestWindows_Validate(t *testing.T) {
	tests := []struct {
		name    string
		w       Windows
		wantErr bool
	}{
		{
			"ordered",
			Windows{LunchStart: TimeOfDay{Hour: 11, Minute: 30}, LunchEnd: TimeOfDay{Hour: 13}, WorkEnd: TimeOfDay{Hour: 18}},
			false,
		},
		{
			"lunch end at work end",
			Windows{LunchStart: TimeOfDay{Hour: 17}, LunchEnd: TimeOfDay{Hour: 18}, WorkEnd: TimeOfDay{Hour: 18}},
			false,
		},
		{
			"lunch reversed",
			Windows{LunchStart: TimeOfDay{Hour: 14}, LunchEnd: TimeOfDay{Hour: 13}, WorkEnd: TimeOfDay{Hour: 18}},
			true,
		},
		{
			"zero-length lunch",
			Windows{LunchStart: TimeOfDay{Hour: 12}, LunchEnd: TimeOfDay{Hour: 12}, WorkEnd: TimeOfDay{Hour: 18}},
			true,
		},
		{
			"lunch past work end",
			Windows{LunchStart: TimeOfDay{Hour: 17, Minute: 30}, LunchEnd: TimeOfDay{Hour: 18, Minute: 30}, WorkEnd: TimeOfDay{Hour: 18}},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.w.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTimeOfDay_UnmarshalText(t *testing.T) {
	var tod TimeOfDay
	if err := tod.UnmarshalText([]byte("09:05")); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if tod.Hour != 9 || tod.Minute != 5 {
		t.Errorf("parsed %+v, want 09:05", tod)
	}
	if tod.String() != "09:05" {
		t.Errorf("String() = %q, want 09:05", tod.String())
	}

	for _, bad := range []string{"25:00", "12:61", "noon", "9"} {
		if err := tod.UnmarshalText([]byte(bad)); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestTimeOfDay_On(t *testing.T) {
	day := time.Date(2024, 6, 3, 15, 42, 7, 0, time.Local)
	got := TimeOfDay{Hour: 18}.On(day)
	want := time.Date(2024, 6, 3, 18, 0, 0, 0, time.Local)
	if !got.Equal(want) {
		t.Errorf("On = %v, want %v", got, want)
	}
}

func TestWindows_Excluded(t *testing.T) {
	w := Windows{
		LunchStart: TimeOfDay{Hour: 11, Minute: 30},
		LunchEnd:   TimeOfDay{Hour: 13},
		WorkEnd:    TimeOfDay{Hour: 18},
	}

	at := func(h, m int) time.Time {
		return time.Date(2024, 6, 3, h, m, 0, 0, time.Local)
	}

	tests := []struct {
		name     string
		now      time.Time
		expected bool
	}{
		{"before lunch", at(11, 29), false},
		{"lunch start inclusive", at(11, 30), true},
		{"inside lunch", at(12, 15), true},
		{"lunch end exclusive", at(13, 0), false},
		{"afternoon", at(15, 0), false},
		{"work end inclusive", at(18, 0), true},
		{"after work", at(22, 0), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, w.Excluded(tt.now))
		})
	}
}
