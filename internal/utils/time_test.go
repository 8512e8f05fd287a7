package utils

import (
	"testing"
	"time"
)

func TestLoadLocation(t *testing.T) {
	tests := []struct {
		name     string
		timezone string
		wantErr  bool
	}{
		{name: "empty string returns local", timezone: ""},
		{name: "Local returns local", timezone: "Local"},
		{name: "valid timezone UTC", timezone: "UTC"},
		{name: "valid timezone Asia/Shanghai", timezone: "Asia/Shanghai"},
		{name: "invalid timezone", timezone: "Invalid/Timezone", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := LoadLocation(tt.timezone)
			if (err != nil) != tt.wantErr {
				t.Errorf("LoadLocation() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && loc == nil {
				t.Errorf("LoadLocation() returned nil location without error")
			}
		})
	}
}

func TestTodayFuncUsesLocalDate(t *testing.T) {
	shanghai, err := LoadLocation("Asia/Shanghai")
	if err != nil {
		t.Fatalf("LoadLocation() failed: %v", err)
	}

	// 2024-03-09 20:30 UTC is already 2024-03-10 in Shanghai
	instant := time.Date(2024, 3, 9, 20, 30, 0, 0, time.UTC)
	now := func() time.Time { return instant }

	if got := TodayFunc(now, time.UTC)(); got != "2024-03-09" {
		t.Errorf("TodayFunc(UTC) = %q, want %q", got, "2024-03-09")
	}
	if got := TodayFunc(now, shanghai)(); got != "2024-03-10" {
		t.Errorf("TodayFunc(Asia/Shanghai) = %q, want %q", got, "2024-03-10")
	}
}

func TestNextDate(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "2024-01-31", want: "2024-02-01"},
		{in: "2024-02-28", want: "2024-02-29"},
		{in: "2023-12-31", want: "2024-01-01"},
		{in: "not-a-date", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NextDate(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NextDate(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("NextDate(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestValidateDate(t *testing.T) {
	if !ValidateDate("2024-05-01") {
		t.Error("ValidateDate(2024-05-01) = false, want true")
	}
	if ValidateDate("05/01/2024") {
		t.Error("ValidateDate(05/01/2024) = true, want false")
	}
}
