package video

import (
	"testing"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Timestamp
		wantErr bool
		errMsg  string
	}{
		{
			name:  "valid timestamp",
			input: "01:30:45",
			want:  Timestamp{Hours: 1, Minutes: 30, Seconds: 45},
		},
		{
			name:  "max valid minutes/seconds",
			input: "23:59:59",
			want:  Timestamp{Hours: 23, Minutes: 59, Seconds: 59},
		},
		{
			name:    "missing leading zero in hours",
			input:   "1:30:45",
			wantErr: true,
			errMsg:  "invalid timestamp format",
		},
		{
			name:    "wrong separator - dash",
			input:   "01-30-45",
			wantErr: true,
			errMsg:  "invalid timestamp format",
		},
		{
			name:    "minutes too high",
			input:   "01:60:00",
			wantErr: true,
			errMsg:  "minutes must be 0-59",
		},
		{
			name:    "seconds too high",
			input:   "01:30:60",
			wantErr: true,
			errMsg:  "seconds must be 0-59",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTimestamp(tt.input)

			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseTimestamp(%q) expected error, got nil", tt.input)
					return
				}
				if tt.errMsg != "" && !contains(err.Error(), tt.errMsg) {
					t.Errorf("ParseTimestamp(%q) error = %v, want error containing %q", tt.input, err, tt.errMsg)
				}
				return
			}

			if err != nil {
				t.Errorf("ParseTimestamp(%q) unexpected error: %v", tt.input, err)
				return
			}

			if got != tt.want {
				t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestTimestampFromSeconds(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, "00:00:00"},
		{59, "00:00:59"},
		{90, "00:01:30"},
		{5445, "01:30:45"},
		{-5, "00:00:00"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := TimestampFromSeconds(tt.seconds)
			if got.String() != tt.want {
				t.Errorf("TimestampFromSeconds(%d) = %q, want %q", tt.seconds, got.String(), tt.want)
			}
			if tt.seconds >= 0 && got.TotalSeconds() != tt.seconds {
				t.Errorf("TimestampFromSeconds(%d).TotalSeconds() = %d", tt.seconds, got.TotalSeconds())
			}
		})
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int
		wantErr bool
		errMsg  string
	}{
		{name: "plain seconds", input: "30", want: 30},
		{name: "padded seconds", input: " 45 ", want: 45},
		{name: "timestamp", input: "00:05:00", want: 300},
		{name: "go duration minutes", input: "5m", want: 300},
		{name: "go duration mixed", input: "1h30m", want: 5400},
		{name: "go duration seconds", input: "15s", want: 15},
		{name: "empty", input: "", wantErr: true, errMsg: "empty"},
		{name: "zero", input: "0", wantErr: true, errMsg: "must be positive"},
		{name: "negative", input: "-10", wantErr: true, errMsg: "must be positive"},
		{name: "zero timestamp", input: "00:00:00", wantErr: true, errMsg: "must be positive"},
		{name: "fractional seconds", input: "1.5s", wantErr: true, errMsg: "whole seconds"},
		{name: "garbage", input: "soon", wantErr: true, errMsg: "invalid duration"},
		{name: "bad timestamp", input: "00:61:00", wantErr: true, errMsg: "minutes must be 0-59"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDuration(tt.input)

			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseDuration(%q) expected error, got %d", tt.input, got)
					return
				}
				if !contains(err.Error(), tt.errMsg) {
					t.Errorf("ParseDuration(%q) error = %v, want error containing %q", tt.input, err, tt.errMsg)
				}
				return
			}

			if err != nil {
				t.Errorf("ParseDuration(%q) unexpected error: %v", tt.input, err)
				return
			}
			if got != tt.want {
				t.Errorf("ParseDuration(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{1, "1 second"},
		{15, "15 seconds"},
		{60, "1 minute"},
		{90, "90 seconds"},
		{300, "5 minutes"},
		{3600, "1 hour"},
		{5400, "90 minutes"},
		{21600, "6 hours"},
		{0, "1 second"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatDuration(tt.seconds); got != tt.want {
				t.Errorf("FormatDuration(%d) = %q, want %q", tt.seconds, got, tt.want)
			}
		})
	}
}

func contains(s, substr string) bool {
	for i := 0; i <= len(s)-len(substr); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
