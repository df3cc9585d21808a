package frame

import (
	"testing"
	"time"
)

func TestParsePosition(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Duration
		wantErr bool
		errMsg  string
	}{
		{
			name:  "empty means start",
			input: "",
			want:  0,
		},
		{
			name:  "plain seconds",
			input: "12.5",
			want:  12500 * time.Millisecond,
		},
		{
			name:  "clock value",
			input: "01:30:45",
			want:  time.Hour + 30*time.Minute + 45*time.Second,
		},
		{
			name:  "minutes and fractional seconds",
			input: "02:03.25",
			want:  2*time.Minute + 3250*time.Millisecond,
		},
		{
			name:    "negative seconds",
			input:   "-1",
			wantErr: true,
			errMsg:  "must not be negative",
		},
		{
			name:    "missing leading zero",
			input:   "1:30:45",
			wantErr: true,
			errMsg:  "invalid position format",
		},
		{
			name:    "minutes out of range",
			input:   "00:60:00",
			wantErr: true,
			errMsg:  "minutes must be 0-59",
		},
		{
			name:    "seconds out of range",
			input:   "00:00:60",
			wantErr: true,
			errMsg:  "seconds must be 0-59",
		},
		{
			name:    "not a position",
			input:   "soon",
			wantErr: true,
			errMsg:  "invalid position format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParsePosition(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParsePosition(%q) expected error, got nil", tt.input)
					return
				}
				if tt.errMsg != "" && !contains(err.Error(), tt.errMsg) {
					t.Errorf("ParsePosition(%q) error = %v, want error containing %q", tt.input, err, tt.errMsg)
				}
				return
			}
			if err != nil {
				t.Errorf("ParsePosition(%q) unexpected error: %v", tt.input, err)
				return
			}
			if got != tt.want {
				t.Errorf("ParsePosition(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestFormatPosition(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "00:00:00.000"},
		{1500 * time.Millisecond, "00:00:01.500"},
		{time.Hour + 2*time.Minute + 3*time.Second, "01:02:03.000"},
	}

	for _, tt := range tests {
		if got := FormatPosition(tt.in); got != tt.want {
			t.Errorf("FormatPosition(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
