package youtube

import "testing"

// TestParseDuration documents the duration decoding contract:
// - Hour/minute/second components combine as h*3600+m*60+s
// - Missing components contribute zero
// - Empty or malformed input decodes to 0 (duration unknown)
func TestParseDuration(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{"PT1H2M3S", 3723},
		{"PT4M13S", 253},
		{"PT45S", 45},
		{"PT1H", 3600},
		{"PT2M", 120},
		{"PT1H30S", 3630},
		{"PT0S", 0},
		{"", 0},
		{"garbage", 0},
		{"P1DT2H", 0},
	}

	for _, tt := range tests {
		if got := ParseDuration(tt.code); got != tt.want {
			t.Errorf("ParseDuration(%q) = %d, want %d", tt.code, got, tt.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		seconds int
		want    string
	}{
		{0, ""},
		{45, "0:45"},
		{253, "4:13"},
		{3723, "1:02:03"},
	}

	for _, tt := range tests {
		if got := FormatDuration(tt.seconds); got != tt.want {
			t.Errorf("FormatDuration(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}
