package services

import "testing"

func TestFormatUSD(t *testing.T) {
	tests := []struct {
		name   string
		input  float64
		expect string
	}{
		{"zero", 0, "$0"},
		{"hundreds", 950, "$950"},
		{"thousands", 12300, "$12,300"},
		{"rounds cents", 1234.56, "$1,235"},
		{"millions", 1250000, "$1,250,000"},
		{"negative", -500, "-$500"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FormatUSD(tt.input)
			if got != tt.expect {
				t.Errorf("FormatUSD(%v) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

func TestFormatUSDRange(t *testing.T) {
	if got := FormatUSDRange(7000, 14500); got != "$7,000 - $14,500" {
		t.Errorf("FormatUSDRange = %q", got)
	}
}

func TestRoundTo(t *testing.T) {
	tests := []struct {
		name      string
		amount    float64
		increment int64
		expect    float64
	}{
		{"already multiple", 7000, 50, 7000},
		{"rounds down", 7024, 50, 7000},
		{"rounds half up", 7025, 50, 7050},
		{"rounds up", 7074.9, 50, 7050},
		{"hundred increment", 7050, 100, 7100},
		{"float noise", 1000 * 1.15, 50, 1150},
		{"zero increment passthrough", 1234.5, 0, 1234.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RoundTo(tt.amount, tt.increment)
			if got != tt.expect {
				t.Errorf("RoundTo(%v, %d) = %v, want %v", tt.amount, tt.increment, got, tt.expect)
			}
		})
	}
}

func TestFormatPercentChange(t *testing.T) {
	tests := []struct {
		input  float64
		expect string
	}{
		{1.0, "0%"},
		{1.15, "+15%"},
		{0.9, "-10%"},
		{1.0625, "+6%"},
	}
	for _, tt := range tests {
		if got := FormatPercentChange(tt.input); got != tt.expect {
			t.Errorf("FormatPercentChange(%v) = %q, want %q", tt.input, got, tt.expect)
		}
	}
}

func TestFormatFactor(t *testing.T) {
	if got := FormatFactor(1.1); got != "1.10x" {
		t.Errorf("FormatFactor(1.1) = %q", got)
	}
}
