package calculator

import (
	"testing"
	"time"
)

func TestDaysOverdue(t *testing.T) {
	due := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		asOf time.Time
		want int
	}{
		{"before due", due.AddDate(0, 0, -2), 0},
		{"on due date", due, 0},
		{"ten days past", due.AddDate(0, 0, 10), 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysOverdue(due, tt.asOf); got != tt.want {
				t.Errorf("DaysOverdue = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestSuggestPenalty(t *testing.T) {
	tests := []struct {
		name        string
		installment string
		daysOverdue int
		want        string
	}{
		{"not overdue", "5000", 0, "0"},
		{"small installment hits fixed minimum", "2000", 5, "100"}, // 2% = 40 < 100
		{"large installment uses rate", "10000", 5, "200"},         // 2% = 200
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SuggestPenalty(dec(tt.installment), tt.daysOverdue)
			if !got.Equal(dec(tt.want)) {
				t.Errorf("SuggestPenalty = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestParsePenalty(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"plain amount", "150", "150"},
		{"decimal amount", "99.50", "99.5"},
		{"surrounding spaces", "  75 ", "75"},
		{"empty falls back to zero", "", "0"},
		{"garbage falls back to zero", "abc", "0"},
		{"negative falls back to zero", "-20", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParsePenalty(tt.raw)
			if !got.Equal(dec(tt.want)) {
				t.Errorf("ParsePenalty(%q) = %s, want %s", tt.raw, got, tt.want)
			}
		})
	}
}
