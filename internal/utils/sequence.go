package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// NextExpenseNumber derives the next human-readable expense number for the
// given year from the latest existing number. Numbers look like
// EXP-2026-007: a per-year sequence, zero-padded to three digits, restarting
// at 001 each calendar year. latest is the empty string when no expense
// exists for the year yet, or carries a different year's prefix after a
// year rollover.
func NextExpenseNumber(latest string, year int) string {
	prefix := ExpenseNumberPrefix(year)
	seq := 1
	if strings.HasPrefix(latest, prefix) {
		if n, err := strconv.Atoi(strings.TrimPrefix(latest, prefix)); err == nil {
			seq = n + 1
		}
	}
	return fmt.Sprintf("%s%03d", prefix, seq)
}

// ExpenseNumberPrefix returns the year prefix expense numbers carry, e.g.
// "EXP-2026-".
func ExpenseNumberPrefix(year int) string {
	return fmt.Sprintf("EXP-%d-", year)
}
