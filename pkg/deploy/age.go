package deploy

import "time"

// AgePolicy decides whether a script's embedded date falls outside the
// configured retention window.
//
// The cutoff treats a month as a 30-day block: now minus 30*MaxMonths
// days. This is a deliberate compatibility choice, not calendar-month
// arithmetic. The comparison is strictly less-than, so a script dated
// exactly at the cutoff is still in-window.
type AgePolicy struct {
	// MaxMonths is the maximum script age in 30-day months.
	MaxMonths int

	// Now returns the current time. Defaults to time.Now; injectable for
	// tests.
	Now func() time.Time
}

// TooOld reports whether the script date is older than the retention
// cutoff.
func (p AgePolicy) TooOld(scriptDate time.Time) bool {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}

	cutoff := now().UTC().Add(-time.Duration(p.MaxMonths) * 30 * 24 * time.Hour)

	return scriptDate.Before(cutoff)
}
