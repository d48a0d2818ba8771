package deploy_test

import (
	"testing"
	"time"

	"github.com/pseudomuto/deploykeeper/pkg/deploy"
	"github.com/stretchr/testify/assert"
)

func TestAgePolicyTooOld(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	policy := deploy.AgePolicy{MaxMonths: 12, Now: func() time.Time { return now }}

	cutoff := now.Add(-12 * 30 * 24 * time.Hour)

	assert.True(t, policy.TooOld(cutoff.Add(-time.Second)))
	assert.False(t, policy.TooOld(now))

	// The boundary is not too old: comparison is strictly less-than.
	assert.False(t, policy.TooOld(cutoff))
}

func TestAgePolicyUses30DayMonths(t *testing.T) {
	// 12 "months" is exactly 360 days, not a calendar year.
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	policy := deploy.AgePolicy{MaxMonths: 12, Now: func() time.Time { return now }}

	assert.True(t, policy.TooOld(now.AddDate(0, 0, -361)))
	assert.False(t, policy.TooOld(now.AddDate(0, 0, -360)))

	// One calendar year back falls outside the 360-day window (2024 spans
	// a leap day), which is the intended approximation.
	assert.True(t, policy.TooOld(now.AddDate(-1, 0, 0)))
}
