package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFrameworkDisplayName(t *testing.T) {
	for _, f := range Frameworks {
		assert.NotEqual(t, string(f), f.DisplayName(), "every known framework gets a proper display name: %s", f)
	}
	assert.Equal(t, "Utilitarianism", FrameworkUtilitarian.DisplayName())
	assert.Equal(t, "Virtue ethics", FrameworkVirtueEthics.DisplayName())

	// Unknown frameworks fall back to the raw value.
	assert.Equal(t, "astrology", Framework("astrology").DisplayName())
}

func TestAccountabilityLevelValid(t *testing.T) {
	assert.True(t, AccountabilityRelaxed.Valid())
	assert.True(t, AccountabilityModerate.Valid())
	assert.True(t, AccountabilityStrict.Valid())
	assert.False(t, AccountabilityLevel("").Valid())
	assert.False(t, AccountabilityLevel("brutal").Valid())
}

func TestTriggerReasonValid(t *testing.T) {
	for _, r := range TriggerReasons {
		assert.True(t, r.Valid(), "%s should be valid", r)
	}
	assert.False(t, TriggerReason("").Valid())
	assert.False(t, TriggerReason("vibes").Valid())
}

func TestNewInterruptStats(t *testing.T) {
	stats := NewInterruptStats()
	assert.Zero(t, stats.TotalInterrupts)
	assert.NotNil(t, stats.ByChair)
	assert.NotNil(t, stats.ByReason)
}
