package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDataSufficiency_LocalTiers(t *testing.T) {
	cases := []struct {
		count      int
		confidence float64
		webNeeded  bool
	}{
		{7, ConfidenceHigh, false},
		{5, ConfidenceHigh, false},
		{4, ConfidenceGood, false},
		{3, ConfidenceGood, false},
		{2, ConfidenceModerate, false},
		{1, ConfidenceModerate, false},
		{0, ConfidenceLow, true},
	}

	for _, tc := range cases {
		var d DataSufficiency
		d.ApplyLocalResults(tc.count)
		assert.Equal(t, tc.confidence, d.ConfidenceLevel, "count %d", tc.count)
		assert.Equal(t, tc.webNeeded, d.WebSearchNeeded, "count %d", tc.count)
		assert.Equal(t, tc.count, d.LocalResultCount)
	}
}

func TestDataSufficiency_WebBoost(t *testing.T) {
	var d DataSufficiency
	d.ApplyLocalResults(0)
	assert.Equal(t, ConfidenceLow, d.ConfidenceLevel)
	assert.True(t, d.WebSearchNeeded)

	d.ApplyWebResults(4)
	assert.InDelta(t, ConfidenceLow+WebSearchBoost, d.ConfidenceLevel, 1e-9)
	assert.False(t, d.WebSearchNeeded)
}

func TestDataSufficiency_WebBoostCapped(t *testing.T) {
	var d DataSufficiency
	d.ApplyLocalResults(6)
	d.ApplyWebResults(3)
	assert.Equal(t, ConfidenceCeiling, d.ConfidenceLevel)
}

func TestDataSufficiency_EmptyWebRoundIsNoOp(t *testing.T) {
	var d DataSufficiency
	d.ApplyLocalResults(0)
	before := d

	d.ApplyWebResults(0)
	assert.Equal(t, before, d)
}
