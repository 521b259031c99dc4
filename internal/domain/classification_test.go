package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify_Table(t *testing.T) {
	tests := []struct {
		name      string
		temp      float64
		tier      Tier
		severity  Severity
		alertType AlertType
	}{
		{"deep freeze", -12, TierExtremeCold, SeverityExtreme, AlertCold},
		{"upper bound extreme cold", 8, TierExtremeCold, SeverityExtreme, AlertCold},
		{"just above 8", 8.0001, TierCold, SeverityMedium, AlertCold},
		{"lower cold", 9, TierCold, SeverityMedium, AlertCold},
		{"upper bound cold", 15, TierCold, SeverityMedium, AlertCold},
		{"lower cool", 16, TierCool, SeverityLow, AlertNone},
		{"upper bound cool", 20, TierCool, SeverityLow, AlertNone},
		{"lower normal", 21, TierNormal, SeverityLow, AlertNone},
		{"upper bound normal", 28, TierNormal, SeverityLow, AlertNone},
		{"lower warm", 29, TierWarm, SeverityLow, AlertNone},
		{"upper bound warm", 32, TierWarm, SeverityLow, AlertNone},
		{"lower hot", 33, TierHot, SeverityMedium, AlertHeat},
		{"upper bound hot", 34, TierHot, SeverityMedium, AlertHeat},
		{"just above 34", 34.5, TierExtremeHeat, SeverityExtreme, AlertHeat},
		{"lower extreme heat", 35, TierExtremeHeat, SeverityExtreme, AlertHeat},
		{"scorching", 47, TierExtremeHeat, SeverityExtreme, AlertHeat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Classify(tt.temp)
			assert.Equal(t, tt.tier, c.Tier)
			assert.Equal(t, tt.severity, c.Severity)
			assert.Equal(t, tt.alertType, c.AlertType)
			assert.Equal(t, tt.alertType != AlertNone, c.HasAlert())
		})
	}
}

func TestClassify_Ranges(t *testing.T) {
	ranges := []struct {
		lo, hi    float64
		tier      Tier
		alertType AlertType
	}{
		{-40, 8, TierExtremeCold, AlertCold},
		{9, 15, TierCold, AlertCold},
		{16, 20, TierCool, AlertNone},
		{21, 28, TierNormal, AlertNone},
		{29, 32, TierWarm, AlertNone},
		{33, 34, TierHot, AlertHeat},
		{35, 60, TierExtremeHeat, AlertHeat},
	}

	for _, r := range ranges {
		for temp := r.lo; temp <= r.hi; temp += 0.25 {
			c := Classify(temp)
			assert.Equal(t, r.tier, c.Tier, "temp %.2f", temp)
			assert.Equal(t, r.alertType, c.AlertType, "temp %.2f", temp)
		}
	}
}

func TestClassify_Deterministic(t *testing.T) {
	for temp := -5.0; temp <= 45; temp += 0.5 {
		assert.Equal(t, Classify(temp), Classify(temp))
	}
}

func TestClassify_TextBoundToTier(t *testing.T) {
	seen := make(map[Tier]Classification)
	for temp := -10.0; temp <= 45; temp++ {
		c := Classify(temp)
		if prev, ok := seen[c.Tier]; ok {
			assert.Equal(t, prev.Label, c.Label)
			assert.Equal(t, prev.Style, c.Style)
			continue
		}
		seen[c.Tier] = c
		assert.NotEmpty(t, c.Label)
		assert.NotEmpty(t, c.Description)
		assert.NotEmpty(t, c.Reasoning)
		assert.NotEmpty(t, c.Style.Color)
	}
	assert.Len(t, seen, 7)
}

func TestClassify_NonFinite(t *testing.T) {
	assert.Equal(t, TierExtremeHeat, Classify(math.NaN()).Tier)
	assert.Equal(t, TierExtremeHeat, Classify(math.Inf(1)).Tier)
	assert.Equal(t, TierExtremeCold, Classify(math.Inf(-1)).Tier)
}

func TestAllTiers(t *testing.T) {
	assert.Equal(t, []Tier{
		TierExtremeCold, TierCold, TierCool, TierNormal, TierWarm, TierHot, TierExtremeHeat,
	}, AllTiers())
}

func TestParseTier(t *testing.T) {
	tier, ok := ParseTier("hot")
	assert.True(t, ok)
	assert.Equal(t, TierHot, tier)

	_, ok = ParseTier("tepid")
	assert.False(t, ok)
}
