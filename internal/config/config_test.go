package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/autobooks/autobooks/internal/common"
	"github.com/autobooks/autobooks/internal/model"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	assert.InDelta(t, 0.75, cfg.ConfidenceHigh, 1e-9)
	assert.InDelta(t, 0.50, cfg.ConfidenceMedium, 1e-9)
	assert.InDelta(t, 10, cfg.TDSRate(model.CategoryRent), 1e-9)
	assert.InDelta(t, 5, cfg.TDSRate(model.CategorySalary), 1e-9)
	assert.Zero(t, cfg.TDSRate(model.CategoryOther))
	assert.Zero(t, cfg.TDSRate(model.CategorySuspense), "unknown categories carry no withholding")
}

func TestFromViperOverlays(t *testing.T) {
	v := viper.New()
	v.Set("rules.path", "/tmp/test-rules.json")
	v.Set("confidence.medium", 0.4)

	cfg, err := FromViper(v)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/test-rules.json", cfg.RulesPath)
	assert.InDelta(t, 0.4, cfg.ConfidenceMedium, 1e-9)
	assert.InDelta(t, 0.75, cfg.ConfidenceHigh, 1e-9, "unset keys keep defaults")
}

func TestFromViperExpandsHome(t *testing.T) {
	t.Setenv("HOME", "/home/tester")

	cfg, err := FromViper(viper.New())
	require.NoError(t, err)
	assert.Equal(t, "/home/tester/.local/share/autobooks/rules.json", cfg.RulesPath)
}

func TestValidateRejectsInvertedThresholds(t *testing.T) {
	cfg := Default()
	cfg.ConfidenceHigh = 0.4 // below medium

	err := cfg.Validate()
	assert.ErrorIs(t, err, common.ErrInvalidConfig)

	v := viper.New()
	v.Set("confidence.high", 0.3)
	_, err = FromViper(v)
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestValidateRejectsBadRatesAndBand(t *testing.T) {
	cfg := Default()
	cfg.TDSRates[model.CategoryRent] = 150
	assert.ErrorIs(t, cfg.Validate(), common.ErrInvalidConfig)

	cfg = Default()
	cfg.AmountBandMin = cfg.AmountBandMax
	assert.ErrorIs(t, cfg.Validate(), common.ErrInvalidConfig)
}
