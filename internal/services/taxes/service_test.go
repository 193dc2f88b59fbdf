package taxes

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"cafepos/internal/models"
	"cafepos/internal/storage"
)

func TestResolveOutletOverride(t *testing.T) {
	store := storage.NewMemory()
	store.SeedTaxSettings(models.TaxSettings{
		CGSTRate: decimal.NewFromInt(9),
		SGSTRate: decimal.NewFromInt(9),
	})

	outlet := &models.Outlet{
		TaxEnabled:           true,
		CGSTRate:             decimal.NewFromFloat(2.5),
		SGSTRate:             decimal.NewFromFloat(2.5),
		ServiceChargeEnabled: true,
		ServiceChargeRate:    decimal.NewFromInt(5),
	}

	rates := Resolve(context.Background(), store, outlet)

	assert.Equal(t, "2.5", rates.CGSTRate.String())
	assert.True(t, rates.ServiceChargeEnabled)
	assert.Equal(t, "5", rates.TotalTaxRate().String())
}

func TestResolveGlobalSettings(t *testing.T) {
	store := storage.NewMemory()
	store.SeedTaxSettings(models.TaxSettings{
		CGSTRate: decimal.NewFromInt(9),
		SGSTRate: decimal.NewFromInt(9),
	})

	// Outlet without its own tax config falls through to the global row.
	rates := Resolve(context.Background(), store, &models.Outlet{})

	assert.Equal(t, "9", rates.CGSTRate.String())
	assert.Equal(t, "18", rates.TotalTaxRate().String())
}

func TestResolveDefaultsWhenNoSettingsRow(t *testing.T) {
	store := storage.NewMemory()

	rates := Resolve(context.Background(), store, nil)

	assert.Equal(t, "2.5", rates.CGSTRate.String())
	assert.Equal(t, "2.5", rates.SGSTRate.String())
	assert.False(t, rates.ServiceChargeEnabled)
}
