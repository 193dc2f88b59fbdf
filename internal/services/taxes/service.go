// Package taxes resolves the effective tax rates for an order. An outlet
// with tax configuration enabled overrides the global settings; when
// neither exists the compiled-in defaults apply.
package taxes

import (
	"context"

	"cafepos/internal/models"
	"cafepos/internal/storage"
)

// Resolve returns the tax rates that apply to orders of the given outlet.
// Resolution never fails: a missing settings row falls back to defaults,
// and reads never create rows.
func Resolve(ctx context.Context, st storage.Store, outlet *models.Outlet) models.TaxRates {
	if outlet != nil && outlet.TaxEnabled {
		return models.TaxRates{
			CGSTRate:             outlet.CGSTRate,
			SGSTRate:             outlet.SGSTRate,
			ServiceChargeEnabled: outlet.ServiceChargeEnabled,
			ServiceChargeRate:    outlet.ServiceChargeRate,
		}
	}

	settings, err := st.GetTaxSettings(ctx)
	if err != nil {
		return models.DefaultTaxSettings().Rates()
	}
	return settings.Rates()
}
