package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TaxRates is the effective tax configuration applied to an order,
// resolved per outlet with a global fallback.
type TaxRates struct {
	CGSTRate             decimal.Decimal `json:"cgst_rate"`
	SGSTRate             decimal.Decimal `json:"sgst_rate"`
	ServiceChargeEnabled bool            `json:"service_charge_enabled"`
	ServiceChargeRate    decimal.Decimal `json:"service_charge_rate"`
}

// TotalTaxRate returns the combined CGST+SGST rate.
func (r TaxRates) TotalTaxRate() decimal.Decimal {
	return r.CGSTRate.Add(r.SGSTRate)
}

// Outlet is a physical store/branch. Outlets may carry their own tax
// configuration and order-number prefix; unset values fall back to the
// global settings.
type Outlet struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
	Code string `json:"code" db:"code"`

	OrderPrefix      string `json:"order_prefix,omitempty" db:"order_prefix"`
	AutoAcceptOrders bool   `json:"auto_accept_orders" db:"auto_accept_orders"`

	TaxEnabled           bool            `json:"tax_enabled" db:"tax_enabled"`
	CGSTRate             decimal.Decimal `json:"cgst_rate" db:"cgst_rate"`
	SGSTRate             decimal.Decimal `json:"sgst_rate" db:"sgst_rate"`
	ServiceChargeEnabled bool            `json:"service_charge_enabled" db:"service_charge_enabled"`
	ServiceChargeRate    decimal.Decimal `json:"service_charge_rate" db:"service_charge_rate"`

	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// NumberPrefix returns the prefix used for this outlet's order numbers:
// configured prefix, else outlet code, else the global default.
func (o *Outlet) NumberPrefix(fallback string) string {
	if o.OrderPrefix != "" {
		return o.OrderPrefix
	}
	if o.Code != "" {
		return o.Code
	}
	return fallback
}

// TaxSettings is the global tax configuration singleton.
type TaxSettings struct {
	CGSTRate             decimal.Decimal `json:"cgst_rate" db:"cgst_rate"`
	SGSTRate             decimal.Decimal `json:"sgst_rate" db:"sgst_rate"`
	ServiceChargeEnabled bool            `json:"service_charge_enabled" db:"service_charge_enabled"`
	ServiceChargeRate    decimal.Decimal `json:"service_charge_rate" db:"service_charge_rate"`
}

// Rates converts the settings into effective TaxRates.
func (s TaxSettings) Rates() TaxRates {
	return TaxRates{
		CGSTRate:             s.CGSTRate,
		SGSTRate:             s.SGSTRate,
		ServiceChargeEnabled: s.ServiceChargeEnabled,
		ServiceChargeRate:    s.ServiceChargeRate,
	}
}

// DefaultTaxSettings returns the compiled-in tax defaults used when no
// settings row exists. Reads never create rows.
func DefaultTaxSettings() TaxSettings {
	return TaxSettings{
		CGSTRate:             decimal.NewFromFloat(2.5),
		SGSTRate:             decimal.NewFromFloat(2.5),
		ServiceChargeEnabled: false,
		ServiceChargeRate:    decimal.Zero,
	}
}

// OrderSettings is the global order-behavior singleton.
type OrderSettings struct {
	AutoAcceptOrders    bool   `json:"auto_accept_orders" db:"auto_accept_orders"`
	DefaultPrepTime     int    `json:"default_preparation_time" db:"default_preparation_time"`
	OrderNumberPrefix   string `json:"order_number_prefix" db:"order_number_prefix"`
	AllowQROrdering     bool   `json:"allow_qr_ordering" db:"allow_qr_ordering"`
	RequirePhoneTakeout bool   `json:"require_phone_takeaway" db:"require_phone_takeaway"`
}

// DefaultOrderSettings returns the compiled-in order defaults used when
// no settings row exists.
func DefaultOrderSettings() OrderSettings {
	return OrderSettings{
		AutoAcceptOrders:    false,
		DefaultPrepTime:     15,
		OrderNumberPrefix:   "ORD",
		AllowQROrdering:     true,
		RequirePhoneTakeout: true,
	}
}
