package fees

import "github.com/shopspring/decimal"

// Rates are percentage rates, e.g. 2.5 means 2.5%.
type Rates struct {
	ProcessorPct     float64
	PlatformPct      float64
	VATOnPlatformPct float64
}

// Breakdown is the result of splitting a gross tip amount into fees and net.
type Breakdown struct {
	GrossCents         int64
	ProcessorFeeCents  int64
	PlatformFeeCents   int64
	VATOnPlatformCents int64
	NetCents           int64
}

// Calculate splits a gross amount in minor units. VAT applies to the
// platform fee, not the gross. Rounding is half-up per component; a net that
// would go negative is floored at zero rather than rejected.
func Calculate(grossCents int64, rates Rates) Breakdown {
	if grossCents < 0 {
		grossCents = 0
	}

	gross := decimal.NewFromInt(grossCents)

	processorFee := pctOf(gross, rates.ProcessorPct)
	platformFee := pctOf(gross, rates.PlatformPct)
	vat := pctOf(platformFee, rates.VATOnPlatformPct)

	net := grossCents - processorFee.IntPart() - platformFee.IntPart() - vat.IntPart()
	if net < 0 {
		net = 0
	}

	return Breakdown{
		GrossCents:         grossCents,
		ProcessorFeeCents:  processorFee.IntPart(),
		PlatformFeeCents:   platformFee.IntPart(),
		VATOnPlatformCents: vat.IntPart(),
		NetCents:           net,
	}
}

func pctOf(amount decimal.Decimal, pct float64) decimal.Decimal {
	if pct <= 0 {
		return decimal.Zero
	}
	rate := decimal.NewFromFloat(pct).Div(decimal.NewFromInt(100))
	return amount.Mul(rate).Round(0)
}
