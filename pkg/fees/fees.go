// Package fees computes processor fees for inbound client payments and
// outbound contractor payouts. Pure functions: same input, same output,
// no I/O, so reconciliation can re-derive any expected amount.
package fees

import (
	"github.com/shopspring/decimal"
)

var (
	cardRate = decimal.NewFromFloat(0.029)
	cardFlat = decimal.NewFromFloat(0.30)

	bankRate = decimal.NewFromFloat(0.01)
	bankFlat = decimal.NewFromFloat(0.30)
	bankMin  = decimal.NewFromFloat(0.30)

	payoutRate = decimal.NewFromFloat(0.0025)
	payoutFlat = decimal.NewFromFloat(0.25)
)

// Breakdown splits an amount into the processor fee and what remains.
// FeeAmount + NetAmount always equals the input amount.
type Breakdown struct {
	FeeAmount decimal.Decimal `json:"fee_amount"`
	NetAmount decimal.Decimal `json:"net_amount"`
}

// PaymentFees returns the processor fee for an inbound client payment.
// Card: 2.9% + 0.30. Bank transfer: 1% + 0.30 with a 0.30 floor.
// Callers validate amount > 0; this function does not clamp.
func PaymentFees(amount decimal.Decimal, method string) Breakdown {
	var fee decimal.Decimal
	switch method {
	case "BANK":
		fee = amount.Mul(bankRate).Add(bankFlat)
		if fee.LessThan(bankMin) {
			fee = bankMin
		}
	default: // CARD
		fee = amount.Mul(cardRate).Add(cardFlat)
	}
	fee = fee.Round(2)
	return Breakdown{FeeAmount: fee, NetAmount: amount.Sub(fee)}
}

// PayoutFees returns the per-payout fee for an outbound contractor transfer:
// 0.25% + 0.25.
func PayoutFees(amount decimal.Decimal) Breakdown {
	fee := amount.Mul(payoutRate).Add(payoutFlat).Round(2)
	return Breakdown{FeeAmount: fee, NetAmount: amount.Sub(fee)}
}

// ClientChargeForContractorNet returns the charge C such that after the
// payment fee on C and the payout fee on the remainder, the contractor nets
// at least earnings. Both fee functions are affine, so the inverse is exact:
//
//	net = (C*(1-rp) - fp)*(1-rq) - fq
//	C   = ((earnings+fq)/(1-rq) + fp) / (1-rp)
//
// The result is rounded up to the cent so rounding never shorts the
// contractor.
func ClientChargeForContractorNet(earnings decimal.Decimal, method string) decimal.Decimal {
	rp, fp := cardRate, cardFlat
	if method == "BANK" {
		rp, fp = bankRate, bankFlat
	}
	one := decimal.NewFromInt(1)
	gross := earnings.Add(payoutFlat).Div(one.Sub(payoutRate))
	charge := gross.Add(fp).Div(one.Sub(rp))
	return charge.RoundUp(2)
}
