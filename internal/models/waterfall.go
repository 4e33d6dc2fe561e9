package models

import "github.com/shopspring/decimal"

// WaterfallResult is the four-way split of one month's profit. All four
// components are non-negative by construction; a month with negative profit
// produces zero for every component.
type WaterfallResult struct {
	GST           decimal.Decimal
	ServiceCharge decimal.Decimal
	PartnerShare  decimal.Decimal
	OwnerPayment  decimal.Decimal
}

// ZeroWaterfall returns a result with all components set to exact zero.
func ZeroWaterfall() WaterfallResult {
	return WaterfallResult{
		GST:           decimal.Zero,
		ServiceCharge: decimal.Zero,
		PartnerShare:  decimal.Zero,
		OwnerPayment:  decimal.Zero,
	}
}

// Component returns the amount for one payout type. Non-waterfall types
// return zero.
func (w WaterfallResult) Component(t TransactionType) decimal.Decimal {
	switch t {
	case TxGST:
		return w.GST
	case TxServiceCharge:
		return w.ServiceCharge
	case TxPartnerShare:
		return w.PartnerShare
	case TxOwnerPayment:
		return w.OwnerPayment
	}
	return decimal.Zero
}

// Add returns the component-wise sum of two results.
func (w WaterfallResult) Add(o WaterfallResult) WaterfallResult {
	return WaterfallResult{
		GST:           w.GST.Add(o.GST),
		ServiceCharge: w.ServiceCharge.Add(o.ServiceCharge),
		PartnerShare:  w.PartnerShare.Add(o.PartnerShare),
		OwnerPayment:  w.OwnerPayment.Add(o.OwnerPayment),
	}
}
