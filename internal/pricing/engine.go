package pricing

// Money represents a monetary value stored in whole pesos.
type Money = int64

// CashRoundingStep is the smallest coin denomination the till can hand out.
// Cash totals are rounded to the nearest multiple of it; card settlement is exact.
const CashRoundingStep Money = 10

// PaymentMethod classifies how a sale was settled.
type PaymentMethod string

const (
	MethodCash  PaymentMethod = "EFECTIVO"
	MethodCard  PaymentMethod = "TARJETA"
	MethodMixed PaymentMethod = "MIXTO"
)

// Split is the payment breakdown for a sale total and a tendered cash amount.
type Split struct {
	TotalToPay   Money
	RoundedTotal Money
	CashTendered Money
	CardAmount   Money
	Change       Money
	RoundingDiff Money
}

// LineSubtotal computes the price of a weighed line item:
// round(weightGrams/1000 * pricePerKg), half up. Callers must reject
// non-positive weights before invoking it.
func LineSubtotal(weightGrams int64, pricePerKg Money) Money {
	return (weightGrams*pricePerKg + 500) / 1000
}

// RoundCashTotal rounds a sale total to the nearest CashRoundingStep, half up.
func RoundCashTotal(total Money) Money {
	return ((total + CashRoundingStep/2) / CashRoundingStep) * CashRoundingStep
}

// ComputeSplit derives the cash/card breakdown for a sale.
//
// When cash alone covers the rounded total the customer pays the rounded
// figure in cash and the rounding difference is absorbed by the cash leg.
// Otherwise the exact total applies: rounding exists only so cash payments
// avoid fractional coins, and is waived whenever card makes up the
// difference. Cash between the exact and the rounded total settles at the
// exact total with change owed.
func ComputeSplit(total, cashTendered Money) Split {
	rounded := RoundCashTotal(total)
	s := Split{
		RoundedTotal: rounded,
		CashTendered: cashTendered,
	}
	switch {
	case cashTendered >= rounded:
		s.TotalToPay = rounded
		s.RoundingDiff = rounded - total
		s.Change = cashTendered - rounded
	case cashTendered >= total:
		// Rounding went up and cash landed in the gap. Settle exact, owe change.
		s.TotalToPay = total
		s.Change = cashTendered - total
	default:
		s.TotalToPay = total
		s.CardAmount = total - cashTendered
	}
	return s
}

// Method classifies a split as cash-only, card-only, or mixed.
func (s Split) Method() PaymentMethod {
	switch {
	case s.CashTendered <= 0 && s.CardAmount > 0:
		return MethodCard
	case s.CardAmount > 0:
		return MethodMixed
	default:
		return MethodCash
	}
}
