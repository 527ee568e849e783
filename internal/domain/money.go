package domain

import "github.com/shopspring/decimal"

// Dust is the tolerance below which a balance is treated as settled.
// Binary floating point cannot represent most decimal currency values
// exactly, so all comparisons against zero go through this threshold.
var Dust = decimal.New(1, -2) // 0.01

// RoundMoney rounds to two decimal places. Only call at the boundary with
// callers; intermediate accumulation stays exact.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// toCents converts a currency amount to integer minor units.
func toCents(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

// fromCents converts integer minor units back to a currency amount.
func fromCents(c int64) decimal.Decimal {
	return decimal.New(c, -2)
}
