package convert

import (
	"math"
)

func RoundFloat64(number float64, decimals int) float64 {
	return math.Round(number*math.Pow10(int(decimals))) / math.Pow10(int(decimals))
}

// MWh2Kwh converts a price per MWh into a price per kWh.
func MWh2Kwh(price float64) float64 {
	return price / 1e3
}

func VatMultiplier(withVat bool, vat float64) float64 {
	if withVat {
		return 1 + vat
	}
	return 1
}
