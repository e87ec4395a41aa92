package domain

import (
	"math"

	"github.com/dustin/go-humanize"
)

// FormatUSD renders a price the way en-US currency formatting does:
// 29999 -> "$29,999.00".
func FormatUSD(price float64) string {
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return "$0.00"
	}
	if price < 0 {
		return "-$" + humanize.FormatFloat("#,###.##", -price)
	}
	return "$" + humanize.FormatFloat("#,###.##", price)
}
