package reporting

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// formatValue renders v for Markdown tables.
func formatValue(v float64, kind ValueKind) string {
	switch kind {
	case KindMoney:
		return formatMoney(v)
	case KindPercent:
		return formatPercent(v)
	case KindPeriods:
		return strconv.FormatInt(int64(v), 10)
	default:
		return formatFixed(v, 4)
	}
}

// formatMoney rounds half away from zero to cents and groups thousands.
func formatMoney(v float64) string {
	if !finite(v) {
		return "n/a"
	}
	s := decimal.NewFromFloat(v).StringFixed(2)
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	whole, frac, _ := strings.Cut(s, ".")
	return sign + "$" + groupThousands(whole) + "." + frac
}

func formatPercent(v float64) string {
	if !finite(v) {
		return "n/a"
	}
	return decimal.NewFromFloat(v).Shift(2).StringFixed(2) + "%"
}

// formatFixed is the plain decimal form used in CSV output.
func formatFixed(v float64, places int32) string {
	if !finite(v) {
		return "NaN"
	}
	return decimal.NewFromFloat(v).StringFixed(places)
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var sb strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		sb.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if sb.Len() > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(digits[i : i+3])
	}
	return sb.String()
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
