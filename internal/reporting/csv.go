package reporting

import (
	"fmt"
	"strings"
)

// RenderFinalValuesCSV renders final wealth samples as CSV string.
func RenderFinalValuesCSV(values []float64) string {
	var sb strings.Builder

	// Header
	sb.WriteString("trajectory,final_value\n")

	// Rows
	for i, v := range values {
		sb.WriteString(fmt.Sprintf("%d,%s\n", i, formatFixed(v, 2)))
	}

	return sb.String()
}

// RenderSummaryCSV renders the report metrics as CSV string, one metric per row.
func RenderSummaryCSV(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("section,metric,value\n")

	for _, w := range r.Wealth {
		sb.WriteString(fmt.Sprintf("wealth,%s,%s\n", csvField(w.Metric), formatFixed(w.Nominal, 2)))
		sb.WriteString(fmt.Sprintf("real_wealth,%s,%s\n", csvField(w.Metric), formatFixed(w.Real, 2)))
	}
	for _, m := range r.Outcomes {
		sb.WriteString(fmt.Sprintf("outcome,%s,%s\n", csvField(m.Metric), csvValue(m)))
	}
	for _, m := range r.Risk {
		sb.WriteString(fmt.Sprintf("risk,%s,%s\n", csvField(m.Metric), csvValue(m)))
	}
	for _, c := range r.Comparison {
		sb.WriteString(fmt.Sprintf("lump_sum,%s,%s\n", csvField(c.Metric),
			csvValue(MetricRow{Value: c.LumpSum, Kind: c.Kind})))
	}

	return sb.String()
}

func csvValue(m MetricRow) string {
	switch m.Kind {
	case KindMoney:
		return formatFixed(m.Value, 2)
	case KindPeriods:
		return fmt.Sprintf("%d", int64(m.Value))
	default:
		return formatFixed(m.Value, 6)
	}
}

// csvField quotes s when it contains a separator or quote.
func csvField(s string) string {
	if !strings.ContainsAny(s, ",\"\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
