package dashboard

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Placeholder is shown for missing currency and timestamp values.
const Placeholder = "--"

var printer = message.NewPrinter(language.English)

// FormatInt formats an integer with comma separators.
func FormatInt(n int64) string {
	return printer.Sprintf("%d", n)
}

// FormatPnL formats a profit or loss as signed whole dollars: "+$1,250",
// "-$40", "$0". Nil renders as Placeholder.
func FormatPnL(v *float64) string {
	if v == nil {
		return Placeholder
	}
	return FormatPnLValue(*v)
}

// FormatPnLValue is FormatPnL for a present value. The sign follows the
// unrounded value, so -0.4 renders as "-$0".
func FormatPnLValue(v float64) string {
	sign := ""
	switch {
	case v > 0:
		sign = "+"
	case v < 0:
		sign = "-"
	}
	whole := decimal.NewFromFloat(v).Abs().Round(0).IntPart()
	return sign + "$" + FormatInt(whole)
}

// FormatMoney formats an unsigned dollar amount with separators and at most
// two decimals: "$5,000", "$5,123.4".
func FormatMoney(v float64) string {
	d := decimal.NewFromFloat(v).Round(2)
	neg := d.IsNegative()
	d = d.Abs()

	intPart := d.Truncate(0)
	out := "$" + FormatInt(intPart.IntPart())
	if frac := d.Sub(intPart); !frac.IsZero() {
		out += strings.TrimRight(strings.TrimPrefix(frac.StringFixed(2), "0"), "0")
	}
	if neg {
		return "-" + out
	}
	return out
}

// FormatPrice formats American odds: "+120", "-110", "EVEN" for zero and
// the empty string when there is no price.
func FormatPrice(p *int) string {
	if p == nil {
		return ""
	}
	switch {
	case *p == 0:
		return "EVEN"
	case *p > 0:
		return "+" + strconv.Itoa(*p)
	default:
		return strconv.Itoa(*p)
	}
}

// FormatPct formats a percentage with one decimal: "55.6%". It rounds the
// exact binary value half away from zero, so 55.55 (stored just below)
// renders "55.5%" and 0.25 renders "0.3%". Negative values keep their sign
// after rounding: -0.04 renders "-0.0%".
func FormatPct(v float64) string {
	return fixed1(v) + "%"
}

// fixed1 renders v with one decimal, rounding its exact expansion.
func fixed1(v float64) string {
	d, err := decimal.NewFromString(strconv.FormatFloat(v, 'f', 64, 64))
	if err != nil {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	out := d.Round(1).StringFixed(1)
	if v < 0 && !strings.HasPrefix(out, "-") {
		out = "-" + out
	}
	return out
}

// FormatSignedPct is FormatPct with a leading "+" for values >= 0.
func FormatSignedPct(v float64) string {
	if v >= 0 {
		return "+" + FormatPct(v)
	}
	return FormatPct(v)
}

// FormatNumber renders a line or observed value without trailing zeros.
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// FormatDate shortens "2025-04-02" to "4/2". Input without three dash
// separated parts is returned unchanged.
func FormatDate(date string) string {
	parts := strings.Split(date, "-")
	if len(parts) < 3 {
		return date
	}
	m, errM := strconv.Atoi(parts[1])
	d, errD := strconv.Atoi(parts[2])
	if errM != nil || errD != nil {
		return date
	}
	return strconv.Itoa(m) + "/" + strconv.Itoa(d)
}

// FormatFullDate expands "2025-04-02" to "Wednesday, April 2, 2025".
func FormatFullDate(date string) string {
	t, err := time.Parse("2006-01-02", date)
	if err != nil {
		return date
	}
	return t.Format("Monday, January 2, 2006")
}

// FormatMonthLabel renders a calendar heading such as "April 2025".
func FormatMonthLabel(year, month0 int) string {
	return time.Date(year, time.Month(month0+1), 1, 0, 0, 0, 0, time.UTC).Format("January 2006")
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999-07",
	"2006-01-02 15:04:05",
}

// ParseTimestamp accepts the ISO forms the data sources emit. Timestamps
// without a zone are taken as UTC.
func ParseTimestamp(ts string) (time.Time, bool) {
	ts = strings.TrimSpace(ts)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, ts); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FormatTimestamp renders an ISO timestamp in loc as "Apr 2, 2025, 7:10 PM
// EDT". Empty or unparsable input yields Placeholder.
func FormatTimestamp(ts string, loc *time.Location) string {
	t, ok := ParseTimestamp(ts)
	if !ok {
		return Placeholder
	}
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("Jan 2, 2006, 3:04 PM MST")
}

// SignClass returns positive for v >= 0 and negative otherwise.
func SignClass(v float64) string {
	if v >= 0 {
		return "positive"
	}
	return "negative"
}

// PnLClass is SignClass for table cells.
func PnLClass(v float64) string {
	if v >= 0 {
		return "pnl-positive"
	}
	return "pnl-negative"
}

// StrictPnLClass classes only non-zero amounts; nil and zero get no class.
func StrictPnLClass(v *float64) string {
	switch {
	case v == nil || *v == 0:
		return ""
	case *v > 0:
		return "pnl-positive"
	default:
		return "pnl-negative"
	}
}
