package duration

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// MinusSign is the typographic minus used when durations are shown in documents.
const MinusSign = "−"

// ParseSigned parses a signed "[-]H:MM:SS" duration into seconds.
// Empty input counts as zero. ok is false when the text has the wrong number
// of fields, a field is not a number, or the total does not fit in int64;
// such values are meant to be skipped.
func ParseSigned(s string) (seconds int64, ok bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, true
	}

	negative := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, false
	}

	var fields [3]int64
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 63)
		if err != nil {
			return 0, false
		}
		fields[i] = int64(n)
	}

	total, ok := mulAdd(0, fields[0], 3600)
	if ok {
		total, ok = mulAdd(total, fields[1], 60)
	}
	if ok {
		total, ok = mulAdd(total, fields[2], 1)
	}
	if !ok {
		return 0, false
	}
	if negative {
		total = -total
	}
	return total, true
}

// Seconds adds up every parseable duration and ignores the rest. An entry
// that would overflow the running total is ignored as well.
func Seconds(texts []string) int64 {
	var total int64
	for _, t := range texts {
		n, ok := ParseSigned(t)
		if !ok {
			continue
		}
		if (n > 0 && total > math.MaxInt64-n) || (n < 0 && total < math.MinInt64+1-n) {
			continue
		}
		total += n
	}
	return total
}

// mulAdd returns acc + n*factor for non-negative operands, reporting false
// on int64 overflow.
func mulAdd(acc, n, factor int64) (int64, bool) {
	if n > (math.MaxInt64-acc)/factor {
		return 0, false
	}
	return acc + n*factor, true
}

// Sum adds up durations and returns the total in "[-]H:MM:SS" form.
// Examples: ["1:00:00", "-0:30:00"] → "0:30:00", [] → "0:00:00".
func Sum(texts []string) string {
	return Format(Seconds(texts))
}

// Format converts seconds to "[-]H:MM:SS" with hours unpadded.
func Format(seconds int64) string {
	sign := ""
	if seconds < 0 {
		sign = "-"
		seconds = -seconds
	}
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%s%d:%02d:%02d", sign, h, m, s)
}

// Display swaps a leading "-" for the typographic minus sign.
func Display(s string) string {
	if strings.HasPrefix(s, "-") {
		return MinusSign + s[1:]
	}
	return s
}

// Hours converts seconds to decimal hours rounded to two places.
func Hours(seconds int64) decimal.Decimal {
	return decimal.NewFromInt(seconds).Div(decimal.NewFromInt(3600)).Round(2)
}
