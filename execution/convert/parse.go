package convert

import (
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/robbyt/go-polyexpr/execution/evalerr"
	"github.com/robbyt/go-polyexpr/execution/value"
	"github.com/shopspring/decimal"
	"github.com/sosodev/duration"
)

// ParseNumber parses a numeric literal. It accepts an optional sign, 0x hex digits,
// exponents and the suffixes u, l, ul, lu (integers), f, d (floating) and m (decimal),
// in any case. The returned value has the kind the literal denotes: int, long or ulong
// for unsuffixed integers depending on magnitude, double for unsuffixed reals.
func ParseNumber(s string) (value.Value, error) {
	n, kind, err := parseNumber(s)
	if err != nil {
		return value.Null, err
	}
	if kind == value.KindInvalid {
		switch n.class {
		case classSigned:
			kind = value.KindInt64
			if n.i >= -1<<31 && n.i < 1<<31 {
				kind = value.KindInt32
			}
		case classUnsigned:
			kind = value.KindUInt64
		case classFloat:
			kind = value.KindFloat64
		default:
			kind = value.KindDecimal
		}
	}
	return makeNumeric(value.NumericType(kind), n, "string")
}

// parseNumber returns the literal's value and, when a suffix fixes it, its kind.
func parseNumber(s string) (number, value.Kind, error) {
	fail := func(reason string) (number, value.Kind, error) {
		return number{}, value.KindInvalid, evalerr.InvalidCast("string", "number", reason+": "+strconv.Quote(s))
	}

	t := strings.TrimSpace(s)
	if t == "" {
		return fail("empty numeric literal")
	}
	sign := ""
	body := t
	if body[0] == '+' || body[0] == '-' {
		sign, body = body[:1], body[1:]
	}
	lower := strings.ToLower(body)

	if strings.HasPrefix(lower, "0x") {
		digits, kind := trimIntegerSuffix(lower[2:])
		u, err := strconv.ParseUint(digits, 16, 64)
		if err != nil {
			return fail("malformed hex literal")
		}
		if sign == "-" {
			if u > 1<<63 {
				return fail("hex literal out of range")
			}
			return signedNumber(-int64(u)), kind, nil
		}
		if u > 1<<63-1 || kind == value.KindUInt32 || kind == value.KindUInt64 {
			return unsignedNumber(u), kind, nil
		}
		return signedNumber(int64(u)), kind, nil
	}

	switch {
	case strings.HasSuffix(lower, "m"):
		d, err := decimal.NewFromString(sign + body[:len(body)-1])
		if err != nil {
			return fail("malformed decimal literal")
		}
		return decimalNumber(d), value.KindDecimal, nil
	case strings.HasSuffix(lower, "f"), strings.HasSuffix(lower, "d"):
		kind := value.KindFloat64
		if strings.HasSuffix(lower, "f") {
			kind = value.KindFloat32
		}
		f, err := strconv.ParseFloat(sign+body[:len(body)-1], 64)
		if err != nil {
			return fail("malformed real literal")
		}
		return floatNumber(f), kind, nil
	}

	digits, kind := trimIntegerSuffix(lower)
	if kind != value.KindInvalid {
		if kind == value.KindUInt32 || kind == value.KindUInt64 {
			if sign == "-" {
				return fail("negative unsigned literal")
			}
			u, err := strconv.ParseUint(digits, 10, 64)
			if err != nil {
				return fail("malformed unsigned literal")
			}
			return unsignedNumber(u), kind, nil
		}
		i, err := strconv.ParseInt(sign+digits, 10, 64)
		if err != nil {
			return fail("malformed integer literal")
		}
		return signedNumber(i), kind, nil
	}

	if !strings.ContainsAny(lower, ".e") {
		if i, err := strconv.ParseInt(sign+body, 10, 64); err == nil {
			return signedNumber(i), value.KindInvalid, nil
		}
		if sign != "-" {
			if u, err := strconv.ParseUint(body, 10, 64); err == nil {
				return unsignedNumber(u), value.KindInvalid, nil
			}
		}
	}
	f, err := strconv.ParseFloat(sign+body, 64)
	if err != nil {
		return fail("malformed numeric literal")
	}
	return floatNumber(f), value.KindInvalid, nil
}

// trimIntegerSuffix strips u, l, ul or lu from a lower-cased literal.
func trimIntegerSuffix(lower string) (string, value.Kind) {
	switch {
	case strings.HasSuffix(lower, "ul"), strings.HasSuffix(lower, "lu"):
		return lower[:len(lower)-2], value.KindUInt64
	case strings.HasSuffix(lower, "u"):
		return lower[:len(lower)-1], value.KindUInt32
	case strings.HasSuffix(lower, "l"):
		return lower[:len(lower)-1], value.KindInt64
	}
	return lower, value.KindInvalid
}

func isEnumDelimiter(r rune) bool {
	switch r {
	case '+', ';', ',', '|':
		return true
	}
	return unicode.IsSpace(r)
}

// ParseEnum parses s against the enumeration t. Members may be combined with any of
// the delimiters + ; , | or whitespace, bare digits are taken as raw bits and names
// match case-insensitively. An empty string maps to zero only when t declares a zero
// member.
func ParseEnum(t *value.Type, s string) (value.Value, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		if _, ok := t.EnumName(0); ok {
			return value.Enum(t, 0), nil
		}
		return value.Null, evalerr.InvalidCast("string", t.String(), "empty string and no zero member")
	}

	var bits uint64
	for _, tok := range strings.FieldsFunc(trimmed, isEnumDelimiter) {
		if isDigits(tok) {
			if i, err := strconv.ParseInt(tok, 10, 64); err == nil {
				bits |= uint64(i)
				continue
			}
			u, err := strconv.ParseUint(tok, 10, 64)
			if err != nil {
				return value.Null, evalerr.InvalidCast("string", t.String(), "enum bits out of range: "+tok)
			}
			bits |= u
			continue
		}
		member, ok := t.LookupEnum(tok)
		if !ok {
			return value.Null, evalerr.InvalidCast("string", t.String(), "unknown member "+strconv.Quote(tok))
		}
		bits |= member
	}
	return value.Enum(t, bits), nil
}

func isDigits(tok string) bool {
	tok = strings.TrimPrefix(tok, "-")
	if tok == "" {
		return false
	}
	for _, r := range tok {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// ParseDuration accepts an ISO-8601 duration (P1DT2H), a bare number of milliseconds,
// a Go duration literal (1h30m) or a clock literal [-][d.]hh:mm[:ss[.fffffff]].
func ParseDuration(s string) (value.Value, error) {
	t := strings.TrimSpace(s)
	fail := func(reason string) (value.Value, error) {
		return value.Null, evalerr.InvalidCast("string", value.DurationType.String(), reason+": "+strconv.Quote(s))
	}
	if t == "" {
		return fail("empty duration")
	}

	neg := strings.HasPrefix(t, "-")
	body := strings.TrimPrefix(t, "-")

	if strings.HasPrefix(strings.ToUpper(body), "P") {
		d, err := duration.Parse(strings.ToUpper(body))
		if err != nil {
			return fail("malformed ISO-8601 duration")
		}
		td := d.ToTimeDuration()
		if neg {
			td = -td
		}
		return value.Duration(td), nil
	}

	if _, err := strconv.ParseFloat(t, 64); err == nil {
		n, _, err := parseNumber(t)
		if err != nil {
			return fail("malformed milliseconds")
		}
		return makeNumeric(value.DurationType, n, "string")
	}

	if d, err := time.ParseDuration(t); err == nil {
		return value.Duration(d), nil
	}

	d, ok := parseClock(body)
	if !ok {
		return fail("malformed duration")
	}
	if neg {
		d = -d
	}
	return value.Duration(d), nil
}

func parseClock(s string) (time.Duration, bool) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, false
	}

	var days int64
	hourPart := parts[0]
	if i := strings.IndexByte(hourPart, '.'); i >= 0 {
		d, err := strconv.ParseInt(hourPart[:i], 10, 32)
		if err != nil || d < 0 {
			return 0, false
		}
		days, hourPart = d, hourPart[i+1:]
	}
	hours, err := strconv.ParseInt(hourPart, 10, 32)
	if err != nil || hours < 0 || hours > 23 {
		return 0, false
	}
	minutes, err := strconv.ParseInt(parts[1], 10, 32)
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, false
	}
	var seconds float64
	if len(parts) == 3 {
		seconds, err = strconv.ParseFloat(parts[2], 64)
		if err != nil || seconds < 0 || seconds >= 60 {
			return 0, false
		}
	}

	total := time.Duration(days)*24*time.Hour +
		time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds*float64(time.Second))
	return total, true
}
