package table

import (
	"math"
	"math/big"
	"strconv"
	"strings"
)

// missingMarkers are the field texts read as missing, in addition to the empty field.
var missingMarkers = map[string]struct{}{
	"#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {}, "-NaN": {}, "-nan": {},
	"1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {}, "NA": {}, "NULL": {}, "NaN": {},
	"None": {}, "n/a": {}, "nan": {}, "null": {},
}

// Value is a single table cell.
type Value struct {
	Raw     string
	Missing bool
}

// Missing returns a missing cell.
func Missing() Value {
	return Value{Missing: true}
}

// Text returns a present cell holding s verbatim.
func Text(s string) Value {
	return Value{Raw: s}
}

// Parse interprets a delimited-file field. Surrounding whitespace is dropped and
// empty or NA-like fields become missing.
func Parse(field string) Value {
	s := strings.TrimSpace(field)
	if s == "" {
		return Missing()
	}
	if _, ok := missingMarkers[s]; ok {
		return Missing()
	}
	return Value{Raw: s}
}

// Number returns a numeric cell. NaN and infinities are stored as missing.
func Number(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Missing()
	}
	return Value{Raw: FormatNumber(f)}
}

// Float returns the numeric reading of the cell.
func (v Value) Float() (float64, bool) {
	if v.Missing {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(v.Raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// Equal reports whether both cells are missing or both hold the same text.
func (v Value) Equal(o Value) bool {
	if v.Missing || o.Missing {
		return v.Missing == o.Missing
	}
	return v.Raw == o.Raw
}

func (v Value) String() string {
	if v.Missing {
		return ""
	}
	return v.Raw
}

// FormatNumber renders f in the shortest form that round-trips, without exponent.
func FormatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// NormalizeKey returns the comparison form of a join or group key. Integer keys are
// canonicalised exactly, so "007" and "7" compare equal at any magnitude; other
// numeric keys go through float64 so "7" and "7.0" compare equal.
func NormalizeKey(v Value) (string, bool) {
	if v.Missing {
		return "", false
	}
	s := strings.TrimSpace(v.Raw)
	if n, ok := integerKey(s); ok {
		return n.String(), true
	}
	if f, ok := v.Float(); ok {
		return FormatNumber(f), true
	}
	return s, true
}

// integerKey parses an optionally signed run of decimal digits.
func integerKey(s string) (*big.Int, bool) {
	if s == "" {
		return nil, false
	}
	return new(big.Int).SetString(s, 10)
}
