package finance

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Loose accessors over values produced by decoding JSON with UseNumber.
// Snapshots written by older versions may hold numbers as strings, nulls or
// fields of the wrong kind, each accessor returns ok=false when the value
// cannot be read as the wanted kind.

// decodeLoose decodes any JSON document into maps, slices and json.Number.
func decodeLoose(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// looseObject turns a snapshot into a loosely typed JSON object.
// Raw JSON and typed values are encoded and decoded again.
func looseObject(snapshot any) map[string]any {
	var data []byte
	switch v := snapshot.(type) {
	case nil:
		return nil
	case map[string]any:
		return v
	case []byte:
		data = v
	case json.RawMessage:
		data = v
	case string:
		data = []byte(v)
	default:
		var err error
		if data, err = json.Marshal(v); err != nil {
			return nil
		}
	}
	v, err := decodeLoose(data)
	if err != nil {
		return nil
	}
	obj, _ := v.(map[string]any)
	return obj
}

func asList(v any) ([]any, bool) {
	l, ok := v.([]any)
	return l, ok
}

func asObject(v any) (map[string]any, bool) {
	m, ok := v.(map[string]any)
	return m, ok
}

// asString reads strings, and numbers as their literal text.
func asString(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case json.Number:
		return s.String()
	}
	return ""
}

// asDecimal reads numbers and numeric strings.
func asDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		return d, err == nil
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(n), true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(n))
		return d, err == nil
	}
	return decimal.Zero, false
}

// asInt reads an integral number, truncating decimals.
func asInt(v any) (int, bool) {
	d, ok := asDecimal(v)
	if !ok {
		return 0, false
	}
	return int(d.IntPart()), true
}

// asBool reads booleans and their usual string spellings.
func asBool(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case string:
		parsed, err := strconv.ParseBool(strings.TrimSpace(b))
		return err == nil && parsed
	}
	return false
}
