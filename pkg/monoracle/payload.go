package monoracle

import "github.com/tidwall/gjson"

// payload is the outcome of decoding the on-chain data string: either the
// parsed JSON value or the untouched raw string.
type payload struct {
	value  any
	parsed bool
}

// decodePayload parses raw as a complete JSON document. Any parse failure
// yields the raw string unchanged and is never reported.
func decodePayload(raw string) payload {
	if !gjson.Valid(raw) {
		return payload{value: raw}
	}
	return payload{value: jsonValue(gjson.Parse(raw)), parsed: true}
}

// jsonValue converts a validated gjson result into plain Go values. When an
// object repeats a key the last occurrence wins.
func jsonValue(r gjson.Result) any {
	switch {
	case r.IsObject():
		obj := make(map[string]any)
		r.ForEach(func(key, value gjson.Result) bool {
			obj[key.String()] = jsonValue(value)
			return true
		})
		return obj
	case r.IsArray():
		arr := make([]any, 0)
		r.ForEach(func(_, value gjson.Result) bool {
			arr = append(arr, jsonValue(value))
			return true
		})
		return arr
	default:
		return r.Value()
	}
}
