package monoracle

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Record is a snapshot of a Monoracle contract's accessors.
type Record struct {
	CreatorWallet string `json:"creatorWallet"`
	// Data is the decoded JSON payload (map[string]any, []any, float64,
	// string, bool or nil), or the raw on-chain string when it is not valid
	// JSON. Numbers beyond float64 range decode to ±Inf, which encoding/json
	// refuses to marshal.
	Data           any    `json:"data"`
	APIURL         string `json:"apiUrl"`
	APIHeaders     string `json:"apiHeaders"`
	APIParameters  string `json:"apiParameters"`
	LastUpdateTime uint64 `json:"lastUpdateTime"`

	decoded bool
}

// Decoded reports whether Data holds a parsed JSON value rather than the raw
// on-chain string.
func (r *Record) Decoded() bool {
	return r != nil && r.decoded
}

// DecodeData converts the record's payload into T. When Data already has type
// T it is returned as is; otherwise it is re-shaped through JSON.
func DecodeData[T any](r *Record) (T, error) {
	var out T
	if r == nil {
		return out, errors.New("monoracle: nil record")
	}
	if v, ok := r.Data.(T); ok {
		return v, nil
	}
	raw, err := json.Marshal(r.Data)
	if err != nil {
		return out, fmt.Errorf("monoracle: encode data: %w", err)
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("monoracle: decode data into %T: %w", out, err)
	}
	return out, nil
}
