package reconcile

import (
	"encoding/json"
	"math"
	"strings"
)

// Bool leniently interprets an attribute value as a flag. Booleans pass
// through, strings are true only for "true" in any case, integers (and
// whole-number floats, as JSON decodes them) are true when non-zero.
// Anything else is false.
func Bool(v any) bool {
	switch x := v.(type) {
	case bool:
		return x
	case string:
		return strings.EqualFold(strings.TrimSpace(x), "true")
	case int:
		return x != 0
	case int8:
		return x != 0
	case int16:
		return x != 0
	case int32:
		return x != 0
	case int64:
		return x != 0
	case uint:
		return x != 0
	case uint8:
		return x != 0
	case uint16:
		return x != 0
	case uint32:
		return x != 0
	case uint64:
		return x != 0
	case float64:
		return x != 0 && x == math.Trunc(x)
	case float32:
		return x != 0 && float64(x) == math.Trunc(float64(x))
	case json.Number:
		i, err := x.Int64()
		return err == nil && i != 0
	}
	return false
}
