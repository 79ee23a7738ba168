package analyzer

import (
	"encoding/json"
	"fmt"
	"regexp"
)

// Type tags produced by Classify.
// These are the labels used throughout schema inference and type histograms.
const (
	TypeNull    = "null"
	TypeBoolean = "boolean"
	TypeNumber  = "number"
	TypeString  = "string"
	TypeArray   = "array"
	TypeObject  = "object"

	// TypeUnknown is only used for values that are literally absent,
	// never for values Classify cannot name.
	TypeUnknown = "unknown"
)

// Histogram labels for values that were persisted as serialized JSON text.
// Distinguished from the generic array/object tags so a reader can tell
// "this key holds a JSON document" apart from a structurally-typed field.
const (
	TypeJSONArray  = "JSON_array"
	TypeJSONObject = "JSON_object"
)

// Classify maps a decoded value to its type tag.
// Boolean is checked before number so a boolean is never reported as a
// number regardless of how the host represents it. Values of any other
// shape report their concrete runtime type name.
func Classify(v any) string {
	switch v.(type) {
	case nil:
		return TypeNull
	case bool:
		return TypeBoolean
	case float64, float32, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64, json.Number:
		return TypeNumber
	case string:
		return TypeString
	case []any:
		return TypeArray
	case map[string]any:
		return TypeObject
	default:
		return fmt.Sprintf("%T", v)
	}
}

// keyPrefixPattern matches a structural key prefix: one or more word
// characters followed by an underscore, non-greedy so "user_cache_1"
// collapses to "user_*" rather than "user_cache_*".
var keyPrefixPattern = regexp.MustCompile(`^([a-zA-Z0-9_]+?)_`)

// ExtractKeyPrefix returns the pattern bucket for a storage key.
// Keys with a structural prefix collapse into "<prefix>_*"; all other keys
// are their own bucket, matched verbatim.
func ExtractKeyPrefix(key string) string {
	if m := keyPrefixPattern.FindStringSubmatch(key); m != nil {
		return m[1] + "_*"
	}
	return key
}

// CanonicalString renders a value for textual-equality comparison.
// Strings render as themselves (no quoting); everything else renders as
// compact JSON, which is deterministic because Go sorts object keys.
// Two structurally different values that render identically are regarded
// as the same value; cardinality counting accepts that imprecision.
func CanonicalString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
