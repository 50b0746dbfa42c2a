package resource

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Changed reports whether any desired field differs from the remote record.
// Fields present only on the remote side are ignored.
func Changed(remote Data, desired Data) bool {
	for key, value := range desired {
		if CanonicalString(remote[key]) != CanonicalString(value) {
			return true
		}
	}
	return false
}

type FieldChange struct {
	Field   string `json:"field" yaml:"field"`
	Remote  string `json:"remote" yaml:"remote"`
	Desired string `json:"desired" yaml:"desired"`
}

// Diff lists every desired field whose canonical form differs remotely, sorted by field.
func Diff(remote Data, desired Data) []FieldChange {
	keys := make([]string, 0, len(desired))
	for key := range desired {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var changes []FieldChange
	for _, key := range keys {
		remoteValue := CanonicalString(remote[key])
		desiredValue := CanonicalString(desired[key])
		if remoteValue == desiredValue {
			continue
		}
		changes = append(changes, FieldChange{Field: key, Remote: remoteValue, Desired: desiredValue})
	}
	return changes
}

// CanonicalString is the loose-equality form used both for comparison and on the wire.
func CanonicalString(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case bool:
		return strconv.FormatBool(typed)
	case int:
		return strconv.Itoa(typed)
	case int8:
		return strconv.FormatInt(int64(typed), 10)
	case int16:
		return strconv.FormatInt(int64(typed), 10)
	case int32:
		return strconv.FormatInt(int64(typed), 10)
	case int64:
		return strconv.FormatInt(typed, 10)
	case uint:
		return strconv.FormatUint(uint64(typed), 10)
	case uint8:
		return strconv.FormatUint(uint64(typed), 10)
	case uint16:
		return strconv.FormatUint(uint64(typed), 10)
	case uint32:
		return strconv.FormatUint(uint64(typed), 10)
	case uint64:
		return strconv.FormatUint(typed, 10)
	case float32:
		return formatFloat(float64(typed), 32)
	case float64:
		return formatFloat(typed, 64)
	case json.Number:
		return typed.String()
	case fmt.Stringer:
		return typed.String()
	default:
		return fmt.Sprint(typed)
	}
}

func formatFloat(value float64, bitSize int) string {
	if math.IsInf(value, 0) || math.IsNaN(value) {
		return fmt.Sprint(value)
	}
	return strconv.FormatFloat(value, 'f', -1, bitSize)
}
