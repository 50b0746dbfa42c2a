package resource

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/itchyny/gojq"

	"github.com/crmarques/boxctl/faults"
)

var queryCodeCache sync.Map

// Query evaluates a jq expression against an API result. A single result is
// returned as-is; several are returned as a slice.
func Query(ctx context.Context, value Value, expression string) (Value, error) {
	trimmed := strings.TrimSpace(expression)
	if trimmed == "" {
		return value, nil
	}

	code, err := cachedQueryCode(trimmed)
	if err != nil {
		return nil, faults.NewTypedError(faults.ValidationError, "invalid jq expression", err)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	iterator := code.RunWithContext(ctx, normalizeForQuery(value))
	results := make([]any, 0, 1)
	for {
		item, ok := iterator.Next()
		if !ok {
			break
		}
		if itemErr, isErr := item.(error); isErr {
			return nil, faults.NewTypedError(faults.ValidationError, "failed to evaluate jq expression", itemErr)
		}
		results = append(results, item)
	}

	switch len(results) {
	case 0:
		return nil, nil
	case 1:
		return results[0], nil
	default:
		return results, nil
	}
}

func cachedQueryCode(expression string) (*gojq.Code, error) {
	if cached, ok := queryCodeCache.Load(expression); ok {
		if typed, ok := cached.(*gojq.Code); ok && typed != nil {
			return typed, nil
		}
	}

	query, err := gojq.Parse(expression)
	if err != nil {
		return nil, err
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return nil, err
	}

	actual, _ := queryCodeCache.LoadOrStore(expression, code)
	typed, _ := actual.(*gojq.Code)
	if typed == nil {
		return code, nil
	}
	return typed, nil
}

// gojq only accepts plain JSON-like values, so json.Number and integer
// widths are folded into the types it understands.
func normalizeForQuery(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[key] = normalizeForQuery(item)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for idx, item := range typed {
			out[idx] = normalizeForQuery(item)
		}
		return out
	case json.Number:
		if asInt, err := typed.Int64(); err == nil {
			return int(asInt)
		}
		if asFloat, err := typed.Float64(); err == nil {
			return asFloat
		}
		return typed.String()
	case int64:
		return int(typed)
	case int32:
		return int(typed)
	default:
		return value
	}
}
