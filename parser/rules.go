package parser

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Rule extracts one field from a raw utterance object.
type Rule func(raw map[string]any) (any, bool)

// Present matches when key exists, even with a null value.
func Present(key string) Rule {
	return func(raw map[string]any) (any, bool) {
		v, ok := raw[key]
		return v, ok
	}
}

// Truthy matches when key holds a non-empty value.
func Truthy(key string) Rule {
	return func(raw map[string]any) (any, bool) {
		v, ok := raw[key]
		if !ok || empty(v) {
			return nil, false
		}
		return v, true
	}
}

// Nested applies r to the object stored under parent.
func Nested(parent string, r Rule) Rule {
	return func(raw map[string]any) (any, bool) {
		child, ok := raw[parent].(map[string]any)
		if !ok {
			return nil, false
		}
		return r(child)
	}
}

// First returns the value of the first matching rule.
func First(raw map[string]any, rules []Rule) (any, bool) {
	for _, r := range rules {
		if v, ok := r(raw); ok {
			return v, true
		}
	}
	return nil, false
}

func truthyAll(keys ...string) []Rule {
	out := make([]Rule, len(keys))
	for i, k := range keys {
		out[i] = Truthy(k)
	}
	return out
}

func presentAll(keys ...string) []Rule {
	out := make([]Rule, len(keys))
	for i, k := range keys {
		out[i] = Present(k)
	}
	return out
}

var (
	textRules    = truthyAll("text", "utterance", "transcript", "content")
	speakerRules = truthyAll("speaker", "role", "participant")
	startRules   = presentAll("stime", "start_time", "start", "start_time_ms", "time_start", "begin", "start_ms")
	endRules     = presentAll("etime", "end_time", "end", "end_time_ms", "time_end", "finish", "end_ms")

	nestedStartRules = []Rule{Nested("time", Truthy("start")), Nested("time", Truthy("stime"))}
	nestedEndRules   = []Rule{Nested("time", Truthy("end")), Nested("time", Truthy("etime"))}
)

func empty(v any) bool {
	switch x := v.(type) {
	case nil:
		return true
	case string:
		return x == ""
	case bool:
		return !x
	case float64:
		return x == 0
	case int:
		return x == 0
	case json.Number:
		return x.String() == "0"
	case []any:
		return len(x) == 0
	case map[string]any:
		return len(x) == 0
	}
	return false
}

func asString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	}
	return fmt.Sprint(v)
}

// msThreshold separates second timestamps from millisecond ones.
const msThreshold = 1e6

// Seconds converts a raw timestamp to seconds. Unparseable values are 0,
// values above 1e6 are taken as milliseconds.
func Seconds(v any) float64 {
	var f float64
	switch x := v.(type) {
	case nil:
		return 0
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case uint64:
		f = float64(x)
	case json.Number:
		n, err := x.Float64()
		if err != nil {
			return 0
		}
		f = n
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0
		}
		f = n
	case bool:
		if x {
			f = 1
		}
	default:
		return 0
	}
	if f > msThreshold {
		return f / 1000
	}
	return f
}
