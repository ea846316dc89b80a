package runtime

import (
	"regexp"
	"strings"

	"github.com/spf13/cast"
)

var placeholderRe = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_.-]+)\s*\}\}`)

// resolveTemplates substitutes {{key}} placeholders in service-call params
// against the evaluation context. A string that is exactly one placeholder
// resolves to the raw value (preserving its type); mixed strings render
// each placeholder as text, with missing keys rendering empty.
func resolveTemplates(params map[string]any, ctx map[string]any) map[string]any {
	if len(params) == 0 {
		return params
	}
	out := make(map[string]any, len(params))
	for k, v := range params {
		out[k] = resolveValue(v, ctx)
	}
	return out
}

func resolveValue(v any, ctx map[string]any) any {
	switch tv := v.(type) {
	case string:
		return resolveString(tv, ctx)
	case map[string]any:
		return resolveTemplates(tv, ctx)
	case []any:
		out := make([]any, len(tv))
		for i, item := range tv {
			out[i] = resolveValue(item, ctx)
		}
		return out
	default:
		return v
	}
}

func resolveString(s string, ctx map[string]any) any {
	if !strings.Contains(s, "{{") {
		return s
	}

	// Whole-string placeholder keeps the underlying type.
	if m := placeholderRe.FindStringSubmatch(s); m != nil && m[0] == strings.TrimSpace(s) {
		return ctx[m[1]]
	}

	return placeholderRe.ReplaceAllStringFunc(s, func(match string) string {
		key := placeholderRe.FindStringSubmatch(match)[1]
		val, ok := ctx[key]
		if !ok || val == nil {
			return ""
		}
		str, err := cast.ToStringE(val)
		if err != nil {
			return ""
		}
		return str
	})
}
