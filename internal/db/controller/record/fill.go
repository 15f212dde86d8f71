package record

import (
	"fmt"

	"github.com/GoSettings-Admin/GoSettings-Admin/internal/config"
)

// Link is the display value of a link field.
type Link struct {
	URL   string
	Title string
}

// Fill extracts display values for fields from values, keyed by field name.
// Missing or empty fields yield an empty string.
func Fill(values Values, fields []config.Field) map[string]any {
	out := make(map[string]any, len(fields))

	for _, f := range fields {
		raw, ok := values[f.Name]
		if !ok || isEmpty(raw) {
			out[f.Name] = ""
			continue
		}

		switch f.Type {
		case config.FieldTextfield, config.FieldTextarea:
			out[f.Name] = fmt.Sprint(raw)
		case config.FieldLink:
			out[f.Name] = toLink(raw)
		default:
			out[f.Name] = "unknown field type " + f.Type
		}
	}

	return out
}

func toLink(raw any) Link {
	switch v := raw.(type) {
	case map[string]any:
		var l Link
		l.URL, _ = v["url"].(string)
		l.Title, _ = v["title"].(string)

		return l
	case string:
		return Link{URL: v}
	default:
		return Link{}
	}
}

func isEmpty(raw any) bool {
	switch v := raw.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case map[string]any:
		return len(v) == 0
	default:
		return false
	}
}
