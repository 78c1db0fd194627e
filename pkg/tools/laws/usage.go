package laws

import (
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
)

// usageText lists every declared parameter of a tool, in declaration
// order, with its enum values, default, range and required marker.
func usageText(name string, schema *jsonschema.Schema, hint string) string {
	required := make(map[string]bool, len(schema.Required))
	for _, r := range schema.Required {
		required[r] = true
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s で使用可能なパラメータ:\n", name)
	if schema.Properties != nil {
		for pair := schema.Properties.Oldest(); pair != nil; pair = pair.Next() {
			sb.WriteString(paramLine(pair.Key, pair.Value, required[pair.Key]))
			sb.WriteString("\n")
		}
	}
	if hint != "" {
		sb.WriteString("\n")
		sb.WriteString(hint)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func paramLine(name string, prop *jsonschema.Schema, required bool) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "- %s: %s", name, prop.Description)

	enum := prop.Enum
	if len(enum) == 0 && prop.Items != nil {
		enum = prop.Items.Enum
	}
	if len(enum) > 0 {
		values := make([]string, len(enum))
		for i, v := range enum {
			values[i] = fmt.Sprint(v)
		}
		fmt.Fprintf(&sb, " (%s)", strings.Join(values, ", "))
	}

	switch {
	case prop.Minimum != "" && prop.Maximum != "":
		fmt.Fprintf(&sb, "（%s〜%s）", prop.Minimum, prop.Maximum)
	case prop.Minimum != "":
		fmt.Fprintf(&sb, "（%s以上）", prop.Minimum)
	}
	if prop.Default != nil {
		fmt.Fprintf(&sb, "（デフォルト: %v）", prop.Default)
	}
	if required {
		sb.WriteString("（必須）")
	}
	return sb.String()
}
