package laws

import (
	"context"
	"fmt"

	"github.com/matsumura-ka/egov-mcp/pkg/shape"
	"github.com/matsumura-ka/egov-mcp/toolkit"
)

// FieldPresets reports the field paths each content level of an endpoint
// kind returns. Without a content level every level of the kind is listed.
func FieldPresets(_ context.Context, args FieldPresetsArgs) (interface{}, error) {
	kind, err := shape.ParseKind(args.Kind)
	if err != nil {
		return nil, toolkit.NewError(toolkit.CodeInvalidArguments, err.Error())
	}

	levels := shape.Levels(kind)
	if args.ContentLevel != "" {
		level := shape.Level(args.ContentLevel)
		if !containsLevel(levels, level) {
			return nil, toolkit.NewError(toolkit.CodeInvalidArguments,
				fmt.Sprintf("content level %q is not available for %s", args.ContentLevel, kind))
		}
		levels = []shape.Level{level}
	}

	resp := FieldPresetsResponse{Kind: string(kind)}
	for _, l := range levels {
		fields := shape.Preset(kind, l)
		if fields == nil {
			fields = []string{}
		}
		resp.Presets = append(resp.Presets, LevelPresets{Level: string(l), Fields: fields})
	}
	return resp, nil
}

func containsLevel(levels []shape.Level, l shape.Level) bool {
	for _, x := range levels {
		if x == l {
			return true
		}
	}
	return false
}
