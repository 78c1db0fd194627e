// Package shape narrows and renders e-Gov API responses: field projection,
// the per-endpoint field presets, the currently-enforced filter and the
// final text rendering handed back to tool callers.
package shape

import (
	"strings"

	"github.com/matsumura-ka/egov-mcp/pkg/jsonvalue"
)

// Project keeps only the dotted field paths of v, mirroring its structure.
//
// An empty path list returns v unchanged. Sequences are projected element by
// element and scalars are returned as they are. Paths naming keys that do
// not exist are skipped silently at every depth. If a key is requested
// both on its own and as the prefix of a longer path, the whole value is
// kept.
func Project(v jsonvalue.Value, paths []string) jsonvalue.Value {
	paths = cleanPaths(paths)
	if len(paths) == 0 {
		return v
	}
	return project(v, paths)
}

func project(v jsonvalue.Value, paths []string) jsonvalue.Value {
	switch {
	case v.IsArray():
		items := make([]jsonvalue.Value, 0, v.Len())
		for _, item := range v.Items() {
			items = append(items, project(item, paths))
		}
		return jsonvalue.NewArray(items...)
	case v.IsObject():
		return projectObject(v, paths)
	default:
		return v
	}
}

func projectObject(v jsonvalue.Value, paths []string) jsonvalue.Value {
	direct := make(map[string]bool)
	nested := make(map[string][]string)
	for _, p := range paths {
		head, rest, found := strings.Cut(p, ".")
		if !found {
			direct[head] = true
			continue
		}
		nested[head] = append(nested[head], rest)
	}

	members := []jsonvalue.Member{}
	for _, m := range v.Members() {
		if direct[m.Key] {
			members = append(members, m)
			continue
		}
		suffixes, ok := nested[m.Key]
		if !ok {
			continue
		}
		sub := project(m.Value, suffixes)
		if sub.IsObject() && sub.Len() == 0 {
			continue
		}
		members = append(members, jsonvalue.Member{Key: m.Key, Value: sub})
	}
	return jsonvalue.NewObject(members...)
}

func cleanPaths(paths []string) []string {
	var out []string
	for _, p := range paths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}
