package shape

import "github.com/matsumura-ka/egov-mcp/pkg/jsonvalue"

// CurrentEnforced is the revision status of a revision presently in force.
const CurrentEnforced = "CurrentEnforced"

// FilterCurrent keeps only currently enforced entries of a law catalog
// ({"laws": [...]}) or a revision history ({"revisions": [...]}). For the
// catalog, count is rewritten to the filtered length. Any other value is
// returned unchanged, and filtering everything away is not an error.
func FilterCurrent(v jsonvalue.Value) jsonvalue.Value {
	if !v.IsObject() {
		return v
	}

	if laws, ok := v.Get("laws"); ok && laws.IsArray() {
		kept := keep(laws, catalogStatus)
		return v.With("laws", kept).With("count", jsonvalue.Int(kept.Len()))
	}
	if revisions, ok := v.Get("revisions"); ok && revisions.IsArray() {
		return v.With("revisions", keep(revisions, revisionStatus))
	}
	return v
}

func keep(list jsonvalue.Value, status func(jsonvalue.Value) string) jsonvalue.Value {
	kept := []jsonvalue.Value{}
	for _, entry := range list.Items() {
		if status(entry) == CurrentEnforced {
			kept = append(kept, entry)
		}
	}
	return jsonvalue.NewArray(kept...)
}

// catalogStatus reads the status of a /laws entry from revision_info,
// falling back to current_revision_info.
func catalogStatus(entry jsonvalue.Value) string {
	if s := stringAt(entry, "revision_info", "current_revision_status"); s != "" {
		return s
	}
	return stringAt(entry, "current_revision_info", "current_revision_status")
}

// revisionStatus reads the status of a /law_revisions entry, which is flat
// in the v2 API.
func revisionStatus(entry jsonvalue.Value) string {
	if s := stringAt(entry, "current_revision_status"); s != "" {
		return s
	}
	return stringAt(entry, "revision_info", "current_revision_status")
}

func stringAt(v jsonvalue.Value, keys ...string) string {
	at, ok := v.Path(keys...)
	if !ok {
		return ""
	}
	s, _ := at.Str()
	return s
}
