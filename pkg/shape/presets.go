package shape

import "fmt"

// Kind identifies the e-Gov endpoint a response came from.
type Kind string

const (
	KindLaws         Kind = "laws"
	KindLawData      Kind = "law_data"
	KindLawRevisions Kind = "law_revisions"
	KindKeyword      Kind = "keyword"
)

// Level is a named degree of response detail.
type Level string

const (
	LevelFull      Level = "full"
	LevelTitleOnly Level = "title_only"
	LevelBodyOnly  Level = "body_only"
	LevelSummary   Level = "summary"
	LevelBasicInfo Level = "basic_info"
)

// Kinds lists every endpoint kind with presets.
var Kinds = []Kind{KindLaws, KindLawData, KindLawRevisions, KindKeyword}

type presetKey struct {
	kind  Kind
	level Level
}

var presets = map[presetKey][]string{
	{KindLaws, LevelTitleOnly}: {
		"laws.law_info.law_id",
		"laws.revision_info.law_title",
	},
	{KindLaws, LevelSummary}: {
		"total_count",
		"count",
		"laws.law_info",
		"laws.revision_info.law_revision_id",
		"laws.revision_info.law_title",
		"laws.revision_info.current_revision_status",
		"laws.revision_info.amendment_enforcement_date",
		"laws.current_revision_info.current_revision_status",
		"laws.current_revision_info.amendment_enforcement_date",
	},
	{KindLaws, LevelBasicInfo}: {
		"total_count",
		"count",
		"next_offset",
		"laws.law_info",
		"laws.revision_info.law_revision_id",
		"laws.revision_info.law_title",
		"laws.revision_info.law_title_kana",
		"laws.revision_info.abbrev",
		"laws.revision_info.category",
		"laws.revision_info.updated",
		"laws.revision_info.amendment_promulgate_date",
		"laws.revision_info.amendment_enforcement_date",
		"laws.revision_info.repeal_status",
		"laws.revision_info.current_revision_status",
		"laws.current_revision_info.law_revision_id",
		"laws.current_revision_info.current_revision_status",
	},

	{KindLawData, LevelTitleOnly}: {
		"law_info.law_id",
		"revision_info.law_title",
	},
	{KindLawData, LevelBodyOnly}: {
		"law_full_text",
	},
	{KindLawData, LevelSummary}: {
		"law_info",
		"revision_info.law_revision_id",
		"revision_info.law_title",
		"revision_info.current_revision_status",
		"revision_info.amendment_enforcement_date",
	},
	{KindLawData, LevelBasicInfo}: {
		"attached_files_info",
		"law_info",
		"revision_info",
	},

	{KindLawRevisions, LevelTitleOnly}: {
		"law_info.law_id",
		"revisions.law_revision_id",
		"revisions.law_title",
	},
	{KindLawRevisions, LevelSummary}: {
		"law_info.law_id",
		"law_info.law_num",
		"revisions.law_revision_id",
		"revisions.law_title",
		"revisions.amendment_law_title",
		"revisions.amendment_enforcement_date",
		"revisions.current_revision_status",
	},
	{KindLawRevisions, LevelBasicInfo}: {
		"law_info",
		"revisions.law_revision_id",
		"revisions.law_title",
		"revisions.amendment_type",
		"revisions.amendment_law_id",
		"revisions.amendment_law_title",
		"revisions.amendment_promulgate_date",
		"revisions.amendment_enforcement_date",
		"revisions.repeal_status",
		"revisions.current_revision_status",
		"revisions.updated",
	},

	{KindKeyword, LevelTitleOnly}: {
		"total_count",
		"items.law_info.law_id",
		"items.revision_info.law_title",
	},
	{KindKeyword, LevelSummary}: {
		"total_count",
		"sentence_count",
		"next_offset",
		"items.law_info.law_id",
		"items.revision_info.law_revision_id",
		"items.revision_info.law_title",
		"items.sentences",
	},
	{KindKeyword, LevelBasicInfo}: {
		"total_count",
		"sentence_count",
		"next_offset",
		"items.law_info",
		"items.revision_info.law_revision_id",
		"items.revision_info.law_title",
		"items.revision_info.category",
		"items.revision_info.current_revision_status",
	},
}

// Preset returns the field paths for kind at level. LevelFull and any
// combination without a preset return nil, which Project treats as
// "everything". The result is a fresh copy.
func Preset(kind Kind, level Level) []string {
	fields := presets[presetKey{kind, level}]
	if len(fields) == 0 {
		return nil
	}
	out := make([]string, len(fields))
	copy(out, fields)
	return out
}

// Levels lists the detail levels kind supports, LevelFull first.
func Levels(kind Kind) []Level {
	levels := []Level{LevelFull}
	for _, l := range []Level{LevelTitleOnly, LevelBodyOnly, LevelSummary, LevelBasicInfo} {
		if _, ok := presets[presetKey{kind, l}]; ok {
			levels = append(levels, l)
		}
	}
	return levels
}

// ParseKind validates s as an endpoint kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown endpoint kind %q", s)
}
