// Package laws exposes the e-Gov law API as toolkit tools.
//
// Each tool validates its arguments, issues exactly one GET through the
// shared egov.Client and renders the response as text. Invalid arguments
// and upstream failures are returned as explanatory text rather than
// errors, so the calling agent can correct itself.
package laws

import (
	"log/slog"
	"net/url"
	"strconv"

	"github.com/matsumura-ka/egov-mcp/pkg/egov"
	"github.com/matsumura-ka/egov-mcp/pkg/shape"
	"github.com/matsumura-ka/egov-mcp/toolkit"
)

// ParentName is the toolkit parent holding the law tools.
const ParentName = "egov"

const (
	defaultLawsLimit    = 10
	defaultKeywordLimit = 100
	defaultFormat       = "json"
)

const titleSearchHint = "※法令名で検索する場合は get_laws の law_title を使用してください。"

var (
	attachmentBinary = &binaryRule{
		markers: []string{"image", "pdf", "zip", "octet-stream"},
		label:   "バイナリデータ",
	}
	lawFileBinary = &binaryRule{
		markers: []string{"pdf", "officedocument", "msword", "rtf", "octet-stream"},
		label:   "ファイルデータ",
	}
)

// Service owns the upstream client shared by every tool invocation.
type Service struct {
	client *egov.Client
	logger *slog.Logger
}

// NewService returns a Service calling client. A nil logger selects
// slog.Default().
func NewService(client *egov.Client, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{client: client, logger: logger}
}

// NewParent builds the egov parent with the six endpoint tools and
// get_field_presets.
func NewParent(svc *Service) (toolkit.Parent, error) {
	getLaws := &tool[GetLawsArgs]{
		svc:         svc,
		name:        "get_laws",
		description: "法令一覧を取得します。法令名・法令番号・種別などで絞り込めます。fields または content_level で返却項目を絞り込み、current_only で現行施行中の法令のみに限定できます。",
		kind:        shape.KindLaws,
		hint:        titleSearchHint,
		build:       buildGetLaws,
	}
	getLawData := &tool[GetLawDataArgs]{
		svc:         svc,
		name:        "get_law_data",
		description: "特定の法令の本文データを取得します。本文は大きいため、content_level や fields で必要な項目に絞り込むことを推奨します。",
		kind:        shape.KindLawData,
		build:       buildGetLawData,
	}
	getLawRevisions := &tool[GetLawRevisionsArgs]{
		svc:         svc,
		name:        "get_law_revisions",
		description: "特定の法令の改正履歴一覧を取得します。current_only で現行施行中の履歴のみに限定できます。",
		kind:        shape.KindLawRevisions,
		build:       buildGetLawRevisions,
	}
	searchKeyword := &tool[SearchKeywordArgs]{
		svc:         svc,
		name:        "search_keyword",
		description: "法令本文内のキーワード検索を行います。",
		kind:        shape.KindKeyword,
		hint:        titleSearchHint,
		build:       buildSearchKeyword,
	}
	getAttachment := &tool[GetAttachmentArgs]{
		svc:         svc,
		name:        "get_attachment",
		description: "法令の添付ファイルを取得します。バイナリの場合はコンテンツタイプとサイズのみを返します。",
		binary:      attachmentBinary,
		build:       buildGetAttachment,
	}
	getLawFile := &tool[GetLawFileArgs]{
		svc:         svc,
		name:        "get_law_file",
		description: "法令本文ファイルを指定形式で取得します。バイナリ形式の場合はコンテンツタイプとサイズのみを返します。",
		binary:      lawFileBinary,
		build:       buildGetLawFile,
	}

	for _, t := range []interface{ compile() error }{getLaws, getLawData, getLawRevisions, searchKeyword, getAttachment, getLawFile} {
		if err := t.compile(); err != nil {
			return nil, err
		}
	}

	return toolkit.NewParent(ParentName, "e-Gov 法令API (法令検索・本文取得・改正履歴・キーワード検索)",
		getLaws,
		getLawData,
		getLawRevisions,
		searchKeyword,
		getAttachment,
		getLawFile,
		toolkit.NewChild("get_field_presets",
			"content_level ごとに返却されるフィールドパスの一覧を返します。fields パラメータに指定できるパスを調べるのに使います。",
			FieldPresets),
	), nil
}

func buildGetLaws(a GetLawsArgs) request {
	q := url.Values{}
	setString(q, "law_id", a.LawID)
	setString(q, "law_title", a.LawTitle)
	setString(q, "law_type", a.LawType)
	setString(q, "law_num_era", a.LawNumEra)
	setInt(q, "law_num_year", a.LawNumYear)
	setString(q, "category", a.Category)
	setString(q, "promulgation_date", a.PromulgationDate)
	setString(q, "asof", a.Asof)
	setInt(q, "offset", a.Offset)
	q.Set("limit", strconv.Itoa(intOr(a.Limit, defaultLawsLimit)))
	format := formatOr(a.ResponseFormat)
	q.Set("response_format", format)

	return request{
		path:        "laws",
		query:       q,
		raw:         format == "xml",
		fields:      a.Fields,
		level:       shape.Level(a.ContentLevel),
		currentOnly: a.CurrentOnly,
	}
}

func buildGetLawData(a GetLawDataArgs) request {
	q := url.Values{}
	setString(q, "elm", a.Elm)
	setString(q, "asof", a.Asof)
	format := formatOr(a.ResponseFormat)
	q.Set("response_format", format)

	return request{
		path:   "law_data/" + egov.PathSegment(a.LawRevisionID),
		query:  q,
		raw:    format == "xml",
		fields: a.Fields,
		level:  shape.Level(a.ContentLevel),
	}
}

func buildGetLawRevisions(a GetLawRevisionsArgs) request {
	q := url.Values{}
	format := formatOr(a.ResponseFormat)
	q.Set("response_format", format)

	return request{
		path:        "law_revisions/" + egov.PathSegment(a.LawID),
		query:       q,
		raw:         format == "xml",
		fields:      a.Fields,
		level:       shape.Level(a.ContentLevel),
		currentOnly: a.CurrentOnly,
	}
}

func buildSearchKeyword(a SearchKeywordArgs) request {
	q := url.Values{}
	q.Set("keyword", a.Keyword)
	setString(q, "law_type", a.LawType)
	setString(q, "law_num_era", a.LawNumEra)
	setInt(q, "law_num_year", a.LawNumYear)
	setString(q, "category", a.Category)
	setString(q, "asof", a.Asof)
	setInt(q, "offset", a.Offset)
	q.Set("limit", strconv.Itoa(intOr(a.Limit, defaultKeywordLimit)))
	setInt(q, "sentences_limit", a.SentencesLimit)
	format := formatOr(a.ResponseFormat)
	q.Set("response_format", format)

	return request{
		path:   "keyword",
		query:  q,
		raw:    format == "xml",
		fields: a.Fields,
		level:  shape.Level(a.ContentLevel),
	}
}

func buildGetAttachment(a GetAttachmentArgs) request {
	return request{
		path:  "attachment/" + egov.PathSegment(a.LawRevisionID),
		query: url.Values{"src": {a.Src}},
	}
}

func buildGetLawFile(a GetLawFileArgs) request {
	q := url.Values{}
	setString(q, "asof", a.Asof)
	return request{
		path:  "law_file/" + egov.PathSegment(a.FileType) + "/" + egov.PathSegment(a.LawRevisionID),
		query: q,
	}
}

func setString(q url.Values, key, v string) {
	if v != "" {
		q.Set(key, v)
	}
}

func setInt(q url.Values, key string, v *int) {
	if v != nil {
		q.Set(key, strconv.Itoa(*v))
	}
}

func intOr(v *int, def int) int {
	if v == nil {
		return def
	}
	return *v
}

func formatOr(f string) string {
	if f == "" {
		return defaultFormat
	}
	return f
}
