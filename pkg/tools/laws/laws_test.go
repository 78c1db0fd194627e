package laws

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matsumura-ka/egov-mcp/pkg/egov"
	"github.com/matsumura-ka/egov-mcp/toolkit"
)

type fakeUpstream struct {
	srv  *httptest.Server
	hits atomic.Int32
	last atomic.Pointer[http.Request]
}

func newFakeUpstream(t *testing.T, h http.HandlerFunc) *fakeUpstream {
	t.Helper()
	f := &fakeUpstream{}
	f.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.hits.Add(1)
		f.last.Store(r)
		h(w, r)
	}))
	t.Cleanup(f.srv.Close)
	return f
}

func jsonHandler(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
}

func newTestParent(t *testing.T, baseURL string) toolkit.Parent {
	t.Helper()
	client := egov.New(baseURL)
	t.Cleanup(client.Close)
	parent, err := NewParent(NewService(client, nil))
	require.NoError(t, err)
	return parent
}

func callText(t *testing.T, parent toolkit.Parent, name, args string) string {
	t.Helper()
	child, ok := parent.GetChildren()[name]
	require.True(t, ok, "tool %s not registered", name)
	out, err := child.Handle(context.Background(), json.RawMessage(args))
	require.NoError(t, err)
	text, ok := out.(string)
	require.True(t, ok, "tool %s returned %T", name, out)
	return text
}

// body strips the trace header line.
func body(t *testing.T, text string) string {
	t.Helper()
	header, rest, ok := strings.Cut(text, "\n")
	require.True(t, ok)
	require.True(t, strings.HasPrefix(header, "Request URL: "), header)
	return rest
}

func TestNewParentRegistersTools(t *testing.T) {
	parent := newTestParent(t, "http://127.0.0.1:0")
	assert.Equal(t, ParentName, parent.GetName())

	names := make([]string, 0)
	for name := range parent.GetChildren() {
		names = append(names, name)
	}
	assert.ElementsMatch(t, []string{
		"get_laws", "get_law_data", "get_law_revisions", "search_keyword",
		"get_attachment", "get_law_file", "get_field_presets",
	}, names)

	schema, err := json.Marshal(parent.GetChildren()["get_law_file"].GetInputSchema())
	require.NoError(t, err)
	var decoded struct {
		Type       string                     `json:"type"`
		Required   []string                   `json:"required"`
		Properties map[string]json.RawMessage `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(schema, &decoded))
	assert.Equal(t, "object", decoded.Type)
	assert.Equal(t, []string{"law_revision_id", "file_type"}, decoded.Required)
	assert.Contains(t, string(decoded.Properties["file_type"]), `"docx"`)
}

func TestInvalidParameterDoesNotCallUpstream(t *testing.T) {
	up := newFakeUpstream(t, jsonHandler(`{}`))
	parent := newTestParent(t, up.srv.URL)

	text := callText(t, parent, "get_laws", `{"bogus":1}`)

	assert.True(t, strings.HasPrefix(text, "エラー: 無効なパラメータが検出されました: bogus"), text)
	assert.Contains(t, text, "get_laws で使用可能なパラメータ:")
	for _, name := range []string{"law_id", "law_title", "law_type", "limit", "response_format", "fields", "content_level", "current_only"} {
		assert.Contains(t, text, "- "+name+": ")
	}
	assert.Contains(t, text, "(Constitution, Act, CabinetOrder, MinisterialOrdinance, Rule)")
	assert.Contains(t, text, "（1〜100）（デフォルト: 10）")
	assert.Contains(t, text, titleSearchHint)
	assert.Equal(t, int32(0), up.hits.Load())
}

func TestUnknownParametersAreSorted(t *testing.T) {
	parent := newTestParent(t, "http://127.0.0.1:0")
	text := callText(t, parent, "get_law_revisions", `{"zeta":1,"alpha":2,"law_id":"x"}`)
	assert.True(t, strings.HasPrefix(text, "エラー: 無効なパラメータが検出されました: alpha, zeta\n"), text)
	assert.Contains(t, text, "- law_id: 法令ID（必須）")
}

func TestMissingRequiredParameter(t *testing.T) {
	up := newFakeUpstream(t, jsonHandler(`{}`))
	parent := newTestParent(t, up.srv.URL)

	tests := []struct {
		tool string
		args string
		want string
	}{
		{"get_law_data", `{}`, "エラー: law_revision_id パラメータは必須です"},
		{"get_law_data", ``, "エラー: law_revision_id パラメータは必須です"},
		{"get_law_revisions", `null`, "エラー: law_id パラメータは必須です"},
		{"search_keyword", `{"limit":5}`, "エラー: keyword パラメータは必須です"},
		{"get_attachment", `{"law_revision_id":"x"}`, "エラー: src パラメータは必須です"},
		{"get_law_file", `{"law_revision_id":"x"}`, "エラー: file_type パラメータは必須です"},
	}
	for _, tt := range tests {
		t.Run(tt.tool, func(t *testing.T) {
			assert.Equal(t, tt.want, callText(t, parent, tt.tool, tt.args))
		})
	}
	assert.Equal(t, int32(0), up.hits.Load())
}

func TestSchemaViolations(t *testing.T) {
	up := newFakeUpstream(t, jsonHandler(`{}`))
	parent := newTestParent(t, up.srv.URL)

	tests := []struct {
		name string
		tool string
		args string
	}{
		{"limit above maximum", "get_laws", `{"limit":1000}`},
		{"limit below minimum", "search_keyword", `{"keyword":"x","limit":0}`},
		{"negative offset", "search_keyword", `{"keyword":"x","offset":-1}`},
		{"unknown law type", "get_laws", `{"law_type":"Treaty"}`},
		{"unknown era", "search_keyword", `{"keyword":"x","law_num_era":"Edo"}`},
		{"wrong type", "get_laws", `{"limit":"ten"}`},
		{"fields not a list", "get_law_data", `{"law_revision_id":"x","fields":"law_info"}`},
		{"body_only on catalog", "get_laws", `{"content_level":"body_only"}`},
		{"unknown file type", "get_law_file", `{"law_revision_id":"x","file_type":"pdf"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := callText(t, parent, tt.tool, tt.args)
			assert.True(t, strings.HasPrefix(text, "エラー: パラメータが不正です\n"), text)
		})
	}
	assert.Equal(t, int32(0), up.hits.Load())
}

func TestNonObjectArguments(t *testing.T) {
	parent := newTestParent(t, "http://127.0.0.1:0")
	assert.Equal(t, "エラー: 引数はJSONオブジェクトで指定してください", callText(t, parent, "get_laws", `[1,2]`))
}

func TestGetLawsDefaults(t *testing.T) {
	up := newFakeUpstream(t, jsonHandler(`{"total_count":1,"count":1,"laws":[]}`))
	parent := newTestParent(t, up.srv.URL)

	text := callText(t, parent, "get_laws", `{"law_title":"民法"}`)

	req := up.last.Load()
	require.NotNil(t, req)
	assert.Equal(t, "/laws", req.URL.Path)
	q := req.URL.Query()
	assert.Equal(t, "民法", q.Get("law_title"))
	assert.Equal(t, "10", q.Get("limit"))
	assert.Equal(t, "json", q.Get("response_format"))
	assert.False(t, q.Has("offset"))

	assert.True(t, strings.HasPrefix(text, "Request URL: "+up.srv.URL+"/laws?law_title="), text)
	assert.JSONEq(t, `{"total_count":1,"count":1,"laws":[]}`, body(t, text))
	assert.Equal(t, int32(1), up.hits.Load())
}

func TestGetLawsCurrentOnlyWithFields(t *testing.T) {
	up := newFakeUpstream(t, jsonHandler(`{"laws":[
		{"law_info":{"law_id":"1"},"revision_info":{"current_revision_status":"CurrentEnforced","law_title":"A"}},
		{"law_info":{"law_id":"2"},"revision_info":{"current_revision_status":"Repealed","law_title":"B"}}
	],"count":2}`))
	parent := newTestParent(t, up.srv.URL)

	text := callText(t, parent, "get_laws", `{"current_only":true,"fields":["laws.revision_info.law_title","count"]}`)

	assert.JSONEq(t, `{"laws":[{"revision_info":{"law_title":"A"}}],"count":1}`, body(t, text))
}

func TestContentLevelPreset(t *testing.T) {
	up := newFakeUpstream(t, jsonHandler(`{
		"attached_files_info":null,
		"law_info":{"law_id":"129AC0000000089","law_num":"明治二十九年法律第八十九号"},
		"revision_info":{"law_revision_id":"129AC0000000089_20240401","law_title":"民法"},
		"law_full_text":{"tag":"Law","children":[]}
	}`))
	parent := newTestParent(t, up.srv.URL)

	text := callText(t, parent, "get_law_data", `{"law_revision_id":"129AC0000000089","content_level":"title_only"}`)
	assert.JSONEq(t, `{"law_info":{"law_id":"129AC0000000089"},"revision_info":{"law_title":"民法"}}`, body(t, text))

	// explicit fields win over the preset
	text = callText(t, parent, "get_law_data", `{"law_revision_id":"129AC0000000089","content_level":"title_only","fields":["law_info.law_num"]}`)
	assert.JSONEq(t, `{"law_info":{"law_num":"明治二十九年法律第八十九号"}}`, body(t, text))

	// full keeps everything
	text = callText(t, parent, "get_law_data", `{"law_revision_id":"129AC0000000089","content_level":"full"}`)
	assert.Contains(t, body(t, text), `"law_full_text"`)
}

func TestOutputKeepsUpstreamKeyOrder(t *testing.T) {
	up := newFakeUpstream(t, jsonHandler(`{"z":1,"a":{"y":2,"b":3}}`))
	parent := newTestParent(t, up.srv.URL)

	text := body(t, callText(t, parent, "get_law_revisions", `{"law_id":"x"}`))
	assert.Less(t, strings.Index(text, `"z"`), strings.Index(text, `"a"`))
	assert.Less(t, strings.Index(text, `"y"`), strings.Index(text, `"b"`))
}

func TestXMLIsReturnedVerbatim(t *testing.T) {
	const xml = `<?xml version="1.0" encoding="UTF-8"?><law_data><law_info/></law_data>`
	up := newFakeUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(xml))
	})
	parent := newTestParent(t, up.srv.URL)

	text := callText(t, parent, "get_law_data", `{"law_revision_id":"x","response_format":"xml","content_level":"title_only"}`)
	assert.Equal(t, xml, body(t, text))
	assert.Equal(t, "xml", up.last.Load().URL.Query().Get("response_format"))
}

func TestPathSegmentsAreEscaped(t *testing.T) {
	up := newFakeUpstream(t, jsonHandler(`{}`))
	parent := newTestParent(t, up.srv.URL)

	callText(t, parent, "get_law_data", `{"law_revision_id":"a/b c"}`)
	assert.Equal(t, "/law_data/a%2Fb%20c", up.last.Load().URL.EscapedPath())
}

func TestSearchKeywordQuery(t *testing.T) {
	up := newFakeUpstream(t, jsonHandler(`{"total_count":0,"items":[]}`))
	parent := newTestParent(t, up.srv.URL)

	callText(t, parent, "search_keyword", `{"keyword":"個人情報","law_num_year":15,"sentences_limit":3}`)

	req := up.last.Load()
	assert.Equal(t, "/keyword", req.URL.Path)
	q := req.URL.Query()
	assert.Equal(t, "個人情報", q.Get("keyword"))
	assert.Equal(t, "100", q.Get("limit"))
	assert.Equal(t, "15", q.Get("law_num_year"))
	assert.Equal(t, "3", q.Get("sentences_limit"))
	assert.False(t, q.Has("offset"))
}

func TestUpstreamFailures(t *testing.T) {
	up := newFakeUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/law_revisions/missing":
			http.Error(w, `{"code":"404"}`, http.StatusNotFound)
		case "/law_revisions/broken":
			http.Error(w, "maintenance", http.StatusServiceUnavailable)
		default:
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"laws":[`))
		}
	})
	parent := newTestParent(t, up.srv.URL)

	text := callText(t, parent, "get_law_revisions", `{"law_id":"missing"}`)
	assert.True(t, strings.HasPrefix(text, "エラー: 指定された法令が見つかりませんでした"), text)
	assert.Contains(t, text, up.srv.URL+"/law_revisions/missing")
	assert.Contains(t, text, "get_laws")
	assert.Contains(t, text, "search_keyword")

	text = callText(t, parent, "get_law_revisions", `{"law_id":"broken"}`)
	assert.True(t, strings.HasPrefix(text, "HTTPエラー: 503 Service Unavailable"), text)
	assert.Contains(t, text, up.srv.URL+"/law_revisions/broken")
	assert.Contains(t, text, "maintenance")

	text = callText(t, parent, "get_laws", `{}`)
	assert.True(t, strings.HasPrefix(text, "Error: "), text)
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	text := callText(t, newTestParent(t, base), "get_laws", `{}`)
	assert.True(t, strings.HasPrefix(text, "Error: "), text)
}

func TestBinaryResponses(t *testing.T) {
	up := newFakeUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/attachment/"):
			w.Header().Set("Content-Type", "image/png")
			_, _ = w.Write([]byte{0x89, 'P', 'N', 'G'})
		case r.URL.Path == "/law_file/docx/rev1":
			w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.wordprocessingml.document")
			_, _ = w.Write(make([]byte, 10))
		default:
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			_, _ = w.Write([]byte("<html>本文</html>"))
		}
	})
	parent := newTestParent(t, up.srv.URL)

	text := callText(t, parent, "get_attachment", `{"law_revision_id":"rev1","src":"./pict/001.png"}`)
	assert.Equal(t, "バイナリデータを取得しました。コンテンツタイプ: image/png, サイズ: 4 bytes", body(t, text))
	assert.Equal(t, "./pict/001.png", up.last.Load().URL.Query().Get("src"))

	text = callText(t, parent, "get_law_file", `{"law_revision_id":"rev1","file_type":"docx"}`)
	assert.True(t, strings.HasPrefix(body(t, text), "ファイルデータを取得しました。"), text)
	assert.Contains(t, text, "サイズ: 10 bytes")

	text = callText(t, parent, "get_law_file", `{"law_revision_id":"rev1","file_type":"html","asof":"2024-04-01"}`)
	assert.Equal(t, "<html>本文</html>", body(t, text))
	assert.Equal(t, "/law_file/html/rev1", up.last.Load().URL.Path)
	assert.Equal(t, "2024-04-01", up.last.Load().URL.Query().Get("asof"))
}

func TestFieldPresetsTool(t *testing.T) {
	parent := newTestParent(t, "http://127.0.0.1:0")
	child := parent.GetChildren()["get_field_presets"]

	out, err := child.Handle(context.Background(), json.RawMessage(`{"kind":"law_data","content_level":"body_only"}`))
	require.NoError(t, err)
	resp, ok := out.(FieldPresetsResponse)
	require.True(t, ok)
	assert.Equal(t, "law_data", resp.Kind)
	require.Len(t, resp.Presets, 1)
	assert.Equal(t, []string{"law_full_text"}, resp.Presets[0].Fields)

	out, err = child.Handle(context.Background(), json.RawMessage(`{"kind":"laws"}`))
	require.NoError(t, err)
	resp = out.(FieldPresetsResponse)
	require.NotEmpty(t, resp.Presets)
	assert.Equal(t, "full", resp.Presets[0].Level)
	assert.Empty(t, resp.Presets[0].Fields)
	assert.NotNil(t, resp.Presets[0].Fields)

	_, err = child.Handle(context.Background(), json.RawMessage(`{"kind":"statutes"}`))
	var tkErr toolkit.ToolKitError
	require.True(t, errors.As(err, &tkErr))
	assert.Equal(t, toolkit.CodeInvalidArguments, tkErr.Code)

	_, err = child.Handle(context.Background(), json.RawMessage(`{"kind":"laws","content_level":"body_only"}`))
	require.True(t, errors.As(err, &tkErr))
	assert.Equal(t, toolkit.CodeInvalidArguments, tkErr.Code)
}
