package laws

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/invopop/jsonschema"
	jsv "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/matsumura-ka/egov-mcp/pkg/egov"
	"github.com/matsumura-ka/egov-mcp/pkg/shape"
	"github.com/matsumura-ka/egov-mcp/toolkit"
)

// request is the single upstream call derived from a tool's arguments.
type request struct {
	path  string
	query url.Values

	// raw returns the body verbatim; set when XML was requested.
	raw bool

	fields      []string
	level       shape.Level
	currentOnly bool
}

// binaryRule lists the content types reported by size instead of inlined.
type binaryRule struct {
	markers []string
	label   string
}

// tool is a toolkit.Child backed by one e-Gov endpoint. Unlike
// toolkit.NewChild it inspects the raw arguments before decoding, so that
// unknown and missing parameters come back as guidance text.
type tool[T any] struct {
	svc         *Service
	name        string
	description string
	kind        shape.Kind
	binary      *binaryRule
	hint        string
	build       func(args T) request

	schema    *jsonschema.Schema
	validator *jsv.Schema
	declared  map[string]bool
	usage     string
}

func (t *tool[T]) compile() error {
	t.schema = toolkit.ReflectSchema[T]()

	raw, err := json.Marshal(t.schema)
	if err != nil {
		return fmt.Errorf("marshal schema of %s: %w", t.name, err)
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("unmarshal schema of %s: %w", t.name, err)
	}
	c := jsv.NewCompiler()
	if err := c.AddResource(t.name+".json", doc); err != nil {
		return fmt.Errorf("add schema resource %s: %w", t.name, err)
	}
	if t.validator, err = c.Compile(t.name + ".json"); err != nil {
		return fmt.Errorf("compile schema of %s: %w", t.name, err)
	}

	t.declared = make(map[string]bool)
	if t.schema.Properties != nil {
		for pair := t.schema.Properties.Oldest(); pair != nil; pair = pair.Next() {
			t.declared[pair.Key] = true
		}
	}
	t.usage = usageText(t.name, t.schema, t.hint)
	return nil
}

func (t *tool[T]) GetName() string             { return t.name }
func (t *tool[T]) GetDescription() string      { return t.description }
func (t *tool[T]) GetInputSchema() interface{} { return t.schema }

// Handle validates args, performs the upstream call and renders the result.
// Every outcome, including upstream failures, is returned as text.
func (t *tool[T]) Handle(ctx context.Context, args json.RawMessage) (interface{}, error) {
	args = normalizeArgs(args)

	var params map[string]json.RawMessage
	if err := json.Unmarshal(args, &params); err != nil || params == nil {
		return "エラー: 引数はJSONオブジェクトで指定してください", nil
	}

	if unknown := t.unknown(params); len(unknown) > 0 {
		return fmt.Sprintf("エラー: 無効なパラメータが検出されました: %s\n\n%s", strings.Join(unknown, ", "), t.usage), nil
	}
	for _, name := range t.schema.Required {
		if _, ok := params[name]; !ok {
			return fmt.Sprintf("エラー: %s パラメータは必須です", name), nil
		}
	}

	var doc any
	if err := json.Unmarshal(args, &doc); err != nil {
		return "Error: " + err.Error(), nil
	}
	if err := t.validator.Validate(doc); err != nil {
		return "エラー: パラメータが不正です\n" + validationDetail(err), nil
	}

	var v T
	if err := json.Unmarshal(args, &v); err != nil {
		return "エラー: パラメータが不正です\n" + err.Error(), nil
	}
	return t.svc.fetch(ctx, t.name, t.build(v), t.options, t.binary), nil
}

func (t *tool[T]) unknown(params map[string]json.RawMessage) []string {
	var out []string
	for k := range params {
		if !t.declared[k] {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// options resolves the effective field list: explicit fields, else the
// preset for the requested level, else everything.
func (t *tool[T]) options(req request) shape.Options {
	fields := req.fields
	if len(fields) == 0 && t.kind != "" {
		fields = shape.Preset(t.kind, req.level)
	}
	return shape.Options{Fields: fields, CurrentOnly: req.currentOnly}
}

// fetch issues req and turns the response, or the failure, into text.
func (s *Service) fetch(ctx context.Context, name string, req request, options func(request) shape.Options, binary *binaryRule) string {
	requestURL := s.client.URL(req.path, req.query)
	s.logger.Debug("tool call", "tool", name, "url", requestURL)

	resp, err := s.client.Get(ctx, requestURL)
	if err != nil {
		s.logger.Warn("upstream call failed", "tool", name, "url", requestURL, "err", err)
		return failureText(requestURL, err)
	}

	if binary != nil && resp.IsBinary(binary.markers...) {
		return shape.TraceHeader(requestURL) + fmt.Sprintf("%sを取得しました。コンテンツタイプ: %s, サイズ: %d bytes",
			binary.label, resp.ContentType, len(resp.Body))
	}
	if req.raw || !(resp.IsJSON() || json.Valid(resp.Body)) {
		return shape.FormatRaw(resp.Body, requestURL)
	}

	text, err := shape.FormatJSON(resp.Body, requestURL, options(req))
	if err != nil {
		s.logger.Warn("format response", "tool", name, "url", requestURL, "err", err)
		return "Error: " + err.Error()
	}
	return text
}

func failureText(requestURL string, err error) string {
	var httpErr *egov.HTTPError
	switch {
	case egov.IsNotFound(err):
		return fmt.Sprintf("エラー: 指定された法令が見つかりませんでした (404 Not Found)\nURL: %s\n\n"+
			"法令IDまたは法令履歴IDが正しいか確認してください。\n"+
			"- 法令名から法令IDを調べるには get_laws (law_title) を使用してください。\n"+
			"- 本文中の語句から法令を探すには search_keyword を使用してください。", requestURL)
	case errors.As(err, &httpErr):
		text := fmt.Sprintf("HTTPエラー: %s\nURL: %s", httpErr.Status, requestURL)
		if httpErr.Body != "" {
			text += "\n詳細: " + httpErr.Body
		}
		return text
	default:
		return "Error: " + err.Error()
	}
}

func normalizeArgs(args json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(args)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return json.RawMessage("{}")
	}
	return trimmed
}

// validationDetail drops the schema location line the validator starts its
// message with; the remaining lines name each offending parameter.
func validationDetail(err error) string {
	msg := err.Error()
	var verr *jsv.ValidationError
	if errors.As(err, &verr) {
		if _, rest, ok := strings.Cut(msg, "\n"); ok {
			return rest
		}
	}
	return msg
}
