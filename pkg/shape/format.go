package shape

import (
	"fmt"
	"strings"

	"github.com/tidwall/pretty"

	"github.com/matsumura-ka/egov-mcp/pkg/jsonvalue"
)

var prettyOptions = &pretty.Options{
	Width:    80,
	Prefix:   "",
	Indent:   "  ",
	SortKeys: false,
}

// Options select the optional reshaping steps of Format.
type Options struct {
	// Fields is the projection applied after filtering; empty keeps
	// everything.
	Fields []string

	// CurrentOnly applies FilterCurrent.
	CurrentOnly bool
}

// Format renders result for a tool caller: the trace header naming the
// request URL, then the indented JSON.
//
// Filtering runs before projection so that the status fields it reads are
// still present even when the projection drops them.
func Format(result jsonvalue.Value, traceURL string, opts Options) string {
	if opts.CurrentOnly {
		result = FilterCurrent(result)
	}
	if len(opts.Fields) > 0 {
		result = Project(result, opts.Fields)
	}
	body := pretty.PrettyOptions(result.Compact(), prettyOptions)
	return TraceHeader(traceURL) + strings.TrimRight(string(body), "\n")
}

// FormatJSON parses body and renders it with Format.
func FormatJSON(body []byte, traceURL string, opts Options) (string, error) {
	v, err := jsonvalue.Parse(body)
	if err != nil {
		return "", fmt.Errorf("decode response from %s: %w", traceURL, err)
	}
	return Format(v, traceURL, opts), nil
}

// FormatRaw renders a non-JSON body verbatim behind the trace header.
func FormatRaw(body []byte, traceURL string) string {
	return TraceHeader(traceURL) + string(body)
}

// TraceHeader is the diagnostic first line of every rendered response.
func TraceHeader(traceURL string) string {
	return "Request URL: " + traceURL + "\n"
}
