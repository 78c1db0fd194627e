// Command egov-mcp serves the e-Gov law API as MCP tools over stdio.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/matsumura-ka/egov-mcp/internal/config"
	"github.com/matsumura-ka/egov-mcp/internal/mcpserver"
	"github.com/matsumura-ka/egov-mcp/pkg/egov"
	"github.com/matsumura-ka/egov-mcp/pkg/tools/laws"
	"github.com/matsumura-ka/egov-mcp/toolkit"
)

var version = "dev"

// CLI is the command line of egov-mcp. Every global flag has an
// environment fallback; values left empty keep the config file or the
// built-in default.
type CLI struct {
	Config    string        `help:"Path to a YAML config file." type:"path" env:"EGOV_MCP_CONFIG"`
	BaseURL   string        `help:"e-Gov API base URL." env:"EGOV_API_BASE_URL"`
	Timeout   time.Duration `help:"Per-request timeout ceiling." env:"EGOV_API_TIMEOUT"`
	RateLimit float64       `help:"Maximum upstream requests per second. 0 disables limiting." env:"EGOV_API_RATE_LIMIT"`
	UserAgent string        `help:"User-Agent header sent upstream." env:"EGOV_API_USER_AGENT"`
	LogLevel  string        `help:"Log level (debug, info, warn, error)." env:"EGOV_MCP_LOG_LEVEL"`

	Version kong.VersionFlag `help:"Print version information and exit."`

	Serve ServeCmd `cmd:"" default:"1" help:"Serve the law tools over MCP on stdio."`
	Tools ToolsCmd `cmd:"" help:"List the available tools."`
	Call  CallCmd  `cmd:"" help:"Invoke one tool and print its text result."`
}

// app holds the process-wide resources shared by the commands.
type app struct {
	out    io.Writer
	logger *slog.Logger
	client *egov.Client
	kit    *toolkit.Toolkit
	server *mcpserver.Server
}

func main() {
	_ = godotenv.Load()

	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("egov-mcp"),
		kong.Description("MCP server for the e-Gov law API (laws.e-gov.go.jp)."),
		kong.UsageOnError(),
		kong.Vars{"version": version},
	)

	if err := run(kctx, &cli, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "egov-mcp: %v\n", err)
		os.Exit(1)
	}
}

func run(kctx *kong.Context, cli *CLI, out io.Writer) error {
	a, err := newApp(cli, out)
	if err != nil {
		return err
	}
	defer a.client.Close()

	return kctx.Run(a)
}

func newApp(cli *CLI, out io.Writer) (*app, error) {
	cfg, err := config.Resolve(cli.Config, config.Overrides{
		BaseURL:   cli.BaseURL,
		Timeout:   cli.Timeout,
		UserAgent: cli.UserAgent,
		RateLimit: cli.RateLimit,
		LogLevel:  cli.LogLevel,
	})
	if err != nil {
		return nil, err
	}

	logger := cfg.NewLogger(os.Stderr)
	slog.SetDefault(logger)

	client := egov.New(cfg.API.BaseURL, cfg.ClientOptions(logger)...)
	parent, err := laws.NewParent(laws.NewService(client, logger))
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("build law tools: %w", err)
	}
	kit := toolkit.New(cfg.Server.Name, parent)

	return &app{
		out:    out,
		logger: logger,
		client: client,
		kit:    kit,
		server: mcpserver.New(kit, cfg.Server.Name, version, logger),
	}, nil
}

// ServeCmd runs the MCP server until stdin closes or a signal arrives.
type ServeCmd struct{}

func (c *ServeCmd) Run(a *app) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return a.server.Run(ctx)
}

// ToolsCmd prints the tool list.
type ToolsCmd struct {
	JSON bool `help:"Print the full tool definitions, input schemas included, as JSON."`
}

func (c *ToolsCmd) Run(a *app) error {
	tools := a.kit.Tools()
	if c.JSON {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(tools)
	}
	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	for _, t := range tools {
		fmt.Fprintf(w, "%s\t%s\n", t.Name, t.Description)
	}
	return w.Flush()
}

// CallCmd invokes one tool.
type CallCmd struct {
	Tool string `arg:"" help:"Tool name, see the tools command."`
	Args string `arg:"" optional:"" default:"{}" help:"Tool arguments as a JSON object."`
}

func (c *CallCmd) Run(a *app) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res := a.server.Call(ctx, c.Tool, json.RawMessage(c.Args))
	fmt.Fprintln(a.out, mcpserver.Text(res))
	if res.IsError {
		return errors.New("tool call failed")
	}
	return nil
}
