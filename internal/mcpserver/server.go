package mcpserver

import (
	"context"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
)

// Name is the implementation name announced to clients.
const Name = "timeline"

// New returns an MCP server with the compute_range, reduce and audit tools
// registered.
func New(svc *Service, version string, log zerolog.Logger) *mcp.Server {
	if version == "" {
		version = "dev"
	}
	srv := mcp.NewServer(&mcp.Implementation{Name: Name, Version: version}, nil)

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "compute_range",
		Description: "Compute the visible window and column count of a task timeline.",
	}, func(_ context.Context, _ *mcp.CallToolRequest, in RangeInput) (*mcp.CallToolResult, RangeOutput, error) {
		out, err := svc.ComputeRange(in)
		logCall(log, "compute_range", err)
		return nil, out, err
	})

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "reduce",
		Description: "Apply one edit intent to a task collection and return the next collection as YAML.",
	}, func(_ context.Context, _ *mcp.CallToolRequest, in ReduceInput) (*mcp.CallToolResult, ReduceOutput, error) {
		out, err := svc.Reduce(in)
		logCall(log, "reduce", err)
		return nil, out, err
	})

	mcp.AddTool(srv, &mcp.Tool{
		Name:        "audit",
		Description: "List the consistency problems of a task collection.",
	}, func(_ context.Context, _ *mcp.CallToolRequest, in AuditInput) (*mcp.CallToolResult, AuditOutput, error) {
		out, err := svc.Audit(in)
		logCall(log, "audit", err)
		return nil, out, err
	})

	return srv
}

// RunStdio serves srv over stdin and stdout until ctx is done or the client
// disconnects.
func RunStdio(ctx context.Context, srv *mcp.Server) error {
	return srv.Run(ctx, &mcp.StdioTransport{})
}

// Handler serves srv over the streamable HTTP transport.
func Handler(srv *mcp.Server) http.Handler {
	return mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return srv }, nil)
}

func logCall(log zerolog.Logger, tool string, err error) {
	if err != nil {
		log.Debug().Err(err).Str("tool", tool).Msg("mcp tool failed")
		return
	}
	log.Debug().Str("tool", tool).Msg("mcp tool called")
}
