package main

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/metalagman/timeline/internal/config"
	"github.com/metalagman/timeline/internal/mcpserver"
	"github.com/metalagman/timeline/internal/planner"
	"github.com/metalagman/timeline/internal/reducer"
	"github.com/metalagman/timeline/internal/web"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

func serveCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the timeline engine over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := repoConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			app := fx.New(serveOptions(cfg, logger())...)
			if err := app.Err(); err != nil {
				return err
			}
			app.Run()
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address, overrides server.addr")
	return cmd
}

// serveOptions assembles config, logger, engine, API and HTTP server.
func serveOptions(cfg config.Config, l zerolog.Logger) []fx.Option {
	return []fx.Option{
		fx.NopLogger,
		fx.Supply(cfg, l),
		fx.Provide(
			newPlanner,
			func(cfg config.Config, l zerolog.Logger) *reducer.Reducer { return newReducer(cfg, l) },
			newMCPService,
			newMCPServer,
			newAPIServer,
			newHTTPServer,
		),
		fx.Invoke(func(*http.Server) {}),
	}
}

func newMCPService(cfg config.Config, p *planner.Planner, r *reducer.Reducer) (*mcpserver.Service, error) {
	mode, err := cfg.ViewMode()
	if err != nil {
		return nil, err
	}
	return &mcpserver.Service{Planner: p, Reducer: r, Mode: mode, PreSteps: cfg.View.PreSteps}, nil
}

func newMCPServer(svc *mcpserver.Service, l zerolog.Logger) *mcp.Server {
	return mcpserver.New(svc, version, l)
}

func newAPIServer(cfg config.Config, p *planner.Planner, r *reducer.Reducer, m *mcp.Server, l zerolog.Logger) (*web.Server, error) {
	mode, err := cfg.ViewMode()
	if err != nil {
		return nil, err
	}
	return web.NewServer(web.Options{
		Planner:  p,
		Reducer:  r,
		Logger:   l,
		Mode:     mode,
		PreSteps: cfg.View.PreSteps,
		MCP:      mcpserver.Handler(m),
	})
}

func newHTTPServer(lc fx.Lifecycle, cfg config.Config, api *web.Server, l zerolog.Logger) *http.Server {
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.Routes(),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			var lcfg net.ListenConfig
			ln, err := lcfg.Listen(ctx, "tcp", srv.Addr)
			if err != nil {
				return err
			}
			l.Info().Str("addr", ln.Addr().String()).Msg("serving timeline API")
			go func() {
				if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
					l.Error().Err(err).Msg("http server stopped")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			l.Info().Msg("shutting down timeline API")
			return srv.Shutdown(ctx)
		},
	})
	return srv
}
