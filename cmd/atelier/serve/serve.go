package servecmder

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/papercomputeco/atelier/cmd/atelier/clienv"
	"github.com/papercomputeco/atelier/pkg/config"
	"github.com/papercomputeco/atelier/server"
)

const serveLongDesc string = `Run the atelier web front end.

Serves the chat page at / with one conversation per browser, a JSON API
under /api/sessions, and the gateway's MCP tools at /mcp. When a config
file is given it is watched, and model settings are reloaded on change
without restarting.

Examples:
  atelier serve
  atelier serve --listen 127.0.0.1:9000 --upload-limit 5242880
  atelier serve --config atelier.toml --session-idle 30m`

const serveShortDesc string = "Run the web front end"

type serveCommander struct {
	listen      string
	uploadLimit int
	uploadRoot  string
	sessionIdle time.Duration
}

func NewServeCmd() *cobra.Command {
	cmder := &serveCommander{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: serveShortDesc,
		Long:  serveLongDesc,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmder.run(cmd)
		},
	}

	cmd.Flags().StringVarP(&cmder.listen, "listen", "l", server.DefaultListenAddr, "Address to listen on")
	cmd.Flags().IntVar(&cmder.uploadLimit, "upload-limit", server.DefaultUploadLimit, "Maximum request body size in bytes")
	cmd.Flags().StringVar(&cmder.uploadRoot, "upload-dir", "", "Parent directory for uploaded images (default: system temp dir)")
	cmd.Flags().DurationVar(&cmder.sessionIdle, "session-idle", 0, "End sessions idle for this long (0 keeps them until shutdown)")

	return cmd
}

func (c *serveCommander) serverConfig() server.Config {
	return server.Config{
		ListenAddr:  c.listen,
		UploadLimit: c.uploadLimit,
		UploadRoot:  c.uploadRoot,
		SessionIdle: c.sessionIdle,
	}
}

func (c *serveCommander) run(cmd *cobra.Command) error {
	env, err := clienv.Load(cmd, os.Stdout)
	if err != nil {
		return err
	}
	defer env.Logger.Sync()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if env.ConfigPath != "" {
		go c.watchConfig(ctx, env)
	}

	srv, err := server.New(c.serverConfig(), env.Gateway, env.Logger)
	if err != nil {
		return fmt.Errorf("could not create server: %w", err)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	select {
	case err := <-errCh:
		return errors.Join(err, srv.Close())
	case <-ctx.Done():
		env.Logger.Info("shutting down")
		return srv.Close()
	}
}

// watchConfig swaps the gateway's model profiles whenever the config file changes.
func (c *serveCommander) watchConfig(ctx context.Context, env *clienv.Env) {
	err := config.Watch(ctx, env.ConfigPath, env.Logger, func(cfg *config.Config) {
		env.Gateway.SetProfiles(cfg.Profiles())
		env.Logger.Info("reloaded model settings",
			zap.String("text_model", cfg.Text.Model),
			zap.String("vision_model", cfg.Vision.Model),
		)
	})
	if err != nil {
		env.Logger.Warn("config reload disabled", zap.Error(err))
	}
}
