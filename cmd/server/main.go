package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/deepakn94/CollabTeX/internal/protocol"
	"github.com/deepakn94/CollabTeX/pkg/logger"
	"github.com/deepakn94/CollabTeX/pkg/server"
)

func main() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "server [port]",
		Short: "Collaborative text-editing server",
		Long: "Runs the CollabTeX server core: a TCP line-protocol endpoint for\n" +
			"collaborative editing, with an optional HTTP endpoint carrying the\n" +
			"WebSocket bridge, statistics, and Prometheus metrics.",
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          run,
	}
}

func loadConfig() server.Config {
	v := viper.New()
	v.SetEnvPrefix("COLLABTEX")
	v.AutomaticEnv()
	v.SetDefault("port", protocol.DefaultPort)
	v.SetDefault("http_addr", "")
	v.SetDefault("queue_size", 4096)

	return server.Config{
		Port:      v.GetInt("port"),
		HTTPAddr:  v.GetString("http_addr"),
		QueueSize: v.GetInt("queue_size"),
	}
}

func run(cmd *cobra.Command, args []string) error {
	logger.Init()
	defer logger.Sync()

	cfg := loadConfig()

	// The positional argument wins over the environment.
	if len(args) == 1 {
		port, err := strconv.Atoi(args[0])
		if err != nil || port <= 0 || port > 65535 {
			return fmt.Errorf("invalid port %q", args[0])
		}
		cfg.Port = port
	}

	srv := server.New(cfg)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Run(ctx)
	})

	if cfg.HTTPAddr != "" {
		httpSrv := &http.Server{
			Addr:    cfg.HTTPAddr,
			Handler: srv.HTTPHandler(),
		}
		g.Go(func() error {
			logger.Info("http endpoint on %s", cfg.HTTPAddr)
			if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return httpSrv.Shutdown(shutdownCtx)
		})
	}

	if err := g.Wait(); err != nil && err != context.Canceled {
		logger.Error("server exited: %v", err)
		return err
	}
	logger.Info("server stopped")
	return nil
}
