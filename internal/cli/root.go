// Package cli implements the ordering command line tool.
package cli

import (
	"context"
	"fmt"
	"log"
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/the-dev-tools/ordering/pkg/config"
	"github.com/the-dev-tools/ordering/pkg/logger"
	"github.com/the-dev-tools/ordering/pkg/metrics"
	"github.com/the-dev-tools/ordering/pkg/movable"
)

// app carries the state shared by every command of one invocation.
type app struct {
	viper  *viper.Viper
	cfg    config.Config
	logger *slog.Logger

	cfgFilePath     string
	metricsTextfile string
	registry        *prometheus.Registry
	recorder        *metrics.Metrics
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	a := &app{viper: config.New()}

	rootCmd := &cobra.Command{
		Use:   "ordering",
		Short: "Maintain user-defined ordering of items",
		Long: `ordering keeps fractional display orders for user-reorderable lists.
It moves items, backfills items that were never placed and rebalances
lists whose neighbouring orders have grown too close.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.flushMetrics()
		},
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.cfgFilePath, "config", "", "config file (default is $HOME/.ordering.yaml)")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	flags.String("log-format", "", "log format: text or json")
	flags.String("store", "", "store driver: sqlite or redis")
	flags.String("sqlite-path", "", "sqlite database file")
	flags.String("redis-url", "", "redis connection url")
	flags.StringVar(&a.metricsTextfile, "metrics-textfile", "", "write Prometheus metrics to this file after the command")

	for key, flag := range map[string]string{
		"log.level":         "log-level",
		"log.format":        "log-format",
		"store.driver":      "store",
		"store.sqlite_path": "sqlite-path",
		"store.redis_url":   "redis-url",
	} {
		if err := a.viper.BindPFlag(key, flags.Lookup(flag)); err != nil {
			log.Fatalf("error binding flag %s: %s", flag, err)
		}
	}

	rootCmd.AddCommand(
		newVersionCmd(),
		newItemCmd(a),
		newMoveCmd(a),
		newRebalanceCmd(a),
		newBackfillCmd(a),
		newCheckCmd(a),
		newPlanCmd(a),
	)
	return rootCmd
}

func Execute() {
	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		log.Fatalf("error executing root command: %s", err)
	}
}

func (a *app) init(cmd *cobra.Command) error {
	if err := config.ReadFile(a.viper, a.cfgFilePath); err != nil {
		return err
	}
	cfg, err := config.Decode(a.viper)
	if err != nil {
		return err
	}
	a.cfg = cfg

	a.logger, err = logger.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}

	a.registry = prometheus.NewRegistry()
	a.recorder = metrics.New(a.registry)
	return nil
}

func (a *app) flushMetrics() error {
	if a.metricsTextfile == "" || a.registry == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(a.metricsTextfile, a.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

// newManager wraps repo with the configured ordering parameters and metrics.
func (a *app) newManager(repo movable.Repository) (*movable.Manager, error) {
	manager, err := movable.NewManager(repo, a.cfg.Movable(), a.logger)
	if err != nil {
		return nil, err
	}
	return manager.WithRecorder(a.recorder), nil
}

// withStore opens the configured store for the duration of fn.
func (a *app) withStore(ctx context.Context, fn func(itemStore) error) error {
	st, err := openStore(ctx, a.cfg.Store, a.logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			a.logger.Error("Failed to close store", "error", err)
		}
	}()
	return fn(st)
}

// withManager runs fn with a manager over the configured store.
func (a *app) withManager(ctx context.Context, fn func(*movable.Manager) error) error {
	return a.withStore(ctx, func(st itemStore) error {
		manager, err := a.newManager(st)
		if err != nil {
			return err
		}
		return fn(manager)
	})
}
