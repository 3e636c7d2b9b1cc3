package cmd

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/trknhr/ghostguess/internal/config"
	"github.com/trknhr/ghostguess/internal/corpus"
	"github.com/trknhr/ghostguess/internal/logger"
	"github.com/trknhr/ghostguess/internal/pattern"
	"github.com/trknhr/ghostguess/internal/store"
	"github.com/trknhr/ghostguess/internal/worker"
)

// app carries what every subcommand shares: the resolved configuration and
// the lazily opened model database.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	db      *sql.DB
}

func NewRootCmd() *cobra.Command {
	a := &app{v: config.New()}

	cmd := &cobra.Command{
		Use:   "ghostguess",
		Short: "Guess passwords from a Markov model of a password corpus",
		Long: `ghostguess learns which characters tend to follow which in a corpus of
passwords and searches the space of candidates most likely first.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (toml, yaml or json)")
	flags.IntP("orders", "c", 5, "number of pattern trees (Markov orders 0..n-1)")
	flags.String("source", "encoding", "model source: corpus or encoding")
	flags.StringP("model", "m", "pattern_tree_encoding.txt", "path of the corpus or encoding to build the model from")
	flags.Bool("drop-singletons", false, "discard followers seen once in orders above zero")
	flags.String("store", config.DefaultStorePath(), "model cache database")
	flags.Bool("no-store", false, "do not cache models or record runs")
	flags.String("log-file", "", "also write logs to this rotated file")
	flags.String("log-level", "INFO", "DEBUG, INFO, WARN, ERROR or NONE")

	a.bind(cmd, map[string]string{
		"model.orders":          "orders",
		"model.source":          "source",
		"model.path":            "model",
		"model.drop_singletons": "drop-singletons",
		"store.path":            "store",
		"store.disable":         "no-store",
		"log.file":              "log-file",
		"log.level":             "log-level",
	}, true)

	cmd.AddCommand(
		newBuildCmd(a),
		newCrackCmd(a),
		newReportCmd(a),
		newEstimateCmd(a),
		newSyncCmd(a),
		newRunsCmd(a),
	)
	return cmd
}

func Execute() error {
	return NewRootCmd().Execute()
}

// bind ties config keys to flags of cmd.
func (a *app) bind(cmd *cobra.Command, keys map[string]string, persistent bool) {
	flags := cmd.Flags()
	if persistent {
		flags = cmd.PersistentFlags()
	}
	for key, name := range keys {
		if err := a.v.BindPFlag(key, flags.Lookup(name)); err != nil {
			panic(fmt.Sprintf("bind %s: %v", key, err))
		}
	}
}

func (a *app) init() error {
	cfg, err := config.Load(a.v, a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg
	return logger.Init(cfg.Log.File, cfg.Log.Level)
}

func (a *app) close() error {
	_ = logger.Sync()
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}

// database opens the model cache once. It returns nil when caching is off.
func (a *app) database() (*sql.DB, error) {
	if a.cfg.Store.Disable {
		return nil, nil
	}
	if a.db == nil {
		db, err := store.Open(a.cfg.Store.Path)
		if err != nil {
			return nil, err
		}
		a.db = db
	}
	return a.db, nil
}

func (a *app) factory() *pattern.Factory {
	return pattern.NewFactory(a.cfg.Model.Orders, a.cfg.PatternConfig())
}

// loadModel builds the configured model, going through the cache when one
// is enabled. The returned key names the model in the cache and run log.
func (a *app) loadModel(ctx context.Context) (*pattern.Set, string, error) {
	src, err := a.cfg.Source()
	if err != nil {
		return nil, "", err
	}
	factory := a.factory()
	key := store.ModelKey(src, factory.Orders(), factory.Config())

	db, err := a.database()
	if err != nil {
		return nil, key, err
	}
	if db == nil {
		logger.Info("building pattern trees from %s", src)
		set, err := factory.Build(ctx, src)
		return set, key, err
	}

	models := store.NewSQLModelStore(db)
	switch src.Kind {
	case pattern.SourceCorpus:
		w := worker.NewModelSyncWorker(models, corpus.NewFileLoader(src.Path), factory)
		if err := worker.RunSyncWorkers(ctx, w); err != nil {
			return nil, key, err
		}
	case pattern.SourceEncoding:
		meta := store.NewMetaStore(db)
		if meta.NeedsReload(key, src.Path) {
			logger.Info("building pattern trees from %s", src)
			set, err := factory.Build(ctx, src)
			if err != nil {
				return nil, key, err
			}
			if err := models.SaveModel(key, set); err != nil {
				return nil, key, err
			}
			if err := meta.TouchMeta(key, src.Path); err != nil {
				logger.Warn("failed to remember %s: %v", src.Path, err)
			}
			return set, key, nil
		}
	}

	set, err := models.LoadModel(key, a.cfg.PatternConfig())
	if errors.Is(err, store.ErrModelNotFound) {
		// Nothing cached and nothing synced, usually an unreadable source.
		set, err = factory.Build(ctx, src)
	}
	if err != nil {
		return nil, key, err
	}
	logger.Debug("loaded %s from cache", key)
	return set, key, nil
}
