package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"
	"github.com/trknhr/ghostguess/internal/logger"
	"github.com/trknhr/ghostguess/internal/match"
	"github.com/trknhr/ghostguess/internal/metrics"
	"github.com/trknhr/ghostguess/internal/search"
	"github.com/trknhr/ghostguess/internal/store"
)

func newCrackCmd(a *app) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "crack <target>",
		Short: "Search for a password matching the target",
		Long: `Search candidates most likely first until one matches the target.

The target is a plaintext password or "<kind>:<value>" where kind is one of
plain, md5, sha1, sha256, sha512, bcrypt or argon2id. Hashed targets need
--max-len.`,
		Example: `
  ghostguess crack hunter2
  ghostguess crack --threads 8 --max-len 8 sha1:f3bbbd66a63d4bf1747940578ec3d0103530e21d`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := match.Parse(args[0])
			if err != nil {
				return err
			}
			if target.Kind == "bcrypt" || target.Kind == "argon2id" {
				logger.WarnOnce("slow-target", "%s targets hash every candidate; expect a slow search", target.Kind)
			}
			opts, err := a.cfg.SearchOptions(target)
			if err != nil {
				return err
			}
			collector := metrics.NewCollector()
			opts.Observer = collector

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			set, key, err := a.loadModel(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "INFO: Attacking...")
			started := time.Now()
			res, err := search.Run(ctx, set, opts)
			finished := time.Now()
			stopped := errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
			if err != nil && !stopped {
				return err
			}
			logger.Info("%s search visited %d candidates, expanded %d, pruned %d in %s",
				res.Mode, res.Visited, res.Expanded, res.Pruned, finished.Sub(started).Round(time.Millisecond))

			a.recordRun(store.NewRun(key, opts, res, started, finished))
			if path := a.cfg.Search.MetricsFile; path != "" {
				if err := collector.WriteTextfile(path); err != nil {
					logger.Error("%v", err)
				}
			}

			switch {
			case res.Found:
				fmt.Fprintf(cmd.OutOrStdout(), "DONE: Found %s\n", res.Password)
			case stopped:
				fmt.Fprintln(cmd.OutOrStdout(), "DONE: Stopped before a match")
				return err
			default:
				fmt.Fprintln(cmd.OutOrStdout(), "DONE: Nothing found")
			}
			return nil
		},
	}

	flags := cmd.Flags()
	flags.Int("max-len", 0, "longest candidate in characters (default: length of a plaintext target)")
	flags.String("mode", "", "search mode: best, significant, parallel or routed (default: best for one thread, parallel otherwise)")
	flags.IntP("threads", "t", 1, "worker threads for parallel modes, 0 for one per CPU")
	flags.Int("batch-size", 100, "candidates a worker takes from the shared frontier at once")
	flags.Bool("exhaustive", false, "disable likelihood pruning")
	flags.Float64("fast-smoothing", 0.9, "weight of the old estimate when a candidate beats it")
	flags.Float64("slow-smoothing", 0.7, "weight of the old estimate when a candidate is pruned")
	flags.Duration("idle-timeout", 50*time.Millisecond, "how long a routed worker waits on its inbox before checking whether the run is drained")
	flags.String("metrics-file", "", "write Prometheus text metrics of the run to this path")
	flags.DurationVar(&timeout, "timeout", 0, "give up after this long")

	a.bind(cmd, map[string]string{
		"search.max_len":        "max-len",
		"search.mode":           "mode",
		"search.threads":        "threads",
		"search.batch_size":     "batch-size",
		"search.exhaustive":     "exhaustive",
		"search.fast_smoothing": "fast-smoothing",
		"search.slow_smoothing": "slow-smoothing",
		"search.idle_timeout":   "idle-timeout",
		"search.metrics_file":   "metrics-file",
	}, false)
	return cmd
}

// recordRun logs the run when a store is configured. Failing to record never
// fails the search.
func (a *app) recordRun(run store.Run) {
	db, err := a.database()
	if err != nil || db == nil {
		return
	}
	if err := store.NewSQLRunStore(db).RecordRun(run); err != nil {
		logger.Warn("%v", err)
	}
}
