package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/trknhr/ghostguess/internal/corpus"
	"github.com/trknhr/ghostguess/internal/store"
	"github.com/trknhr/ghostguess/internal/worker"
)

func newSyncCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sync <corpus>...",
		Short: "Rebuild cached models of corpora that changed",
		Long: `Learn every given corpus whose file changed since its model was cached.
Corpora are learned concurrently; up-to-date ones are skipped.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.database()
			if err != nil {
				return err
			}
			if db == nil {
				return errors.New("sync needs the model store; drop --no-store")
			}

			models := store.NewSQLModelStore(db)
			factory := a.factory()
			syncers := make([]worker.SyncWorker, len(args))
			for i, path := range args {
				syncers[i] = worker.NewModelSyncWorker(models, corpus.NewFileLoader(path), factory)
			}
			if err := worker.RunSyncWorkers(cmd.Context(), syncers...); err != nil {
				return err
			}
			for _, s := range syncers {
				fmt.Fprintf(cmd.OutOrStdout(), "synced %s\n", s.Key())
			}
			return nil
		},
	}
}
