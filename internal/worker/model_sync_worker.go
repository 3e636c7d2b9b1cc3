package worker

import (
	"context"

	"github.com/trknhr/ghostguess/internal/corpus"
	"github.com/trknhr/ghostguess/internal/pattern"
	"github.com/trknhr/ghostguess/internal/store"
)

// ModelSyncWorker rebuilds the cached model of a corpus when the corpus
// changed since the model was last saved.
type ModelSyncWorker struct {
	store   store.ModelStore
	loader  corpus.Loader
	factory *pattern.Factory
}

func NewModelSyncWorker(store store.ModelStore, loader corpus.Loader, factory *pattern.Factory) *ModelSyncWorker {
	return &ModelSyncWorker{store: store, loader: loader, factory: factory}
}

// Key is the model key the corpus is cached under.
func (m *ModelSyncWorker) Key() string {
	src := pattern.Source{Kind: pattern.SourceCorpus, Path: m.loader.Path()}
	return store.ModelKey(src, m.factory.Orders(), m.factory.Config())
}

func (m *ModelSyncWorker) Path() string { return m.loader.Path() }

func (m *ModelSyncWorker) NeedsReload() bool {
	last, err := m.store.GetLastProcessedMtime(m.Key(), m.Path())
	if err != nil {
		return true // conservative: try to reload if error
	}
	curr, err := m.loader.GetCurrentMtime()
	if err != nil {
		return false // don't try if can't stat
	}
	return curr > last
}

func (m *ModelSyncWorker) Sync(ctx context.Context) error {
	passwords, err := m.loader.LoadPasswords()
	if err != nil {
		return err
	}
	set, err := m.factory.FromPasswords(ctx, passwords)
	if err != nil {
		return err
	}
	if err := m.store.SaveModel(m.Key(), set); err != nil {
		return err
	}
	curr, err := m.loader.GetCurrentMtime()
	if err != nil {
		return err
	}
	return m.store.UpdateMetadata(m.Key(), m.Path(), curr)
}
