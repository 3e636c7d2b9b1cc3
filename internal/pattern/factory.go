package pattern

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/trknhr/ghostguess/internal/corpus"
	"github.com/trknhr/ghostguess/internal/logger"
)

type SourceKind int

const (
	SourceCorpus SourceKind = iota
	SourceEncoding
)

func (k SourceKind) String() string {
	switch k {
	case SourceCorpus:
		return "corpus"
	case SourceEncoding:
		return "encoding"
	default:
		return fmt.Sprintf("SourceKind(%d)", int(k))
	}
}

func ParseSourceKind(s string) (SourceKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "corpus", "passwords", "list":
		return SourceCorpus, nil
	case "encoding":
		return SourceEncoding, nil
	default:
		return 0, fmt.Errorf("unknown model source %q (want corpus or encoding)", s)
	}
}

// Source names where a model comes from.
type Source struct {
	Kind SourceKind
	Path string
}

func (s Source) String() string {
	return s.Kind.String() + ":" + s.Path
}

// Factory builds sets with a fixed number of orders.
type Factory struct {
	orders int
	cfg    Config
}

func NewFactory(orders int, cfg Config) *Factory {
	return &Factory{orders: orders, cfg: cfg}
}

func (f *Factory) Orders() int {
	return f.orders
}

func (f *Factory) Config() Config {
	return f.cfg
}

// Build constructs a set from src.
func (f *Factory) Build(ctx context.Context, src Source) (*Set, error) {
	switch src.Kind {
	case SourceCorpus:
		return f.FromPasswordList(ctx, src.Path)
	case SourceEncoding:
		return f.FromEncoding(ctx, src.Path)
	default:
		return nil, fmt.Errorf("unsupported model source %v", src.Kind)
	}
}

// FromPasswordList scans a corpus with one password per line.
func (f *Factory) FromPasswordList(ctx context.Context, path string) (*Set, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrIO, path, err)
	}
	defer file.Close()

	set, err := NewSet(f.orders, f.cfg)
	if err != nil {
		return nil, err
	}

	n := 0
	err = corpus.Each(file, func(pw string) error {
		n++
		if n%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		f.learn(set, pw)
		return nil
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrIO, path, err)
	}

	set.Finalize()
	logger.Debug("learned %d passwords from %s", n, path)
	return set, nil
}

// FromPasswords scans passwords held in memory. Blank entries are skipped.
func (f *Factory) FromPasswords(ctx context.Context, passwords []string) (*Set, error) {
	set, err := NewSet(f.orders, f.cfg)
	if err != nil {
		return nil, err
	}
	for i, pw := range passwords {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if pw == "" {
			continue
		}
		f.learn(set, pw)
	}
	set.Finalize()
	return set, nil
}

// FromEncoding decodes a previously written encoding.
func (f *Factory) FromEncoding(ctx context.Context, path string) (*Set, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrIO, path, err)
	}
	defer file.Close()

	return Decode(ctx, file, f.orders, f.cfg)
}

// learn inserts, for every position j of pw, each suffix of length
// 0..min(orders-1, j) ending before j together with the letter at j.
func (f *Factory) learn(set *Set, pw string) {
	runes := []rune(pw)
	for j := range runes {
		for l := 0; l <= min(f.orders-1, j); l++ {
			if err := set.Insert(l, string(runes[j-l:j]), runes[j]); err != nil {
				logger.Error("%v", err)
			}
		}
	}
}
