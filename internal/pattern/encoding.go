package pattern

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/trknhr/ghostguess/internal/corpus"
	"github.com/trknhr/ghostguess/internal/logger"
)

// BlockSeparator closes one order in the encoding.
const BlockSeparator = "---"

var errLastBlock = errors.New("last block read")

// Encode writes set as one block per order. Each line is
// <suffix><letter><count> without separators; the suffix length is implied
// by the block's order.
func Encode(w io.Writer, set *Set) error {
	bw := bufio.NewWriter(w)
	for _, tree := range set.trees {
		for _, suffix := range tree.Suffixes() {
			for _, f := range tree.followers[suffix] {
				bw.WriteString(suffix)
				bw.WriteRune(f.Letter)
				bw.WriteString(strconv.FormatUint(uint64(f.Count), 10))
				bw.WriteByte('\n')
			}
		}
		bw.WriteString(BlockSeparator)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// Decode rebuilds a finalized set of the given number of orders from an
// encoding, stopping after that many blocks. Blank lines are skipped.
// Records are sliced by rune, not byte. A record whose count does not parse
// is logged and kept with count 0; a record too short to hold a suffix and a
// letter is logged and dropped.
func Decode(ctx context.Context, r io.Reader, orders int, cfg Config) (*Set, error) {
	set, err := NewSet(orders, cfg)
	if err != nil {
		return nil, err
	}

	order := 0
	malformed := 0
	err = corpus.Lines(r, func(lineNo int, line string) error {
		if lineNo%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		if strings.TrimSpace(line) == "" {
			return nil
		}
		if strings.TrimSpace(line) == BlockSeparator {
			order++
			if order >= orders {
				return errLastBlock
			}
			return nil
		}

		runes := []rune(line)
		if len(runes) < order+1 {
			malformed++
			logger.Warn("%v", fmt.Errorf("%w: line %d: %q too short for order %d", ErrMalformedRecord, lineNo, line, order))
			return nil
		}
		suffix := string(runes[:order])
		letter := runes[order]
		count, err := strconv.ParseUint(string(runes[order+1:]), 10, 32)
		if err != nil {
			malformed++
			logger.Warn("%v", fmt.Errorf("%w: line %d: %q: %v", ErrMalformedRecord, lineNo, line, err))
			count = 0
		}
		if err := set.InsertCount(order, suffix, letter, uint32(count)); err != nil {
			logger.Warn("line %d dropped: %v", lineNo, err)
		}
		return nil
	})
	switch {
	case err == nil, errors.Is(err, errLastBlock):
	case ctx.Err() != nil:
		return nil, err
	default:
		return nil, fmt.Errorf("%w: %w", ErrIO, err)
	}
	if malformed > 0 {
		logger.Warn("encoding had %d malformed records", malformed)
	}

	set.Finalize()
	return set, nil
}

// WriteDistribution writes the count distribution of every order as
// "<count> <probability>" lines, optionally followed by the cutoff count.
func WriteDistribution(w io.Writer, set *Set, withCutoff bool) error {
	bw := bufio.NewWriter(w)
	for _, tree := range set.trees {
		fmt.Fprintf(bw, "order %d\n", tree.order)
		for _, p := range tree.Distribution() {
			fmt.Fprintf(bw, "%d %.6f\n", p.Count, p.Probability)
		}
		if withCutoff {
			fmt.Fprintf(bw, "cutoff %d\n", tree.cutoff)
		}
		bw.WriteString(BlockSeparator)
		bw.WriteByte('\n')
	}
	return bw.Flush()
}

// EncodeFile writes the encoding of set to path.
func EncodeFile(path string, set *Set) error {
	return writeFile(path, func(w io.Writer) error {
		return Encode(w, set)
	})
}

// WriteDistributionFile writes the distribution report of set to path.
func WriteDistributionFile(path string, set *Set, withCutoff bool) error {
	return writeFile(path, func(w io.Writer) error {
		return WriteDistribution(w, set, withCutoff)
	})
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrIO, path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("%w: %s: %w", ErrIO, path, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrIO, path, err)
	}
	return nil
}
