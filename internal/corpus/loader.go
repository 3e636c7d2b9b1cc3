package corpus

//go:generate mockgen -source=loader.go -destination=mock_loader.go -package=corpus

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/trknhr/ghostguess/internal/logger"
)

// MaxLineBytes bounds a single corpus line.
const MaxLineBytes = 1 << 20

type Loader interface {
	LoadPasswords() ([]string, error)
	GetCurrentMtime() (int64, error)
	Path() string
	Key() string
}

type FileLoader struct {
	path string
}

// NewFileLoader loads the corpus at path, made absolute when the working
// directory is known.
func NewFileLoader(path string) *FileLoader {
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return &FileLoader{path: path}
}

func (f *FileLoader) LoadPasswords() ([]string, error) {
	file, err := os.Open(f.path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var passwords []string
	err = Each(file, func(pw string) error {
		passwords = append(passwords, pw)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return passwords, nil
}

func (f *FileLoader) GetCurrentMtime() (int64, error) {
	info, err := os.Stat(f.path)
	if err != nil {
		return 0, err
	}
	return info.ModTime().Unix(), nil
}

func (f *FileLoader) Path() string {
	return f.path
}

func (f *FileLoader) Key() string {
	return "corpus:" + f.path
}

// Each calls fn for every password in r, one per line. Blank lines, lines
// that are not valid UTF-8 and lines longer than MaxLineBytes are skipped. A
// trailing carriage return is dropped but other whitespace is part of the
// password.
func Each(r io.Reader, fn func(pw string) error) error {
	return Lines(r, func(_ int, line string) error {
		if line == "" || !utf8.ValidString(line) {
			return nil
		}
		return fn(line)
	})
}

// Lines calls fn with the 1-based number and text of every line in r, with
// the line ending removed. A line longer than MaxLineBytes is logged and
// skipped without being held in memory; reading goes on with the next line.
func Lines(r io.Reader, fn func(lineNo int, line string) error) error {
	br := bufio.NewReaderSize(r, 64*1024)
	var buf []byte
	lineNo := 0
	tooLong := false
	for {
		chunk, err := br.ReadSlice('\n')
		if !tooLong {
			if len(buf)+len(chunk) > MaxLineBytes+2 {
				tooLong = true
				buf = buf[:0]
			} else {
				buf = append(buf, chunk...)
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return fmt.Errorf("read line %d: %w", lineNo+1, err)
		}
		eof := err != nil

		if !eof || len(buf) > 0 || tooLong {
			lineNo++
			line := strings.TrimSuffix(strings.TrimSuffix(string(buf), "\n"), "\r")
			if tooLong || len(line) > MaxLineBytes {
				logger.Warn("line %d longer than %d bytes skipped", lineNo, MaxLineBytes)
			} else if err := fn(lineNo, line); err != nil {
				return err
			}
		}
		if eof {
			return nil
		}
		buf = buf[:0]
		tooLong = false
	}
}
