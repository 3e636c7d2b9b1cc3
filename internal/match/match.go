// Package match decides whether a candidate is the password being searched
// for. The search engine only sees the Matcher interface; plaintext equality
// is the default and hash-and-compare predicates plug in behind it.
package match

import (
	"crypto/md5"
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"hash"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"
)

// Matcher reports whether candidate is the target. Implementations must be
// safe for concurrent use.
type Matcher interface {
	Match(candidate string) bool
}

// MatchFunc adapts a function to Matcher.
type MatchFunc func(candidate string) bool

func (f MatchFunc) Match(candidate string) bool {
	return f(candidate)
}

// Equal matches the plaintext target.
func Equal(target string) Matcher {
	return MatchFunc(func(candidate string) bool {
		return candidate == target
	})
}

type DigestKind string

const (
	MD5    DigestKind = "md5"
	SHA1   DigestKind = "sha1"
	SHA256 DigestKind = "sha256"
	SHA512 DigestKind = "sha512"
)

func (k DigestKind) newHash() (func() hash.Hash, error) {
	switch k {
	case MD5:
		return md5.New, nil
	case SHA1:
		return sha1.New, nil
	case SHA256:
		return sha256.New, nil
	case SHA512:
		return sha512.New, nil
	default:
		return nil, fmt.Errorf("unsupported digest %q", string(k))
	}
}

type digestMatcher struct {
	newHash func() hash.Hash
	want    []byte
}

// Digest matches candidates whose unsalted digest equals hexDigest.
func Digest(kind DigestKind, hexDigest string) (Matcher, error) {
	newHash, err := kind.newHash()
	if err != nil {
		return nil, err
	}
	want, err := hex.DecodeString(strings.TrimSpace(hexDigest))
	if err != nil {
		return nil, fmt.Errorf("invalid %s digest: %w", kind, err)
	}
	if size := newHash().Size(); len(want) != size {
		return nil, fmt.Errorf("invalid %s digest: %d bytes, want %d", kind, len(want), size)
	}
	return &digestMatcher{newHash: newHash, want: want}, nil
}

func (d *digestMatcher) Match(candidate string) bool {
	h := d.newHash()
	h.Write([]byte(candidate))
	return subtle.ConstantTimeCompare(h.Sum(nil), d.want) == 1
}

type bcryptMatcher struct {
	hash []byte
}

// Bcrypt matches candidates against a bcrypt hash such as "$2a$10$...".
func Bcrypt(encoded string) (Matcher, error) {
	hashed := []byte(strings.TrimSpace(encoded))
	if _, err := bcrypt.Cost(hashed); err != nil {
		return nil, fmt.Errorf("invalid bcrypt hash: %w", err)
	}
	return &bcryptMatcher{hash: hashed}, nil
}

func (b *bcryptMatcher) Match(candidate string) bool {
	return bcrypt.CompareHashAndPassword(b.hash, []byte(candidate)) == nil
}

// Target is a parsed target: its matcher and, for plaintext targets, the
// rune length a search needs to reach.
type Target struct {
	Matcher
	Kind   string
	Length int
}

// Parse resolves a target of the form "<kind>:<value>". Kinds are plain,
// md5, sha1, sha256, sha512, bcrypt and argon2id. A value without a known
// kind prefix is a plaintext target. Hashed targets have Length 0.
func Parse(s string) (Target, error) {
	kind, value, ok := strings.Cut(s, ":")
	if !ok {
		return plainTarget(s), nil
	}

	switch strings.ToLower(kind) {
	case "plain":
		return plainTarget(value), nil
	case string(MD5), string(SHA1), string(SHA256), string(SHA512):
		m, err := Digest(DigestKind(strings.ToLower(kind)), value)
		if err != nil {
			return Target{}, err
		}
		return Target{Matcher: m, Kind: strings.ToLower(kind)}, nil
	case "bcrypt":
		m, err := Bcrypt(value)
		if err != nil {
			return Target{}, err
		}
		return Target{Matcher: m, Kind: "bcrypt"}, nil
	case "argon2id":
		m, err := Argon2id(value)
		if err != nil {
			return Target{}, err
		}
		return Target{Matcher: m, Kind: "argon2id"}, nil
	default:
		return plainTarget(s), nil
	}
}

func plainTarget(s string) Target {
	return Target{Matcher: Equal(s), Kind: "plain", Length: utf8.RuneCountInString(s)}
}
