package match

import (
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"strconv"
	"strings"

	"golang.org/x/crypto/argon2"
)

type argon2Matcher struct {
	memory      uint32
	time        uint32
	parallelism uint8
	salt        []byte
	hash        []byte
}

// Argon2id matches candidates against a PHC string
// "$argon2id$v=19$m=<kib>,t=<iterations>,p=<threads>$<salt>$<hash>".
// Salt and hash may be padded or unpadded base64.
func Argon2id(encoded string) (Matcher, error) {
	parts := strings.Split(strings.TrimSpace(encoded), "$")
	if len(parts) != 6 || parts[0] != "" {
		return nil, errors.New("invalid PHC format")
	}
	if parts[1] != "argon2id" {
		return nil, errors.New("unsupported algorithm")
	}

	version, err := strconv.Atoi(strings.TrimPrefix(parts[2], "v="))
	if err != nil || !strings.HasPrefix(parts[2], "v=") {
		return nil, errors.New("invalid argon2 version")
	}
	if version != argon2.Version {
		return nil, errors.New("unsupported argon2 version")
	}

	m := &argon2Matcher{}
	if err := m.parseParams(parts[3]); err != nil {
		return nil, err
	}
	if m.salt, err = decodeBase64(parts[4]); err != nil {
		return nil, errors.New("invalid salt encoding")
	}
	if m.hash, err = decodeBase64(parts[5]); err != nil || len(m.hash) == 0 {
		return nil, errors.New("invalid hash encoding")
	}
	return m, nil
}

func (a *argon2Matcher) Match(candidate string) bool {
	computed := argon2.IDKey([]byte(candidate), a.salt, a.time, a.memory, a.parallelism, uint32(len(a.hash)))
	return subtle.ConstantTimeCompare(computed, a.hash) == 1
}

func (a *argon2Matcher) parseParams(part string) error {
	pairs := strings.Split(part, ",")
	if len(pairs) != 3 {
		return errors.New("invalid parameter format")
	}

	var memorySet, timeSet, parallelismSet bool
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok {
			return errors.New("invalid parameter entry")
		}
		switch key {
		case "m":
			v, err := strconv.ParseUint(value, 10, 32)
			if err != nil || v == 0 {
				return errors.New("invalid memory parameter")
			}
			a.memory = uint32(v)
			memorySet = true
		case "t":
			v, err := strconv.ParseUint(value, 10, 32)
			if err != nil || v == 0 {
				return errors.New("invalid time parameter")
			}
			a.time = uint32(v)
			timeSet = true
		case "p":
			v, err := strconv.ParseUint(value, 10, 8)
			if err != nil || v == 0 {
				return errors.New("invalid parallelism parameter")
			}
			a.parallelism = uint8(v)
			parallelismSet = true
		default:
			return errors.New("unsupported parameter")
		}
	}
	if !memorySet || !timeSet || !parallelismSet {
		return errors.New("missing parameters")
	}
	return nil
}

func decodeBase64(s string) ([]byte, error) {
	if b, err := base64.RawStdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.StdEncoding.DecodeString(s)
}
