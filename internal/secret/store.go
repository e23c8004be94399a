// Package secret looks up credentials, such as the scene store password,
// outside the config file.
package secret

import (
	"errors"
	"os"
	"runtime"
	"strings"
)

var ErrNotFound = errors.New("secret not found")

// Store resolves a secret by name. A missing secret is an empty value and
// a nil error.
type Store interface {
	Get(key string) ([]byte, error)
}

// EnvStore reads secrets from environment variables. The key is
// upper-cased, non-alphanumerics become underscores, and Prefix is
// prepended: "db-password" with prefix "POSTER_" reads POSTER_DB_PASSWORD.
type EnvStore struct {
	Prefix string
}

func (e EnvStore) Get(key string) ([]byte, error) {
	v, ok := os.LookupEnv(e.Name(key))
	if !ok {
		return nil, nil
	}
	return []byte(v), nil
}

// Name returns the environment variable consulted for key.
func (e EnvStore) Name(key string) string {
	var b strings.Builder
	b.WriteString(e.Prefix)
	for _, r := range strings.ToUpper(key) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// Chain returns the first non-empty secret found.
type Chain []Store

func (c Chain) Get(key string) ([]byte, error) {
	var errs []error
	for _, s := range c {
		v, err := s.Get(key)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if len(v) > 0 {
			return v, nil
		}
	}
	return nil, errors.Join(errs...)
}

// Default checks POSTER_* environment variables, then the macOS keychain.
func Default() Store {
	chain := Chain{EnvStore{Prefix: "POSTER_"}}
	if runtime.GOOS == "darwin" {
		chain = append(chain, NewKeychainStore())
	}
	return chain
}
