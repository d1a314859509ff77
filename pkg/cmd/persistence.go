package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/dukex/decmed/pkg/persistence"
	"github.com/dukex/decmed/pkg/persistence/file"
	"github.com/dukex/decmed/pkg/persistence/redis"
)

var supportedPersistenceProviders = []string{"file", "redis"}

// NewSessionStore picks the store from the URL scheme. Anything without a
// known scheme is a directory for the file store.
func NewSessionStore(sessionURL string, ttl time.Duration) (persistence.SessionStore, error) {
	switch parsePersistenceProvider(sessionURL) {
	case "redis":
		store, err := redis.NewStore(sessionURL, ttl)
		if err != nil {
			return nil, fmt.Errorf("failed to create redis session store: %w", err)
		}

		return store, nil
	default:
		return file.NewStore(sessionURL), nil
	}
}

func parsePersistenceProvider(sessionURL string) string {
	parts := strings.Split(sessionURL, "://")

	provider := parts[0]
	for _, supported := range supportedPersistenceProviders {
		if provider == supported {
			return provider
		}
	}

	return "file"
}
