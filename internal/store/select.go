package store

import (
	"github.com/rs/zerolog/log"

	"github.com/dealerdesk/dealerdesk/internal/config"
)

// FromConfig selects the backend for this process. Precedence: a remote DSN
// wins over a blob token, which wins over the local snapshot file.
func FromConfig(cfg *config.Config) (Store, error) {
	switch {
	case cfg.Storage.Remote.DSN != "":
		log.Info().Msg("using remote relational storage backend")

		return NewRemote(cfg)
	case cfg.Storage.Blob.Token != "":
		log.Info().Str("key", cfg.Storage.Blob.Key).Msg("using blob storage backend")

		return NewBlob(cfg), nil
	default:
		log.Info().Str("dir", cfg.Storage.DataDir).Msg("using local snapshot storage backend")

		return NewLocal(cfg), nil
	}
}
