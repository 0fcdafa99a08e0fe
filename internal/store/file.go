package store

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/dealerdesk/dealerdesk/internal/config"
)

// filePersister writes the whole snapshot to a single file, synchronously,
// on every mutation. Write failures are logged and swallowed so a read-only
// filesystem degrades to an in-memory-only store instead of failing requests.
type filePersister struct {
	path       string
	restricted bool
}

// NewLocal creates the embedded file-backed store. Under the restricted
// platform flag the snapshot lives in the OS temp dir, the only writable
// location there; warm instances re-use it.
func NewLocal(cfg *config.Config) Store {
	dir := cfg.Storage.DataDir
	if cfg.Storage.Restricted {
		dir = os.TempDir()
	}

	if err := os.MkdirAll(dir, 0o750); err != nil { //nolint: mnd
		log.Warn().Err(err).Str("dir", dir).Msg("can't create data directory")
	}

	return newMemStore(&filePersister{
		path:       filepath.Join(dir, cfg.Storage.FileName),
		restricted: cfg.Storage.Restricted,
	})
}

func (p *filePersister) Load(_ context.Context) ([]byte, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}

		return nil, errors.Wrap(err, "failed to read snapshot file")
	}

	return data, nil
}

func (p *filePersister) Store(_ context.Context, data []byte) error {
	if err := os.WriteFile(p.path, data, 0o600); err != nil {
		if p.restricted {
			log.Error().Err(err).Str("path", p.path).Msg("snapshot write failed on restricted platform")
		} else {
			log.Warn().Err(err).Str("path", p.path).Msg("snapshot write failed")
		}
	}

	return nil
}

func (p *filePersister) Flush(_ context.Context) error {
	return nil // every Store call is already durable
}

func (p *filePersister) Close() error {
	return nil
}
