package store

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/dealerdesk/dealerdesk/internal/config"
)

const (
	// uploadDebounce coalesces bursts of writes into one upload.
	uploadDebounce = 250 * time.Millisecond

	blobRequestTimeout = 30 * time.Second

	accessPrivate = "private"
	accessPublic  = "public"
)

// blobPersister keeps the durable snapshot copy in a remote blob, addressed
// by a fixed key with a bearer token. In persistent runtimes uploads are
// debounced; in ephemeral runtimes every Store uploads immediately, since
// nothing guarantees the process survives past the response.
type blobPersister struct {
	client    *http.Client
	url       string
	token     string
	access    string
	ephemeral bool

	mu      sync.Mutex
	timer   *time.Timer
	pending []byte
	dirty   bool
}

// NewBlob creates the blob-backed store.
func NewBlob(cfg *config.Config) Store {
	return newMemStore(&blobPersister{
		client:    &http.Client{Timeout: blobRequestTimeout},
		url:       strings.TrimRight(cfg.Storage.Blob.Endpoint, "/") + "/" + cfg.Storage.Blob.Key,
		token:     cfg.Storage.Blob.Token,
		access:    cfg.Storage.Blob.Access,
		ephemeral: cfg.Storage.Ephemeral,
	})
}

func (p *blobPersister) Load(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build blob request")
	}

	req.Header.Set("Authorization", "Bearer "+p.token)
	req.Header.Set("Cache-Control", "no-store")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed to fetch blob")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("blob fetch returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read blob body")
	}

	return data, nil
}

func (p *blobPersister) Store(ctx context.Context, data []byte) error {
	if p.ephemeral {
		if err := p.upload(ctx, data); err != nil {
			log.Error().Err(err).Msg("blob upload failed")
		}

		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.pending = data
	p.dirty = true

	// reschedule, coalescing rapid writes
	if p.timer != nil {
		p.timer.Stop()
	}

	p.timer = time.AfterFunc(uploadDebounce, func() {
		if err := p.flushPending(context.Background()); err != nil {
			log.Error().Err(err).Msg("blob upload failed")
		}
	})

	return nil
}

func (p *blobPersister) Flush(ctx context.Context) error {
	p.mu.Lock()
	if p.timer != nil {
		p.timer.Stop()
	}
	p.mu.Unlock()

	return p.flushPending(ctx)
}

func (p *blobPersister) Close() error {
	if err := p.Flush(context.Background()); err != nil {
		log.Error().Err(err).Msg("blob upload failed during close")
	}

	return nil
}

// flushPending uploads the latest snapshot if one is outstanding. The dirty
// flag is cleared before the upload; on failure the in-memory state stays
// authoritative until the next mutation schedules another attempt.
func (p *blobPersister) flushPending(ctx context.Context) error {
	p.mu.Lock()

	if !p.dirty {
		p.mu.Unlock()
		return nil
	}

	data := p.pending
	p.dirty = false
	p.mu.Unlock()

	return p.upload(ctx, data)
}

// upload PUTs the snapshot. When the service rejects the requested access
// level it retries exactly once with the public level, then gives up.
func (p *blobPersister) upload(ctx context.Context, data []byte) error {
	status, err := p.put(ctx, data, p.access)
	if err != nil {
		return err
	}

	if status == http.StatusForbidden && p.access == accessPrivate {
		log.Warn().Msg("blob service rejected private access, retrying with public")

		status, err = p.put(ctx, data, accessPublic)
		if err != nil {
			return err
		}
	}

	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return errors.Errorf("blob upload returned status %d", status)
	}

	return nil
}

func (p *blobPersister) put(ctx context.Context, data []byte, access string) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, p.url+"?access="+access, bytes.NewReader(data))
	if err != nil {
		return 0, errors.Wrap(err, "failed to build blob request")
	}

	req.Header.Set("Authorization", "Bearer "+p.token)
	req.Header.Set("Content-Type", "application/octet-stream")

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, errors.Wrap(err, "failed to upload blob")
	}
	defer resp.Body.Close()

	_, _ = io.Copy(io.Discard, resp.Body)

	return resp.StatusCode, nil
}
