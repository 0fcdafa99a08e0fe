package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dealerdesk/dealerdesk/internal/config"
)

func TestFromConfigPrecedence(t *testing.T) {
	t.Run("remote dsn wins", func(t *testing.T) {
		cfg := &config.Config{
			Storage: config.Storage{
				DataDir: t.TempDir(),
				Remote:  config.Remote{DSN: "sqlite://" + filepath.Join(t.TempDir(), "test.db")},
				Blob:    config.Blob{Endpoint: "http://blob.example", Token: "tok", Key: "k"},
			},
		}

		st, err := FromConfig(cfg)
		require.NoError(t, err)
		assert.IsType(t, &gormStore{}, st)
	})

	t.Run("blob token beats local", func(t *testing.T) {
		cfg := &config.Config{
			Storage: config.Storage{
				DataDir: t.TempDir(),
				Blob:    config.Blob{Endpoint: "http://blob.example", Token: "tok", Key: "k"},
			},
		}

		st, err := FromConfig(cfg)
		require.NoError(t, err)

		mem, ok := st.(*memStore)
		require.True(t, ok)
		assert.IsType(t, &blobPersister{}, mem.p)
	})

	t.Run("local is the default", func(t *testing.T) {
		cfg := &config.Config{
			Storage: config.Storage{
				DataDir:  t.TempDir(),
				FileName: "app.snapshot",
			},
		}

		st, err := FromConfig(cfg)
		require.NoError(t, err)

		mem, ok := st.(*memStore)
		require.True(t, ok)
		assert.IsType(t, &filePersister{}, mem.p)
	})
}

func TestLocalPersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()

	cfg := &config.Config{
		Storage: config.Storage{
			DataDir:  t.TempDir(),
			FileName: "app.snapshot",
		},
	}

	st := NewLocal(cfg)
	require.NoError(t, st.Init(ctx))

	require.NoError(t, st.SaveTemplate(ctx, "main", "persisted"))

	_, err := st.CreateDealer(ctx, DealerFields{Name: "Acme", Brand: "BrandX"})
	require.NoError(t, err)

	require.NoError(t, st.SavePriceSheet(ctx, "BrandX", "prices"))
	require.NoError(t, st.Close())

	reopened := NewLocal(cfg)
	require.NoError(t, reopened.Init(ctx))
	defer reopened.Close()

	content, err := reopened.GetTemplate(ctx, "main")
	require.NoError(t, err)
	assert.Equal(t, "persisted", content)

	dealers, err := reopened.ListDealers(ctx)
	require.NoError(t, err)
	require.Len(t, dealers, 1)
	assert.Equal(t, "Acme", dealers[0].Name)

	content, err = reopened.GetPriceSheet(ctx, "brandx")
	require.NoError(t, err)
	assert.Equal(t, "prices", content)
}

func TestLocalDiscardsCorruptSnapshot(t *testing.T) {
	ctx := context.Background()

	dir := t.TempDir()
	cfg := &config.Config{
		Storage: config.Storage{
			DataDir:  dir,
			FileName: "app.snapshot",
		},
	}

	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.snapshot"), []byte("garbage"), 0o644))

	st := NewLocal(cfg)
	require.NoError(t, st.Init(ctx))
	defer st.Close()

	infos, err := st.ListTemplates(ctx)
	require.NoError(t, err)
	assert.Empty(t, infos)
}
