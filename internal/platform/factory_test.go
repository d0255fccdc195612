package platform_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/hbnb/internal/platform"
	"github.com/aretw0/hbnb/pkg/core"
)

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates the directory and loads existing content", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "data", "file.json")

		store, err := platform.Open(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, path, store.Path())
		u, err := store.Create(core.KindUser)
		require.NoError(t, err)
		require.NoError(t, store.Save(ctx))

		again, err := platform.Open(ctx, path)
		require.NoError(t, err)
		_, err = again.Get(core.KindUser, u.ID)
		assert.NoError(t, err)
	})

	t.Run("MustExist", func(t *testing.T) {
		_, err := platform.Open(ctx, filepath.Join(t.TempDir(), "file.json"), platform.WithMustExist(true))
		assert.Error(t, err)
	})

	t.Run("Malformed file fails", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "file.json")
		require.NoError(t, os.WriteFile(path, []byte("not json"), 0644))
		_, err := platform.Open(ctx, path)
		assert.ErrorIs(t, err, core.ErrReconstruction)
	})

	t.Run("Clock option", func(t *testing.T) {
		fixed := time.Date(2024, 1, 15, 9, 30, 0, 0, time.UTC)
		store, err := platform.Open(ctx, filepath.Join(t.TempDir(), "file.json"),
			platform.WithClock(func() time.Time { return fixed }))
		require.NoError(t, err)
		e, err := store.Create(core.KindState)
		require.NoError(t, err)
		assert.True(t, e.CreatedAt.Equal(fixed))
	})

	t.Run("Force temp relocates the file", func(t *testing.T) {
		store, err := platform.Open(ctx, "/nonexistent-root/hbnb/file.json", platform.WithForceTemp(true))
		require.NoError(t, err)
		assert.Equal(t, filepath.Join(os.TempDir(), platform.DevDir, "file.json"), store.Path())
	})
}
