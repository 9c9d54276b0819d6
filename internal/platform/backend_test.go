package platform

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/classroom-api/pkg/config"
	"github.com/noah-isme/classroom-api/pkg/storage"
)

func TestOpenLocalDrivers(t *testing.T) {
	ctx := context.Background()

	b, err := Open(ctx, &config.Config{Store: config.StoreConfig{Driver: config.StoreDriverMemory}}, nil)
	require.NoError(t, err)
	assert.IsType(t, &storage.MemoryStore{}, b.Store)
	b.Close()

	b, err = Open(ctx, &config.Config{Store: config.StoreConfig{Driver: config.StoreDriverFile, Dir: t.TempDir()}}, nil)
	require.NoError(t, err)
	assert.IsType(t, &storage.FileStore{}, b.Store)
	b.Close()
}

func TestOpenUnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), &config.Config{Store: config.StoreConfig{Driver: "s3"}}, nil)
	assert.ErrorContains(t, err, `unknown store driver "s3"`)
}
