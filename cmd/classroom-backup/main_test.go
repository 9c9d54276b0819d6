package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/classroom-api/internal/service"
	"github.com/noah-isme/classroom-api/pkg/config"
	"github.com/noah-isme/classroom-api/pkg/storage"
)

func TestBackupRoundTripThroughFileStore(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	cfg := &config.Config{Store: config.StoreConfig{Driver: config.StoreDriverFile, Dir: dir}}

	store, err := storage.NewFileStore(dir)
	require.NoError(t, err)
	factory := service.NewWorkspaceFactory(store, nil)
	_, err = factory.Global().Directory.Add(ctx, "lan@school.vn", "Cô Lan")
	require.NoError(t, err)

	doc := `{"schools":[{"id":"school1","name":"THPT Nguyễn Du","owner":"lan@school.vn"}]}`
	require.NoError(t, run(ctx, cfg, zap.NewNop(), []string{"import", "--email", "lan@school.vn"}, strings.NewReader(doc), &bytes.Buffer{}))

	out := filepath.Join(t.TempDir(), "backup.json")
	require.NoError(t, run(ctx, cfg, zap.NewNop(), []string{"export", "-e", "LAN@school.vn", "-f", out}, nil, nil))

	var stdout bytes.Buffer
	require.NoError(t, run(ctx, cfg, zap.NewNop(), []string{"export", "--email", "lan@school.vn"}, nil, &stdout))
	assert.Contains(t, stdout.String(), "THPT Nguyễn Du")
	assert.Contains(t, stdout.String(), `"version": "1.1"`)
}

func TestBackupRejectsUnknownTeacherAndCommand(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{Store: config.StoreConfig{Driver: config.StoreDriverMemory}}

	err := run(ctx, cfg, zap.NewNop(), []string{"export", "--email", "ghost@school.vn"}, nil, &bytes.Buffer{})
	assert.ErrorContains(t, err, "not in the teacher directory")

	err = run(ctx, cfg, zap.NewNop(), []string{"export"}, nil, &bytes.Buffer{})
	assert.ErrorContains(t, err, "--email is required")

	err = run(ctx, cfg, zap.NewNop(), []string{"restore", "--email", "admin@hdu.com"}, nil, &bytes.Buffer{})
	assert.ErrorContains(t, err, `unknown command "restore"`)
}
