package services

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/backsoul/partygames/pkg/prompts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadInitialContentSeedsRedis(t *testing.T) {
	client, _ := newTestRedis(t)
	ctx := context.Background()
	source := prompts.NewSource(&prompts.Content{}, 1)
	svc := NewContentService(client, source, "")

	require.NoError(t, svc.LoadInitialContent(ctx))
	assert.Equal(t, len(prompts.Default().Trivia), len(source.Content().Trivia))

	stored, err := client.LoadContent(ctx)
	require.NoError(t, err)
	_, err = prompts.Parse(stored)
	require.NoError(t, err)

	metadata, err := svc.Metadata(ctx)
	require.NoError(t, err)
	assert.NotNil(t, metadata)
}

func TestLoadInitialContentPrefersRedis(t *testing.T) {
	client, _ := newTestRedis(t)
	ctx := context.Background()

	content := prompts.Default()
	content.Trivia = content.Trivia[:1]
	data, err := json.Marshal(content)
	require.NoError(t, err)
	require.NoError(t, client.SaveContent(ctx, data, content.Summary()))

	source := prompts.NewSource(&prompts.Content{}, 1)
	svc := NewContentService(client, source, "")
	require.NoError(t, svc.LoadInitialContent(ctx))
	assert.Len(t, source.Content().Trivia, 1)
}

func TestReloadFromFile(t *testing.T) {
	client, _ := newTestRedis(t)
	ctx := context.Background()

	content := prompts.Default()
	content.Metadata.Title = "desde archivo"
	data, err := json.Marshal(content)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "content.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	source := prompts.NewSource(&prompts.Content{}, 1)
	svc := NewContentService(client, source, path)
	require.NoError(t, svc.Reload(ctx))
	assert.Equal(t, "desde archivo", source.Content().Metadata.Title)

	metadata, err := svc.Metadata(ctx)
	require.NoError(t, err)
	asMap, ok := metadata.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "desde archivo", asMap["metadata"].(map[string]interface{})["title"])
}

func TestReloadRejectsInvalidFile(t *testing.T) {
	client, _ := newTestRedis(t)
	path := filepath.Join(t.TempDir(), "content.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"trivia":[{"question":""}]}`), 0o600))

	source := prompts.NewSource(prompts.Default(), 1)
	svc := NewContentService(client, source, path)
	err := svc.Reload(context.Background())
	assert.ErrorIs(t, err, prompts.ErrInvalidContent)
	assert.NotEmpty(t, source.Content().Trivia, "previous content is kept")
}

func TestContentHealthCheck(t *testing.T) {
	client, mr := newTestRedis(t)
	svc := NewContentService(client, prompts.NewSource(prompts.Default(), 1), "")
	assert.NoError(t, svc.HealthCheck(context.Background()))

	mr.Close()
	assert.Error(t, svc.HealthCheck(context.Background()))
}
