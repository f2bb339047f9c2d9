package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 800*time.Millisecond, cfg.Chat.TypingIdle)
	assert.Equal(t, 20, cfg.Chat.PageSize)
	assert.Equal(t, "badger", cfg.Store.Driver)
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chat.yaml")
	content := `
api_base_url: https://shop.example.com/api
socket_url: wss://shop.example.com/ws
log_level: debug
store:
  driver: memory
chat:
  page_size: 30
  typing_idle: 1s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("CHAT_PAGE_SIZE", "50")
	t.Setenv("CHAT_READ_RECEIPT_DELAY", "250ms")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://shop.example.com/api", cfg.APIBaseURL)
	assert.Equal(t, "wss://shop.example.com/ws", cfg.SocketURL)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, time.Second, cfg.Chat.TypingIdle)
	assert.Equal(t, 50, cfg.Chat.PageSize, "environment wins over file")
	assert.Equal(t, 250*time.Millisecond, cfg.Chat.ReadReceiptDelay)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv("CHAT_PAGE_SIZE", "500")
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PageSize")
}

func TestLoadRejectsMalformedEnv(t *testing.T) {
	t.Setenv("CHAT_TYPING_IDLE", "soon")
	_, err := Load("")
	assert.ErrorContains(t, err, "CHAT_TYPING_IDLE")
}

func TestPostgresDriverRequiresDatabaseURL(t *testing.T) {
	t.Setenv("CHAT_STORE_DRIVER", "postgres")
	t.Setenv("CHAT_DATABASE_URL", "")
	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DatabaseURL")
}
