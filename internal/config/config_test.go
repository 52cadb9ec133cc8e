package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "monoracle.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `{"web3": {"chain_config": "chains.yaml"}, "log": {"output_paths": ["logs/app.log", "stdout"]}}`)

	cfg, err := Load(path)
	require.NoError(t, err)

	dir := filepath.Dir(path)
	require.Equal(t, filepath.Join(dir, "chains.yaml"), cfg.Web3.ChainConfig)
	require.Equal(t, []string{filepath.Join(dir, "logs/app.log"), "stdout"}, cfg.Log.OutputPaths)
	require.Equal(t, "info", cfg.Log.Level)
	require.Equal(t, "json", cfg.Log.Format)
	require.Equal(t, "stdout", cfg.Publisher.Driver)
	require.Equal(t, "monoracle.records", cfg.Publisher.RabbitMQ.RoutingKey)
	require.Zero(t, cfg.Fetch.Timeout())
}

func TestLoadRabbitMQRequiresURL(t *testing.T) {
	path := writeConfig(t, `{"publisher": {"driver": "rabbitmq"}}`)
	_, err := Load(path)
	require.ErrorContains(t, err, "publisher.rabbitmq.url")
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	path := writeConfig(t, `{"publisher": {"driver": "kafka"}}`)
	_, err := Load(path)
	require.ErrorContains(t, err, "kafka")
}

func TestLoadTimeout(t *testing.T) {
	path := writeConfig(t, `{"fetch": {"timeout_seconds": 5}}`)
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 5*time.Second, cfg.Fetch.Timeout())
}

func TestLoadInvalidJSON(t *testing.T) {
	path := writeConfig(t, `{`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadFromEnv(t *testing.T) {
	path := writeConfig(t, `{"web3": {"rpc_url": "http://127.0.0.1:8545"}}`)
	t.Setenv(EnvConfigPath, path)

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	require.Equal(t, "http://127.0.0.1:8545", cfg.Web3.RPCURL)
}

func TestLoadFromEnvFallsBackToDefaults(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	previous := DefaultPath
	DefaultPath = filepath.Join(t.TempDir(), "missing.json")
	t.Cleanup(func() { DefaultPath = previous })

	cfg, err := LoadFromEnv()
	require.NoError(t, err)
	require.Equal(t, "stdout", cfg.Publisher.Driver)
	require.Equal(t, []string{"stderr"}, cfg.Log.OutputPaths)
}
