package provider

import (
	"os"
	"path/filepath"
	"testing"

	"monoracle-go/internal/config"
	"monoracle-go/internal/web3"

	"github.com/stretchr/testify/require"
)

func writeChains(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chains.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRegistryDefaults(t *testing.T) {
	reg, err := NewRegistry(config.Web3Config{})
	require.NoError(t, err)

	require.Equal(t, web3.MonadTestnet, reg.DefaultChain())
	url, err := reg.Resolve("")
	require.NoError(t, err)
	require.Equal(t, "https://testnet-rpc.monad.xyz/", url)
	require.Equal(t, []string{web3.MonadTestnet}, reg.Chains())
}

func TestRegistryLoadsChainFile(t *testing.T) {
	path := writeChains(t, `chains:
  local:
    rpc_url: http://127.0.0.1:8545
`)
	reg, err := NewRegistry(config.Web3Config{ChainConfig: path, DefaultChain: "local"})
	require.NoError(t, err)

	url, err := reg.Resolve("")
	require.NoError(t, err)
	require.Equal(t, "http://127.0.0.1:8545", url)

	chain, ok := reg.Chain("local")
	require.True(t, ok)
	require.Equal(t, "evm", chain.Type)
	require.Equal(t, []string{"local", web3.MonadTestnet}, reg.Chains())

	_, err = reg.Resolve("unknown")
	require.Error(t, err)
}

func TestRegistryRejectsUnsupportedType(t *testing.T) {
	path := writeChains(t, `chains:
  solana:
    type: svm
    rpc_url: https://api.devnet.solana.com
`)
	_, err := NewRegistry(config.Web3Config{ChainConfig: path})
	require.ErrorContains(t, err, "svm")
}

func TestRegistryRejectsMissingDefault(t *testing.T) {
	_, err := NewRegistry(config.Web3Config{DefaultChain: "mainnet"})
	require.Error(t, err)
}
