package web3

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// MonadTestnet is the name of the built-in Monad testnet definition.
const MonadTestnet = "monad-testnet"

// ChainDefinitions models the structure of configs/chains.yaml.
type ChainDefinitions struct {
	Chains map[string]ChainDefinition `yaml:"chains"`
}

// ChainDefinition describes a single chain endpoint definition.
type ChainDefinition struct {
	Type        string `yaml:"type"`
	RPCURL      string `yaml:"rpc_url"`
	Description string `yaml:"description"`
}

// DefaultChains returns the definitions that are always available.
func DefaultChains() ChainDefinitions {
	return ChainDefinitions{Chains: map[string]ChainDefinition{
		MonadTestnet: {
			Type:        "evm",
			RPCURL:      "https://testnet-rpc.monad.xyz/",
			Description: "Monad public testnet",
		},
	}}
}

// LoadChainDefinitions parses the YAML file containing chain metadata. An empty
// path yields an empty set.
func LoadChainDefinitions(path string) (ChainDefinitions, error) {
	if strings.TrimSpace(path) == "" {
		return ChainDefinitions{Chains: map[string]ChainDefinition{}}, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return ChainDefinitions{}, fmt.Errorf("读取链配置失败: %w", err)
	}

	var defs ChainDefinitions
	if err := yaml.Unmarshal(content, &defs); err != nil {
		return ChainDefinitions{}, fmt.Errorf("解析链配置失败: %w", err)
	}
	if defs.Chains == nil {
		defs.Chains = map[string]ChainDefinition{}
	}
	for name, chain := range defs.Chains {
		if strings.TrimSpace(chain.RPCURL) == "" {
			return ChainDefinitions{}, fmt.Errorf("链 %s 缺少 rpc_url", name)
		}
	}
	return defs, nil
}

// Merge overlays other on top of d and returns the combined set.
func (d ChainDefinitions) Merge(other ChainDefinitions) ChainDefinitions {
	merged := make(map[string]ChainDefinition, len(d.Chains)+len(other.Chains))
	for name, chain := range d.Chains {
		merged[name] = chain
	}
	for name, chain := range other.Chains {
		merged[name] = chain
	}
	return ChainDefinitions{Chains: merged}
}
