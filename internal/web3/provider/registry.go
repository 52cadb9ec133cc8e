package provider

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"monoracle-go/internal/config"
	"monoracle-go/internal/web3"
)

// Registry maps human readable chain names to RPC endpoints. It never dials:
// every fetch opens its own connection to the resolved URL.
type Registry struct {
	defaultChain string
	chains       map[string]web3.ChainDefinition
}

// NewRegistry merges the built-in chains with the configured chain file.
func NewRegistry(cfg config.Web3Config) (*Registry, error) {
	defs, err := web3.LoadChainDefinitions(cfg.ChainConfig)
	if err != nil {
		return nil, err
	}
	merged := web3.DefaultChains().Merge(defs)

	chains := make(map[string]web3.ChainDefinition, len(merged.Chains))
	for name, chain := range merged.Chains {
		chainType := strings.ToLower(strings.TrimSpace(chain.Type))
		switch chainType {
		case "", "evm":
			chain.Type = "evm"
			chains[name] = chain
		default:
			return nil, fmt.Errorf("链 %s 使用了不支持的类型 %s", name, chain.Type)
		}
	}

	defaultChain := strings.TrimSpace(cfg.DefaultChain)
	if defaultChain == "" {
		defaultChain = web3.MonadTestnet
	}
	if _, ok := chains[defaultChain]; !ok {
		return nil, fmt.Errorf("默认链 %s 未在配置中找到", defaultChain)
	}

	return &Registry{defaultChain: defaultChain, chains: chains}, nil
}

// DefaultChain returns the name of the default chain.
func (r *Registry) DefaultChain() string {
	if r == nil {
		return ""
	}
	return r.defaultChain
}

// Resolve returns the RPC URL of the named chain. An empty name resolves the
// default chain.
func (r *Registry) Resolve(name string) (string, error) {
	if r == nil {
		return "", errors.New("未初始化的链注册表")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = r.defaultChain
	}
	chain, ok := r.chains[name]
	if !ok {
		return "", fmt.Errorf("未知的链: %s", name)
	}
	return chain.RPCURL, nil
}

// Chain returns the definition registered under name.
func (r *Registry) Chain(name string) (web3.ChainDefinition, bool) {
	if r == nil {
		return web3.ChainDefinition{}, false
	}
	chain, ok := r.chains[name]
	return chain, ok
}

// Chains returns the list of registered chain names.
func (r *Registry) Chains() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.chains))
	for name := range r.chains {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
