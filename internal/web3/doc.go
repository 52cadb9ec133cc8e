// Package web3 houses blockchain connectivity utilities: chain endpoint
// definitions loaded from YAML, a read-only EVM client used for contract
// accessor calls, and a registry that maps human readable chain names to RPC
// endpoints.
package web3
