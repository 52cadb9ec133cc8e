// Package ethtest provides an in-memory EVM node answering the read-only
// JSON-RPC calls used by contract bindings. Contracts are modelled as fixed
// method → return value tables, so tests can exercise real ABI encoding and
// the go-ethereum RPC stack without compiling any bytecode.
package ethtest

import (
	"errors"
	"fmt"
	"net/http/httptest"
	"sync"
	"sync/atomic"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
)

// Contract describes the behaviour of a deployed contract.
type Contract struct {
	ABI abi.ABI
	// Returns maps a method name to the values it returns.
	Returns map[string][]any
	// Reverts maps a method name to a revert reason.
	Reverts map[string]string
}

// Node is a fake JSON-RPC node.
type Node struct {
	mu        sync.RWMutex
	contracts map[common.Address]*Contract
	server    *gethrpc.Server
	http      []*httptest.Server
	calls     atomic.Int64
}

// NewNode starts a node with no contracts.
func NewNode() *Node {
	n := &Node{
		contracts: make(map[common.Address]*Contract),
		server:    gethrpc.NewServer(),
	}
	if err := n.server.RegisterName("eth", &ethService{node: n}); err != nil {
		panic(fmt.Sprintf("register eth service: %v", err))
	}
	return n
}

// Deploy places a contract at the address, replacing any previous one.
func (n *Node) Deploy(addr common.Address, contract *Contract) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.contracts[addr] = contract
}

// URL serves the node over HTTP and returns the endpoint.
func (n *Node) URL() string {
	srv := httptest.NewServer(n.server)
	n.mu.Lock()
	n.http = append(n.http, srv)
	n.mu.Unlock()
	return srv.URL
}

// DialInProc returns an in-process RPC client connected to the node.
func (n *Node) DialInProc() *gethrpc.Client {
	return gethrpc.DialInProc(n.server)
}

// Calls reports how many eth_call requests the node served.
func (n *Node) Calls() int64 {
	return n.calls.Load()
}

// Close stops all listeners.
func (n *Node) Close() {
	n.mu.Lock()
	servers := n.http
	n.http = nil
	n.mu.Unlock()

	for _, srv := range servers {
		srv.Close()
	}
	n.server.Stop()
}

func (n *Node) contract(addr common.Address) (*Contract, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	c, ok := n.contracts[addr]
	return c, ok
}

// CallArgs is the subset of eth_call parameters the node understands.
type CallArgs struct {
	To    *common.Address `json:"to"`
	Input *hexutil.Bytes  `json:"input"`
	Data  *hexutil.Bytes  `json:"data"`
}

func (a CallArgs) payload() []byte {
	if a.Input != nil {
		return *a.Input
	}
	if a.Data != nil {
		return *a.Data
	}
	return nil
}

type ethService struct {
	node *Node
}

// Call serves eth_call.
func (s *ethService) Call(args CallArgs, _ any) (hexutil.Bytes, error) {
	s.node.calls.Add(1)

	if args.To == nil {
		return nil, errors.New("missing call target")
	}
	contract, ok := s.node.contract(*args.To)
	if !ok {
		return hexutil.Bytes{}, nil
	}

	input := args.payload()
	if len(input) < 4 {
		return nil, errors.New("execution reverted")
	}
	method, err := contract.ABI.MethodById(input[:4])
	if err != nil {
		return nil, errors.New("execution reverted")
	}
	if reason, ok := contract.Reverts[method.Name]; ok {
		return nil, fmt.Errorf("execution reverted: %s", reason)
	}
	values, ok := contract.Returns[method.Name]
	if !ok {
		return nil, errors.New("execution reverted")
	}
	out, err := method.Outputs.Pack(values...)
	if err != nil {
		return nil, fmt.Errorf("pack %s outputs: %w", method.Name, err)
	}
	return out, nil
}

// GetCode serves eth_getCode. Deployed contracts report a single STOP opcode.
func (s *ethService) GetCode(addr common.Address, _ any) (hexutil.Bytes, error) {
	if _, ok := s.node.contract(addr); ok {
		return hexutil.Bytes{0x00}, nil
	}
	return hexutil.Bytes{}, nil
}
