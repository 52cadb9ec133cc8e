package ethereum

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"

	gethcore "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	gethrpc "github.com/ethereum/go-ethereum/rpc"
)

// ErrClosed is returned by calls made after Close.
var ErrClosed = errors.New("以太坊客户端已关闭")

// Client is a read-only connection to an EVM compatible node. It exposes only
// the calls needed to read contract state and has no signing or transacting
// surface.
type Client struct {
	rpcClient *gethrpc.Client
	eth       *ethclient.Client
	mu        sync.RWMutex
}

var _ bind.ContractCaller = (*Client)(nil)

// Dial connects to the given RPC endpoint. For HTTP endpoints no network
// traffic happens until the first call.
func Dial(ctx context.Context, rawURL string) (*Client, error) {
	rpcURL := strings.TrimSpace(rawURL)
	if rpcURL == "" {
		return nil, errors.New("未配置以太坊 RPC 地址")
	}

	rpcClient, err := gethrpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, fmt.Errorf("连接以太坊节点失败: %w", err)
	}
	return NewClient(rpcClient), nil
}

// NewClient wraps an existing RPC client, such as an in-process one.
func NewClient(rpcClient *gethrpc.Client) *Client {
	return &Client{rpcClient: rpcClient, eth: ethclient.NewClient(rpcClient)}
}

// CodeAt returns the contract code of the given account.
func (c *Client) CodeAt(ctx context.Context, contract common.Address, blockNumber *big.Int) ([]byte, error) {
	eth, err := c.backend()
	if err != nil {
		return nil, err
	}
	return eth.CodeAt(ctx, contract, blockNumber)
}

// CallContract executes an eth_call against the node.
func (c *Client) CallContract(ctx context.Context, call gethcore.CallMsg, blockNumber *big.Int) ([]byte, error) {
	eth, err := c.backend()
	if err != nil {
		return nil, err
	}
	return eth.CallContract(ctx, call, blockNumber)
}

// Close releases the underlying connection. It is safe to call more than once.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.eth != nil {
		// ethclient.Close closes the wrapped rpc client as well.
		c.eth.Close()
	}
	c.eth = nil
	c.rpcClient = nil
}

func (c *Client) backend() (*ethclient.Client, error) {
	if c == nil {
		return nil, errors.New("未初始化的以太坊客户端")
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.eth == nil {
		return nil, ErrClosed
	}
	return c.eth, nil
}
