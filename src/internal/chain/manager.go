// Package chain connects to Ethereum JSON-RPC endpoints for deployment checks.
package chain

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"

	"github.com/VectorBits/clearsign/src/internal/logger"
)

var ErrNoEndpoints = errors.New("all RPC nodes are unavailable")

// Manager holds one client per endpoint and fails over to the next endpoint
// when a call errors. It satisfies checker.ChainReader.
type Manager struct {
	urls    []string
	clients []*ethclient.Client
	current int
	mutex   sync.RWMutex
}

// SplitURLs parses a comma separated endpoint list.
func SplitURLs(raw string) []string {
	var urls []string
	for _, u := range strings.Split(raw, ",") {
		if u = strings.TrimSpace(u); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}

func dialEthClient(ctx context.Context, rawURL string, timeout time.Duration, proxy string) (*ethclient.Client, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, err
	}

	switch strings.ToLower(u.Scheme) {
	case "http", "https":
		httpClient, err := NewHTTPClient(proxy, timeout)
		if err != nil {
			return nil, err
		}
		rpcClient, err := rpc.DialOptions(ctx, rawURL, rpc.WithHTTPClient(httpClient))
		if err != nil {
			return nil, err
		}
		return ethclient.NewClient(rpcClient), nil
	default:
		return ethclient.DialContext(ctx, rawURL)
	}
}

// Dial connects to every endpoint in rpcURLs (comma separated). Endpoints
// that fail to dial are skipped; at least one must succeed.
func Dial(ctx context.Context, rpcURLs, proxy string, timeout time.Duration) (*Manager, error) {
	urls := SplitURLs(rpcURLs)
	if len(urls) == 0 {
		return nil, fmt.Errorf("at least one RPC URL is required")
	}

	m := &Manager{}
	for _, u := range urls {
		client, err := dialEthClient(ctx, u, timeout, proxy)
		if err != nil {
			logger.Warn("Failed to connect to RPC [%s]: %v", u, err)
			continue
		}
		m.urls = append(m.urls, u)
		m.clients = append(m.clients, client)
	}
	if len(m.clients) == 0 {
		return nil, ErrNoEndpoints
	}
	return m, nil
}

func (m *Manager) CurrentURL() string {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.urls[m.current]
}

func (m *Manager) ChainID(ctx context.Context) (*big.Int, error) {
	var id *big.Int
	err := m.do(ctx, func(c *ethclient.Client) error {
		var err error
		id, err = c.ChainID(ctx)
		return err
	})
	return id, err
}

func (m *Manager) CodeAt(ctx context.Context, account common.Address, blockNumber *big.Int) ([]byte, error) {
	var code []byte
	err := m.do(ctx, func(c *ethclient.Client) error {
		var err error
		code, err = c.CodeAt(ctx, account, blockNumber)
		return err
	})
	return code, err
}

// do runs call against the current endpoint, then each other endpoint in
// turn until one succeeds. The succeeding endpoint becomes current.
func (m *Manager) do(ctx context.Context, call func(*ethclient.Client) error) error {
	m.mutex.RLock()
	start := m.current
	n := len(m.clients)
	m.mutex.RUnlock()

	var lastErr error
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		idx := (start + i) % n
		if lastErr = call(m.clients[idx]); lastErr == nil {
			if idx != start {
				m.mutex.Lock()
				m.current = idx
				m.mutex.Unlock()
				logger.Info("Switched to RPC: %s", m.urls[idx])
			}
			return nil
		}
		logger.Debug("RPC call on %s failed: %v", m.urls[idx], lastErr)
	}
	return fmt.Errorf("%w: %v", ErrNoEndpoints, lastErr)
}

func (m *Manager) Close() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	for _, client := range m.clients {
		client.Close()
	}
}
