package monoracle

import (
	"context"
	"log/slog"
	"strings"
	"time"

	apperrors "monoracle-go/internal/errors"
	"monoracle-go/internal/web3/ethereum"
	"monoracle-go/pkg/logger"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DefaultRPCURL is the endpoint used when no RPC URL is configured.
const DefaultRPCURL = "https://testnet-rpc.monad.xyz/"

// ContractCaller is a read-only connection to a node.
type ContractCaller interface {
	bind.ContractCaller
	Close()
}

// Dialer opens a new connection to rpcURL.
type Dialer func(ctx context.Context, rpcURL string) (ContractCaller, error)

// DialEthereum is the default Dialer. It connects with go-ethereum's rpc
// package, which supports http(s), ws(s) and IPC endpoints.
func DialEthereum(ctx context.Context, rpcURL string) (ContractCaller, error) {
	client, err := ethereum.Dial(ctx, rpcURL)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithRPCURL sets the endpoint. An empty URL keeps DefaultRPCURL.
func WithRPCURL(rpcURL string) Option {
	return func(f *Fetcher) {
		if rpcURL = strings.TrimSpace(rpcURL); rpcURL != "" {
			f.rpcURL = rpcURL
		}
	}
}

// WithDialer replaces the function used to open connections.
func WithDialer(dial Dialer) Option {
	return func(f *Fetcher) {
		if dial != nil {
			f.dial = dial
		}
	}
}

// WithLogger sets the logger used for fetch diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// WithCallTimeout bounds each fetch. Zero disables the deadline and leaves
// timing out to the transport.
func WithCallTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// Fetcher reads Monoracle records. It holds configuration only; every Fetch
// dials its own connection and closes it before returning, so a Fetcher is
// safe for concurrent use.
type Fetcher struct {
	rpcURL  string
	dial    Dialer
	logger  *slog.Logger
	timeout time.Duration
}

// NewFetcher returns a Fetcher targeting DefaultRPCURL unless overridden.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		rpcURL: DefaultRPCURL,
		dial:   DialEthereum,
		logger: logger.Discard(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(f)
		}
	}
	return f
}

// RPCURL returns the endpoint the fetcher dials.
func (f *Fetcher) RPCURL() string {
	return f.rpcURL
}

// Fetch reads the record of the contract at contractAddress using a one-off
// Fetcher built from opts.
func Fetch(ctx context.Context, contractAddress string, opts ...Option) (*Record, error) {
	return NewFetcher(opts...).Fetch(ctx, contractAddress)
}

// Fetch reads all accessors of the contract at contractAddress concurrently.
// If any of them fails no record is returned and the error matches either
// ErrConnection or ErrContractCall.
func (f *Fetcher) Fetch(ctx context.Context, contractAddress string) (*Record, error) {
	requestID := RequestIDFrom(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	log := f.logger.With(
		slog.String("request_id", requestID),
		slog.String("address", contractAddress),
		slog.String("rpc_url", f.rpcURL),
	)

	start := time.Now()
	log.Debug("fetching monoracle record")

	rec, err := f.fetch(ctx, contractAddress)
	if err != nil {
		log.Warn("fetch monoracle record failed",
			slog.String("code", string(apperrors.CodeOf(err))),
			slog.String("severity", string(apperrors.SeverityOf(err))),
			slog.Any("error", err),
		)
		return nil, err
	}

	log.Debug("fetched monoracle record",
		slog.Duration("duration", time.Since(start)),
		slog.Uint64("last_update_time", rec.LastUpdateTime),
	)
	return rec, nil
}

func (f *Fetcher) fetch(ctx context.Context, contractAddress string) (*Record, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	caller, err := f.dial(ctx, f.rpcURL)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeConnectionFailure, err, "dial rpc endpoint",
			apperrors.WithMetadata("rpc_url", f.rpcURL))
	}
	defer caller.Close()

	contract, err := bindMonoracle(contractAddress, caller)
	if err != nil {
		return nil, err
	}

	var (
		creator        common.Address
		data           string
		apiURL         string
		apiHeaders     string
		apiParameters  string
		lastUpdateTime uint64
	)

	// First failure cancels the remaining reads; no partial record escapes.
	g, gctx := errgroup.WithContext(ctx)
	read := func(method string, fn func(context.Context) error) {
		g.Go(func() error {
			if err := fn(gctx); err != nil {
				return wrapCallError(err, contractAddress, f.rpcURL, method)
			}
			return nil
		})
	}
	read(MethodCreatorWallet, func(ctx context.Context) error {
		return call(ctx, contract, MethodCreatorWallet, &creator)
	})
	read(MethodGetData, func(ctx context.Context) error {
		return call(ctx, contract, MethodGetData, &data)
	})
	read(MethodAPIURL, func(ctx context.Context) error {
		return call(ctx, contract, MethodAPIURL, &apiURL)
	})
	read(MethodAPIHeaders, func(ctx context.Context) error {
		return call(ctx, contract, MethodAPIHeaders, &apiHeaders)
	})
	read(MethodAPIParameters, func(ctx context.Context) error {
		return call(ctx, contract, MethodAPIParameters, &apiParameters)
	})
	read(MethodLastUpdateTime, func(ctx context.Context) error {
		return call(ctx, contract, MethodLastUpdateTime, &lastUpdateTime)
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	decoded := decodePayload(data)
	return &Record{
		CreatorWallet:  creator.Hex(),
		Data:           decoded.value,
		APIURL:         apiURL,
		APIHeaders:     apiHeaders,
		APIParameters:  apiParameters,
		LastUpdateTime: lastUpdateTime,
		decoded:        decoded.parsed,
	}, nil
}

type requestIDKey struct{}

// WithRequestID attaches an identifier that Fetch logs instead of generating
// one.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom returns the identifier set by WithRequestID.
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
