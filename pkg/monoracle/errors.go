package monoracle

import (
	"context"
	"errors"
	"net"

	apperrors "monoracle-go/internal/errors"

	gethrpc "github.com/ethereum/go-ethereum/rpc"
)

var (
	// ErrConnection matches, via errors.Is, failures to reach the RPC
	// endpoint: bad URLs, refused or timed out connections and HTTP level
	// errors.
	ErrConnection error = apperrors.New(apperrors.CodeConnectionFailure, "")
	// ErrContractCall matches, via errors.Is, failures reported for an
	// accessor call: reverts, missing contract code, node errors and invalid
	// addresses.
	ErrContractCall error = apperrors.New(apperrors.CodeContractCall, "")
)

func classify(err error) apperrors.Code {
	var (
		httpErr gethrpc.HTTPError
		netErr  net.Error
	)
	switch {
	case errors.As(err, &httpErr),
		errors.As(err, &netErr),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return apperrors.CodeConnectionFailure
	default:
		return apperrors.CodeContractCall
	}
}

func wrapCallError(err error, address, rpcURL, method string) error {
	if _, ok := apperrors.From(err); ok {
		return err
	}
	return apperrors.Wrap(classify(err), err, "call "+method,
		apperrors.WithMetadata("address", address),
		apperrors.WithMetadata("rpc_url", rpcURL),
		apperrors.WithMetadata("method", method),
	)
}
