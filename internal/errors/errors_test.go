package errors

import (
	stdErrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWrapKeepsCauseAndCode(t *testing.T) {
	cause := stdErrors.New("dial tcp: connection refused")
	err := Wrap(CodeConnectionFailure, cause, "", WithMetadata("rpc_url", "http://127.0.0.1:1"))

	require.ErrorIs(t, err, cause)
	require.Equal(t, CodeConnectionFailure, err.Code())
	require.Equal(t, "rpc endpoint unreachable", err.Message())
	require.Equal(t, "http://127.0.0.1:1", err.Metadata()["rpc_url"])
	require.Contains(t, err.Error(), "[CONNECTION_FAILURE]")
}

func TestIsMatchesByCode(t *testing.T) {
	sentinel := New(CodeContractCall, "")
	wrapped := fmt.Errorf("fetch: %w", Wrap(CodeContractCall, stdErrors.New("execution reverted"), "call getData"))

	require.ErrorIs(t, wrapped, sentinel)
	require.NotErrorIs(t, wrapped, New(CodeConnectionFailure, ""))
	require.Equal(t, CodeContractCall, CodeOf(wrapped))
}

func TestAttributesFallback(t *testing.T) {
	require.Equal(t, AttributesOf(CodeUnknown), AttributesOf(Code("NOT_REGISTERED")))
	require.Equal(t, CodeUnknown, CodeOf(stdErrors.New("plain")))
	require.Equal(t, SeverityCritical, SeverityOf(stdErrors.New("plain")))
}

func TestCodeAttributes(t *testing.T) {
	require.False(t, RetryableError(New(CodeConnectionFailure, "")))
	require.False(t, RetryableError(Wrap(CodeContractCall, stdErrors.New("execution reverted"), "")))
	require.True(t, New(CodePublishFailure, "").Retryable())

	require.Equal(t, SeverityWarning, SeverityOf(New(CodeContractCall, "")))
	require.Equal(t, SeverityInfo, New(CodeInvalidArgument, "").Severity())

	var nilErr *Error
	require.False(t, nilErr.Retryable())
	require.Equal(t, SeverityInfo, nilErr.Severity())
}

func TestMetadataIsCopied(t *testing.T) {
	err := New(CodeInvalidArgument, "", WithMetadata("address", "0x01"))
	md := err.Metadata()
	md["address"] = "changed"
	require.Equal(t, "0x01", err.Metadata()["address"])

	require.Nil(t, New(CodeUnknown, "").Metadata())
}
