package monoracle

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	apperrors "monoracle-go/internal/errors"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
)

// Accessor method names exposed by every Monoracle contract.
const (
	MethodCreatorWallet  = "creatorWallet"
	MethodGetData        = "getData"
	MethodAPIURL         = "apiUrl"
	MethodAPIHeaders     = "apiHeaders"
	MethodAPIParameters  = "apiParameters"
	MethodLastUpdateTime = "lastUpdateTime"
)

// ABIJSON is the contract interface the fetcher binds to.
//
//go:embed monoracle.abi.json
var ABIJSON string

var monoracleABI = mustParseABI(ABIJSON)

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(fmt.Sprintf("monoracle: invalid embedded ABI: %v", err))
	}
	return parsed
}

// bindMonoracle binds the read-only Monoracle interface to address. The bound
// contract has no transactor and no filterer.
func bindMonoracle(address string, caller bind.ContractCaller) (*bind.BoundContract, error) {
	if !common.IsHexAddress(address) {
		return nil, apperrors.New(apperrors.CodeContractCall,
			fmt.Sprintf("invalid contract address %q", address),
			apperrors.WithMetadata("address", address))
	}
	return bind.NewBoundContract(common.HexToAddress(address), monoracleABI, caller, nil, nil), nil
}

// call invokes a zero-argument accessor that returns a single value of type T.
func call[T any](ctx context.Context, contract *bind.BoundContract, method string, dst *T) error {
	var out []any
	if err := contract.Call(&bind.CallOpts{Context: ctx}, &out, method); err != nil {
		return err
	}
	if len(out) != 1 {
		return fmt.Errorf("%s returned %d values, want 1", method, len(out))
	}
	value, ok := out[0].(T)
	if !ok {
		return fmt.Errorf("%s returned %T, want %T", method, out[0], *dst)
	}
	*dst = value
	return nil
}
