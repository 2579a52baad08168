package main

import (
	"context"
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/rpcclient"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/invoker"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/passthrough-contract/rpc/passthrough"
)

// remoteBlockchain wraps Neo RPC client providing services needed by
// commands.
type remoteBlockchain struct {
	rpc *rpcclient.Client
	inv *invoker.Invoker
}

// newRemoteBlockchain dials Neo RPC server described in cfg.
func newRemoteBlockchain(ctx context.Context, cfg RPCConfig) (*remoteBlockchain, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("missing RPC endpoint")
	}

	c, err := rpcclient.New(ctx, cfg.Endpoint, rpcclient.Options{
		DialTimeout:    cfg.DialTimeout,
		RequestTimeout: cfg.RequestTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("RPC client dial: %w", err)
	}

	return &remoteBlockchain{
		rpc: c,
		inv: invoker.New(c, nil),
	}, nil
}

func (x *remoteBlockchain) close() {
	x.rpc.Close()
}

func (x *remoteBlockchain) passthrough(h util.Uint160) *passthrough.ContractReader {
	return passthrough.NewReader(x.inv, h)
}

// iterateContractStorage iterates over all storage items of the Neo smart
// contract referenced by given address at the latest state root and passes
// them into f. iterateContractStorage breaks on any f's error and returns it.
func (x *remoteBlockchain) iterateContractStorage(contract util.Uint160, f func(key, value []byte) error) error {
	nLatestBlock, err := x.rpc.GetBlockCount()
	if err != nil {
		return fmt.Errorf("get number of the latest block: %w", err)
	}

	stateRoot, err := x.rpc.GetStateRootByHeight(nLatestBlock - 1)
	if err != nil {
		return fmt.Errorf("get state root at penult block #%d: %w", nLatestBlock-1, err)
	}

	var start []byte

	for {
		res, err := x.rpc.FindStates(stateRoot.Root, contract, nil, start, nil)
		if err != nil {
			return fmt.Errorf("get historical storage items of the requested contract at state root '%s': %w", stateRoot.Root, err)
		}

		for i := range res.Results {
			err = f(res.Results[i].Key, res.Results[i].Value)
			if err != nil {
				return err
			}
		}

		if !res.Truncated {
			return nil
		}

		start = res.Results[len(res.Results)-1].Key
	}
}
