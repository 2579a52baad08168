package main

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/passthrough-contract/interactions"
	"github.com/nspcc-dev/passthrough-contract/rpc/passthrough"
	"github.com/urfave/cli"
)

func canExecuteCommand() cli.Command {
	return cli.Command{
		Name:      "can-execute",
		Usage:     "check whether proposer may execute the interaction",
		UsageText: "passthrough can-execute --proposer <addr> --target <addr> --endpoint <method> [--gas <amount>] [--transfer <asset:amount>...] [--online]",
		Flags: []cli.Flag{
			cli.StringFlag{Name: "proposer", Usage: "proposer address or script hash"},
			cli.StringFlag{Name: "target", Usage: "target contract address or script hash"},
			cli.StringFlag{Name: "endpoint", Usage: "target contract method"},
			cli.StringFlag{Name: "gas", Value: "0", Usage: "GAS amount attached to the call"},
			cli.StringSliceFlag{Name: "transfer", Usage: "token transfer attached to the call as asset:amount"},
			cli.BoolFlag{Name: "online", Usage: "ask the deployed contract instead of the local mirror"},
		},
		Action: canExecuteAction,
	}
}

func canExecuteAction(c *cli.Context) error {
	proposer, err := parseHash(c.String("proposer"))
	if err != nil {
		return fmt.Errorf("proposer: %w", err)
	}

	target, err := parseHash(c.String("target"))
	if err != nil {
		return fmt.Errorf("target: %w", err)
	}

	endpoint := c.String("endpoint")
	if endpoint == "" {
		return errors.New("missing endpoint")
	}

	gasAmount, ok := new(big.Int).SetString(c.String("gas"), 10)
	if !ok || gasAmount.Sign() < 0 {
		return fmt.Errorf("invalid GAS amount %q", c.String("gas"))
	}

	transfers, err := parseTransfers(c.StringSlice("transfer"))
	if err != nil {
		return err
	}

	e, err := newEnv(c)
	if err != nil {
		return err
	}
	defer func() { _ = e.log.Sync() }()

	var allowed bool

	if c.Bool("online") {
		h, err := e.cfg.ContractHash()
		if err != nil {
			return err
		}

		b, err := newRemoteBlockchain(context.Background(), e.cfg.RPC)
		if err != nil {
			return fmt.Errorf("init remote blockchain: %w", err)
		}
		defer b.close()

		ts := make([]passthrough.Transfer, len(transfers))
		for i := range transfers {
			ts[i] = passthrough.Transfer{Asset: transfers[i].Asset, Amount: transfers[i].Amount}
		}

		allowed, err = b.passthrough(h).CanExecute(proposer, target, endpoint, gasAmount, ts)
		if err != nil {
			return fmt.Errorf("call contract: %w", err)
		}
	} else {
		st, err := storage.NewStore(e.cfg.Storage)
		if err != nil {
			return fmt.Errorf("open local storage: %w", err)
		}
		defer func() { _ = st.Close() }()

		eng := interactions.New(interactions.Prm{
			Logger: e.log,
			Store:  st,
		})

		allowed = eng.CanExecute(proposer, target, endpoint, gasAmount, transfers)
	}

	if allowed {
		fmt.Fprintln(c.App.Writer, "allowed")
	} else {
		fmt.Fprintln(c.App.Writer, "denied")
	}

	return nil
}

// parseTransfers decodes asset:amount pairs.
func parseTransfers(ss []string) ([]interactions.Transfer, error) {
	res := make([]interactions.Transfer, 0, len(ss))
	for _, s := range ss {
		asset, amount, ok := strings.Cut(s, ":")
		if !ok {
			return nil, fmt.Errorf("invalid transfer %q: expected asset:amount", s)
		}

		h, err := parseHash(asset)
		if err != nil {
			return nil, fmt.Errorf("invalid transfer %q: %w", s, err)
		}

		v, ok := new(big.Int).SetString(amount, 10)
		if !ok || v.Sign() <= 0 {
			return nil, fmt.Errorf("invalid transfer %q: amount must be a positive integer", s)
		}

		res = append(res, interactions.Transfer{Asset: h, Amount: v})
	}
	return res, nil
}
