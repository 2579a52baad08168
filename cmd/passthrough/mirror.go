package main

import (
	"context"
	"fmt"
	"slices"

	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/urfave/cli"
	"go.uber.org/zap"
)

func mirrorCommand() cli.Command {
	return cli.Command{
		Name:   "mirror",
		Usage:  "copy Passthrough contract storage into the local database",
		Action: mirrorAction,
	}
}

func mirrorAction(c *cli.Context) error {
	e, err := newEnv(c)
	if err != nil {
		return err
	}
	defer func() { _ = e.log.Sync() }()

	h, err := e.cfg.ContractHash()
	if err != nil {
		return err
	}

	b, err := newRemoteBlockchain(context.Background(), e.cfg.RPC)
	if err != nil {
		return fmt.Errorf("init remote blockchain: %w", err)
	}
	defer b.close()

	st, err := storage.NewStore(e.cfg.Storage)
	if err != nil {
		return fmt.Errorf("open local storage: %w", err)
	}
	defer func() { _ = st.Close() }()

	n, err := mirrorStorage(st, func(f func(k, v []byte) error) error {
		return b.iterateContractStorage(h, f)
	})
	if err != nil {
		return fmt.Errorf("mirror contract storage: %w", err)
	}

	e.log.Info("contract storage mirrored",
		zap.Stringer("contract", h),
		zap.Int("items", n))

	return nil
}

// mirrorStorage replaces contents of st with the items produced by iterate.
// Nothing is changed if iterate fails.
func mirrorStorage(st storage.Store, iterate func(f func(k, v []byte) error) error) (int, error) {
	cache := storage.NewMemCachedStore(st)

	var stale [][]byte
	seekAll(cache, func(k, _ []byte) bool {
		stale = append(stale, slices.Clone(k))
		return true
	})
	for i := range stale {
		cache.Delete(stale[i])
	}

	var n int
	err := iterate(func(k, v []byte) error {
		cache.Put(slices.Clone(k), slices.Clone(v))
		n++
		return nil
	})
	if err != nil {
		return 0, err
	}

	if _, err = cache.Persist(); err != nil {
		return 0, fmt.Errorf("persist items: %w", err)
	}

	return n, nil
}

// seekAll iterates over every item of st. Stores can't be sought with an
// empty prefix, so each one-byte prefix is visited in turn.
func seekAll(st storage.Store, f func(k, v []byte) bool) {
	for b := 0; b <= 0xff; b++ {
		var stop bool
		st.Seek(storage.SeekRange{Prefix: []byte{byte(b)}}, func(k, v []byte) bool {
			stop = !f(k, v)
			return !stop
		})
		if stop {
			return
		}
	}
}
