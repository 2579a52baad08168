/*
Package interactions evaluates and manages interaction permissions stored in
the Passthrough contract layout outside of the chain.

Engine works over any neo-go key-value store: a mirror of the contract
storage, a local BoltDB/LevelDB database or memory. Each mutation runs in
its own storage.MemCachedStore and is persisted only if it succeeds, so a
failed call leaves the store intact.
*/
package interactions

import (
	"errors"
	"fmt"
	"sync"

	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/encoding/address"
	"github.com/nspcc-dev/neo-go/pkg/util"
	cst "github.com/nspcc-dev/passthrough-contract/contracts/passthrough/passthroughconst"
	"go.uber.org/zap"
)

// Prm groups Engine parameters.
type Prm struct {
	// Logger, optional. Nop logger is used if not set.
	Logger *zap.Logger

	// Store keeping contract storage. Required.
	Store storage.Store

	// Authorizer of mutations, optional. By default only the authority
	// saved by Initialize is allowed to change permissions.
	Authorizer Authorizer

	// Contracts tells deployed contracts apart, optional. NonZero is used
	// if not set.
	Contracts ContractChecker

	// Assets validates token identifiers, optional. NonZero is used if not
	// set.
	Assets AssetValidator
}

// Engine manages interaction permissions and answers execution requests.
type Engine struct {
	log        *zap.Logger
	store      storage.Store
	authorizer Authorizer
	contracts  ContractChecker
	assets     AssetValidator

	mtx sync.Mutex
}

// txn is a single Engine call over the cached storage view.
type txn struct {
	st        *storage.MemCachedStore
	addresses AddressTable
	registry  Registry
	perms     Permissions
}

// New creates Engine from the parameters. Panics if Store is missing.
func New(prm Prm) *Engine {
	if prm.Store == nil {
		panic("interactions: missing store")
	}

	e := &Engine{
		log:        prm.Logger,
		store:      prm.Store,
		authorizer: prm.Authorizer,
		contracts:  prm.Contracts,
		assets:     prm.Assets,
	}
	if e.log == nil {
		e.log = zap.NewNop()
	}
	if e.contracts == nil {
		e.contracts = NonZero
	}
	if e.assets == nil {
		e.assets = NonZero
	}
	return e
}

func (e *Engine) begin() txn {
	st := storage.NewMemCachedStore(e.store)
	return txn{
		st:        st,
		addresses: NewAddressTable(st),
		registry:  NewRegistry(st),
		perms:     NewPermissions(st),
	}
}

// update runs f in a new transaction after the authorization check and
// persists its changes if f succeeds.
func (e *Engine) update(caller util.Uint160, f func(tx txn) error) error {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	tx := e.begin()

	if !e.isAuthorized(tx, caller) {
		return fmt.Errorf("%w: %s", ErrUnauthorized, address.Uint160ToString(caller))
	}

	if err := f(tx); err != nil {
		return err
	}

	if _, err := tx.st.Persist(); err != nil {
		return fmt.Errorf("persist changes: %w", err)
	}
	return nil
}

func (e *Engine) isAuthorized(tx txn, caller util.Uint160) bool {
	if e.authorizer != nil {
		return e.authorizer.IsAuthorized(caller)
	}

	authority, ok, err := tx.authority()
	if err != nil {
		e.log.Error("failed to read authority", zap.Error(err))
		return false
	}
	return ok && authority.Equals(caller)
}

func (tx txn) authority() (util.Uint160, bool, error) {
	v, err := get(tx.st, []byte(cst.MultisigKey))
	if err != nil {
		return util.Uint160{}, false, fmt.Errorf("read authority: %w", err)
	}
	if v == nil {
		return util.Uint160{}, false, nil
	}
	h, err := util.Uint160DecodeBytesBE(v)
	if err != nil {
		return util.Uint160{}, false, fmt.Errorf("invalid authority: %w", err)
	}
	return h, true, nil
}

// Initialize saves the authority allowed to change permissions. The
// authority must be a deployed contract. It can be set only once.
func (e *Engine) Initialize(authority util.Uint160) error {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	if authority.Equals(util.Uint160{}) || !e.contracts.IsContract(authority) {
		return fmt.Errorf("%w: %s", ErrInvalidTargetAddress, address.Uint160ToString(authority))
	}

	tx := e.begin()

	_, ok, err := tx.authority()
	if err != nil {
		return err
	}
	if ok {
		return ErrAlreadyInitialized
	}

	tx.st.Put([]byte(cst.MultisigKey), authority.BytesBE())

	if _, err = tx.st.Persist(); err != nil {
		return fmt.Errorf("persist authority: %w", err)
	}

	e.log.Info("authority set", zap.String("address", address.Uint160ToString(authority)))

	return nil
}

// Authority returns the saved authority, false if Initialize has not been
// called.
func (e *Engine) Authority() (util.Uint160, bool) {
	h, ok, err := e.begin().authority()
	if err != nil {
		e.log.Warn("failed to read authority", zap.Error(err))
		return util.Uint160{}, false
	}
	return h, ok
}

// AddInteraction registers endpoint of the target contract. The interaction
// is enabled, callers are its whitelist (empty list makes it public), asset
// is the only payment asset allowed (nil forbids payments).
func (e *Engine) AddInteraction(caller, target util.Uint160, endpoint string, asset *util.Uint160, callers []util.Uint160) error {
	return e.update(caller, func(tx txn) error {
		if target.Equals(util.Uint160{}) || !e.contracts.IsContract(target) {
			return fmt.Errorf("%w: %s", ErrInvalidTargetAddress, address.Uint160ToString(target))
		}

		id, err := tx.addresses.Lookup(target)
		if err != nil {
			return err
		}
		if id != NullAddressID {
			registered, err := tx.registry.Contains(Key{ID: id, Endpoint: endpoint})
			if err != nil {
				return err
			}
			if registered {
				return fmt.Errorf("%w: %s", ErrAlreadyRegistered, describe(target, endpoint))
			}
		}

		if asset != nil && !e.assets.IsValidAsset(*asset) {
			return fmt.Errorf("%w: %s", ErrInvalidAsset, asset.StringLE())
		}

		id, err = tx.addresses.InternOrGet(target)
		if err != nil {
			return fmt.Errorf("intern target: %w", err)
		}

		k := Key{ID: id, Endpoint: endpoint}

		tx.perms.setAllowedCallers(k, callers)
		if err = tx.perms.SetAllowedAsset(k, asset, e.assets); err != nil {
			return err
		}
		tx.perms.SetStatus(k, Enabled)

		if err = tx.registry.Insert(k, Interaction{Target: target, Endpoint: endpoint}); err != nil {
			return err
		}

		e.log.Debug("interaction added",
			zap.Stringer("target", target),
			zap.String("endpoint", endpoint),
			zap.Int("callers", len(callers)))

		return nil
	})
}

// DisableInteraction forbids execution of the registered interaction.
func (e *Engine) DisableInteraction(caller, target util.Uint160, endpoint string) error {
	return e.setStatus(caller, target, endpoint, Disabled)
}

// EnableInteraction allows execution of the registered interaction.
func (e *Engine) EnableInteraction(caller, target util.Uint160, endpoint string) error {
	return e.setStatus(caller, target, endpoint, Enabled)
}

func (e *Engine) setStatus(caller, target util.Uint160, endpoint string, s Status) error {
	return e.update(caller, func(tx txn) error {
		k, err := tx.requireRegistered(target, endpoint)
		if err != nil {
			return err
		}

		tx.perms.SetStatus(k, s)

		e.log.Debug("interaction status changed",
			zap.Stringer("target", target),
			zap.String("endpoint", endpoint),
			zap.Stringer("status", s))

		return nil
	})
}

// AddAllowedAddresses extends caller whitelist of the registered
// interaction. Callers are never removed.
func (e *Engine) AddAllowedAddresses(caller, target util.Uint160, endpoint string, callers []util.Uint160) error {
	return e.update(caller, func(tx txn) error {
		k, err := tx.requireRegistered(target, endpoint)
		if err != nil {
			return err
		}

		tx.perms.UnionAllowedCallers(k, callers)

		e.log.Debug("allowed addresses added",
			zap.Stringer("target", target),
			zap.String("endpoint", endpoint),
			zap.Int("count", len(callers)))

		return nil
	})
}

// SetAllowedTokenForInteraction replaces payment asset of the registered
// interaction. Nil asset forbids payments.
func (e *Engine) SetAllowedTokenForInteraction(caller, target util.Uint160, endpoint string, asset *util.Uint160) error {
	return e.update(caller, func(tx txn) error {
		k, err := tx.requireRegistered(target, endpoint)
		if err != nil {
			return err
		}

		if err = tx.perms.SetAllowedAsset(k, asset, e.assets); err != nil {
			return err
		}

		e.log.Debug("allowed token set",
			zap.Stringer("target", target),
			zap.String("endpoint", endpoint),
			zap.Bool("payments", asset != nil))

		return nil
	})
}

func (tx txn) requireRegistered(target util.Uint160, endpoint string) (Key, error) {
	id, err := tx.addresses.LookupRequired(target)
	if err != nil {
		return Key{}, err
	}

	k := Key{ID: id, Endpoint: endpoint}

	registered, err := tx.registry.Contains(k)
	if err != nil {
		return Key{}, err
	}
	if !registered {
		return Key{}, fmt.Errorf("%w: %s", ErrNotRegistered, describe(target, endpoint))
	}
	return k, nil
}

// lookupRegistered is a read-only requireRegistered which logs storage
// failures and reports them as a missing interaction.
func (e *Engine) lookupRegistered(tx txn, target util.Uint160, endpoint string) (Key, bool) {
	k, err := tx.requireRegistered(target, endpoint)
	if err != nil {
		if !errors.Is(err, ErrNotRegistered) {
			e.log.Warn("failed to read interaction",
				zap.Stringer("target", target),
				zap.String("endpoint", endpoint),
				zap.Error(err))
		}
		return Key{}, false
	}
	return k, true
}

// Key returns key of the registered interaction.
func (e *Engine) Key(target util.Uint160, endpoint string) (Key, bool) {
	return e.lookupRegistered(e.begin(), target, endpoint)
}

// AllowedCallers returns caller whitelist of the interaction. False is
// returned if the interaction is not registered, empty whitelist means the
// interaction is public.
func (e *Engine) AllowedCallers(target util.Uint160, endpoint string) ([]util.Uint160, bool) {
	tx := e.begin()

	k, ok := e.lookupRegistered(tx, target, endpoint)
	if !ok {
		return nil, false
	}

	res, err := tx.perms.AllowedCallers(k)
	if err != nil {
		e.log.Warn("failed to read allowed callers", zap.Error(err))
		return nil, false
	}
	if res == nil {
		res = []util.Uint160{}
	}
	return res, true
}

// AllowedToken returns the only payment asset of the interaction. False is
// returned if payments are forbidden or the interaction is not registered.
func (e *Engine) AllowedToken(target util.Uint160, endpoint string) (util.Uint160, bool) {
	tx := e.begin()

	k, ok := e.lookupRegistered(tx, target, endpoint)
	if !ok {
		return util.Uint160{}, false
	}

	asset, err := tx.perms.AllowedAsset(k)
	if err != nil {
		e.log.Warn("failed to read allowed token", zap.Error(err))
		return util.Uint160{}, false
	}
	if asset == nil {
		return util.Uint160{}, false
	}
	return *asset, true
}

// Status returns status of the interaction. Unregistered interactions are
// Disabled.
func (e *Engine) Status(target util.Uint160, endpoint string) Status {
	tx := e.begin()

	k, ok := e.lookupRegistered(tx, target, endpoint)
	if !ok {
		return Disabled
	}

	s, err := tx.perms.Status(k)
	if err != nil {
		e.log.Warn("failed to read interaction status", zap.Error(err))
		return Disabled
	}
	return s
}

// Interactions returns all registered interactions.
func (e *Engine) Interactions() ([]Interaction, error) {
	var res []Interaction
	err := e.begin().registry.Iterate(func(x Interaction) bool {
		res = append(res, x)
		return true
	})
	if err != nil {
		return nil, fmt.Errorf("list interactions: %w", err)
	}
	return res, nil
}

func describe(target util.Uint160, endpoint string) string {
	return address.Uint160ToString(target) + "." + endpoint
}

