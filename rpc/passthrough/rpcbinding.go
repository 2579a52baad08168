// Package passthrough contains RPC wrappers for Passthrough contract.
//
// State-changing methods succeed only when the transaction makes the
// multisig contract call Passthrough, see [Contract.AddInteraction].
package passthrough

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/google/uuid"
	"github.com/nspcc-dev/neo-go/pkg/core/transaction"
	"github.com/nspcc-dev/neo-go/pkg/neorpc/result"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/unwrap"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
)

// Interaction is a contract-specific passthrough.Interaction type used by its methods.
type Interaction struct {
	Target   util.Uint160
	Endpoint string
}

// Transfer is a contract-specific passthrough.Transfer type used by its methods.
type Transfer struct {
	Asset  util.Uint160
	Amount *big.Int
}

// InteractionAddedEvent represents "InteractionAdded" event emitted by the contract.
type InteractionAddedEvent struct {
	Target   util.Uint160
	Endpoint string
}

// InteractionStatusChangedEvent represents "InteractionStatusChanged" event emitted by the contract.
type InteractionStatusChangedEvent struct {
	Target   util.Uint160
	Endpoint string
	Enabled  bool
}

// AllowedAddressesAddedEvent represents "AllowedAddressesAdded" event emitted by the contract.
type AllowedAddressesAddedEvent struct {
	Target    util.Uint160
	Endpoint  string
	Addresses []util.Uint160
}

// AllowedTokenSetEvent represents "AllowedTokenSet" event emitted by the contract.
// Nil Token means payments are forbidden.
type AllowedTokenSetEvent struct {
	Target   util.Uint160
	Endpoint string
	Token    *util.Uint160
}

// Invoker is used by ContractReader to call various safe methods.
type Invoker interface {
	Call(contract util.Uint160, operation string, params ...any) (*result.Invoke, error)
	CallAndExpandIterator(contract util.Uint160, method string, maxItems int, params ...any) (*result.Invoke, error)
	TerminateSession(sessionID uuid.UUID) error
	TraverseIterator(sessionID uuid.UUID, iterator *result.Iterator, num int) ([]stackitem.Item, error)
}

// Actor is used by Contract to call state-changing methods.
type Actor interface {
	Invoker

	MakeCall(contract util.Uint160, method string, params ...any) (*transaction.Transaction, error)
	MakeRun(script []byte) (*transaction.Transaction, error)
	MakeUnsignedCall(contract util.Uint160, method string, attrs []transaction.Attribute, params ...any) (*transaction.Transaction, error)
	MakeUnsignedRun(script []byte, attrs []transaction.Attribute) (*transaction.Transaction, error)
	SendCall(contract util.Uint160, method string, params ...any) (util.Uint256, uint32, error)
	SendRun(script []byte) (util.Uint256, uint32, error)
}

// ContractReader implements safe contract methods.
type ContractReader struct {
	invoker Invoker
	hash    util.Uint160
}

// Contract implements all contract methods.
type Contract struct {
	ContractReader
	actor Actor
	hash  util.Uint160
}

// NewReader creates an instance of ContractReader using provided contract hash and the given Invoker.
func NewReader(invoker Invoker, hash util.Uint160) *ContractReader {
	return &ContractReader{invoker, hash}
}

// New creates an instance of Contract using provided contract hash and the given Actor.
func New(actor Actor, hash util.Uint160) *Contract {
	return &Contract{ContractReader{actor, hash}, actor, hash}
}

// CanExecute invokes `canExecute` method of contract.
func (c *ContractReader) CanExecute(proposer util.Uint160, target util.Uint160, endpoint string, gasAmount *big.Int, transfers []Transfer) (bool, error) {
	return unwrap.Bool(c.invoker.Call(c.hash, "canExecute", proposer, target, endpoint, amountToParam(gasAmount), transfersToParam(transfers)))
}

// GetAllowedUsersForInteraction invokes `getAllowedUsersForInteraction`
// method of contract. Nil slice is returned for the interaction which has
// never been registered, non-nil empty slice means the interaction is public.
func (c *ContractReader) GetAllowedUsersForInteraction(target util.Uint160, endpoint string) ([]util.Uint160, error) {
	item, err := unwrap.Item(c.invoker.Call(c.hash, "getAllowedUsersForInteraction", target, endpoint))
	if err != nil {
		return nil, err
	}
	if _, ok := item.(stackitem.Null); ok {
		return nil, nil
	}
	return itemToHashes(item)
}

// GetAllowedTokenForInteraction invokes `getAllowedTokenForInteraction`
// method of contract. Nil is returned if payments are forbidden or the
// interaction is not registered.
func (c *ContractReader) GetAllowedTokenForInteraction(target util.Uint160, endpoint string) (*util.Uint160, error) {
	item, err := unwrap.Item(c.invoker.Call(c.hash, "getAllowedTokenForInteraction", target, endpoint))
	if err != nil {
		return nil, err
	}
	if _, ok := item.(stackitem.Null); ok {
		return nil, nil
	}
	h, err := itemToHash(item)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

// GetInteractionStatus invokes `getInteractionStatus` method of contract.
func (c *ContractReader) GetInteractionStatus(target util.Uint160, endpoint string) (bool, error) {
	return unwrap.Bool(c.invoker.Call(c.hash, "getInteractionStatus", target, endpoint))
}

// GetMultisigAddress invokes `getMultisigAddress` method of contract.
func (c *ContractReader) GetMultisigAddress() (util.Uint160, error) {
	return unwrap.Uint160(c.invoker.Call(c.hash, "getMultisigAddress"))
}

// Interactions invokes `interactions` method of contract.
func (c *ContractReader) Interactions() (uuid.UUID, result.Iterator, error) {
	return unwrap.SessionIterator(c.invoker.Call(c.hash, "interactions"))
}

// InteractionsExpanded is similar to Interactions (uses the same contract
// method), but can be useful if the server used doesn't support sessions and
// doesn't expand iterators. It creates a script that will get the specified
// number of result items from the iterator right in the VM and return them to
// you. It's only limited by VM stack and GAS available for RPC invocations.
func (c *ContractReader) InteractionsExpanded(_numOfIteratorItems int) ([]*Interaction, error) {
	items, err := unwrap.Array(c.invoker.CallAndExpandIterator(c.hash, "interactions", _numOfIteratorItems))
	if err != nil {
		return nil, err
	}
	return itemsToInteractions(items)
}

// TraverseInteractions reads up to num interactions from the iterator
// returned by Interactions.
func (c *ContractReader) TraverseInteractions(sessionID uuid.UUID, iter *result.Iterator, num int) ([]*Interaction, error) {
	items, err := c.invoker.TraverseIterator(sessionID, iter, num)
	if err != nil {
		return nil, err
	}
	return itemsToInteractions(items)
}

// Version invokes `version` method of contract.
func (c *ContractReader) Version() (*big.Int, error) {
	return unwrap.BigInt(c.invoker.Call(c.hash, "version"))
}

// AddInteraction creates a transaction invoking `addInteraction` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) AddInteraction(target util.Uint160, endpoint string, token *util.Uint160, allowedAddresses []util.Uint160) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "addInteraction", target, endpoint, tokenToParam(token), hashesToParam(allowedAddresses))
}

// AddInteractionTransaction creates a transaction invoking `addInteraction` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) AddInteractionTransaction(target util.Uint160, endpoint string, token *util.Uint160, allowedAddresses []util.Uint160) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "addInteraction", target, endpoint, tokenToParam(token), hashesToParam(allowedAddresses))
}

// AddInteractionUnsigned creates a transaction invoking `addInteraction` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) AddInteractionUnsigned(target util.Uint160, endpoint string, token *util.Uint160, allowedAddresses []util.Uint160) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "addInteraction", nil, target, endpoint, tokenToParam(token), hashesToParam(allowedAddresses))
}

// DisableInteraction creates a transaction invoking `disableInteraction` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) DisableInteraction(target util.Uint160, endpoint string) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "disableInteraction", target, endpoint)
}

// DisableInteractionTransaction creates a transaction invoking `disableInteraction` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) DisableInteractionTransaction(target util.Uint160, endpoint string) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "disableInteraction", target, endpoint)
}

// DisableInteractionUnsigned creates a transaction invoking `disableInteraction` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) DisableInteractionUnsigned(target util.Uint160, endpoint string) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "disableInteraction", nil, target, endpoint)
}

// EnableInteraction creates a transaction invoking `enableInteraction` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) EnableInteraction(target util.Uint160, endpoint string) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "enableInteraction", target, endpoint)
}

// EnableInteractionTransaction creates a transaction invoking `enableInteraction` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) EnableInteractionTransaction(target util.Uint160, endpoint string) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "enableInteraction", target, endpoint)
}

// EnableInteractionUnsigned creates a transaction invoking `enableInteraction` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) EnableInteractionUnsigned(target util.Uint160, endpoint string) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "enableInteraction", nil, target, endpoint)
}

// AddAllowedAddresses creates a transaction invoking `addAllowedAddresses` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) AddAllowedAddresses(target util.Uint160, endpoint string, allowedAddresses []util.Uint160) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "addAllowedAddresses", target, endpoint, hashesToParam(allowedAddresses))
}

// AddAllowedAddressesTransaction creates a transaction invoking `addAllowedAddresses` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) AddAllowedAddressesTransaction(target util.Uint160, endpoint string, allowedAddresses []util.Uint160) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "addAllowedAddresses", target, endpoint, hashesToParam(allowedAddresses))
}

// AddAllowedAddressesUnsigned creates a transaction invoking `addAllowedAddresses` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) AddAllowedAddressesUnsigned(target util.Uint160, endpoint string, allowedAddresses []util.Uint160) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "addAllowedAddresses", nil, target, endpoint, hashesToParam(allowedAddresses))
}

// SetAllowedTokenForInteraction creates a transaction invoking `setAllowedTokenForInteraction` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) SetAllowedTokenForInteraction(target util.Uint160, endpoint string, token *util.Uint160) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "setAllowedTokenForInteraction", target, endpoint, tokenToParam(token))
}

// SetAllowedTokenForInteractionTransaction creates a transaction invoking `setAllowedTokenForInteraction` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) SetAllowedTokenForInteractionTransaction(target util.Uint160, endpoint string, token *util.Uint160) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "setAllowedTokenForInteraction", target, endpoint, tokenToParam(token))
}

// SetAllowedTokenForInteractionUnsigned creates a transaction invoking `setAllowedTokenForInteraction` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) SetAllowedTokenForInteractionUnsigned(target util.Uint160, endpoint string, token *util.Uint160) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "setAllowedTokenForInteraction", nil, target, endpoint, tokenToParam(token))
}

// Update creates a transaction invoking `update` method of the contract.
// This transaction is signed and immediately sent to the network.
// The values returned are its hash, ValidUntilBlock value and error if any.
func (c *Contract) Update(script []byte, manifest []byte, data any) (util.Uint256, uint32, error) {
	return c.actor.SendCall(c.hash, "update", script, manifest, data)
}

// UpdateTransaction creates a transaction invoking `update` method of the contract.
// This transaction is signed, but not sent to the network, instead it's
// returned to the caller.
func (c *Contract) UpdateTransaction(script []byte, manifest []byte, data any) (*transaction.Transaction, error) {
	return c.actor.MakeCall(c.hash, "update", script, manifest, data)
}

// UpdateUnsigned creates a transaction invoking `update` method of the contract.
// This transaction is not signed, it's simply returned to the caller.
// Any fields of it that do not affect fees can be changed (ValidUntilBlock,
// Nonce), fee values (NetworkFee, SystemFee) can be increased as well.
func (c *Contract) UpdateUnsigned(script []byte, manifest []byte, data any) (*transaction.Transaction, error) {
	return c.actor.MakeUnsignedCall(c.hash, "update", nil, script, manifest, data)
}

func tokenToParam(token *util.Uint160) any {
	if token == nil {
		return nil
	}
	return *token
}

func hashesToParam(hs []util.Uint160) []any {
	res := make([]any, len(hs))
	for i := range hs {
		res[i] = hs[i]
	}
	return res
}

func transfersToParam(ts []Transfer) []any {
	res := make([]any, len(ts))
	for i := range ts {
		res[i] = []any{ts[i].Asset, amountToParam(ts[i].Amount)}
	}
	return res
}

func amountToParam(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}

func itemToHash(item stackitem.Item) (util.Uint160, error) {
	b, err := item.TryBytes()
	if err != nil {
		return util.Uint160{}, err
	}
	return util.Uint160DecodeBytesBE(b)
}

func itemToHashes(item stackitem.Item) ([]util.Uint160, error) {
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return nil, errors.New("not an array")
	}
	res := make([]util.Uint160, len(arr))
	for i := range arr {
		var err error
		res[i], err = itemToHash(arr[i])
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
	}
	return res, nil
}

func itemsToInteractions(items []stackitem.Item) ([]*Interaction, error) {
	res := make([]*Interaction, len(items))
	for i := range items {
		res[i] = new(Interaction)
		if err := res[i].FromStackItem(items[i]); err != nil {
			return nil, fmt.Errorf("interaction %d: %w", i, err)
		}
	}
	return res, nil
}

// FromStackItem retrieves fields of Interaction from the given
// [stackitem.Item] or returns an error if it's not possible to do to so.
func (res *Interaction) FromStackItem(item stackitem.Item) error {
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(arr) != 2 {
		return errors.New("wrong number of structure elements")
	}

	var err error
	res.Target, err = itemToHash(arr[0])
	if err != nil {
		return fmt.Errorf("field Target: %w", err)
	}

	b, err := arr[1].TryBytes()
	if err != nil {
		return fmt.Errorf("field Endpoint: %w", err)
	}
	res.Endpoint = string(b)

	return nil
}

// eventsFromApplicationLog decodes all events with the given name emitted
// by any contract in the log.
func eventsFromApplicationLog[T any, PT interface {
	*T
	FromStackItem(*stackitem.Array) error
}](log *result.ApplicationLog, name string) ([]*T, error) {
	if log == nil {
		return nil, errors.New("nil application log")
	}

	var res []*T
	for i, ex := range log.Executions {
		for j, e := range ex.Events {
			if e.Name != name {
				continue
			}
			event := PT(new(T))
			err := event.FromStackItem(e.Item)
			if err != nil {
				return nil, fmt.Errorf("failed to deserialize %s event from stackitem (execution #%d, event #%d): %w", name, i, j, err)
			}
			res = append(res, (*T)(event))
		}
	}

	return res, nil
}

// eventFields checks that notification has n fields and decodes the common
// target and endpoint ones.
func eventFields(item *stackitem.Array, n int) ([]stackitem.Item, util.Uint160, string, error) {
	if item == nil {
		return nil, util.Uint160{}, "", errors.New("nil item")
	}
	arr, ok := item.Value().([]stackitem.Item)
	if !ok {
		return nil, util.Uint160{}, "", errors.New("not an array")
	}
	if len(arr) != n {
		return nil, util.Uint160{}, "", errors.New("wrong number of structure elements")
	}

	target, err := itemToHash(arr[0])
	if err != nil {
		return nil, util.Uint160{}, "", fmt.Errorf("field Target: %w", err)
	}

	b, err := arr[1].TryBytes()
	if err != nil {
		return nil, util.Uint160{}, "", fmt.Errorf("field Endpoint: %w", err)
	}

	return arr, target, string(b), nil
}

// InteractionAddedEventsFromApplicationLog retrieves a set of all emitted events
// with "InteractionAdded" name from the provided [result.ApplicationLog].
func InteractionAddedEventsFromApplicationLog(log *result.ApplicationLog) ([]*InteractionAddedEvent, error) {
	return eventsFromApplicationLog[InteractionAddedEvent](log, "InteractionAdded")
}

// FromStackItem converts provided [stackitem.Array] to InteractionAddedEvent or
// returns an error if it's not possible to do to so.
func (e *InteractionAddedEvent) FromStackItem(item *stackitem.Array) error {
	var err error
	_, e.Target, e.Endpoint, err = eventFields(item, 2)
	return err
}

// InteractionStatusChangedEventsFromApplicationLog retrieves a set of all emitted events
// with "InteractionStatusChanged" name from the provided [result.ApplicationLog].
func InteractionStatusChangedEventsFromApplicationLog(log *result.ApplicationLog) ([]*InteractionStatusChangedEvent, error) {
	return eventsFromApplicationLog[InteractionStatusChangedEvent](log, "InteractionStatusChanged")
}

// FromStackItem converts provided [stackitem.Array] to InteractionStatusChangedEvent or
// returns an error if it's not possible to do to so.
func (e *InteractionStatusChangedEvent) FromStackItem(item *stackitem.Array) error {
	arr, target, endpoint, err := eventFields(item, 3)
	if err != nil {
		return err
	}

	e.Target, e.Endpoint = target, endpoint
	e.Enabled, err = arr[2].TryBool()
	if err != nil {
		return fmt.Errorf("field Enabled: %w", err)
	}

	return nil
}

// AllowedAddressesAddedEventsFromApplicationLog retrieves a set of all emitted events
// with "AllowedAddressesAdded" name from the provided [result.ApplicationLog].
func AllowedAddressesAddedEventsFromApplicationLog(log *result.ApplicationLog) ([]*AllowedAddressesAddedEvent, error) {
	return eventsFromApplicationLog[AllowedAddressesAddedEvent](log, "AllowedAddressesAdded")
}

// FromStackItem converts provided [stackitem.Array] to AllowedAddressesAddedEvent or
// returns an error if it's not possible to do to so.
func (e *AllowedAddressesAddedEvent) FromStackItem(item *stackitem.Array) error {
	arr, target, endpoint, err := eventFields(item, 3)
	if err != nil {
		return err
	}

	e.Target, e.Endpoint = target, endpoint
	if _, ok := arr[2].(stackitem.Null); ok {
		return nil
	}
	e.Addresses, err = itemToHashes(arr[2])
	if err != nil {
		return fmt.Errorf("field Addresses: %w", err)
	}

	return nil
}

// AllowedTokenSetEventsFromApplicationLog retrieves a set of all emitted events
// with "AllowedTokenSet" name from the provided [result.ApplicationLog].
func AllowedTokenSetEventsFromApplicationLog(log *result.ApplicationLog) ([]*AllowedTokenSetEvent, error) {
	return eventsFromApplicationLog[AllowedTokenSetEvent](log, "AllowedTokenSet")
}

// FromStackItem converts provided [stackitem.Array] to AllowedTokenSetEvent or
// returns an error if it's not possible to do to so.
func (e *AllowedTokenSetEvent) FromStackItem(item *stackitem.Array) error {
	arr, target, endpoint, err := eventFields(item, 3)
	if err != nil {
		return err
	}

	e.Target, e.Endpoint, e.Token = target, endpoint, nil
	if _, ok := arr[2].(stackitem.Null); ok {
		return nil
	}

	token, err := itemToHash(arr[2])
	if err != nil {
		return fmt.Errorf("field Token: %w", err)
	}
	e.Token = &token

	return nil
}
