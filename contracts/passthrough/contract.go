package passthrough

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/convert"
	"github.com/nspcc-dev/neo-go/pkg/interop/iterator"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/crypto"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/gas"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/management"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
	"github.com/nspcc-dev/passthrough-contract/common"
	cst "github.com/nspcc-dev/passthrough-contract/contracts/passthrough/passthroughconst"
)

type (
	// Interaction is a registered method of the target contract.
	Interaction struct {
		Target   interop.Hash160
		Endpoint string
	}

	// Transfer is a token payment attached to the call.
	Transfer struct {
		Asset  interop.Hash160
		Amount int
	}
)

// nolint:deadcode,unused
func _deploy(data any, isUpdate bool) {
	args := data.([]any)

	if isUpdate {
		common.CheckVersion(args[len(args)-1].(int))
		return
	}

	multisig := args[0].(interop.Hash160)
	checkContractAddress(multisig)

	ctx := storage.GetContext()
	storage.Put(ctx, cst.MultisigKey, multisig)

	runtime.Log("passthrough contract initialized")
}

// Update method updates contract source code and manifest. It can be invoked
// only by committee.
func Update(script []byte, manifest []byte, data any) {
	common.CheckCommittee()

	contract.Call(interop.Hash160(management.Hash), "update",
		contract.All, script, manifest, common.AppendVersion(data))
	runtime.Log("passthrough contract updated")
}

// AddInteraction registers endpoint of the target contract. It can be invoked
// only by the multisig contract.
//
// Token is a hash of the only token allowed to be paid along with the call,
// GAS hash also allows plain GAS amounts. Null token forbids any payments.
// Empty allowedAddresses list allows the interaction for everyone.
//
// Target must be a deployed contract. AddInteraction panics if the
// interaction is already registered.
func AddInteraction(target interop.Hash160, endpoint string, token interop.Hash160, allowedAddresses []interop.Hash160) {
	ctx := storage.GetContext()
	checkMultisigCaller(ctx)
	checkContractAddress(target)

	id := addressID(ctx, target)
	if id != cst.NullAddressID && isRegistered(ctx, interactionDigest(id, endpoint)) {
		panic(cst.ErrAlreadyRegistered)
	}

	checkToken(token)

	id = internAddress(ctx, target)
	digest := interactionDigest(id, endpoint)

	addAllowedCallers(ctx, digest, allowedAddresses)
	setToken(ctx, digest, token)
	storage.Put(ctx, statusKey(digest), true)
	common.SetSerialized(ctx, interactionKey(digest), Interaction{
		Target:   target,
		Endpoint: endpoint,
	})

	runtime.Log("added new interaction")
	runtime.Notify("InteractionAdded", target, endpoint)
}

// DisableInteraction forbids execution of the registered interaction. It can
// be invoked only by the multisig contract.
func DisableInteraction(target interop.Hash160, endpoint string) {
	setStatus(target, endpoint, false)
}

// EnableInteraction allows execution of the registered interaction back. It
// can be invoked only by the multisig contract.
func EnableInteraction(target interop.Hash160, endpoint string) {
	setStatus(target, endpoint, true)
}

func setStatus(target interop.Hash160, endpoint string, enabled bool) {
	ctx := storage.GetContext()
	checkMultisigCaller(ctx)

	digest := requireRegistered(ctx, target, endpoint)
	storage.Put(ctx, statusKey(digest), enabled)

	runtime.Notify("InteractionStatusChanged", target, endpoint, enabled)
}

// AddAllowedAddresses extends the list of accounts allowed to propose the
// interaction. It can be invoked only by the multisig contract. Accounts are
// never removed from the list.
func AddAllowedAddresses(target interop.Hash160, endpoint string, allowedAddresses []interop.Hash160) {
	ctx := storage.GetContext()
	checkMultisigCaller(ctx)

	digest := requireRegistered(ctx, target, endpoint)
	addAllowedCallers(ctx, digest, allowedAddresses)

	runtime.Notify("AllowedAddressesAdded", target, endpoint, allowedAddresses)
}

// SetAllowedTokenForInteraction replaces token allowed to be paid along with
// the interaction. It can be invoked only by the multisig contract. Null token
// forbids any payments.
func SetAllowedTokenForInteraction(target interop.Hash160, endpoint string, token interop.Hash160) {
	ctx := storage.GetContext()
	checkMultisigCaller(ctx)

	digest := requireRegistered(ctx, target, endpoint)
	checkToken(token)
	setToken(ctx, digest, token)

	runtime.Notify("AllowedTokenSet", target, endpoint, token)
}

// CanExecute checks whether proposer may call endpoint of the target contract
// paying gasAmount of GAS and given token transfers. It never panics:
// unregistered and disabled interactions are denied.
func CanExecute(proposer, target interop.Hash160, endpoint string, gasAmount int, transfers []Transfer) bool {
	ctx := storage.GetReadOnlyContext()

	id := addressID(ctx, target)
	if id == cst.NullAddressID {
		return false
	}

	digest := interactionDigest(id, endpoint)
	if !isRegistered(ctx, digest) {
		return false
	}

	if !storage.Get(ctx, statusKey(digest)).(bool) {
		return false
	}

	if !isCallerAllowed(ctx, digest, proposer) {
		return false
	}

	return isPaymentAllowed(ctx, digest, gasAmount, transfers)
}

func isCallerAllowed(ctx storage.Context, digest []byte, proposer interop.Hash160) bool {
	it := storage.Find(ctx, callerPrefix(digest), storage.KeysOnly)
	if !iterator.Next(it) {
		return true
	}

	if proposer == nil || len(proposer) != interop.Hash160Len {
		return false
	}

	return storage.Get(ctx, callerKey(digest, proposer)) != nil
}

func isPaymentAllowed(ctx storage.Context, digest []byte, gasAmount int, transfers []Transfer) bool {
	hasTransfers := transfers != nil && len(transfers) > 0

	raw := storage.Get(ctx, tokenKey(digest))
	if raw == nil {
		return gasAmount <= 0 && !hasTransfers
	}

	token := raw.(interop.Hash160)
	if gasAmount > 0 && !common.BytesEqual(token, interop.Hash160(gas.Hash)) {
		return false
	}

	if hasTransfers {
		for i := range transfers {
			if !common.BytesEqual(transfers[i].Asset, token) {
				return false
			}
		}
	}

	return true
}

// GetAllowedUsersForInteraction returns accounts allowed to propose the
// interaction. Empty list means that anyone is allowed, null is returned for
// the interaction that has never been registered.
func GetAllowedUsersForInteraction(target interop.Hash160, endpoint string) []interop.Hash160 {
	ctx := storage.GetReadOnlyContext()

	digest := registeredDigest(ctx, target, endpoint)
	if digest == nil {
		return nil
	}

	users := []interop.Hash160{}

	it := storage.Find(ctx, callerPrefix(digest), storage.KeysOnly|storage.RemovePrefix)
	for iterator.Next(it) {
		users = append(users, iterator.Value(it).(interop.Hash160))
	}

	return users
}

// GetAllowedTokenForInteraction returns token allowed to be paid along with
// the interaction or null if payments are forbidden or the interaction is
// missing.
func GetAllowedTokenForInteraction(target interop.Hash160, endpoint string) interop.Hash160 {
	ctx := storage.GetReadOnlyContext()

	digest := registeredDigest(ctx, target, endpoint)
	if digest == nil {
		return nil
	}

	raw := storage.Get(ctx, tokenKey(digest))
	if raw == nil {
		return nil
	}

	return raw.(interop.Hash160)
}

// GetInteractionStatus returns true if the interaction is enabled. Missing
// interactions are reported as disabled.
func GetInteractionStatus(target interop.Hash160, endpoint string) bool {
	ctx := storage.GetReadOnlyContext()

	digest := registeredDigest(ctx, target, endpoint)
	if digest == nil {
		return false
	}

	return storage.Get(ctx, statusKey(digest)).(bool)
}

// GetMultisigAddress returns script hash of the contract allowed to change
// interaction permissions.
func GetMultisigAddress() interop.Hash160 {
	return storage.Get(storage.GetReadOnlyContext(), cst.MultisigKey).(interop.Hash160)
}

// Interactions iterates over all registered interactions. Iterator values
// are Interaction structures.
func Interactions() iterator.Iterator {
	ctx := storage.GetReadOnlyContext()
	return storage.Find(ctx, []byte{cst.InteractionPrefix}, storage.ValuesOnly|storage.DeserializeValues)
}

// Version returns the version of the contract.
func Version() int {
	return common.Version
}

func checkMultisigCaller(ctx storage.Context) {
	multisig := storage.Get(ctx, cst.MultisigKey).([]byte)
	if !common.BytesEqual(runtime.GetCallingScriptHash(), multisig) {
		panic(cst.ErrUnauthorized)
	}
}

func checkContractAddress(h interop.Hash160) {
	if h == nil || len(h) != interop.Hash160Len || common.IsZero(h) {
		panic(cst.ErrInvalidTargetAddress)
	}

	if management.GetContract(h) == nil {
		panic(cst.ErrInvalidTargetAddress)
	}
}

func checkToken(token interop.Hash160) {
	if token == nil {
		return
	}

	if len(token) != interop.Hash160Len || common.IsZero(token) {
		panic(cst.ErrInvalidAsset)
	}
}

func setToken(ctx storage.Context, digest []byte, token interop.Hash160) {
	if token == nil {
		storage.Delete(ctx, tokenKey(digest))
		return
	}

	storage.Put(ctx, tokenKey(digest), token)
}

func addAllowedCallers(ctx storage.Context, digest []byte, callers []interop.Hash160) {
	if callers == nil {
		return
	}

	for i := range callers {
		caller := callers[i]
		if caller == nil || len(caller) != interop.Hash160Len {
			panic(cst.ErrInvalidCaller)
		}

		storage.Put(ctx, callerKey(digest, caller), true)
	}
}

// addressID returns ID of the interned address or NullAddressID.
func addressID(ctx storage.Context, addr interop.Hash160) int {
	if addr == nil || len(addr) != interop.Hash160Len {
		return cst.NullAddressID
	}

	raw := storage.Get(ctx, append([]byte{cst.AddressToIDPrefix}, addr...))
	if raw == nil {
		return cst.NullAddressID
	}

	return raw.(int)
}

// internAddress returns ID of the address allocating the next one if address
// is new.
func internAddress(ctx storage.Context, addr interop.Hash160) int {
	id := addressID(ctx, addr)
	if id != cst.NullAddressID {
		return id
	}

	var last int
	if v := storage.Get(ctx, cst.LastAddressIDKey); v != nil {
		last = v.(int)
	}
	id = nextAddressID(last)

	storage.Put(ctx, cst.LastAddressIDKey, id)
	storage.Put(ctx, append([]byte{cst.AddressToIDPrefix}, addr...), id)
	storage.Put(ctx, append([]byte{cst.IDToAddressPrefix}, idKey(id)...), addr)

	return id
}

// nextAddressID returns the ID following the last allocated one.
func nextAddressID(last int) int {
	if last >= cst.MaxAddressID {
		panic(cst.ErrAddressIDsExhausted)
	}
	return last + 1
}

func isRegistered(ctx storage.Context, digest []byte) bool {
	return storage.Get(ctx, interactionKey(digest)) != nil
}

// registeredDigest returns digest of the registered interaction or nil.
func registeredDigest(ctx storage.Context, target interop.Hash160, endpoint string) []byte {
	id := addressID(ctx, target)
	if id == cst.NullAddressID {
		return nil
	}

	digest := interactionDigest(id, endpoint)
	if !isRegistered(ctx, digest) {
		return nil
	}

	return digest
}

func requireRegistered(ctx storage.Context, target interop.Hash160, endpoint string) []byte {
	digest := registeredDigest(ctx, target, endpoint)
	if digest == nil {
		panic(cst.ErrNotRegistered)
	}

	return digest
}

// idKey returns fixed-size little-endian representation of the address ID.
func idKey(id int) []byte {
	return append(convert.ToBytes(id), []byte{0, 0, 0, 0}...)[:cst.AddressIDSize]
}

func interactionDigest(id int, endpoint string) []byte {
	return crypto.Sha256(append(idKey(id), []byte(endpoint)...))
}

func interactionKey(digest []byte) []byte {
	return append([]byte{cst.InteractionPrefix}, digest...)
}

func statusKey(digest []byte) []byte {
	return append([]byte{cst.StatusPrefix}, digest...)
}

func tokenKey(digest []byte) []byte {
	return append([]byte{cst.AllowedTokenPrefix}, digest...)
}

func callerPrefix(digest []byte) []byte {
	return append([]byte{cst.AllowedCallerPrefix}, digest...)
}

func callerKey(digest []byte, caller interop.Hash160) []byte {
	return append(callerPrefix(digest), caller...)
}
