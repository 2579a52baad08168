package passthrough_test

import (
	"encoding/json"
	"math/big"
	"path"
	"slices"
	"testing"

	interopstorage "github.com/nspcc-dev/neo-go/pkg/core/interop/storage"
	"github.com/nspcc-dev/neo-go/pkg/core/state"
	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/neotest"
	"github.com/nspcc-dev/neo-go/pkg/neotest/chain"
	"github.com/nspcc-dev/neo-go/pkg/rpcclient/gas"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	"github.com/nspcc-dev/passthrough-contract/common"
	cst "github.com/nspcc-dev/passthrough-contract/contracts/passthrough/passthroughconst"
	"github.com/nspcc-dev/passthrough-contract/interactions"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const (
	passthroughPath = "."
	multisigPath    = "../../internal/testcontracts/multisig"
	adderPath       = "../../internal/testcontracts/adder"
)

type testEnv struct {
	e *neotest.Executor

	passthrough *neotest.ContractInvoker
	multisig    *neotest.ContractInvoker

	adder util.Uint160
}

func newExecutor(t *testing.T) *neotest.Executor {
	bc, acc := chain.NewSingle(t)
	return neotest.NewExecutor(t, bc, acc, acc)
}

func compile(t *testing.T, e *neotest.Executor, src string) *neotest.Contract {
	return neotest.CompileFile(t, e.CommitteeHash, src, path.Join(src, "config.yml"))
}

func newTestEnv(t *testing.T) *testEnv {
	e := newExecutor(t)

	adder := compile(t, e, adderPath)
	e.DeployContract(t, adder, nil)

	ms := compile(t, e, multisigPath)
	e.DeployContract(t, ms, nil)

	pt := compile(t, e, passthroughPath)
	e.DeployContract(t, pt, []any{ms.Hash})

	return &testEnv{
		e:           e,
		passthrough: e.CommitteeInvoker(pt.Hash),
		multisig:    e.CommitteeInvoker(ms.Hash),
		adder:       adder.Hash,
	}
}

// forward calls Passthrough method on behalf of the multisig contract.
func (x *testEnv) forward(t *testing.T, method string, args ...any) util.Uint256 {
	return x.multisig.Invoke(t, stackitem.Null{}, "forward", x.passthrough.Hash, method, args)
}

func (x *testEnv) forwardFail(t *testing.T, msg string, method string, args ...any) {
	x.multisig.InvokeFail(t, msg, "forward", x.passthrough.Hash, method, args)
}

func (x *testEnv) addInteraction(t *testing.T, endpoint string, token any, callers ...util.Uint160) util.Uint256 {
	return x.forward(t, "addInteraction", x.adder, endpoint, token, hashesToArgs(callers))
}

func (x *testEnv) canExecute(t *testing.T, proposer util.Uint160, endpoint string, gasAmount int64, transfers ...[]any) bool {
	ts := make([]any, len(transfers))
	for i := range transfers {
		ts[i] = transfers[i]
	}

	stack, err := x.passthrough.TestInvoke(t, "canExecute", proposer, x.adder, endpoint, gasAmount, ts)
	require.NoError(t, err)

	res, err := stack.Pop().Item().TryBool()
	require.NoError(t, err)
	return res
}

func (x *testEnv) allowedUsers(t *testing.T, endpoint string) ([]util.Uint160, bool) {
	stack, err := x.passthrough.TestInvoke(t, "getAllowedUsersForInteraction", x.adder, endpoint)
	require.NoError(t, err)

	item := stack.Pop().Item()
	if _, ok := item.(stackitem.Null); ok {
		return nil, false
	}

	arr, ok := item.Value().([]stackitem.Item)
	require.True(t, ok)

	res := make([]util.Uint160, len(arr))
	for i := range arr {
		res[i] = itemToHash(t, arr[i])
	}
	return res, true
}

func (x *testEnv) allowedToken(t *testing.T, endpoint string) (util.Uint160, bool) {
	stack, err := x.passthrough.TestInvoke(t, "getAllowedTokenForInteraction", x.adder, endpoint)
	require.NoError(t, err)

	item := stack.Pop().Item()
	if _, ok := item.(stackitem.Null); ok {
		return util.Uint160{}, false
	}
	return itemToHash(t, item), true
}

func (x *testEnv) status(t *testing.T, endpoint string) bool {
	stack, err := x.passthrough.TestInvoke(t, "getInteractionStatus", x.adder, endpoint)
	require.NoError(t, err)

	res, err := stack.Pop().Item().TryBool()
	require.NoError(t, err)
	return res
}

// storageSnapshot returns all storage items of the Passthrough contract.
func (x *testEnv) storageSnapshot(t *testing.T) map[string][]byte {
	cs := x.e.Chain.GetContractState(x.passthrough.Hash)
	require.NotNil(t, cs)

	res := make(map[string][]byte)
	x.e.Chain.SeekStorage(cs.ID, nil, func(k, v []byte) bool {
		res[string(k)] = slices.Clone(v)
		return true
	})
	return res
}

func (x *testEnv) requireEvent(t *testing.T, h util.Uint256, name string) state.NotificationEvent {
	res := x.e.GetTxExecResult(t, h)
	for _, ev := range res.Events {
		if ev.Name == name && ev.ScriptHash.Equals(x.passthrough.Hash) {
			return ev
		}
	}
	require.FailNow(t, "missing notification", name)
	return state.NotificationEvent{}
}

func hashesToArgs(hs []util.Uint160) []any {
	res := make([]any, len(hs))
	for i := range hs {
		res[i] = hs[i]
	}
	return res
}

func itemToHash(t *testing.T, item stackitem.Item) util.Uint160 {
	b, err := item.TryBytes()
	require.NoError(t, err)
	h, err := util.Uint160DecodeBytesBE(b)
	require.NoError(t, err)
	return h
}

func transfer(asset util.Uint160, amount int64) []any {
	return []any{asset, amount}
}

func TestDeploy(t *testing.T) {
	e := newExecutor(t)

	pt := compile(t, e, passthroughPath)

	t.Run("zero multisig", func(t *testing.T) {
		e.DeployContractCheckFAULT(t, pt, []any{util.Uint160{}}, cst.ErrInvalidTargetAddress)
	})

	t.Run("not a contract", func(t *testing.T) {
		acc := e.NewAccount(t)
		e.DeployContractCheckFAULT(t, pt, []any{acc.ScriptHash()}, cst.ErrInvalidTargetAddress)
	})

	ms := compile(t, e, multisigPath)
	e.DeployContract(t, ms, nil)
	e.DeployContract(t, pt, []any{ms.Hash})

	inv := e.CommitteeInvoker(pt.Hash)
	stack, err := inv.TestInvoke(t, "getMultisigAddress")
	require.NoError(t, err)
	require.Equal(t, ms.Hash, itemToHash(t, stack.Pop().Item()))
}

func TestVersion(t *testing.T) {
	x := newTestEnv(t)
	x.passthrough.Invoke(t, common.Version, "version")
}

func TestUpdate(t *testing.T) {
	x := newTestEnv(t)

	pt := compile(t, x.e, passthroughPath)

	rawNEF, err := pt.NEF.Bytes()
	require.NoError(t, err)
	rawManifest, err := json.Marshal(pt.Manifest)
	require.NoError(t, err)

	acc := x.e.NewAccount(t)
	x.passthrough.WithSigners(acc).InvokeFail(t, common.ErrCommitteeOnly, "update", rawNEF, rawManifest, nil)
	x.passthrough.InvokeFail(t, common.ErrAlreadyUpdated, "update", rawNEF, rawManifest, nil)
}

func TestAddInteraction(t *testing.T) {
	x := newTestEnv(t)

	alice := x.e.NewAccount(t).ScriptHash()
	bob := x.e.NewAccount(t).ScriptHash()

	h := x.addInteraction(t, "add", nil, alice)

	ev := x.requireEvent(t, h, "InteractionAdded")
	require.Equal(t, x.adder.BytesBE(), ev.Item.Value().([]stackitem.Item)[0].Value())

	require.True(t, x.canExecute(t, alice, "add", 0))
	require.False(t, x.canExecute(t, bob, "add", 0))
	require.False(t, x.canExecute(t, alice, "add", 1))
	require.True(t, x.status(t, "add"))

	users, ok := x.allowedUsers(t, "add")
	require.True(t, ok)
	require.Equal(t, []util.Uint160{alice}, users)

	_, ok = x.allowedToken(t, "add")
	require.False(t, ok)

	t.Run("duplicate", func(t *testing.T) {
		before := x.storageSnapshot(t)
		x.forwardFail(t, cst.ErrAlreadyRegistered, "addInteraction", x.adder, "add", nil, []any{})
		require.Equal(t, before, x.storageSnapshot(t))

		// registration is checked before the token
		x.forwardFail(t, cst.ErrAlreadyRegistered, "addInteraction", x.adder, "add", util.Uint160{}, []any{})
		require.Equal(t, before, x.storageSnapshot(t))
	})

	t.Run("invalid target", func(t *testing.T) {
		x.forwardFail(t, cst.ErrInvalidTargetAddress, "addInteraction", util.Uint160{}, "add", nil, []any{})
		x.forwardFail(t, cst.ErrInvalidTargetAddress, "addInteraction", alice, "add", nil, []any{})
	})

	t.Run("invalid token", func(t *testing.T) {
		x.forwardFail(t, cst.ErrInvalidAsset, "addInteraction", x.adder, "sum", util.Uint160{}, []any{})
		x.forwardFail(t, cst.ErrInvalidAsset, "addInteraction", x.adder, "sum", []byte{1, 2, 3}, []any{})
	})

	t.Run("invalid caller", func(t *testing.T) {
		x.forwardFail(t, cst.ErrInvalidCaller, "addInteraction", x.adder, "sum", nil, []any{[]byte{1}})
	})

	t.Run("list", func(t *testing.T) {
		x.addInteraction(t, "sum", nil)

		stack, err := x.passthrough.TestInvoke(t, "interactions")
		require.NoError(t, err)

		iter := stack.Pop().Value().(*interopstorage.Iterator)

		var res []interactions.Interaction
		for iter.Next() {
			var v interactions.Interaction
			require.NoError(t, v.FromStackItem(iter.Value()))
			res = append(res, v)
		}

		require.ElementsMatch(t, []interactions.Interaction{
			{Target: x.adder, Endpoint: "add"},
			{Target: x.adder, Endpoint: "sum"},
		}, res)
	})
}

func TestUnauthorized(t *testing.T) {
	x := newTestEnv(t)

	x.addInteraction(t, "add", nil)

	before := x.storageSnapshot(t)

	for _, tc := range []struct {
		method string
		args   []any
	}{
		{"addInteraction", []any{x.adder, "sum", nil, []any{}}},
		{"disableInteraction", []any{x.adder, "add"}},
		{"enableInteraction", []any{x.adder, "add"}},
		{"addAllowedAddresses", []any{x.adder, "add", []any{x.adder}}},
		{"setAllowedTokenForInteraction", []any{x.adder, "add", gas.Hash}},
	} {
		t.Run(tc.method, func(t *testing.T) {
			x.passthrough.InvokeFail(t, cst.ErrUnauthorized, tc.method, tc.args...)

			acc := x.e.NewAccount(t)
			x.passthrough.WithSigners(acc).InvokeFail(t, cst.ErrUnauthorized, tc.method, tc.args...)
		})
	}

	require.Equal(t, before, x.storageSnapshot(t))
}

func TestCanExecute(t *testing.T) {
	x := newTestEnv(t)

	alice := x.e.NewAccount(t).ScriptHash()
	token := x.multisig.Hash

	t.Run("unregistered target", func(t *testing.T) {
		require.False(t, x.canExecute(t, alice, "add", 0))
	})

	x.addInteraction(t, "add", nil)

	t.Run("unregistered endpoint", func(t *testing.T) {
		require.False(t, x.canExecute(t, alice, "sum", 0))
	})

	t.Run("public", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			require.True(t, x.canExecute(t, x.e.NewAccount(t).ScriptHash(), "add", 0))
		}
		require.False(t, x.canExecute(t, alice, "add", 0, transfer(token, 1)))
	})

	t.Run("native payments", func(t *testing.T) {
		x.addInteraction(t, "sum", gas.Hash)

		require.True(t, x.canExecute(t, alice, "sum", 100))
		require.False(t, x.canExecute(t, alice, "sum", 100, transfer(token, 1)))
		require.True(t, x.canExecute(t, alice, "sum", 0))
	})

	t.Run("token payments", func(t *testing.T) {
		x.addInteraction(t, "pay", token)

		require.True(t, x.canExecute(t, alice, "pay", 0, transfer(token, 1), transfer(token, 5)))
		require.False(t, x.canExecute(t, alice, "pay", 0, transfer(token, 1), transfer(gas.Hash, 5)))
		require.False(t, x.canExecute(t, alice, "pay", 1, transfer(token, 1)))
	})

	t.Run("null transfers", func(t *testing.T) {
		x.passthrough.Invoke(t, true, "canExecute", alice, x.adder, "add", 0, nil)
	})
}

func TestStatus(t *testing.T) {
	x := newTestEnv(t)

	alice := x.e.NewAccount(t).ScriptHash()

	x.forwardFail(t, cst.ErrNotRegistered, "disableInteraction", x.adder, "add")
	require.False(t, x.status(t, "add"))

	x.addInteraction(t, "add", nil, alice)
	x.forwardFail(t, cst.ErrNotRegistered, "enableInteraction", x.adder, "sum")

	h := x.forward(t, "disableInteraction", x.adder, "add")
	ev := x.requireEvent(t, h, "InteractionStatusChanged")
	require.Equal(t, false, ev.Item.Value().([]stackitem.Item)[2].Value())

	require.False(t, x.status(t, "add"))
	require.False(t, x.canExecute(t, alice, "add", 0))

	x.forward(t, "disableInteraction", x.adder, "add")
	require.False(t, x.status(t, "add"))

	x.forward(t, "enableInteraction", x.adder, "add")
	require.True(t, x.status(t, "add"))
	require.True(t, x.canExecute(t, alice, "add", 0))
}

func TestAddAllowedAddresses(t *testing.T) {
	x := newTestEnv(t)

	alice := x.e.NewAccount(t).ScriptHash()
	bob := x.e.NewAccount(t).ScriptHash()
	carol := x.e.NewAccount(t).ScriptHash()

	x.forwardFail(t, cst.ErrNotRegistered, "addAllowedAddresses", x.adder, "add", []any{alice})

	x.addInteraction(t, "add", nil, alice)

	h := x.forward(t, "addAllowedAddresses", x.adder, "add", []any{alice, bob})
	x.requireEvent(t, h, "AllowedAddressesAdded")

	users, ok := x.allowedUsers(t, "add")
	require.True(t, ok)
	require.ElementsMatch(t, []util.Uint160{alice, bob}, users)

	require.True(t, x.canExecute(t, bob, "add", 0))
	require.False(t, x.canExecute(t, carol, "add", 0))

	x.forward(t, "addAllowedAddresses", x.adder, "add", []any{})
	users, _ = x.allowedUsers(t, "add")
	require.Len(t, users, 2)
}

func TestSetAllowedToken(t *testing.T) {
	x := newTestEnv(t)

	alice := x.e.NewAccount(t).ScriptHash()
	token := x.multisig.Hash

	x.forwardFail(t, cst.ErrNotRegistered, "setAllowedTokenForInteraction", x.adder, "add", token)

	x.addInteraction(t, "add", gas.Hash)

	x.forwardFail(t, cst.ErrInvalidAsset, "setAllowedTokenForInteraction", x.adder, "add", util.Uint160{})
	actual, ok := x.allowedToken(t, "add")
	require.True(t, ok)
	require.Equal(t, gas.Hash, actual)

	h := x.forward(t, "setAllowedTokenForInteraction", x.adder, "add", token)
	x.requireEvent(t, h, "AllowedTokenSet")

	actual, ok = x.allowedToken(t, "add")
	require.True(t, ok)
	require.Equal(t, token, actual)
	require.False(t, x.canExecute(t, alice, "add", 1))
	require.True(t, x.canExecute(t, alice, "add", 0, transfer(token, 1)))

	x.forward(t, "setAllowedTokenForInteraction", x.adder, "add", nil)
	_, ok = x.allowedToken(t, "add")
	require.False(t, ok)
	require.False(t, x.canExecute(t, alice, "add", 0, transfer(token, 1)))
	require.True(t, x.canExecute(t, alice, "add", 0))
}

func TestGetters_Unregistered(t *testing.T) {
	x := newTestEnv(t)

	_, ok := x.allowedUsers(t, "add")
	require.False(t, ok)

	_, ok = x.allowedToken(t, "add")
	require.False(t, ok)

	require.False(t, x.status(t, "add"))

	x.addInteraction(t, "add", nil)

	users, ok := x.allowedUsers(t, "add")
	require.True(t, ok)
	require.Empty(t, users)
}

func TestExecute(t *testing.T) {
	x := newTestEnv(t)

	alice := x.e.NewAccount(t)
	bob := x.e.NewAccount(t)

	x.addInteraction(t, "add", nil, alice.ScriptHash())

	aliceInv := x.e.NewInvoker(x.multisig.Hash, alice)
	aliceInv.Invoke(t, stackitem.Null{}, "execute",
		x.passthrough.Hash, alice.ScriptHash(), x.adder, "add", 0, []any{5})

	bobInv := x.e.NewInvoker(x.multisig.Hash, bob)
	bobInv.InvokeFail(t, "interaction is not allowed", "execute",
		x.passthrough.Hash, bob.ScriptHash(), x.adder, "add", 0, []any{7})

	aliceInv.InvokeFail(t, "interaction is not allowed", "execute",
		x.passthrough.Hash, alice.ScriptHash(), x.adder, "add", 1, []any{7})

	x.e.CommitteeInvoker(x.adder).Invoke(t, 5, "sum")
}

// TestMirror checks that the interactions engine makes the same decisions
// over a copy of the contract storage.
func TestMirror(t *testing.T) {
	x := newTestEnv(t)

	alice := x.e.NewAccount(t).ScriptHash()
	bob := x.e.NewAccount(t).ScriptHash()
	token := x.multisig.Hash

	x.addInteraction(t, "add", nil, alice)
	x.addInteraction(t, "sum", gas.Hash)
	x.addInteraction(t, "pay", token, bob)
	x.forward(t, "disableInteraction", x.adder, "sum")
	x.forward(t, "addAllowedAddresses", x.adder, "pay", []any{alice})

	mirror := storage.NewMemCachedStore(storage.NewMemoryStore())
	for k, v := range x.storageSnapshot(t) {
		mirror.Put([]byte(k), v)
	}

	eng := interactions.New(interactions.Prm{
		Logger: zaptest.NewLogger(t),
		Store:  mirror,
	})

	authority, ok := eng.Authority()
	require.True(t, ok)
	require.Equal(t, x.multisig.Hash, authority)

	list, err := eng.Interactions()
	require.NoError(t, err)
	require.Len(t, list, 3)

	for _, endpoint := range []string{"add", "sum", "pay", "mul"} {
		users, ok := x.allowedUsers(t, endpoint)
		mirrorUsers, mirrorOK := eng.AllowedCallers(x.adder, endpoint)
		require.Equal(t, ok, mirrorOK, endpoint)
		require.ElementsMatch(t, users, mirrorUsers, endpoint)

		allowedToken, ok := x.allowedToken(t, endpoint)
		mirrorToken, mirrorOK := eng.AllowedToken(x.adder, endpoint)
		require.Equal(t, ok, mirrorOK, endpoint)
		require.Equal(t, allowedToken, mirrorToken, endpoint)

		require.Equal(t, x.status(t, endpoint), bool(eng.Status(x.adder, endpoint)), endpoint)

		for _, proposer := range []util.Uint160{alice, bob} {
			for _, gasAmount := range []int64{0, 10} {
				for _, asset := range []*util.Uint160{nil, &token, &gas.Hash} {
					var (
						args      [][]any
						transfers []interactions.Transfer
					)
					if asset != nil {
						args = append(args, transfer(*asset, 1))
						transfers = append(transfers, interactions.Transfer{Asset: *asset, Amount: big.NewInt(1)})
					}

					require.Equal(t,
						x.canExecute(t, proposer, endpoint, gasAmount, args...),
						eng.CanExecute(proposer, x.adder, endpoint, big.NewInt(gasAmount), transfers),
						"endpoint %s, gas %d, asset %v", endpoint, gasAmount, asset)
				}
			}
		}
	}
}
