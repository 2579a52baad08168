// Package multisig is a stand-in for the multisig contract managing
// Passthrough. It skips any signature collection and forwards calls as is.
package multisig

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
)

// Forward calls method of the target contract on behalf of this contract.
func Forward(target interop.Hash160, method string, args []any) any {
	return contract.Call(target, method, contract.All, args...)
}

// Execute calls method of the target contract if Passthrough allows proposer
// to do so.
func Execute(passthrough, proposer, target interop.Hash160, method string, gasAmount int, args []any) any {
	if !runtime.CheckWitness(proposer) {
		panic("proposer witness check failed")
	}

	allowed := contract.Call(passthrough, "canExecute", contract.ReadOnly,
		proposer, target, method, gasAmount, []any{}).(bool)
	if !allowed {
		panic("interaction is not allowed")
	}

	return contract.Call(target, method, contract.All, args...)
}
