package interactions

import (
	"math/big"

	"github.com/nspcc-dev/neo-go/pkg/rpcclient/gas"
	"github.com/nspcc-dev/neo-go/pkg/util"
	"go.uber.org/zap"
)

// NativeAsset is the asset identifier allowing payments in native coins.
var NativeAsset = gas.Hash

// CanExecute checks whether proposer may call endpoint of the target
// contract attaching gasAmount of native coins and the transfers. It never
// fails: any storage error denies execution.
func (e *Engine) CanExecute(proposer, target util.Uint160, endpoint string, gasAmount *big.Int, transfers []Transfer) bool {
	ok, err := e.begin().canExecute(proposer, target, endpoint, gasAmount, transfers)
	if err != nil {
		e.log.Warn("failed to check interaction, denying",
			zap.Stringer("proposer", proposer),
			zap.Stringer("target", target),
			zap.String("endpoint", endpoint),
			zap.Error(err))
		return false
	}
	return ok
}

func (tx txn) canExecute(proposer, target util.Uint160, endpoint string, gasAmount *big.Int, transfers []Transfer) (bool, error) {
	id, err := tx.addresses.Lookup(target)
	if err != nil || id == NullAddressID {
		return false, err
	}

	k := Key{ID: id, Endpoint: endpoint}

	registered, err := tx.registry.Contains(k)
	if err != nil || !registered {
		return false, err
	}

	status, err := tx.perms.Status(k)
	if err != nil || status == Disabled {
		return false, err
	}

	if tx.perms.HasAllowedCallers(k) {
		allowed, err := tx.perms.IsCallerAllowed(k, proposer)
		if err != nil || !allowed {
			return false, err
		}
	}

	asset, err := tx.perms.AllowedAsset(k)
	if err != nil {
		return false, err
	}

	return paymentAllowed(asset, gasAmount, transfers), nil
}

// paymentAllowed checks attached payments against the allowed asset. Nil
// asset forbids any payment. Native coins are accepted only when NativeAsset
// is allowed, every transfer must be of the allowed asset.
func paymentAllowed(asset *util.Uint160, gasAmount *big.Int, transfers []Transfer) bool {
	paysGas := gasAmount != nil && gasAmount.Sign() > 0

	if asset == nil {
		return !paysGas && len(transfers) == 0
	}

	if paysGas && !asset.Equals(NativeAsset) {
		return false
	}

	for i := range transfers {
		if !transfers[i].Asset.Equals(*asset) {
			return false
		}
	}
	return true
}
