package interactions

import (
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// Authorizer decides whether caller may change interaction permissions.
type Authorizer interface {
	IsAuthorized(caller util.Uint160) bool
}

// AuthorizerFunc is a functional Authorizer.
type AuthorizerFunc func(caller util.Uint160) bool

// IsAuthorized implements Authorizer.
func (f AuthorizerFunc) IsAuthorized(caller util.Uint160) bool { return f(caller) }

// StaticAuthority authorizes the only configured address.
type StaticAuthority util.Uint160

// IsAuthorized implements Authorizer.
func (a StaticAuthority) IsAuthorized(caller util.Uint160) bool {
	return util.Uint160(a).Equals(caller)
}

// ContractChecker checks whether the address is a deployed contract.
type ContractChecker interface {
	IsContract(addr util.Uint160) bool
}

// ContractCheckerFunc is a functional ContractChecker.
type ContractCheckerFunc func(addr util.Uint160) bool

// IsContract implements ContractChecker.
func (f ContractCheckerFunc) IsContract(addr util.Uint160) bool { return f(addr) }

// AssetValidator checks whether the asset identifier is well-formed.
type AssetValidator interface {
	IsValidAsset(asset util.Uint160) bool
}

// AssetValidatorFunc is a functional AssetValidator.
type AssetValidatorFunc func(asset util.Uint160) bool

// IsValidAsset implements AssetValidator.
func (f AssetValidatorFunc) IsValidAsset(asset util.Uint160) bool { return f(asset) }

// NonZero accepts any non-zero address. It is the default ContractChecker
// and AssetValidator when nothing can tell more about the address.
var NonZero = nonZero{}

type nonZero struct{}

func (nonZero) IsContract(addr util.Uint160) bool     { return !addr.Equals(util.Uint160{}) }
func (nonZero) IsValidAsset(asset util.Uint160) bool { return !asset.Equals(util.Uint160{}) }
