package interactions

import (
	"fmt"

	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/util"
)

// Permissions holds per-interaction execution rules: allowed callers,
// allowed payment asset and status.
type Permissions struct {
	st view
}

// NewPermissions returns Permissions working over the given storage view.
func NewPermissions(st view) Permissions {
	return Permissions{st: st}
}

// setAllowedCallers replaces caller whitelist of the interaction. It is used
// on interaction creation only, afterwards whitelist can only grow.
func (p Permissions) setAllowedCallers(k Key, callers []util.Uint160) {
	var stale [][]byte
	prefix := callerPrefix(k)
	p.st.Seek(storage.SeekRange{Prefix: prefix}, func(key, _ []byte) bool {
		stale = append(stale, append([]byte(nil), key...))
		return true
	})
	for i := range stale {
		p.st.Delete(stale[i])
	}
	p.UnionAllowedCallers(k, callers)
}

// UnionAllowedCallers adds callers to the whitelist of the interaction.
// Duplicates are ignored.
func (p Permissions) UnionAllowedCallers(k Key, callers []util.Uint160) {
	for i := range callers {
		p.st.Put(callerKey(k, callers[i]), trueValue)
	}
}

// AllowedCallers returns caller whitelist of the interaction. Empty list
// means the interaction is public.
func (p Permissions) AllowedCallers(k Key) ([]util.Uint160, error) {
	var (
		res    []util.Uint160
		decErr error
		prefix = callerPrefix(k)
	)
	p.st.Seek(storage.SeekRange{Prefix: prefix}, func(key, _ []byte) bool {
		addr, err := util.Uint160DecodeBytesBE(key[len(prefix):])
		if err != nil {
			decErr = fmt.Errorf("invalid caller key %x: %w", key, err)
			return false
		}
		res = append(res, addr)
		return true
	})
	return res, decErr
}

// HasAllowedCallers checks whether the interaction whitelist is non-empty.
func (p Permissions) HasAllowedCallers(k Key) bool {
	var found bool
	p.st.Seek(storage.SeekRange{Prefix: callerPrefix(k)}, func(_, _ []byte) bool {
		found = true
		return false
	})
	return found
}

// IsCallerAllowed checks whether caller is in the whitelist of the
// interaction.
func (p Permissions) IsCallerAllowed(k Key, caller util.Uint160) (bool, error) {
	v, err := get(p.st, callerKey(k, caller))
	if err != nil {
		return false, fmt.Errorf("read caller: %w", err)
	}
	return v != nil, nil
}

// SetAllowedAsset replaces allowed payment asset of the interaction. Nil
// asset removes the restriction record, so no payments are allowed.
func (p Permissions) SetAllowedAsset(k Key, asset *util.Uint160, v AssetValidator) error {
	if asset == nil {
		p.st.Delete(tokenKey(k))
		return nil
	}
	if !v.IsValidAsset(*asset) {
		return fmt.Errorf("%w: %s", ErrInvalidAsset, asset.StringLE())
	}
	p.st.Put(tokenKey(k), asset.BytesBE())
	return nil
}

// AllowedAsset returns allowed payment asset of the interaction, nil if no
// payments are allowed.
func (p Permissions) AllowedAsset(k Key) (*util.Uint160, error) {
	v, err := get(p.st, tokenKey(k))
	if err != nil {
		return nil, fmt.Errorf("read allowed token: %w", err)
	}
	if v == nil {
		return nil, nil
	}
	asset, err := util.Uint160DecodeBytesBE(v)
	if err != nil {
		return nil, fmt.Errorf("invalid allowed token: %w", err)
	}
	return &asset, nil
}

// SetStatus sets status of the interaction.
func (p Permissions) SetStatus(k Key, s Status) {
	v := falseValue
	if s {
		v = trueValue
	}
	p.st.Put(statusKey(k), v)
}

// Status returns status of the interaction. Missing status means Disabled.
func (p Permissions) Status(k Key) (Status, error) {
	v, err := get(p.st, statusKey(k))
	if err != nil {
		return Disabled, fmt.Errorf("read status: %w", err)
	}
	return Status(decodeBool(v)), nil
}
