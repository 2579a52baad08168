package interactions

import (
	"fmt"
	"slices"

	"github.com/nspcc-dev/neo-go/pkg/core/storage"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	cst "github.com/nspcc-dev/passthrough-contract/contracts/passthrough/passthroughconst"
)

// Registry is a set of registered interactions. Interactions are never
// removed from it.
type Registry struct {
	st view
}

// NewRegistry returns Registry working over the given storage view.
func NewRegistry(st view) Registry {
	return Registry{st: st}
}

// Contains checks whether the interaction is registered.
func (r Registry) Contains(k Key) (bool, error) {
	v, err := get(r.st, interactionKey(k))
	if err != nil {
		return false, fmt.Errorf("read interaction: %w", err)
	}
	return v != nil, nil
}

// Insert registers the interaction. Registering it twice is a no-op.
func (r Registry) Insert(k Key, x Interaction) error {
	data, err := stackitem.Serialize(x.ToStackItem())
	if err != nil {
		return fmt.Errorf("serialize interaction: %w", err)
	}
	r.st.Put(interactionKey(k), data)
	return nil
}

// Iterate calls f for each registered interaction until f returns false.
// Iteration order is the order of interaction digests.
func (r Registry) Iterate(f func(Interaction) bool) error {
	var iterErr error
	r.st.Seek(storage.SeekRange{Prefix: []byte{cst.InteractionPrefix}}, func(k, v []byte) bool {
		item, err := stackitem.Deserialize(slices.Clone(v))
		if err != nil {
			iterErr = fmt.Errorf("deserialize interaction %x: %w", k, err)
			return false
		}
		var x Interaction
		if err = x.FromStackItem(item); err != nil {
			iterErr = fmt.Errorf("decode interaction %x: %w", k, err)
			return false
		}
		return f(x)
	})
	return iterErr
}

// Len returns the number of registered interactions.
func (r Registry) Len() (int, error) {
	var n int
	err := r.Iterate(func(Interaction) bool {
		n++
		return true
	})
	return n, err
}
