package interactions

import (
	"errors"

	"github.com/nspcc-dev/neo-go/pkg/core/storage"
)

// view is a transactional view of the contract storage. It is satisfied by
// storage.MemCachedStore.
type view interface {
	Get(key []byte) ([]byte, error)
	Put(key, value []byte)
	Delete(key []byte)
	Seek(rng storage.SeekRange, f func(k, v []byte) bool)
}

// get reads the value stored by key. Missing value is returned as nil
// without an error.
func get(st view, key []byte) ([]byte, error) {
	v, err := st.Get(key)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return v, nil
}

// Storage encoding of boolean values matches NeoVM serialization.
var (
	trueValue  = []byte{1}
	falseValue = []byte{0}
)

func decodeBool(v []byte) bool {
	for i := range v {
		if v[i] != 0 {
			return true
		}
	}
	return false
}
