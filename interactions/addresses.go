package interactions

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/nspcc-dev/neo-go/pkg/encoding/bigint"
	"github.com/nspcc-dev/neo-go/pkg/util"
	cst "github.com/nspcc-dev/passthrough-contract/contracts/passthrough/passthroughconst"
)

const maxAddressID = cst.MaxAddressID

// errAddressIDsExhausted is returned when no more addresses can be interned.
var errAddressIDsExhausted = errors.New(cst.ErrAddressIDsExhausted)

// AddressTable maps addresses to compact IDs and back. IDs are allocated
// sequentially starting from 1 and never reused.
type AddressTable struct {
	st view
}

// NewAddressTable returns AddressTable working over the given storage view.
func NewAddressTable(st view) AddressTable {
	return AddressTable{st: st}
}

// Lookup returns ID of the address or NullAddressID if the address has never
// been interned.
func (x AddressTable) Lookup(addr util.Uint160) (AddressID, error) {
	v, err := get(x.st, addressKey(addr))
	if err != nil {
		return NullAddressID, fmt.Errorf("read ID of %s: %w", addr.StringLE(), err)
	}
	if v == nil {
		return NullAddressID, nil
	}
	return decodeAddressID(v)
}

// LookupRequired is like Lookup but returns ErrNotRegistered for unknown
// addresses.
func (x AddressTable) LookupRequired(addr util.Uint160) (AddressID, error) {
	id, err := x.Lookup(addr)
	if err != nil {
		return NullAddressID, err
	}
	if id == NullAddressID {
		return NullAddressID, fmt.Errorf("%w: unknown address %s", ErrNotRegistered, addr.StringLE())
	}
	return id, nil
}

// InternOrGet returns ID of the address allocating a new one if needed.
func (x AddressTable) InternOrGet(addr util.Uint160) (AddressID, error) {
	id, err := x.Lookup(addr)
	if err != nil || id != NullAddressID {
		return id, err
	}

	last, err := x.Last()
	if err != nil {
		return NullAddressID, err
	}
	if last >= maxAddressID {
		return NullAddressID, errAddressIDsExhausted
	}

	id = last + 1
	v := bigint.ToBytes(big.NewInt(int64(id)))
	x.st.Put([]byte(cst.LastAddressIDKey), v)
	x.st.Put(addressKey(addr), v)
	x.st.Put(reverseKey(id), addr.BytesBE())

	return id, nil
}

// Address returns address bound to the ID.
func (x AddressTable) Address(id AddressID) (util.Uint160, bool, error) {
	v, err := get(x.st, reverseKey(id))
	if err != nil {
		return util.Uint160{}, false, fmt.Errorf("read address #%d: %w", id, err)
	}
	if v == nil {
		return util.Uint160{}, false, nil
	}
	addr, err := util.Uint160DecodeBytesBE(v)
	if err != nil {
		return util.Uint160{}, false, fmt.Errorf("invalid address #%d: %w", id, err)
	}
	return addr, true, nil
}

// Last returns the last allocated ID, NullAddressID if nothing has been
// interned yet.
func (x AddressTable) Last() (AddressID, error) {
	v, err := get(x.st, []byte(cst.LastAddressIDKey))
	if err != nil {
		return NullAddressID, fmt.Errorf("read last address ID: %w", err)
	}
	if v == nil {
		return NullAddressID, nil
	}
	return decodeAddressID(v)
}

func decodeAddressID(v []byte) (AddressID, error) {
	n := bigint.FromBytes(v)
	if n.Sign() < 0 || !n.IsInt64() || n.Int64() > maxAddressID {
		return NullAddressID, fmt.Errorf("invalid address ID %s", n)
	}
	return AddressID(n.Int64()), nil
}
