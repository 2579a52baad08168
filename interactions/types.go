package interactions

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/nspcc-dev/neo-go/pkg/util"
	"github.com/nspcc-dev/neo-go/pkg/vm/stackitem"
	cst "github.com/nspcc-dev/passthrough-contract/contracts/passthrough/passthroughconst"
)

// AddressID is a compact handle of the interned address.
type AddressID uint32

// NullAddressID is never bound to any address.
const NullAddressID AddressID = cst.NullAddressID

// Status of the interaction.
type Status bool

const (
	Disabled Status = false
	Enabled  Status = true
)

// String implements fmt.Stringer.
func (s Status) String() string {
	if s {
		return "enabled"
	}
	return "disabled"
}

// Key identifies interaction permissions: target address ID and method name.
type Key struct {
	ID       AddressID
	Endpoint string
}

// Interaction is a registered method of the target contract.
type Interaction struct {
	Target   util.Uint160
	Endpoint string
}

// Transfer is a token payment attached to the call. Amount is positive.
type Transfer struct {
	Asset  util.Uint160
	Amount *big.Int
}

// ToStackItem converts Interaction to the structure stored by the contract.
func (x Interaction) ToStackItem() stackitem.Item {
	return stackitem.NewStruct([]stackitem.Item{
		stackitem.NewByteArray(x.Target.BytesBE()),
		stackitem.NewByteArray([]byte(x.Endpoint)),
	})
}

// FromStackItem decodes Interaction from the structure stored by the contract.
func (x *Interaction) FromStackItem(item stackitem.Item) error {
	fields, ok := item.Value().([]stackitem.Item)
	if !ok {
		return errors.New("not an array")
	}
	if len(fields) != 2 {
		return fmt.Errorf("wrong number of fields: %d", len(fields))
	}

	b, err := fields[0].TryBytes()
	if err != nil {
		return fmt.Errorf("target: %w", err)
	}
	x.Target, err = util.Uint160DecodeBytesBE(b)
	if err != nil {
		return fmt.Errorf("target: %w", err)
	}

	b, err = fields[1].TryBytes()
	if err != nil {
		return fmt.Errorf("endpoint: %w", err)
	}
	x.Endpoint = string(b)

	return nil
}
