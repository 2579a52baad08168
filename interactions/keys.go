package interactions

import (
	"encoding/binary"

	"github.com/mr-tron/base58"
	"github.com/nspcc-dev/neo-go/pkg/crypto/hash"
	"github.com/nspcc-dev/neo-go/pkg/util"
	cst "github.com/nspcc-dev/passthrough-contract/contracts/passthrough/passthroughconst"
)

// Storage keys repeat the layout of the Passthrough contract, see
// passthroughconst package.

func idKey(id AddressID) []byte {
	b := make([]byte, cst.AddressIDSize)
	binary.LittleEndian.PutUint32(b, uint32(id))
	return b
}

func addressKey(addr util.Uint160) []byte {
	return append([]byte{cst.AddressToIDPrefix}, addr.BytesBE()...)
}

func reverseKey(id AddressID) []byte {
	return append([]byte{cst.IDToAddressPrefix}, idKey(id)...)
}

func (k Key) digest() []byte {
	return hash.Sha256(append(idKey(k.ID), k.Endpoint...)).BytesBE()
}

// String returns base58 encoding of the interaction digest, the same value
// identifies interaction records in the contract storage.
func (k Key) String() string {
	return base58.Encode(k.digest())
}

func interactionKey(k Key) []byte {
	return append([]byte{cst.InteractionPrefix}, k.digest()...)
}

func statusKey(k Key) []byte {
	return append([]byte{cst.StatusPrefix}, k.digest()...)
}

func tokenKey(k Key) []byte {
	return append([]byte{cst.AllowedTokenPrefix}, k.digest()...)
}

func callerPrefix(k Key) []byte {
	return append([]byte{cst.AllowedCallerPrefix}, k.digest()...)
}

func callerKey(k Key, caller util.Uint160) []byte {
	return append(callerPrefix(k), caller.BytesBE()...)
}
