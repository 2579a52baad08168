// Package common contains helpers shared by contracts of the repository.
package common

import (
	"github.com/nspcc-dev/neo-go/pkg/interop"
	"github.com/nspcc-dev/neo-go/pkg/interop/contract"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/neo"
	"github.com/nspcc-dev/neo-go/pkg/interop/native/std"
	"github.com/nspcc-dev/neo-go/pkg/interop/runtime"
	"github.com/nspcc-dev/neo-go/pkg/interop/storage"
	"github.com/nspcc-dev/neo-go/pkg/interop/util"
)

// ErrCommitteeOnly is thrown when a committee method is called without
// committee witness.
const ErrCommitteeOnly = "only committee can update contract"

// CommitteeAddress returns the M = N/2+1 multisignature account of the
// current Neo committee.
func CommitteeAddress() interop.Hash160 {
	keys := neo.GetCommittee()
	return contract.CreateMultisigAccount(len(keys)/2+1, keys)
}

// CheckCommittee panics unless the transaction is witnessed by the committee.
func CheckCommittee() {
	if !runtime.CheckWitness(CommitteeAddress()) {
		panic(ErrCommitteeOnly)
	}
}

// SetSerialized puts value into storage in std.Serialize format.
func SetSerialized(ctx storage.Context, key any, value any) {
	storage.Put(ctx, key, std.Serialize(value))
}

// BytesEqual compares byte slices by value. Plain == compares Buffer
// references in NeoVM.
func BytesEqual(a []byte, b []byte) bool {
	return util.Equals(string(a), string(b))
}

// IsZero checks whether all bytes of b are zero.
func IsZero(b []byte) bool {
	for i := range b {
		if b[i] != 0 {
			return false
		}
	}
	return true
}
