// Package passthroughconst describes storage layout and error messages of the
// Passthrough contract. It is shared by the contract and Go code reading its
// storage.
package passthroughconst

const (
	// MultisigKey stores the script hash of the only contract allowed to
	// change interaction permissions.
	MultisigKey = "multisig"
	// LastAddressIDKey stores the last allocated address ID.
	LastAddressIDKey = "lastAddressID"

	// AddressToIDPrefix prefixes address -> ID records.
	AddressToIDPrefix = 'a'
	// IDToAddressPrefix prefixes ID -> address records.
	IDToAddressPrefix = 'i'
	// InteractionPrefix prefixes registered interaction records.
	InteractionPrefix = 'r'
	// StatusPrefix prefixes interaction status records.
	StatusPrefix = 's'
	// AllowedTokenPrefix prefixes allowed payment token records.
	AllowedTokenPrefix = 't'
	// AllowedCallerPrefix prefixes allowed caller records.
	AllowedCallerPrefix = 'u'

	// NullAddressID is never bound to any address.
	NullAddressID = 0
	// AddressIDSize is the size of address ID in storage keys.
	AddressIDSize = 4
	// MaxAddressID is the last address ID which fits AddressIDSize bytes
	// of signed little-endian integer.
	MaxAddressID = 1<<31 - 1
	// InteractionDigestSize is the size of interaction digest in storage keys.
	InteractionDigestSize = 32
)

const (
	// ErrUnauthorized is thrown when permissions are changed by anyone but
	// the multisig contract.
	ErrUnauthorized = "only multisig may call this method"
	// ErrInvalidTargetAddress is thrown when zero or non-contract address is
	// provided where contract address is required.
	ErrInvalidTargetAddress = "invalid contract address"
	// ErrInvalidAsset is thrown when token hash is malformed.
	ErrInvalidAsset = "invalid token ID"
	// ErrInvalidCaller is thrown when allowed caller address is malformed.
	ErrInvalidCaller = "invalid caller address"
	// ErrAlreadyRegistered is thrown on attempt to add the same interaction twice.
	ErrAlreadyRegistered = "interaction already added"
	// ErrNotRegistered is thrown when interaction is missing.
	ErrNotRegistered = "interaction is not registered"
	// ErrAddressIDsExhausted is thrown when MaxAddressID is already allocated.
	ErrAddressIDsExhausted = "address IDs exhausted"
)
