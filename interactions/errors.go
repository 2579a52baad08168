package interactions

import (
	"errors"

	cst "github.com/nspcc-dev/passthrough-contract/contracts/passthrough/passthroughconst"
)

var (
	// ErrUnauthorized is returned when permissions are changed by anyone but
	// the configured authority.
	ErrUnauthorized = errors.New(cst.ErrUnauthorized)
	// ErrInvalidTargetAddress is returned when zero or non-contract address
	// is provided where contract address is required.
	ErrInvalidTargetAddress = errors.New(cst.ErrInvalidTargetAddress)
	// ErrInvalidAsset is returned when token hash is malformed.
	ErrInvalidAsset = errors.New(cst.ErrInvalidAsset)
	// ErrAlreadyRegistered is returned on attempt to add the same interaction twice.
	ErrAlreadyRegistered = errors.New(cst.ErrAlreadyRegistered)
	// ErrNotRegistered is returned when interaction is missing.
	ErrNotRegistered = errors.New(cst.ErrNotRegistered)
	// ErrAlreadyInitialized is returned on repeated Engine.Initialize.
	ErrAlreadyInitialized = errors.New("authority is already set")
)
