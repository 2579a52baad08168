package common

import "github.com/nspcc-dev/neo-go/pkg/interop/native/std"

// Contract version is major*1_000_000 + minor*1_000 + patch.
const (
	major = 0
	minor = 2
	patch = 0

	// Contract can be updated from this version or any later one.
	prevMajor = 0
	prevMinor = 1
	prevPatch = 0

	// Version is the current contract version.
	Version = major*1_000_000 + minor*1_000 + patch
	// PrevVersion is the oldest version the contract can be updated from.
	PrevVersion = prevMajor*1_000_000 + prevMinor*1_000 + prevPatch

	// ErrVersionMismatch is thrown by CheckVersion when the deployed contract
	// is too old to be updated directly.
	ErrVersionMismatch = "previous version mismatch"
	// ErrAlreadyUpdated is thrown by CheckVersion when the deployed contract
	// already has the current version.
	ErrAlreadyUpdated = "contract is already of the latest version"
)

// CheckVersion panics if the contract of the given version can't be updated
// to the current one.
func CheckVersion(from int) {
	if from < PrevVersion {
		panic(ErrVersionMismatch + ": expected >=" + std.Itoa(PrevVersion, 10))
	}
	if from == Version {
		panic(ErrAlreadyUpdated + ": " + std.Itoa(Version, 10))
	}
}

// AppendVersion adds the version of the deployed contract to update
// arguments, so _deploy of the new code can check it.
func AppendVersion(data any) []any {
	if data == nil {
		return []any{Version}
	}
	return append(data.([]any), Version)
}
