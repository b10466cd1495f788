package sampler

import "errors"

var (
	// ErrSystemUnavailable indicates that the system-wide counters could
	// not be read. The snapshot keeps its previous values.
	ErrSystemUnavailable = errors.New("sampler: system counters unavailable")

	// ErrEnumerate indicates that the process list could not be read.
	ErrEnumerate = errors.New("sampler: process enumeration failed")
)
