package helper

import (
	"time"

	uuid "github.com/satori/go.uuid"
)

// Clock abstracts time retrieval so lock timestamps, heartbeat timestamps,
// and access-request timestamps are deterministic under test.
type Clock interface {
	Now() time.Time
}

// RealClock reports the actual wall-clock time.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// IDGenerator abstracts identifier generation, mirroring Clock's purpose:
// deterministic tests without monkey-patching a package-level RNG.
type IDGenerator interface {
	New() string
}

// UUIDGenerator produces version-4 UUIDs via satori/go.uuid.
type UUIDGenerator struct{}

func (UUIDGenerator) New() string { return uuid.NewV4().String() }
