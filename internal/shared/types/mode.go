package types

import (
	"fmt"
	"strings"
)

// Mode is the browsing mode of a session partition
type Mode string

const (
	ModeOpen    Mode = "open"
	ModeCurated Mode = "curated"
)

// Modes lists every mode in a stable order
var Modes = []Mode{ModeOpen, ModeCurated}

// String returns the string representation of the mode
func (m Mode) String() string {
	return string(m)
}

// Valid reports whether m is a known mode
func (m Mode) Valid() bool {
	return m == ModeOpen || m == ModeCurated
}

// Other returns the opposite mode
func (m Mode) Other() Mode {
	if m == ModeCurated {
		return ModeOpen
	}
	return ModeCurated
}

// ParseMode parses a mode name, case-insensitively
func ParseMode(s string) (Mode, error) {
	m := Mode(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("unknown mode %q", s)
	}
	return m, nil
}

// PartitionID identifies an isolated storage/cookie/cache scope
type PartitionID string

const (
	PartitionOpen    PartitionID = "open"
	PartitionCurated PartitionID = "curated"
)

// Partition binds a storage scope to exactly one mode
type Partition struct {
	ID   PartitionID `json:"id"`
	Mode Mode        `json:"mode"`
}

// PartitionFor returns the shared partition for a mode
func PartitionFor(m Mode) Partition {
	if m == ModeCurated {
		return Partition{ID: PartitionCurated, Mode: ModeCurated}
	}
	return Partition{ID: PartitionOpen, Mode: ModeOpen}
}

// ParsePartition resolves a partition ID to its partition
func ParsePartition(id string) (Partition, error) {
	switch PartitionID(strings.ToLower(strings.TrimSpace(id))) {
	case PartitionOpen:
		return PartitionFor(ModeOpen), nil
	case PartitionCurated:
		return PartitionFor(ModeCurated), nil
	default:
		return Partition{}, fmt.Errorf("unknown partition %q", id)
	}
}
