// Package hardware maps a memory requirement onto a recommended hardware tier.
//
// The tier table is fixed: kyanite nodes with 1 to 64 cores and 8000 MB of
// memory per core, ordered by ascending capacity. Selection is first-fit: the
// first tier whose memory strictly exceeds the requirement wins.
package hardware

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/jamesainslie/hwsuggest/pkg/hwsuggest/logging"
)

var logger = logging.Get("hardware")

const (
	// CoreType is the code of every tier in the table.
	CoreType = "kyanite"

	// MemoryPerCore is the memory, in MB, that each core contributes to a tier.
	MemoryPerCore = 8000
)

// coreCounts lists the available core counts in ascending order.
var coreCounts = [...]int{1, 2, 4, 8, 16, 24, 32, 48, 64}

// Tier is one hardware configuration.
type Tier struct {
	// Code is the coretype identifier.
	Code string `json:"code" yaml:"code"`

	// CoreCount is the number of cores.
	CoreCount int `json:"corecount" yaml:"corecount"`

	// Memory is the tier's memory capacity in MB.
	Memory int `json:"memory" yaml:"memory"`
}

// String returns a short human-readable description of the tier.
func (t Tier) String() string {
	return fmt.Sprintf("%s x%d (%s MB)", t.Code, t.CoreCount, humanize.Comma(int64(t.Memory)))
}

// IsZero reports whether t is the zero Tier.
func (t Tier) IsZero() bool {
	return t == Tier{}
}

// table is built once and never mutated; Tiers hands out copies.
var table = buildTable()

func buildTable() []Tier {
	tiers := make([]Tier, len(coreCounts))
	for i, cores := range coreCounts {
		tiers[i] = Tier{
			Code:      CoreType,
			CoreCount: cores,
			Memory:    cores * MemoryPerCore,
		}
	}
	return tiers
}

// Tiers returns a copy of the tier table in ascending order of capacity.
func Tiers() []Tier {
	out := make([]Tier, len(table))
	copy(out, table)
	return out
}

// Default returns the tier used when no table entry has enough memory.
// It is defined on its own rather than taken from the table.
func Default() Tier {
	return Tier{Code: "kyanite", CoreCount: 64, Memory: 512000}
}

// Select returns the first tier whose memory strictly exceeds memoryRequired.
// The second result is false when no tier qualifies.
func Select(memoryRequired float64) (Tier, bool) {
	for _, t := range table {
		if float64(t.Memory) > memoryRequired {
			return t, true
		}
	}
	return Tier{}, false
}

// Suggestion is the outcome of applying the fallback policy to a selection.
type Suggestion struct {
	// MemoryRequired is the requirement, in MB, the tier was chosen for.
	MemoryRequired float64

	// Tier is the recommended tier.
	Tier Tier

	// Fallback is true when no table entry qualified and Tier is Default().
	Fallback bool
}

// Suggest selects a tier for memoryRequired, substituting Default() when
// nothing in the table is large enough.
func Suggest(memoryRequired float64) Suggestion {
	if t, ok := Select(memoryRequired); ok {
		logger.Debug("tier selected", "required_mb", memoryRequired, "tier", t.String())
		return Suggestion{MemoryRequired: memoryRequired, Tier: t}
	}
	logger.Debug("no tier exceeds requirement", "required_mb", memoryRequired, "largest_mb", table[len(table)-1].Memory)
	return Suggestion{MemoryRequired: memoryRequired, Tier: Default(), Fallback: true}
}
