package autobuild

import (
	"fmt"

	"github.com/rigforge/rigforge/pkg/domain/entities"
)

// Purpose names a build intent profile
type Purpose string

const (
	PurposeGaming      Purpose = "gaming"
	PurposeWorkstation Purpose = "workstation"
	PurposeStreaming   Purpose = "streaming"
	PurposeBasic       Purpose = "basic"
)

// ParsePurpose validates a purpose string
func ParsePurpose(s string) (Purpose, error) {
	switch Purpose(s) {
	case PurposeGaming, PurposeWorkstation, PurposeStreaming, PurposeBasic:
		return Purpose(s), nil
	}
	return "", fmt.Errorf("%w: unknown purpose %q", entities.ErrValidation, s)
}

// CPURank is the coarse tier used to place a CPU within the affordable
// candidates
type CPURank string

const (
	RankEntry   CPURank = "entry"
	RankMid     CPURank = "mid"
	RankMidHigh CPURank = "mid-high"
	RankHigh    CPURank = "high"
)

// Profile drives both the selection order and the per-category budget
// allocation of a generated build. Allocation fractions sum to at most
// 1; the remainder forms a shared pool used as a soft ceiling for any
// category without its own fraction.
type Profile struct {
	Purpose     Purpose
	TargetRAMGB int
	CPURank     CPURank
	PreferGPU   bool
	Order       []entities.Slug
	Allocation  map[entities.Slug]float64
}

// PoolFraction returns the unallocated remainder of the budget
func (p *Profile) PoolFraction() float64 {
	remaining := 1.0
	for _, fraction := range p.Allocation {
		remaining -= fraction
	}
	if remaining < 0 {
		return 0
	}
	return remaining
}

var profiles = map[Purpose]*Profile{
	PurposeGaming: {
		Purpose:     PurposeGaming,
		TargetRAMGB: 16,
		CPURank:     RankMidHigh,
		PreferGPU:   true,
		Order: []entities.Slug{
			entities.SlugCPU,
			entities.SlugGPU,
			entities.SlugMotherboard,
			entities.SlugMemory,
			entities.SlugStorage,
			entities.SlugPSU,
			entities.SlugCase,
			entities.SlugCPUCooler,
		},
		Allocation: map[entities.Slug]float64{
			entities.SlugCPU:         0.20,
			entities.SlugGPU:         0.35,
			entities.SlugMotherboard: 0.12,
			entities.SlugMemory:      0.08,
			entities.SlugStorage:     0.07,
			entities.SlugPSU:         0.06,
			entities.SlugCase:        0.05,
			entities.SlugCPUCooler:   0.04,
		},
	},
	PurposeWorkstation: {
		Purpose:     PurposeWorkstation,
		TargetRAMGB: 32,
		CPURank:     RankHigh,
		PreferGPU:   true,
		Order: []entities.Slug{
			entities.SlugCPU,
			entities.SlugMotherboard,
			entities.SlugMemory,
			entities.SlugStorage,
			entities.SlugGPU,
			entities.SlugPSU,
			entities.SlugCase,
			entities.SlugCPUCooler,
		},
		Allocation: map[entities.Slug]float64{
			entities.SlugCPU:         0.30,
			entities.SlugMotherboard: 0.12,
			entities.SlugMemory:      0.15,
			entities.SlugStorage:     0.10,
			entities.SlugGPU:         0.15,
			entities.SlugPSU:         0.06,
			entities.SlugCase:        0.05,
			entities.SlugCPUCooler:   0.05,
		},
	},
	PurposeStreaming: {
		Purpose:     PurposeStreaming,
		TargetRAMGB: 32,
		CPURank:     RankMidHigh,
		PreferGPU:   true,
		Order: []entities.Slug{
			entities.SlugCPU,
			entities.SlugGPU,
			entities.SlugMotherboard,
			entities.SlugMemory,
			entities.SlugStorage,
			entities.SlugPSU,
			entities.SlugCase,
			entities.SlugCPUCooler,
		},
		Allocation: map[entities.Slug]float64{
			entities.SlugCPU:         0.25,
			entities.SlugGPU:         0.30,
			entities.SlugMotherboard: 0.10,
			entities.SlugMemory:      0.10,
			entities.SlugStorage:     0.07,
			entities.SlugPSU:         0.06,
			entities.SlugCase:        0.05,
			entities.SlugCPUCooler:   0.04,
		},
	},
	PurposeBasic: {
		Purpose:     PurposeBasic,
		TargetRAMGB: 8,
		CPURank:     RankEntry,
		PreferGPU:   false,
		Order: []entities.Slug{
			entities.SlugCPU,
			entities.SlugMotherboard,
			entities.SlugMemory,
			entities.SlugStorage,
			entities.SlugPSU,
			entities.SlugCase,
			entities.SlugCPUCooler,
		},
		Allocation: map[entities.Slug]float64{
			entities.SlugCPU:         0.25,
			entities.SlugMotherboard: 0.20,
			entities.SlugMemory:      0.12,
			entities.SlugStorage:     0.12,
			entities.SlugPSU:         0.10,
			entities.SlugCase:        0.10,
		},
	},
}

// ProfileFor returns the profile for a purpose
func ProfileFor(purpose Purpose) *Profile {
	return profiles[purpose]
}
