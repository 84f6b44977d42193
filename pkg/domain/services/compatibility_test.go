package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/rigforge/rigforge/pkg/domain/entities"
)

func part(category entities.Slug, name string, specs entities.Specs) *entities.ComponentDetail {
	return &entities.ComponentDetail{
		Component: entities.Component{
			ID:       uuid.New(),
			Category: category,
			Name:     name,
			Status:   entities.StatusActive,
			Stock:    10,
		},
		Specs: specs,
	}
}

func buildOf(parts ...*entities.ComponentDetail) entities.ExpandedBuild {
	build := entities.ExpandedBuild{}
	for _, p := range parts {
		build[p.Category] = &entities.ExpandedPart{Detail: p}
	}
	return build
}

func TestCheck_CPUSocketMismatch(t *testing.T) {
	checker := NewCompatibilityChecker()
	board := part(entities.SlugMotherboard, "B650 Board", &entities.MotherboardSpecs{Socket: "AM5"})
	cpu := part(entities.SlugCPU, "i5-13600K", &entities.CPUSpecs{Socket: "LGA1700"})

	result := checker.Check(buildOf(board), entities.SlugCPU, cpu)
	if result.OK {
		t.Fatal("expected socket mismatch to be rejected")
	}
	if result.Reason != ReasonCPUSocket {
		t.Errorf("expected reason %q, got %q", ReasonCPUSocket, result.Reason)
	}
}

func TestCheck_SocketRuleIsSymmetric(t *testing.T) {
	checker := NewCompatibilityChecker()
	cpu := part(entities.SlugCPU, "Ryzen 7 7700X", &entities.CPUSpecs{Socket: "AM5"})
	matching := part(entities.SlugMotherboard, "X670E", &entities.MotherboardSpecs{Socket: "am5 "})
	mismatched := part(entities.SlugMotherboard, "Z790", &entities.MotherboardSpecs{Socket: "LGA1700"})

	tests := []struct {
		name  string
		board *entities.ComponentDetail
		want  bool
	}{
		{"matching_normalized", matching, true},
		{"mismatched", mismatched, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			forward := checker.Check(buildOf(tt.board), entities.SlugCPU, cpu)
			backward := checker.Check(buildOf(cpu), entities.SlugMotherboard, tt.board)
			if forward.OK != tt.want || backward.OK != tt.want {
				t.Errorf("forward=%v backward=%v, want both %v", forward.OK, backward.OK, tt.want)
			}
			if forward.OK != backward.OK {
				t.Error("rule must be symmetric")
			}
		})
	}
}

func TestCheck_PSUHeadroom(t *testing.T) {
	checker := NewCompatibilityChecker()
	cpu := part(entities.SlugCPU, "i7-13700K", &entities.CPUSpecs{Socket: "LGA1700", TDP: 125})
	gpu := part(entities.SlugGPU, "RTX 4070 Ti", &entities.GPUSpecs{TDP: 285})
	build := buildOf(cpu, gpu)

	// required = 125 + 285 = 410, ceil(410 * 1.25) = 513
	tests := []struct {
		name    string
		wattage int
		want    bool
	}{
		{"insufficient_500w", 500, false},
		{"boundary_513w", 513, true},
		{"sufficient_650w", 650, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			psu := part(entities.SlugPSU, "PSU", &entities.PSUSpecs{Wattage: tt.wattage})
			result := checker.Check(build, entities.SlugPSU, psu)
			if result.OK != tt.want {
				t.Errorf("wattage %d: got ok=%v want %v (reason %q)", tt.wattage, result.OK, tt.want, result.Reason)
			}
			if !tt.want && result.Reason != ReasonPSUWattage {
				t.Errorf("expected reason %q, got %q", ReasonPSUWattage, result.Reason)
			}
		})
	}
}

func TestCheck_GPUAgainstWeakPSUNamesLoad(t *testing.T) {
	checker := NewCompatibilityChecker()
	cpu := part(entities.SlugCPU, "CPU", &entities.CPUSpecs{TDP: 125})
	psu := part(entities.SlugPSU, "450W PSU", &entities.PSUSpecs{Wattage: 450})
	gpu := part(entities.SlugGPU, "RTX 4080", &entities.GPUSpecs{TDP: 320})

	result := checker.Check(buildOf(cpu, psu), entities.SlugGPU, gpu)
	if result.OK {
		t.Fatal("expected GPU to be rejected against undersized PSU")
	}
	if result.Reason != ReasonPSULoad {
		t.Errorf("expected reason %q, got %q", ReasonPSULoad, result.Reason)
	}
}

func TestCheck_MemoryRules(t *testing.T) {
	checker := NewCompatibilityChecker()
	board := part(entities.SlugMotherboard, "Board", &entities.MotherboardSpecs{
		MemoryType:        "DDR5",
		MaxMemorySpeedMHz: 6000,
	})

	tests := []struct {
		name       string
		memory     *entities.MemorySpecs
		wantOK     bool
		wantReason string
	}{
		{"matching", &entities.MemorySpecs{Type: "DDR5", SpeedMHz: 5600}, true, ""},
		{"wrong_type", &entities.MemorySpecs{Type: "DDR4", SpeedMHz: 3200}, false, ReasonRAMType},
		{"too_fast", &entities.MemorySpecs{Type: "DDR5", SpeedMHz: 6400}, false, ReasonRAMSpeed},
		{"unknown_type_allowed", &entities.MemorySpecs{SpeedMHz: 5600}, true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			memory := part(entities.SlugMemory, "Kit", tt.memory)
			result := checker.Check(buildOf(board), entities.SlugMemory, memory)
			if result.OK != tt.wantOK {
				t.Errorf("got ok=%v want %v (reason %q)", result.OK, tt.wantOK, result.Reason)
			}
			if result.Reason != tt.wantReason {
				t.Errorf("got reason %q want %q", result.Reason, tt.wantReason)
			}
		})
	}
}

func TestCheck_CaseClearances(t *testing.T) {
	checker := NewCompatibilityChecker()
	enclosure := part(entities.SlugCase, "Compact Case", &entities.CaseSpecs{
		FormFactorSupport:    []string{"ATX", "Micro-ATX"},
		MaxGPULengthMM:       330,
		MaxCPUCoolerHeightMM: 160,
	})

	longGPU := part(entities.SlugGPU, "Oversized GPU", &entities.GPUSpecs{LengthMM: 345})
	if result := checker.Check(buildOf(enclosure), entities.SlugGPU, longGPU); result.OK || result.Reason != ReasonGPULength {
		t.Errorf("long GPU: got (%v, %q)", result.OK, result.Reason)
	}

	tallCooler := part(entities.SlugCPUCooler, "Tower Cooler", &entities.CoolerSpecs{HeightMM: 165})
	if result := checker.Check(buildOf(enclosure), entities.SlugCPUCooler, tallCooler); result.OK || result.Reason != ReasonCoolerHeight {
		t.Errorf("tall cooler: got (%v, %q)", result.OK, result.Reason)
	}

	itxBoard := part(entities.SlugMotherboard, "ITX Board", &entities.MotherboardSpecs{FormFactor: "Mini-ITX"})
	if result := checker.Check(buildOf(enclosure), entities.SlugMotherboard, itxBoard); result.OK || result.Reason != ReasonBoardFormFactor {
		t.Errorf("itx board: got (%v, %q)", result.OK, result.Reason)
	}
	if result := checker.Check(buildOf(itxBoard), entities.SlugCase, enclosure); result.OK || result.Reason != ReasonCaseFormFactor {
		t.Errorf("case candidate: got (%v, %q)", result.OK, result.Reason)
	}
}

func TestCheck_CoolerSocketList(t *testing.T) {
	checker := NewCompatibilityChecker()
	cpu := part(entities.SlugCPU, "CPU", &entities.CPUSpecs{Socket: "AM5"})

	declared := part(entities.SlugCPUCooler, "Cooler", &entities.CoolerSpecs{
		CompatibleSockets: []string{"LGA1700", "AM4"},
	})
	if result := checker.Check(buildOf(cpu), entities.SlugCPUCooler, declared); result.OK || result.Reason != ReasonCoolerSocket {
		t.Errorf("declared list: got (%v, %q)", result.OK, result.Reason)
	}

	// A cooler that declares no socket list is unknown and allowed.
	undeclared := part(entities.SlugCPUCooler, "Universal Cooler", &entities.CoolerSpecs{})
	if result := checker.Check(buildOf(cpu), entities.SlugCPUCooler, undeclared); !result.OK {
		t.Errorf("undeclared list should be allowed, got %q", result.Reason)
	}
}

func TestCheck_StorageInterface(t *testing.T) {
	checker := NewCompatibilityChecker()

	tests := []struct {
		name    string
		board   *entities.MotherboardSpecs
		storage *entities.StorageSpecs
		wantOK  bool
	}{
		{
			"nvme_supported_by_token",
			&entities.MotherboardSpecs{StorageSupport: []string{"NVMe", "SATA"}},
			&entities.StorageSpecs{Interface: "NVMe"},
			true,
		},
		{
			"nvme_supported_by_slots",
			&entities.MotherboardSpecs{NVMeSlots: 2, SATAPorts: 4},
			&entities.StorageSpecs{Interface: "M.2"},
			true,
		},
		{
			"nvme_unsupported",
			&entities.MotherboardSpecs{StorageSupport: []string{"SATA"}, SATAPorts: 6},
			&entities.StorageSpecs{Interface: "NVMe"},
			false,
		},
		{
			"sata_supported",
			&entities.MotherboardSpecs{SATAPorts: 4},
			&entities.StorageSpecs{Interface: "SATA"},
			true,
		},
		{
			"sata_unsupported",
			&entities.MotherboardSpecs{StorageSupport: []string{"NVMe"}, NVMeSlots: 2},
			&entities.StorageSpecs{Interface: "SATA"},
			false,
		},
		{
			"board_declares_nothing",
			&entities.MotherboardSpecs{},
			&entities.StorageSpecs{Interface: "NVMe"},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			board := part(entities.SlugMotherboard, "Board", tt.board)
			drive := part(entities.SlugStorage, "Drive", tt.storage)
			result := checker.Check(buildOf(board), entities.SlugStorage, drive)
			if result.OK != tt.wantOK {
				t.Errorf("got ok=%v want %v (reason %q)", result.OK, tt.wantOK, result.Reason)
			}
		})
	}
}

func TestCheckWholeBuild(t *testing.T) {
	checker := NewCompatibilityChecker()

	good := buildOf(
		part(entities.SlugCPU, "CPU", &entities.CPUSpecs{Socket: "AM5", TDP: 105}),
		part(entities.SlugMotherboard, "Board", &entities.MotherboardSpecs{Socket: "AM5", MemoryType: "DDR5", MaxMemorySpeedMHz: 6400}),
		part(entities.SlugMemory, "Kit", &entities.MemorySpecs{Type: "DDR5", SpeedMHz: 6000}),
		part(entities.SlugPSU, "PSU", &entities.PSUSpecs{Wattage: 750}),
	)
	if result := checker.CheckWholeBuild(good); !result.OK {
		t.Fatalf("expected whole build to pass, got %q", result.Reason)
	}

	bad := buildOf(
		part(entities.SlugCPU, "CPU", &entities.CPUSpecs{Socket: "LGA1700"}),
		part(entities.SlugMotherboard, "Board", &entities.MotherboardSpecs{Socket: "AM5"}),
	)
	if result := checker.CheckWholeBuild(bad); result.OK || result.Reason != ReasonCPUSocket {
		t.Errorf("expected socket failure, got (%v, %q)", result.OK, result.Reason)
	}
}

func TestCheck_MissingSpecsAlwaysAllowed(t *testing.T) {
	checker := NewCompatibilityChecker()
	full := buildOf(
		part(entities.SlugCPU, "CPU", &entities.CPUSpecs{Socket: "AM5", TDP: 170}),
		part(entities.SlugCase, "Case", &entities.CaseSpecs{MaxGPULengthMM: 300, FormFactorSupport: []string{"ATX"}}),
		part(entities.SlugPSU, "PSU", &entities.PSUSpecs{Wattage: 550}),
	)

	// No specs row at all: every rule is a no-op.
	bare := part(entities.SlugGPU, "Uncatalogued GPU", nil)
	if result := checker.Check(full, entities.SlugGPU, bare); !result.OK {
		t.Errorf("component without specs must be allowed, got %q", result.Reason)
	}
}
