package services

import (
	"math"
	"regexp"
	"strings"

	"github.com/rigforge/rigforge/pkg/domain/entities"
)

// DefaultPSUHeadroom is the safety factor applied to CPU+GPU TDP when
// validating a power supply.
const DefaultPSUHeadroom = 1.25

// Reason strings returned by the compatibility rules
const (
	ReasonCPUSocket        = "CPU socket does not match motherboard"
	ReasonRAMType          = "RAM type incompatible with motherboard"
	ReasonRAMSpeed         = "RAM speed exceeds motherboard limit"
	ReasonGPULength        = "GPU is too long for the case"
	ReasonCoolerHeight     = "Cooler height exceeds case clearance"
	ReasonCoolerSocket     = "Cooler not compatible with CPU socket"
	ReasonPSUWattage       = "PSU wattage insufficient for the build"
	ReasonPSULoad          = "PSU cannot support CPU + GPU load"
	ReasonCaseFormFactor   = "Case does not support motherboard form factor"
	ReasonBoardFormFactor  = "Motherboard form factor not supported by case"
	ReasonStorageInterface = "Storage interface not supported by motherboard"
)

var nvmeInterfacePattern = regexp.MustCompile(`nvme|m\.2|m2|pci`)

// CheckResult is the verdict of a compatibility check
type CheckResult struct {
	OK     bool
	Reason string
}

func ok() CheckResult { return CheckResult{OK: true} }

func fail(reason string) CheckResult { return CheckResult{Reason: reason} }

// CompatibilityChecker evaluates the pairwise build rules. Rules are
// symmetric: the same constraint applies regardless of which side is
// the candidate. A rule whose data is missing on either side is a
// no-op, so partially catalogued parts always pass.
type CompatibilityChecker struct {
	psuHeadroom float64
}

// NewCompatibilityChecker creates a checker with the default PSU headroom
func NewCompatibilityChecker() *CompatibilityChecker {
	return NewCompatibilityCheckerWithHeadroom(DefaultPSUHeadroom)
}

// NewCompatibilityCheckerWithHeadroom creates a checker with a custom
// PSU safety factor
func NewCompatibilityCheckerWithHeadroom(headroom float64) *CompatibilityChecker {
	return &CompatibilityChecker{psuHeadroom: headroom}
}

// Check decides whether candidate may join the build in the given
// category. The build argument is the expanded current workspace.
func (c *CompatibilityChecker) Check(build entities.ExpandedBuild, category entities.Slug, candidate *entities.ComponentDetail) CheckResult {
	if candidate == nil {
		return ok()
	}

	// Overlay the candidate so pair rules can read both sides uniformly.
	merged := make(entities.ExpandedBuild, len(build)+1)
	for slug, part := range build {
		if slug == category || part.Placeholder() {
			continue
		}
		merged[slug] = part
	}
	merged[category] = &entities.ExpandedPart{Detail: candidate}

	checks := []func(entities.ExpandedBuild, entities.Slug) CheckResult{
		c.checkCPUSocket,
		c.checkMemoryType,
		c.checkMemorySpeed,
		c.checkGPULength,
		c.checkCoolerHeight,
		c.checkCoolerSocket,
		c.checkPSUHeadroom,
		c.checkFormFactor,
		c.checkStorageInterface,
	}
	for _, check := range checks {
		if result := check(merged, category); !result.OK {
			return result
		}
	}
	return ok()
}

// IsCompatible is the filter form of Check, using the candidate's own
// category field.
func (c *CompatibilityChecker) IsCompatible(build entities.ExpandedBuild, candidate *entities.ComponentDetail) CheckResult {
	return c.Check(build, candidate.Category, candidate)
}

// CheckWholeBuild treats each installed part in turn as the candidate
// against the rest, returning the first failure.
func (c *CompatibilityChecker) CheckWholeBuild(expanded entities.ExpandedBuild) CheckResult {
	for _, slug := range entities.AllSlugs {
		part, present := expanded[slug]
		if !present || part.Placeholder() {
			continue
		}
		rest := make(entities.ExpandedBuild, len(expanded))
		for s, p := range expanded {
			if s != slug {
				rest[s] = p
			}
		}
		if result := c.Check(rest, slug, part.Detail); !result.OK {
			return result
		}
	}
	return ok()
}

// RequiredPSUWattage returns the minimum PSU wattage for the build's
// CPU+GPU load under the given headroom factor. Zero when neither a CPU
// nor a GPU with a known TDP is present.
func RequiredPSUWattage(expanded entities.ExpandedBuild, headroom float64) int {
	required := 0
	if cpu := specsCPU(expanded); cpu != nil {
		required += cpu.TDP
	}
	if gpu := specsGPU(expanded); gpu != nil {
		required += gpu.TDP
	}
	if required == 0 {
		return 0
	}
	return int(math.Ceil(float64(required) * headroom))
}

func (c *CompatibilityChecker) checkCPUSocket(build entities.ExpandedBuild, _ entities.Slug) CheckResult {
	cpu, board := specsCPU(build), specsBoard(build)
	if cpu == nil || board == nil {
		return ok()
	}
	if norm(cpu.Socket) == "" || norm(board.Socket) == "" {
		return ok()
	}
	if norm(cpu.Socket) != norm(board.Socket) {
		return fail(ReasonCPUSocket)
	}
	return ok()
}

func (c *CompatibilityChecker) checkMemoryType(build entities.ExpandedBuild, _ entities.Slug) CheckResult {
	memory, board := specsMemory(build), specsBoard(build)
	if memory == nil || board == nil {
		return ok()
	}
	if norm(memory.Type) == "" || norm(board.MemoryType) == "" {
		return ok()
	}
	if norm(memory.Type) != norm(board.MemoryType) {
		return fail(ReasonRAMType)
	}
	return ok()
}

func (c *CompatibilityChecker) checkMemorySpeed(build entities.ExpandedBuild, _ entities.Slug) CheckResult {
	memory, board := specsMemory(build), specsBoard(build)
	if memory == nil || board == nil {
		return ok()
	}
	if memory.SpeedMHz <= 0 || board.MaxMemorySpeedMHz <= 0 {
		return ok()
	}
	if memory.SpeedMHz > board.MaxMemorySpeedMHz {
		return fail(ReasonRAMSpeed)
	}
	return ok()
}

func (c *CompatibilityChecker) checkGPULength(build entities.ExpandedBuild, _ entities.Slug) CheckResult {
	gpu, enclosure := specsGPU(build), specsCase(build)
	if gpu == nil || enclosure == nil {
		return ok()
	}
	if gpu.LengthMM <= 0 || enclosure.MaxGPULengthMM <= 0 {
		return ok()
	}
	if gpu.LengthMM > enclosure.MaxGPULengthMM {
		return fail(ReasonGPULength)
	}
	return ok()
}

func (c *CompatibilityChecker) checkCoolerHeight(build entities.ExpandedBuild, _ entities.Slug) CheckResult {
	cooler, enclosure := specsCooler(build), specsCase(build)
	if cooler == nil || enclosure == nil {
		return ok()
	}
	if cooler.HeightMM <= 0 || enclosure.MaxCPUCoolerHeightMM <= 0 {
		return ok()
	}
	if cooler.HeightMM > enclosure.MaxCPUCoolerHeightMM {
		return fail(ReasonCoolerHeight)
	}
	return ok()
}

func (c *CompatibilityChecker) checkCoolerSocket(build entities.ExpandedBuild, _ entities.Slug) CheckResult {
	cooler, cpu := specsCooler(build), specsCPU(build)
	if cooler == nil || cpu == nil {
		return ok()
	}
	if len(cooler.CompatibleSockets) == 0 || norm(cpu.Socket) == "" {
		return ok()
	}
	if !normSet(cooler.CompatibleSockets)[norm(cpu.Socket)] {
		return fail(ReasonCoolerSocket)
	}
	return ok()
}

func (c *CompatibilityChecker) checkPSUHeadroom(build entities.ExpandedBuild, candidateCategory entities.Slug) CheckResult {
	psu := specsPSU(build)
	if psu == nil || psu.Wattage <= 0 {
		return ok()
	}
	required := RequiredPSUWattage(build, c.psuHeadroom)
	if required == 0 || psu.Wattage >= required {
		return ok()
	}
	if candidateCategory == entities.SlugPSU {
		return fail(ReasonPSUWattage)
	}
	return fail(ReasonPSULoad)
}

func (c *CompatibilityChecker) checkFormFactor(build entities.ExpandedBuild, candidateCategory entities.Slug) CheckResult {
	board, enclosure := specsBoard(build), specsCase(build)
	if board == nil || enclosure == nil {
		return ok()
	}
	if norm(board.FormFactor) == "" || len(enclosure.FormFactorSupport) == 0 {
		return ok()
	}
	if !normSet(enclosure.FormFactorSupport)[norm(board.FormFactor)] {
		if candidateCategory == entities.SlugMotherboard {
			return fail(ReasonBoardFormFactor)
		}
		return fail(ReasonCaseFormFactor)
	}
	return ok()
}

func (c *CompatibilityChecker) checkStorageInterface(build entities.ExpandedBuild, _ entities.Slug) CheckResult {
	storage, board := specsStorage(build), specsBoard(build)
	if storage == nil || board == nil {
		return ok()
	}
	iface := norm(storage.Interface)
	if iface == "" {
		return ok()
	}
	// A board that declares no storage information at all is unknown.
	declared := len(board.StorageSupport) > 0 || board.NVMeSlots > 0 || board.M2Slots > 0 || board.SATAPorts > 0
	if !declared {
		return ok()
	}

	support := normSet(board.StorageSupport)
	switch {
	case nvmeInterfacePattern.MatchString(iface):
		for token := range support {
			if nvmeInterfacePattern.MatchString(token) {
				return ok()
			}
		}
		if board.NVMeSlots >= 1 || board.M2Slots >= 1 {
			return ok()
		}
		return fail(ReasonStorageInterface)
	case strings.Contains(iface, "sata"):
		if board.SATAPorts >= 1 {
			return ok()
		}
		for token := range support {
			if strings.Contains(token, "sata") {
				return ok()
			}
		}
		return fail(ReasonStorageInterface)
	}
	return ok()
}

func norm(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func normSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		if n := norm(v); n != "" {
			set[n] = true
		}
	}
	return set
}

func specsCPU(build entities.ExpandedBuild) *entities.CPUSpecs {
	if part, present := build[entities.SlugCPU]; present && !part.Placeholder() {
		if s, isCPU := part.Detail.Specs.(*entities.CPUSpecs); isCPU {
			return s
		}
	}
	return nil
}

func specsBoard(build entities.ExpandedBuild) *entities.MotherboardSpecs {
	if part, present := build[entities.SlugMotherboard]; present && !part.Placeholder() {
		if s, isBoard := part.Detail.Specs.(*entities.MotherboardSpecs); isBoard {
			return s
		}
	}
	return nil
}

func specsMemory(build entities.ExpandedBuild) *entities.MemorySpecs {
	if part, present := build[entities.SlugMemory]; present && !part.Placeholder() {
		if s, isMemory := part.Detail.Specs.(*entities.MemorySpecs); isMemory {
			return s
		}
	}
	return nil
}

func specsGPU(build entities.ExpandedBuild) *entities.GPUSpecs {
	if part, present := build[entities.SlugGPU]; present && !part.Placeholder() {
		if s, isGPU := part.Detail.Specs.(*entities.GPUSpecs); isGPU {
			return s
		}
	}
	return nil
}

func specsPSU(build entities.ExpandedBuild) *entities.PSUSpecs {
	if part, present := build[entities.SlugPSU]; present && !part.Placeholder() {
		if s, isPSU := part.Detail.Specs.(*entities.PSUSpecs); isPSU {
			return s
		}
	}
	return nil
}

func specsCase(build entities.ExpandedBuild) *entities.CaseSpecs {
	if part, present := build[entities.SlugCase]; present && !part.Placeholder() {
		if s, isCase := part.Detail.Specs.(*entities.CaseSpecs); isCase {
			return s
		}
	}
	return nil
}

func specsCooler(build entities.ExpandedBuild) *entities.CoolerSpecs {
	if part, present := build[entities.SlugCPUCooler]; present && !part.Placeholder() {
		if s, isCooler := part.Detail.Specs.(*entities.CoolerSpecs); isCooler {
			return s
		}
	}
	return nil
}

func specsStorage(build entities.ExpandedBuild) *entities.StorageSpecs {
	if part, present := build[entities.SlugStorage]; present && !part.Placeholder() {
		if s, isStorage := part.Detail.Specs.(*entities.StorageSpecs); isStorage {
			return s
		}
	}
	return nil
}
