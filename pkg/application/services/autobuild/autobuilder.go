// Package autobuild generates complete, compatible builds from a stated
// purpose and optional budget, and completes partial builds.
package autobuild

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rigforge/rigforge/pkg/application/services/catalog"
	"github.com/rigforge/rigforge/pkg/domain/entities"
	"github.com/rigforge/rigforge/pkg/domain/services"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Tuning holds the design constants of the generator. They are
// parameters, not implementation artifacts; tests override them.
type Tuning struct {
	// Deadline bounds the whole generation run.
	Deadline time.Duration
	// FetchFloor is the minimum time box for any single catalog fetch.
	FetchFloor time.Duration
	// PSUHeadroom is the safety factor applied when sizing a PSU pick.
	// Deliberately above the compatibility rule's 1.25 so generated
	// builds pass validation with margin.
	PSUHeadroom float64
	// PSUFloorWatts is the minimum wattage ever required of a pick.
	PSUFloorWatts int
	// MinGPUFraction is the floor share of the budget granted to the GPU
	// for gaming and streaming builds.
	MinGPUFraction float64
	// PoolFloor is the minimum shared-pool ceiling, in currency units.
	PoolFloor int64
}

// DefaultTuning returns the production constants
func DefaultTuning() Tuning {
	return Tuning{
		Deadline:       10 * time.Second,
		FetchFloor:     200 * time.Millisecond,
		PSUHeadroom:    1.3,
		PSUFloorWatts:  350,
		MinGPUFraction: 0.25,
		PoolFloor:      500,
	}
}

// Request describes one generation run
type Request struct {
	Purpose Purpose
	// Budget caps the build; zero means unconstrained.
	Budget decimal.Decimal
	// RespectCPU short-circuits the CPU pick when the component is
	// compatible and affordable.
	RespectCPU *uuid.UUID
	// Initial seeds the build with already-chosen components; their
	// categories are not re-picked.
	Initial map[entities.Slug]uuid.UUID
}

// Result maps every attempted category to a component id, nil when the
// category could not be filled
type Result map[entities.Slug]*uuid.UUID

// Builder generates builds against the live catalog
type Builder struct {
	catalog *catalog.Service
	checker *services.CompatibilityChecker
	logger  *zap.Logger
	tuning  Tuning
}

// NewBuilder creates a builder with default tuning
func NewBuilder(catalogService *catalog.Service, checker *services.CompatibilityChecker, logger *zap.Logger) *Builder {
	return NewBuilderWithTuning(catalogService, checker, logger, DefaultTuning())
}

// NewBuilderWithTuning creates a builder with custom tuning
func NewBuilderWithTuning(catalogService *catalog.Service, checker *services.CompatibilityChecker, logger *zap.Logger, tuning Tuning) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		catalog: catalogService,
		checker: checker,
		logger:  logger,
		tuning:  tuning,
	}
}

// Build generates a component selection for the request. Per-category
// failures are logged and skipped; on deadline exhaustion the partial
// selection gathered so far is returned rather than an error.
func (b *Builder) Build(ctx context.Context, req Request) (Result, error) {
	profile := ProfileFor(req.Purpose)
	if profile == nil {
		return nil, fmt.Errorf("%w: unknown purpose %q", entities.ErrValidation, req.Purpose)
	}

	ctx, cancel := context.WithTimeout(ctx, b.tuning.Deadline)
	defer cancel()

	result := Result{}
	for _, slug := range profile.Order {
		result[slug] = nil
	}

	expanded := entities.ExpandedBuild{}
	remaining := req.Budget
	for slug, id := range req.Initial {
		detail, err := b.getComponent(ctx, id)
		if err != nil || detail == nil {
			continue
		}
		componentID := detail.ID
		result[slug] = &componentID
		expanded[slug] = &entities.ExpandedPart{Detail: detail}
		remaining = remaining.Sub(detail.Price)
	}

	for _, slug := range profile.Order {
		if _, seeded := req.Initial[slug]; seeded {
			continue
		}
		if ctx.Err() != nil {
			b.logger.Warn("autobuild deadline reached, returning partial build",
				zap.String("purpose", string(req.Purpose)),
				zap.String("stopped_at", string(slug)))
			break
		}
		if slug == entities.SlugGPU && !profile.PreferGPU {
			continue
		}

		ceiling := b.ceilingFor(profile, slug, req.Budget, remaining)
		pick, err := b.pickCategory(ctx, profile, slug, expanded, ceiling, req)
		if err != nil {
			b.logger.Warn("autobuild category failed",
				zap.String("category", string(slug)),
				zap.Error(err))
			continue
		}
		if pick == nil {
			b.logger.Debug("autobuild found no candidate",
				zap.String("category", string(slug)),
				zap.String("ceiling", ceiling.String()))
			continue
		}

		componentID := pick.ID
		result[slug] = &componentID
		expanded[slug] = &entities.ExpandedPart{Detail: pick}
		remaining = remaining.Sub(pick.Price)
	}

	return result, nil
}

// AutoComplete fills the categories missing from a partial build. The
// purpose is inferred from the partial: workstation when it already
// carries 32 GB or more of memory, gaming otherwise.
func (b *Builder) AutoComplete(ctx context.Context, partial map[entities.Slug]uuid.UUID) (Result, error) {
	purpose := PurposeGaming
	if memoryID, present := partial[entities.SlugMemory]; present {
		if detail, err := b.getComponent(ctx, memoryID); err == nil && detail != nil {
			if specs, isMemory := detail.Specs.(*entities.MemorySpecs); isMemory && specs.CapacityGB >= 32 {
				purpose = PurposeWorkstation
			}
		}
	}

	req := Request{Purpose: purpose, Initial: partial}
	if cpuID, present := partial[entities.SlugCPU]; present {
		id := cpuID
		req.RespectCPU = &id
	}
	return b.Build(ctx, req)
}

// ceilingFor computes the local budget ceiling for one category
func (b *Builder) ceilingFor(profile *Profile, slug entities.Slug, budget, remaining decimal.Decimal) decimal.Decimal {
	if !budget.IsPositive() {
		return decimal.Zero // unconstrained
	}

	var ceiling decimal.Decimal
	if fraction, allocated := profile.Allocation[slug]; allocated && fraction > 0 {
		ceiling = budget.Mul(decimal.NewFromFloat(fraction))
	} else {
		pool := budget.Mul(decimal.NewFromFloat(profile.PoolFraction()))
		floor := decimal.NewFromInt(b.tuning.PoolFloor)
		if pool.LessThan(floor) {
			pool = floor
		}
		ceiling = pool
	}

	if slug == entities.SlugGPU && (profile.Purpose == PurposeGaming || profile.Purpose == PurposeStreaming) {
		gpuFloor := budget.Mul(decimal.NewFromFloat(b.tuning.MinGPUFraction))
		if ceiling.LessThan(gpuFloor) {
			ceiling = gpuFloor
		}
	}
	if remaining.IsPositive() && ceiling.GreaterThan(remaining) {
		ceiling = remaining
	}
	return ceiling
}

func (b *Builder) pickCategory(ctx context.Context, profile *Profile, slug entities.Slug, expanded entities.ExpandedBuild, ceiling decimal.Decimal, req Request) (*entities.ComponentDetail, error) {
	candidates, err := b.listVisible(ctx, slug)
	if err != nil {
		return nil, err
	}

	// Hard constraints derived from the running build, then the
	// compatibility filter.
	candidates = b.hardFilter(slug, candidates, expanded)
	var compatible []*entities.ComponentDetail
	for _, candidate := range candidates {
		if result := b.checker.Check(expanded, slug, candidate); result.OK {
			compatible = append(compatible, candidate)
		}
	}

	switch slug {
	case entities.SlugCPU:
		return b.pickCPU(ctx, profile, compatible, ceiling, req.RespectCPU), nil
	case entities.SlugMotherboard, entities.SlugCase, entities.SlugCPUCooler:
		return medianWithin(compatible, ceiling), nil
	case entities.SlugMemory:
		return b.pickMemory(profile, compatible, ceiling), nil
	case entities.SlugGPU:
		return pickGPU(compatible, ceiling), nil
	case entities.SlugStorage:
		return pickStorage(compatible, ceiling), nil
	case entities.SlugPSU:
		return b.pickPSU(compatible, ceiling, expanded), nil
	}
	return nil, fmt.Errorf("no selector for category %s", slug)
}

func (b *Builder) listVisible(ctx context.Context, slug entities.Slug) ([]*entities.ComponentDetail, error) {
	fetchCtx, cancel := b.fetchContext(ctx)
	defer cancel()

	listed, err := b.catalog.ListByCategory(fetchCtx, slug)
	if err != nil {
		return nil, err
	}
	var visible []*entities.ComponentDetail
	for _, candidate := range listed {
		if candidate.Visible() {
			visible = append(visible, candidate)
		}
	}
	return visible, nil
}

// fetchContext bounds one catalog fetch by the time left on the overall
// deadline, never below the configured floor
func (b *Builder) fetchContext(ctx context.Context) (context.Context, context.CancelFunc) {
	budget := b.tuning.FetchFloor
	if deadline, has := ctx.Deadline(); has {
		if remaining := time.Until(deadline); remaining > budget {
			budget = remaining
		}
	}
	return context.WithTimeout(context.WithoutCancel(ctx), budget)
}

func (b *Builder) getComponent(ctx context.Context, id uuid.UUID) (*entities.ComponentDetail, error) {
	fetchCtx, cancel := b.fetchContext(ctx)
	defer cancel()
	return b.catalog.GetComponentByID(fetchCtx, id)
}

// hardFilter applies the category's structural constraints before the
// compatibility engine runs
func (b *Builder) hardFilter(slug entities.Slug, candidates []*entities.ComponentDetail, expanded entities.ExpandedBuild) []*entities.ComponentDetail {
	switch slug {
	case entities.SlugMotherboard:
		cpu := cpuSpecsOf(expanded)
		if cpu == nil || cpu.Socket == "" {
			return candidates
		}
		var kept []*entities.ComponentDetail
		for _, candidate := range candidates {
			board, isBoard := candidate.Specs.(*entities.MotherboardSpecs)
			if isBoard && strings.EqualFold(board.Socket, cpu.Socket) {
				kept = append(kept, candidate)
			}
		}
		return kept

	case entities.SlugMemory:
		board := boardSpecsOf(expanded)
		if board == nil || board.MemoryType == "" {
			return candidates
		}
		var kept []*entities.ComponentDetail
		for _, candidate := range candidates {
			memory, isMemory := candidate.Specs.(*entities.MemorySpecs)
			if isMemory && strings.EqualFold(memory.Type, board.MemoryType) {
				kept = append(kept, candidate)
			}
		}
		return kept

	case entities.SlugCase:
		board := boardSpecsOf(expanded)
		gpu := gpuSpecsOf(expanded)
		var kept []*entities.ComponentDetail
		for _, candidate := range candidates {
			enclosure, isCase := candidate.Specs.(*entities.CaseSpecs)
			if !isCase {
				kept = append(kept, candidate)
				continue
			}
			if board != nil && board.FormFactor != "" && len(enclosure.FormFactorSupport) > 0 &&
				!containsFold(enclosure.FormFactorSupport, board.FormFactor) {
				continue
			}
			if gpu != nil && gpu.LengthMM > 0 && enclosure.MaxGPULengthMM > 0 &&
				gpu.LengthMM > enclosure.MaxGPULengthMM {
				continue
			}
			kept = append(kept, candidate)
		}
		return kept

	case entities.SlugCPUCooler:
		cpu := cpuSpecsOf(expanded)
		enclosure := caseSpecsOf(expanded)
		var kept []*entities.ComponentDetail
		for _, candidate := range candidates {
			cooler, isCooler := candidate.Specs.(*entities.CoolerSpecs)
			if !isCooler {
				kept = append(kept, candidate)
				continue
			}
			if cpu != nil && cpu.Socket != "" && len(cooler.CompatibleSockets) > 0 &&
				!containsFold(cooler.CompatibleSockets, cpu.Socket) {
				continue
			}
			if enclosure != nil && enclosure.MaxCPUCoolerHeightMM > 0 && cooler.HeightMM > 0 &&
				cooler.HeightMM > enclosure.MaxCPUCoolerHeightMM {
				continue
			}
			kept = append(kept, candidate)
		}
		return kept
	}
	return candidates
}

// pickCPU places the pick within the affordable candidates by rank
// bucket: terciles of the score distribution
func (b *Builder) pickCPU(ctx context.Context, profile *Profile, candidates []*entities.ComponentDetail, ceiling decimal.Decimal, respect *uuid.UUID) *entities.ComponentDetail {
	if respect != nil {
		if detail, err := b.getComponent(ctx, *respect); err == nil && detail != nil &&
			detail.Category == entities.SlugCPU && affordable(detail.Price, ceiling) {
			return detail
		}
	}

	affordableCPUs := filterAffordable(candidates, ceiling)
	if len(affordableCPUs) == 0 {
		return nil
	}
	sort.SliceStable(affordableCPUs, func(i, j int) bool {
		return cpuScore(affordableCPUs[i]) < cpuScore(affordableCPUs[j])
	})

	n := len(affordableCPUs)
	bottomEnd := int(math.Floor(float64(n) * 0.3))
	middleEnd := int(math.Floor(float64(n) * 0.7))
	bottom := affordableCPUs[:bottomEnd]
	middle := affordableCPUs[bottomEnd:middleEnd]
	top := affordableCPUs[middleEnd:]

	switch profile.CPURank {
	case RankHigh:
		if pick := medianOf(top); pick != nil {
			return pick
		}
	case RankMidHigh:
		if len(top) > 0 {
			return top[0] // worst of the top tercile
		}
		if len(middle) > 0 {
			return middle[len(middle)-1] // best of the middle
		}
	case RankMid:
		if pick := medianOf(middle); pick != nil {
			return pick
		}
	case RankEntry:
		if pick := medianOf(bottom); pick != nil {
			return pick
		}
		return affordableCPUs[0]
	}
	return medianOf(affordableCPUs)
}

func (b *Builder) pickMemory(profile *Profile, candidates []*entities.ComponentDetail, ceiling decimal.Decimal) *entities.ComponentDetail {
	if len(candidates) == 0 {
		return nil
	}
	sorted := make([]*entities.ComponentDetail, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return memoryScore(sorted[i]) > memoryScore(sorted[j])
	})

	var meeting, meetingAffordable []*entities.ComponentDetail
	for _, candidate := range sorted {
		specs, isMemory := candidate.Specs.(*entities.MemorySpecs)
		if !isMemory || specs.CapacityGB < profile.TargetRAMGB {
			continue
		}
		meeting = append(meeting, candidate)
		if affordable(candidate.Price, ceiling) {
			meetingAffordable = append(meetingAffordable, candidate)
		}
	}

	if pick := medianOf(meetingAffordable); pick != nil {
		return pick
	}
	if len(meeting) > 0 {
		return meeting[0] // top-scored meeting the target
	}
	anyAffordable := filterAffordable(sorted, ceiling)
	if len(anyAffordable) > 0 {
		return anyAffordable[0]
	}
	return nil
}

func pickGPU(candidates []*entities.ComponentDetail, ceiling decimal.Decimal) *entities.ComponentDetail {
	var best *entities.ComponentDetail
	bestScore := 0.0
	for _, candidate := range candidates {
		if !affordable(candidate.Price, ceiling) {
			continue
		}
		score := gpuScore(candidate)
		if best == nil || score > bestScore {
			best = candidate
			bestScore = score
		}
	}
	return best
}

func pickStorage(candidates []*entities.ComponentDetail, ceiling decimal.Decimal) *entities.ComponentDetail {
	var best *entities.ComponentDetail
	bestScore := 0
	for _, candidate := range candidates {
		if !affordable(candidate.Price, ceiling) {
			continue
		}
		score := storageScore(candidate)
		if best == nil || score > bestScore {
			best = candidate
			bestScore = score
		}
	}
	return best
}

// pickPSU sorts by (meets required wattage, then price; wattage when
// nothing meets) and returns the first affordable candidate
func (b *Builder) pickPSU(candidates []*entities.ComponentDetail, ceiling decimal.Decimal, expanded entities.ExpandedBuild) *entities.ComponentDetail {
	within := filterAffordable(candidates, ceiling)
	if len(within) == 0 {
		return nil
	}

	required := services.RequiredPSUWattage(expanded, b.tuning.PSUHeadroom)
	if required < b.tuning.PSUFloorWatts {
		required = b.tuning.PSUFloorWatts
	}

	sort.SliceStable(within, func(i, j int) bool {
		wattageI, wattageJ := psuWattage(within[i]), psuWattage(within[j])
		meetsI, meetsJ := wattageI >= required, wattageJ >= required
		if meetsI != meetsJ {
			return meetsI
		}
		if !meetsI && !meetsJ {
			return wattageI > wattageJ
		}
		return within[i].Price.LessThan(within[j].Price)
	})
	return within[0]
}

func medianWithin(candidates []*entities.ComponentDetail, ceiling decimal.Decimal) *entities.ComponentDetail {
	return medianOf(filterAffordable(candidates, ceiling))
}

// medianOf picks the middle element; inputs keep the catalog's
// ascending price order unless the caller sorted by score
func medianOf(candidates []*entities.ComponentDetail) *entities.ComponentDetail {
	if len(candidates) == 0 {
		return nil
	}
	return candidates[len(candidates)/2]
}

func filterAffordable(candidates []*entities.ComponentDetail, ceiling decimal.Decimal) []*entities.ComponentDetail {
	var kept []*entities.ComponentDetail
	for _, candidate := range candidates {
		if affordable(candidate.Price, ceiling) {
			kept = append(kept, candidate)
		}
	}
	return kept
}

func affordable(price, ceiling decimal.Decimal) bool {
	if !ceiling.IsPositive() {
		return true // unconstrained
	}
	return price.LessThanOrEqual(ceiling)
}

func cpuScore(detail *entities.ComponentDetail) float64 {
	specs, isCPU := detail.Specs.(*entities.CPUSpecs)
	if !isCPU {
		return 0
	}
	if specs.PerformanceScore > 0 {
		return float64(specs.PerformanceScore)
	}
	return float64(specs.Cores)*100 + specs.BaseClockGHz*30 + float64(specs.Threads)*10
}

func memoryScore(detail *entities.ComponentDetail) float64 {
	specs, isMemory := detail.Specs.(*entities.MemorySpecs)
	if !isMemory {
		return 0
	}
	return float64(specs.CapacityGB)*100 + float64(specs.SpeedMHz)/10
}

func gpuScore(detail *entities.ComponentDetail) float64 {
	specs, isGPU := detail.Specs.(*entities.GPUSpecs)
	if !isGPU {
		price, _ := detail.Price.Float64()
		return price
	}
	if specs.PerformanceScore > 0 {
		return float64(specs.PerformanceScore)
	}
	if specs.TDP > 0 {
		return float64(specs.TDP) * 10
	}
	price, _ := detail.Price.Float64()
	return price
}

var nvmeStorage = regexp.MustCompile(`nvme|m\.2|m2|pci`)

func storageScore(detail *entities.ComponentDetail) int {
	specs, isStorage := detail.Specs.(*entities.StorageSpecs)
	if !isStorage {
		return 0
	}
	score := specs.CapacityGB
	if nvmeStorage.MatchString(strings.ToLower(specs.Interface)) {
		score += 10000
	}
	return score
}

func psuWattage(detail *entities.ComponentDetail) int {
	if specs, isPSU := detail.Specs.(*entities.PSUSpecs); isPSU {
		return specs.Wattage
	}
	return 0
}

func cpuSpecsOf(expanded entities.ExpandedBuild) *entities.CPUSpecs {
	if part, present := expanded[entities.SlugCPU]; present && !part.Placeholder() {
		if specs, isCPU := part.Detail.Specs.(*entities.CPUSpecs); isCPU {
			return specs
		}
	}
	return nil
}

func boardSpecsOf(expanded entities.ExpandedBuild) *entities.MotherboardSpecs {
	if part, present := expanded[entities.SlugMotherboard]; present && !part.Placeholder() {
		if specs, isBoard := part.Detail.Specs.(*entities.MotherboardSpecs); isBoard {
			return specs
		}
	}
	return nil
}

func gpuSpecsOf(expanded entities.ExpandedBuild) *entities.GPUSpecs {
	if part, present := expanded[entities.SlugGPU]; present && !part.Placeholder() {
		if specs, isGPU := part.Detail.Specs.(*entities.GPUSpecs); isGPU {
			return specs
		}
	}
	return nil
}

func caseSpecsOf(expanded entities.ExpandedBuild) *entities.CaseSpecs {
	if part, present := expanded[entities.SlugCase]; present && !part.Placeholder() {
		if specs, isCase := part.Detail.Specs.(*entities.CaseSpecs); isCase {
			return specs
		}
	}
	return nil
}

func containsFold(values []string, target string) bool {
	for _, v := range values {
		if strings.EqualFold(v, target) {
			return true
		}
	}
	return false
}
