package entities

// Specs is the per-category typed attribute record of a component.
// Each variant models missing data as the zero value (empty string,
// zero number, nil slice): compatibility rules treat those as unknown
// and allow unless contradicted.
type Specs interface {
	// SpecsCategory returns the category slug the record belongs to
	SpecsCategory() Slug
	// SpecMap renders the record as a JSON-ready map. Identity fields
	// (component id, row id, timestamps) are not part of any variant, so
	// the map never contains them. Zero-valued fields are omitted to
	// keep the unknown-data semantics visible to clients.
	SpecMap() map[string]any
}

// CPUSpecs describes a processor
type CPUSpecs struct {
	Socket             string
	Cores              int
	Threads            int
	BaseClockGHz       float64
	BoostClockGHz      float64
	TDP                int
	IntegratedGraphics string
	Process            string
	Architecture       string
	PerformanceScore   int // optional benchmark score; 0 = not catalogued
}

func (s *CPUSpecs) SpecsCategory() Slug { return SlugCPU }

func (s *CPUSpecs) SpecMap() map[string]any {
	m := map[string]any{}
	putString(m, "socket", s.Socket)
	putInt(m, "cores", s.Cores)
	putInt(m, "threads", s.Threads)
	putFloat(m, "base_clock", s.BaseClockGHz)
	putFloat(m, "boost_clock", s.BoostClockGHz)
	putInt(m, "tdp", s.TDP)
	putString(m, "integrated_graphics", s.IntegratedGraphics)
	putString(m, "process", s.Process)
	putString(m, "architecture", s.Architecture)
	putInt(m, "performance_score", s.PerformanceScore)
	return m
}

// MotherboardSpecs describes a motherboard
type MotherboardSpecs struct {
	Socket            string
	Chipset           string
	FormFactor        string
	MemorySlots       int
	MemoryType        string
	MaxMemoryGB       int
	MaxMemorySpeedMHz int
	StorageSupport    []string
	PCIeSlots         []string
	NVMeSlots         int
	M2Slots           int
	SATAPorts         int
}

func (s *MotherboardSpecs) SpecsCategory() Slug { return SlugMotherboard }

func (s *MotherboardSpecs) SpecMap() map[string]any {
	m := map[string]any{}
	putString(m, "socket", s.Socket)
	putString(m, "chipset", s.Chipset)
	putString(m, "form_factor", s.FormFactor)
	putInt(m, "memory_slots", s.MemorySlots)
	putString(m, "memory_type", s.MemoryType)
	putInt(m, "max_memory_gb", s.MaxMemoryGB)
	putInt(m, "max_memory_speed_mhz", s.MaxMemorySpeedMHz)
	putStrings(m, "storage_support", s.StorageSupport)
	putStrings(m, "pcie_slots", s.PCIeSlots)
	putInt(m, "nvme_slots", s.NVMeSlots)
	putInt(m, "m2_slots", s.M2Slots)
	putInt(m, "sata_ports", s.SATAPorts)
	return m
}

// MemorySpecs describes a memory kit
type MemorySpecs struct {
	Type       string
	CapacityGB int
	SpeedMHz   int
	Modules    string // e.g. "2X16GB"
	CASLatency string
}

func (s *MemorySpecs) SpecsCategory() Slug { return SlugMemory }

func (s *MemorySpecs) SpecMap() map[string]any {
	m := map[string]any{}
	putString(m, "type", s.Type)
	putInt(m, "capacity_gb", s.CapacityGB)
	putInt(m, "speed_mhz", s.SpeedMHz)
	putString(m, "modules", s.Modules)
	putString(m, "cas_latency", s.CASLatency)
	return m
}

// GPUSpecs describes a graphics card
type GPUSpecs struct {
	Chipset          string
	MemorySize       string
	CoreClock        string
	BoostClock       string
	TDP              int
	LengthMM         int
	Ports            []string
	PerformanceScore int // optional benchmark score; 0 = not catalogued
}

func (s *GPUSpecs) SpecsCategory() Slug { return SlugGPU }

func (s *GPUSpecs) SpecMap() map[string]any {
	m := map[string]any{}
	putString(m, "chipset", s.Chipset)
	putString(m, "memory_size", s.MemorySize)
	putString(m, "core_clock", s.CoreClock)
	putString(m, "boost_clock", s.BoostClock)
	putInt(m, "tdp", s.TDP)
	putInt(m, "length", s.LengthMM)
	putStrings(m, "ports", s.Ports)
	putInt(m, "performance_score", s.PerformanceScore)
	return m
}

// PSUSpecs describes a power supply
type PSUSpecs struct {
	Wattage          int
	EfficiencyRating string // e.g. "80+ Gold"
	EfficiencyLevel  string
	Modular          string // FULL | SEMI | NONE
	FormFactor       string
}

func (s *PSUSpecs) SpecsCategory() Slug { return SlugPSU }

func (s *PSUSpecs) SpecMap() map[string]any {
	m := map[string]any{}
	putInt(m, "wattage", s.Wattage)
	putString(m, "efficiency_rating", s.EfficiencyRating)
	putString(m, "efficiency_level", s.EfficiencyLevel)
	putString(m, "modular", s.Modular)
	putString(m, "form_factor", s.FormFactor)
	return m
}

// CaseSpecs describes a case
type CaseSpecs struct {
	FormFactor           string
	FormFactorSupport    []string
	MaxGPULengthMM       int
	MaxCPUCoolerHeightMM int
	PSUShroud            bool
	SidePanel            string
}

func (s *CaseSpecs) SpecsCategory() Slug { return SlugCase }

func (s *CaseSpecs) SpecMap() map[string]any {
	m := map[string]any{}
	putString(m, "form_factor", s.FormFactor)
	putStrings(m, "form_factor_support", s.FormFactorSupport)
	putInt(m, "max_gpu_length", s.MaxGPULengthMM)
	putInt(m, "max_cpu_cooler_height", s.MaxCPUCoolerHeightMM)
	if s.PSUShroud {
		m["psu_shroud"] = true
	}
	putString(m, "side_panel", s.SidePanel)
	return m
}

// CoolerSpecs describes a CPU cooler
type CoolerSpecs struct {
	Type              string
	FanRPM            string
	NoiseLevel        string
	HeightMM          int
	CompatibleSockets []string
}

func (s *CoolerSpecs) SpecsCategory() Slug { return SlugCPUCooler }

func (s *CoolerSpecs) SpecMap() map[string]any {
	m := map[string]any{}
	putString(m, "type", s.Type)
	putString(m, "fan_rpm", s.FanRPM)
	putString(m, "noise_level", s.NoiseLevel)
	putInt(m, "height", s.HeightMM)
	putStrings(m, "compatible_sockets", s.CompatibleSockets)
	return m
}

// StorageSpecs describes a storage drive
type StorageSpecs struct {
	CapacityGB int
	Type       string // SSD | HDD
	Interface  string // NVME | SATA | ...
	FormFactor string
}

func (s *StorageSpecs) SpecsCategory() Slug { return SlugStorage }

func (s *StorageSpecs) SpecMap() map[string]any {
	m := map[string]any{}
	putInt(m, "capacity_gb", s.CapacityGB)
	putString(m, "type", s.Type)
	putString(m, "interface", s.Interface)
	putString(m, "form_factor", s.FormFactor)
	return m
}

func putString(m map[string]any, key, v string) {
	if v != "" {
		m[key] = v
	}
}

func putInt(m map[string]any, key string, v int) {
	if v != 0 {
		m[key] = v
	}
}

func putFloat(m map[string]any, key string, v float64) {
	if v != 0 {
		m[key] = v
	}
}

func putStrings(m map[string]any, key string, v []string) {
	if len(v) > 0 {
		m[key] = v
	}
}
