package entities

import (
	"encoding/json"
	"fmt"
)

// specsRecord is the union of every category's spec fields as they
// appear on the wire; the component's category selects which subset
// applies.
type specsRecord struct {
	Socket             string   `json:"socket"`
	Cores              int      `json:"cores"`
	Threads            int      `json:"threads"`
	BaseClock          float64  `json:"base_clock"`
	BoostClock         float64  `json:"boost_clock"`
	TDP                int      `json:"tdp"`
	IntegratedGraphics string   `json:"integrated_graphics"`
	Process            string   `json:"process"`
	Architecture       string   `json:"architecture"`
	PerformanceScore   int      `json:"performance_score"`
	Chipset            string   `json:"chipset"`
	FormFactor         string   `json:"form_factor"`
	FormFactorSupport  []string `json:"form_factor_support"`
	MemorySlots        int      `json:"memory_slots"`
	MemoryType         string   `json:"memory_type"`
	MaxMemoryGB        int      `json:"max_memory_gb"`
	MaxMemorySpeedMHz  int      `json:"max_memory_speed_mhz"`
	StorageSupport     []string `json:"storage_support"`
	PCIeSlots          []string `json:"pcie_slots"`
	NVMeSlots          int      `json:"nvme_slots"`
	M2Slots            int      `json:"m2_slots"`
	SATAPorts          int      `json:"sata_ports"`
	Type               string   `json:"type"`
	CapacityGB         int      `json:"capacity_gb"`
	SpeedMHz           int      `json:"speed_mhz"`
	Modules            string   `json:"modules"`
	CASLatency         string   `json:"cas_latency"`
	MemorySize         string   `json:"memory_size"`
	CoreClock          string   `json:"core_clock"`
	BoostClockStr      string   `json:"boost_clock_str"`
	Length             int      `json:"length"`
	Ports              []string `json:"ports"`
	Wattage            int      `json:"wattage"`
	EfficiencyRating   string   `json:"efficiency_rating"`
	EfficiencyLevel    string   `json:"efficiency_level"`
	Modular            string   `json:"modular"`
	MaxGPULength       int      `json:"max_gpu_length"`
	MaxCoolerHeight    int      `json:"max_cpu_cooler_height"`
	PSUShroud          bool     `json:"psu_shroud"`
	SidePanel          string   `json:"side_panel"`
	FanRPM             string   `json:"fan_rpm"`
	NoiseLevel         string   `json:"noise_level"`
	Height             int      `json:"height"`
	CompatibleSockets  []string `json:"compatible_sockets"`
	Interface          string   `json:"interface"`
}

func (p *specsRecord) toSpecs(category Slug) (Specs, error) {
	switch category {
	case SlugCPU:
		return &CPUSpecs{
			Socket: p.Socket, Cores: p.Cores, Threads: p.Threads,
			BaseClockGHz: p.BaseClock, BoostClockGHz: p.BoostClock, TDP: p.TDP,
			IntegratedGraphics: p.IntegratedGraphics, Process: p.Process,
			Architecture: p.Architecture, PerformanceScore: p.PerformanceScore,
		}, nil
	case SlugMotherboard:
		return &MotherboardSpecs{
			Socket: p.Socket, Chipset: p.Chipset, FormFactor: p.FormFactor,
			MemorySlots: p.MemorySlots, MemoryType: p.MemoryType,
			MaxMemoryGB: p.MaxMemoryGB, MaxMemorySpeedMHz: p.MaxMemorySpeedMHz,
			StorageSupport: p.StorageSupport, PCIeSlots: p.PCIeSlots,
			NVMeSlots: p.NVMeSlots, M2Slots: p.M2Slots, SATAPorts: p.SATAPorts,
		}, nil
	case SlugMemory:
		return &MemorySpecs{
			Type: p.Type, CapacityGB: p.CapacityGB, SpeedMHz: p.SpeedMHz,
			Modules: p.Modules, CASLatency: p.CASLatency,
		}, nil
	case SlugGPU:
		return &GPUSpecs{
			Chipset: p.Chipset, MemorySize: p.MemorySize, CoreClock: p.CoreClock,
			BoostClock: p.BoostClockStr, TDP: p.TDP, LengthMM: p.Length,
			Ports: p.Ports, PerformanceScore: p.PerformanceScore,
		}, nil
	case SlugPSU:
		return &PSUSpecs{
			Wattage: p.Wattage, EfficiencyRating: p.EfficiencyRating,
			EfficiencyLevel: p.EfficiencyLevel, Modular: p.Modular,
			FormFactor: p.FormFactor,
		}, nil
	case SlugCase:
		return &CaseSpecs{
			FormFactor: p.FormFactor, FormFactorSupport: p.FormFactorSupport,
			MaxGPULengthMM: p.MaxGPULength, MaxCPUCoolerHeightMM: p.MaxCoolerHeight,
			PSUShroud: p.PSUShroud, SidePanel: p.SidePanel,
		}, nil
	case SlugCPUCooler:
		return &CoolerSpecs{
			Type: p.Type, FanRPM: p.FanRPM, NoiseLevel: p.NoiseLevel,
			HeightMM: p.Height, CompatibleSockets: p.CompatibleSockets,
		}, nil
	case SlugStorage:
		return &StorageSpecs{
			CapacityGB: p.CapacityGB, Type: p.Type, Interface: p.Interface,
			FormFactor: p.FormFactor,
		}, nil
	}
	return nil, fmt.Errorf("%w: no specs schema for category %q", ErrValidation, category)
}

// DecodeSpecs parses a JSON spec object into the typed record for the
// given category. Fields the category does not define are ignored.
func DecodeSpecs(category Slug, data []byte) (Specs, error) {
	var record specsRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w: malformed specs payload: %v", ErrValidation, err)
	}
	return record.toSpecs(category)
}
