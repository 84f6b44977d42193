// Package testing provides shared storefront fixtures for service tests.
package testing

import (
	"context"
	"fmt"

	"github.com/rigforge/rigforge/pkg/domain/entities"
	"github.com/rigforge/rigforge/pkg/infrastructure/repositories/memory"
	"github.com/shopspring/decimal"
)

// Fixture bundles the in-memory repositories with the seeded components
// keyed by a stable name for assertions.
type Fixture struct {
	Catalog    *memory.CatalogRepository
	Workspaces *memory.WorkspaceRepository
	Builds     *memory.SavedBuildRepository
	Carts      *memory.CartRepository
	Orders     *memory.OrderRepository
	Checkout   *memory.CheckoutStore

	Components map[string]*entities.Component
}

// Component returns a seeded component by key, panicking on a bad key
// so fixture typos fail loudly.
func (f *Fixture) Component(key string) *entities.Component {
	component, exists := f.Components[key]
	if !exists {
		panic(fmt.Sprintf("fixture has no component %q", key))
	}
	return component
}

// Seed adds a component with specs to the fixture catalog
func (f *Fixture) Seed(key string, category entities.Slug, name string, price int64, stock int, specs entities.Specs) *entities.Component {
	component, err := entities.NewComponent(category, name, "FixtureBrand", decimal.NewFromInt(price), stock)
	if err != nil {
		panic(fmt.Sprintf("seed %q: %v", key, err))
	}
	ctx := context.Background()
	if err := f.Catalog.CreateComponent(ctx, component); err != nil {
		panic(fmt.Sprintf("seed %q: %v", key, err))
	}
	if specs != nil {
		if err := f.Catalog.UpsertSpecs(ctx, component.ID, specs); err != nil {
			panic(fmt.Sprintf("seed %q: %v", key, err))
		}
	}
	f.Components[key] = component
	return component
}

// NewEmptyFixture builds the repository set with an empty catalog
func NewEmptyFixture() *Fixture {
	catalog := memory.NewCatalogRepository()
	carts := memory.NewCartRepository()
	builds := memory.NewSavedBuildRepository()
	orders := memory.NewOrderRepository()
	return &Fixture{
		Catalog:    catalog,
		Workspaces: memory.NewWorkspaceRepository(),
		Builds:     builds,
		Carts:      carts,
		Orders:     orders,
		Checkout:   memory.NewCheckoutStore(catalog, carts, builds, orders),
		Components: make(map[string]*entities.Component),
	}
}

// NewStorefrontFixture builds a catalog with at least one compatible
// option per category at several price points: AM5 and LGA1700
// platforms, DDR4 and DDR5 kits, NVMe and SATA drives.
func NewStorefrontFixture() *Fixture {
	f := NewEmptyFixture()

	f.Seed("cpu_am5_entry", entities.SlugCPU, "Ryzen 5 7600", 15500, 25, &entities.CPUSpecs{
		Socket: "AM5", Cores: 6, Threads: 12, BaseClockGHz: 3.8, BoostClockGHz: 5.1, TDP: 65,
		IntegratedGraphics: "Radeon", Process: "5nm", Architecture: "Zen 4",
	})
	f.Seed("cpu_am5_mid", entities.SlugCPU, "Ryzen 7 7700X", 28000, 15, &entities.CPUSpecs{
		Socket: "AM5", Cores: 8, Threads: 16, BaseClockGHz: 4.5, BoostClockGHz: 5.4, TDP: 105,
		Architecture: "Zen 4",
	})
	f.Seed("cpu_am5_high", entities.SlugCPU, "Ryzen 9 7900X", 42000, 8, &entities.CPUSpecs{
		Socket: "AM5", Cores: 12, Threads: 24, BaseClockGHz: 4.7, BoostClockGHz: 5.6, TDP: 170,
		Architecture: "Zen 4",
	})
	f.Seed("cpu_lga_mid", entities.SlugCPU, "Core i5-13600K", 25000, 12, &entities.CPUSpecs{
		Socket: "LGA1700", Cores: 14, Threads: 20, BaseClockGHz: 3.5, BoostClockGHz: 5.1, TDP: 125,
		IntegratedGraphics: "UHD 770", Architecture: "Raptor Lake",
	})

	f.Seed("board_am5_matx", entities.SlugMotherboard, "B650M Pro RS", 9000, 20, &entities.MotherboardSpecs{
		Socket: "AM5", Chipset: "B650", FormFactor: "Micro-ATX", MemorySlots: 4,
		MemoryType: "DDR5", MaxMemoryGB: 128, MaxMemorySpeedMHz: 6000,
		StorageSupport: []string{"NVMe", "SATA"}, PCIeSlots: []string{"PCIe 4.0 x16"},
		NVMeSlots: 2, M2Slots: 2, SATAPorts: 4,
	})
	f.Seed("board_am5_atx", entities.SlugMotherboard, "X670E Tomahawk", 30000, 10, &entities.MotherboardSpecs{
		Socket: "AM5", Chipset: "X670E", FormFactor: "ATX", MemorySlots: 4,
		MemoryType: "DDR5", MaxMemoryGB: 192, MaxMemorySpeedMHz: 6400,
		StorageSupport: []string{"NVMe", "SATA"}, PCIeSlots: []string{"PCIe 5.0 x16", "PCIe 4.0 x16"},
		NVMeSlots: 3, M2Slots: 4, SATAPorts: 6,
	})
	f.Seed("board_lga_atx", entities.SlugMotherboard, "Z790 Edge", 20000, 10, &entities.MotherboardSpecs{
		Socket: "LGA1700", Chipset: "Z790", FormFactor: "ATX", MemorySlots: 4,
		MemoryType: "DDR5", MaxMemoryGB: 192, MaxMemorySpeedMHz: 6800,
		StorageSupport: []string{"NVMe", "SATA"}, PCIeSlots: []string{"PCIe 5.0 x16"},
		NVMeSlots: 4, M2Slots: 4, SATAPorts: 6,
	})

	f.Seed("mem_ddr5_16", entities.SlugMemory, "Vengeance 16GB DDR5-5600", 5500, 40, &entities.MemorySpecs{
		Type: "DDR5", CapacityGB: 16, SpeedMHz: 5600, Modules: "2X8GB", CASLatency: "CL36",
	})
	f.Seed("mem_ddr5_32", entities.SlugMemory, "Fury Beast 32GB DDR5-6000", 10500, 30, &entities.MemorySpecs{
		Type: "DDR5", CapacityGB: 32, SpeedMHz: 6000, Modules: "2X16GB", CASLatency: "CL32",
	})
	f.Seed("mem_ddr5_64", entities.SlugMemory, "Trident 64GB DDR5-6000", 21000, 10, &entities.MemorySpecs{
		Type: "DDR5", CapacityGB: 64, SpeedMHz: 6000, Modules: "2X32GB", CASLatency: "CL34",
	})
	f.Seed("mem_ddr4_16", entities.SlugMemory, "Ripjaws 16GB DDR4-3200", 4000, 35, &entities.MemorySpecs{
		Type: "DDR4", CapacityGB: 16, SpeedMHz: 3200, Modules: "2X8GB", CASLatency: "CL16",
	})

	f.Seed("gpu_mid", entities.SlugGPU, "GeForce RTX 4060", 21000, 18, &entities.GPUSpecs{
		Chipset: "AD107", MemorySize: "8GB", TDP: 115, LengthMM: 240,
		Ports: []string{"HDMI 2.1", "DisplayPort 1.4a"},
	})
	f.Seed("gpu_high", entities.SlugGPU, "GeForce RTX 4070 Super", 42000, 9, &entities.GPUSpecs{
		Chipset: "AD104", MemorySize: "12GB", TDP: 220, LengthMM: 300,
		Ports: []string{"HDMI 2.1", "DisplayPort 1.4a"},
	})
	f.Seed("gpu_flagship", entities.SlugGPU, "GeForce RTX 4090", 150000, 3, &entities.GPUSpecs{
		Chipset: "AD102", MemorySize: "24GB", TDP: 450, LengthMM: 340,
		Ports: []string{"HDMI 2.1", "DisplayPort 1.4a"},
	})

	f.Seed("storage_nvme_1tb", entities.SlugStorage, "NV2 1TB NVMe", 5500, 50, &entities.StorageSpecs{
		CapacityGB: 1000, Type: "SSD", Interface: "NVME", FormFactor: "M.2",
	})
	f.Seed("storage_nvme_2tb", entities.SlugStorage, "P3 Plus 2TB NVMe", 11000, 25, &entities.StorageSpecs{
		CapacityGB: 2000, Type: "SSD", Interface: "NVME", FormFactor: "M.2",
	})
	f.Seed("storage_sata_1tb", entities.SlugStorage, "MX500 1TB SATA", 5000, 30, &entities.StorageSpecs{
		CapacityGB: 1000, Type: "SSD", Interface: "SATA", FormFactor: "2.5",
	})
	f.Seed("storage_hdd_2tb", entities.SlugStorage, "Barracuda 2TB", 4000, 40, &entities.StorageSpecs{
		CapacityGB: 2000, Type: "HDD", Interface: "SATA", FormFactor: "3.5",
	})

	f.Seed("psu_550", entities.SlugPSU, "CX550 550W Bronze", 3500, 30, &entities.PSUSpecs{
		Wattage: 550, EfficiencyRating: "80+ Bronze", Modular: "NONE", FormFactor: "ATX",
	})
	f.Seed("psu_750", entities.SlugPSU, "RM750e 750W Gold", 7000, 20, &entities.PSUSpecs{
		Wattage: 750, EfficiencyRating: "80+ Gold", Modular: "FULL", FormFactor: "ATX",
	})
	f.Seed("psu_1000", entities.SlugPSU, "HX1000 1000W Platinum", 14000, 8, &entities.PSUSpecs{
		Wattage: 1000, EfficiencyRating: "80+ Platinum", Modular: "FULL", FormFactor: "ATX",
	})

	f.Seed("case_matx", entities.SlugCase, "NR400 Compact", 3500, 25, &entities.CaseSpecs{
		FormFactor: "Micro-ATX", FormFactorSupport: []string{"Micro-ATX", "Mini-ITX"},
		MaxGPULengthMM: 320, MaxCPUCoolerHeightMM: 155, PSUShroud: true, SidePanel: "Tempered Glass",
	})
	f.Seed("case_atx", entities.SlugCase, "4000D Mid Tower", 4500, 20, &entities.CaseSpecs{
		FormFactor: "ATX", FormFactorSupport: []string{"ATX", "Micro-ATX", "Mini-ITX"},
		MaxGPULengthMM: 360, MaxCPUCoolerHeightMM: 165, PSUShroud: true, SidePanel: "Tempered Glass",
	})

	f.Seed("cooler_air", entities.SlugCPUCooler, "Peerless Assassin Tower", 3000, 30, &entities.CoolerSpecs{
		Type: "Air", FanRPM: "1550", NoiseLevel: "25.6 dBA", HeightMM: 155,
		CompatibleSockets: []string{"AM4", "AM5", "LGA1700"},
	})
	f.Seed("cooler_aio", entities.SlugCPUCooler, "240mm AIO Liquid", 8000, 15, &entities.CoolerSpecs{
		Type: "Liquid", FanRPM: "2100", NoiseLevel: "30 dBA", HeightMM: 55,
		CompatibleSockets: []string{"AM5", "LGA1700"},
	})

	return f
}
