package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rigforge/rigforge/pkg/domain/entities"
	"github.com/rigforge/rigforge/pkg/infrastructure/repositories/memory"
	"github.com/shopspring/decimal"
)

func seedComponent(t *testing.T, repo *memory.CatalogRepository, category entities.Slug, name string, price int64, specs entities.Specs) *entities.Component {
	t.Helper()
	component, err := entities.NewComponent(category, name, "TestBrand", decimal.NewFromInt(price), 10)
	if err != nil {
		t.Fatalf("NewComponent failed: %v", err)
	}
	if err := repo.CreateComponent(context.Background(), component); err != nil {
		t.Fatalf("CreateComponent failed: %v", err)
	}
	if specs != nil {
		if err := repo.UpsertSpecs(context.Background(), component.ID, specs); err != nil {
			t.Fatalf("UpsertSpecs failed: %v", err)
		}
	}
	return component
}

func TestGetComponentByID_JoinsSpecs(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewCatalogRepository()
	service := NewService(repo)

	cpu := seedComponent(t, repo, entities.SlugCPU, "Ryzen 5 7600", 22900, &entities.CPUSpecs{
		Socket: "AM5",
		Cores:  6,
		TDP:    65,
	})

	detail, err := service.GetComponentByID(ctx, cpu.ID)
	if err != nil {
		t.Fatalf("GetComponentByID failed: %v", err)
	}
	if detail == nil {
		t.Fatal("expected component, got nil")
	}
	if detail.Category != entities.SlugCPU {
		t.Errorf("expected category cpu, got %s", detail.Category)
	}
	specs, isCPU := detail.Specs.(*entities.CPUSpecs)
	if !isCPU {
		t.Fatalf("expected CPU specs, got %T", detail.Specs)
	}
	if specs.Socket != "AM5" || specs.Cores != 6 {
		t.Errorf("unexpected specs: %+v", specs)
	}
}

func TestGetComponentByID_MissingIsNotAnError(t *testing.T) {
	service := NewService(memory.NewCatalogRepository())

	detail, err := service.GetComponentByID(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("expected nil error for missing component, got %v", err)
	}
	if detail != nil {
		t.Errorf("expected nil detail, got %+v", detail)
	}
}

func TestSpecMap_NeverContainsIdentityFields(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewCatalogRepository()
	service := NewService(repo)

	seedComponent(t, repo, entities.SlugGPU, "RTX 4070", 59900, &entities.GPUSpecs{Chipset: "AD104", TDP: 200})
	seedComponent(t, repo, entities.SlugPSU, "RM750e", 9900, &entities.PSUSpecs{Wattage: 750})

	for _, slug := range []entities.Slug{entities.SlugGPU, entities.SlugPSU} {
		details, err := service.ListByCategory(ctx, slug)
		if err != nil {
			t.Fatalf("ListByCategory(%s) failed: %v", slug, err)
		}
		for _, detail := range details {
			m := detail.Specs.SpecMap()
			for _, reserved := range []string{"id", "component_id", "created_at"} {
				if _, present := m[reserved]; present {
					t.Errorf("spec map for %s contains reserved key %q", detail.Name, reserved)
				}
			}
		}
	}
}

func TestListByCategory_OrderedByAscendingPrice(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewCatalogRepository()
	service := NewService(repo)

	seedComponent(t, repo, entities.SlugMemory, "Expensive Kit", 18900, nil)
	seedComponent(t, repo, entities.SlugMemory, "Budget Kit", 5900, nil)
	seedComponent(t, repo, entities.SlugMemory, "Middle Kit", 9900, nil)

	details, err := service.ListByCategory(ctx, entities.SlugMemory)
	if err != nil {
		t.Fatalf("ListByCategory failed: %v", err)
	}
	if len(details) != 3 {
		t.Fatalf("expected 3 components, got %d", len(details))
	}
	for i := 1; i < len(details); i++ {
		if details[i].Price.LessThan(details[i-1].Price) {
			t.Errorf("components out of price order: %s before %s", details[i-1].Name, details[i].Name)
		}
	}
}

func TestSpecsCache_InvalidatedOnAdminWrite(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewCatalogRepository()
	service := NewService(repo)

	cpu := seedComponent(t, repo, entities.SlugCPU, "i3-13100", 13900, &entities.CPUSpecs{Socket: "LGA1700", Cores: 4})

	// First read populates the cache.
	specs, err := service.GetSpecs(ctx, cpu.ID)
	if err != nil {
		t.Fatalf("GetSpecs failed: %v", err)
	}
	if specs.(*entities.CPUSpecs).Cores != 4 {
		t.Fatalf("unexpected cores: %+v", specs)
	}

	// Writing behind the cache without invalidation returns stale data.
	if err := repo.UpsertSpecs(ctx, cpu.ID, &entities.CPUSpecs{Socket: "LGA1700", Cores: 8}); err != nil {
		t.Fatalf("UpsertSpecs failed: %v", err)
	}
	specs, _ = service.GetSpecs(ctx, cpu.ID)
	if specs.(*entities.CPUSpecs).Cores != 4 {
		t.Fatal("expected cached specs before invalidation")
	}

	service.Invalidate(cpu.ID)
	specs, _ = service.GetSpecs(ctx, cpu.ID)
	if specs.(*entities.CPUSpecs).Cores != 8 {
		t.Fatal("expected fresh specs after invalidation")
	}
}

func TestSpecsCache_CachesMissingSpecsSentinel(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewCatalogRepository()
	service := NewService(repo)

	bare := seedComponent(t, repo, entities.SlugCase, "Plain Case", 4900, nil)

	specs, err := service.GetSpecs(ctx, bare.ID)
	if err != nil {
		t.Fatalf("GetSpecs failed: %v", err)
	}
	if specs != nil {
		t.Fatalf("expected nil specs, got %+v", specs)
	}

	// A specs row added behind the cache stays invisible until the
	// invalidation hook fires, proving the nil sentinel was cached.
	if err := repo.UpsertSpecs(ctx, bare.ID, &entities.CaseSpecs{MaxGPULengthMM: 360}); err != nil {
		t.Fatalf("UpsertSpecs failed: %v", err)
	}
	if specs, _ := service.GetSpecs(ctx, bare.ID); specs != nil {
		t.Fatal("expected cached nil sentinel")
	}
	service.Invalidate(bare.ID)
	if specs, _ := service.GetSpecs(ctx, bare.ID); specs == nil {
		t.Fatal("expected specs after invalidation")
	}
}
