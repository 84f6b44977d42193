package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rigforge/rigforge/pkg/application/services/catalog"
	"github.com/rigforge/rigforge/pkg/application/services/workspace"
	"github.com/rigforge/rigforge/pkg/domain/entities"
	"github.com/rigforge/rigforge/pkg/domain/services"
	testhelpers "github.com/rigforge/rigforge/pkg/infrastructure/testing"
	"github.com/shopspring/decimal"
)

const testUser = "user-1"

func newTestServices(f *testhelpers.Fixture) (*Service, *workspace.Service) {
	catalogService := catalog.NewService(f.Catalog)
	checker := services.NewCompatibilityChecker()
	workspaceService := workspace.NewService(f.Workspaces, f.Builds, catalogService, checker)
	cartService := NewService(f.Carts, f.Workspaces, f.Builds, catalogService)
	return cartService, workspaceService
}

func TestAddComponent_ReaddIncrementsQuantity(t *testing.T) {
	f := testhelpers.NewStorefrontFixture()
	s, _ := newTestServices(f)
	ctx := context.Background()

	cpu := f.Component("cpu_am5_entry")
	first, err := s.AddComponent(ctx, testUser, cpu.ID, 1)
	if err != nil {
		t.Fatalf("AddComponent failed: %v", err)
	}
	second, err := s.AddComponent(ctx, testUser, cpu.ID, 1)
	if err != nil {
		t.Fatalf("AddComponent failed: %v", err)
	}

	if second.ID != first.ID {
		t.Error("re-add created a second row instead of incrementing")
	}
	if second.Quantity != 2 {
		t.Errorf("quantity = %d, want 2", second.Quantity)
	}

	view, err := s.List(ctx, testUser)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(view.Items) != 1 {
		t.Fatalf("expected 1 cart line, got %d", len(view.Items))
	}
	wantTotal := cpu.Price.Mul(decimal.NewFromInt(2))
	if !view.Total.Equal(wantTotal) {
		t.Errorf("total = %s, want %s", view.Total, wantTotal)
	}
}

func TestAddComponent_UnknownComponentRejected(t *testing.T) {
	f := testhelpers.NewStorefrontFixture()
	s, _ := newTestServices(f)

	_, err := s.AddComponent(context.Background(), testUser, uuid.New(), 1)
	if !errors.Is(err, entities.ErrNotFound) {
		t.Fatalf("expected not-found, got %v", err)
	}
}

func TestAddBuild_BundleLineWithSnapshot(t *testing.T) {
	f := testhelpers.NewStorefrontFixture()
	s, ws := newTestServices(f)
	ctx := context.Background()

	build := saveStarterBuild(t, ws, f)

	item, err := s.AddBuild(ctx, testUser, build.ID)
	if err != nil {
		t.Fatalf("AddBuild failed: %v", err)
	}
	if !item.IsBundle() {
		t.Fatal("expected a bundle line")
	}
	if item.BuildID != build.ID || item.BuildName != build.Name {
		t.Error("bundle line does not reference the build")
	}
	if !item.BuildTotalPrice.Equal(build.TotalPrice) {
		t.Errorf("bundle price = %s, want %s", item.BuildTotalPrice, build.TotalPrice)
	}
	if item.BundleItemCount != len(build.Components) {
		t.Errorf("bundle item count = %d, want %d", item.BundleItemCount, len(build.Components))
	}

	// Adding the same build again is idempotent.
	again, err := s.AddBuild(ctx, testUser, build.ID)
	if err != nil {
		t.Fatalf("AddBuild failed: %v", err)
	}
	if again.ID != item.ID {
		t.Error("second AddBuild created a duplicate bundle line")
	}
}

func TestAddWorkspace_IndividualLinesAndClear(t *testing.T) {
	f := testhelpers.NewStorefrontFixture()
	s, ws := newTestServices(f)
	ctx := context.Background()

	for _, key := range []string{"cpu_am5_entry", "board_am5_matx", "mem_ddr5_16"} {
		component := f.Component(key)
		if _, err := ws.Add(ctx, testUser, component.Category, component.ID); err != nil {
			t.Fatalf("workspace add failed: %v", err)
		}
	}

	added, err := s.AddWorkspace(ctx, testUser)
	if err != nil {
		t.Fatalf("AddWorkspace failed: %v", err)
	}
	if len(added) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(added))
	}
	for _, item := range added {
		if item.IsBundle() {
			t.Error("workspace transfer must produce component lines, not a bundle")
		}
		if item.Quantity != 1 {
			t.Errorf("quantity = %d, want 1", item.Quantity)
		}
	}

	workspaceAfter, _ := ws.Get(ctx, testUser)
	if len(workspaceAfter.Components) != 0 {
		t.Error("workspace not cleared after transfer to cart")
	}
}

func TestAddWorkspace_EmptyRejected(t *testing.T) {
	f := testhelpers.NewStorefrontFixture()
	s, _ := newTestServices(f)

	if _, err := s.AddWorkspace(context.Background(), testUser); !errors.Is(err, entities.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDecrement_RemovesAtQuantityOne(t *testing.T) {
	f := testhelpers.NewStorefrontFixture()
	s, _ := newTestServices(f)
	ctx := context.Background()

	cpu := f.Component("cpu_am5_entry")
	item, err := s.AddComponent(ctx, testUser, cpu.ID, 2)
	if err != nil {
		t.Fatalf("AddComponent failed: %v", err)
	}

	if err := s.Decrement(ctx, testUser, item.ID); err != nil {
		t.Fatalf("Decrement failed: %v", err)
	}
	view, _ := s.List(ctx, testUser)
	if len(view.Items) != 1 || view.Items[0].Quantity != 1 {
		t.Fatal("expected quantity 1 after first decrement")
	}

	if err := s.Decrement(ctx, testUser, item.ID); err != nil {
		t.Fatalf("Decrement failed: %v", err)
	}
	view, _ = s.List(ctx, testUser)
	if len(view.Items) != 0 {
		t.Error("expected empty cart after second decrement")
	}
}

func TestDeleteRow_RemovesWholeLine(t *testing.T) {
	f := testhelpers.NewStorefrontFixture()
	s, _ := newTestServices(f)
	ctx := context.Background()

	cpu := f.Component("cpu_am5_entry")
	item, err := s.AddComponent(ctx, testUser, cpu.ID, 3)
	if err != nil {
		t.Fatalf("AddComponent failed: %v", err)
	}

	if err := s.DeleteRow(ctx, testUser, item.ID); err != nil {
		t.Fatalf("DeleteRow failed: %v", err)
	}
	view, _ := s.List(ctx, testUser)
	if len(view.Items) != 0 {
		t.Error("expected empty cart after DeleteRow")
	}

	if err := s.DeleteRow(ctx, testUser, item.ID); !errors.Is(err, entities.ErrNotFound) {
		t.Errorf("expected not-found for a deleted line, got %v", err)
	}
}

func saveStarterBuild(t *testing.T, ws *workspace.Service, f *testhelpers.Fixture) *entities.SavedBuild {
	t.Helper()
	ctx := context.Background()
	for _, key := range []string{"cpu_am5_entry", "board_am5_matx", "mem_ddr5_16", "psu_550", "case_matx"} {
		component := f.Component(key)
		if _, err := ws.Add(ctx, testUser, component.Category, component.ID); err != nil {
			t.Fatalf("workspace add failed: %v", err)
		}
	}
	build, err := ws.Save(ctx, testUser, "Starter")
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	return build
}
