package workspace

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rigforge/rigforge/pkg/application/services/catalog"
	"github.com/rigforge/rigforge/pkg/domain/entities"
	"github.com/rigforge/rigforge/pkg/domain/services"
	testhelpers "github.com/rigforge/rigforge/pkg/infrastructure/testing"
)

const testUser = "user-1"

func newTestService(f *testhelpers.Fixture) *Service {
	catalogService := catalog.NewService(f.Catalog)
	checker := services.NewCompatibilityChecker()
	return NewService(f.Workspaces, f.Builds, catalogService, checker)
}

func mustAdd(t *testing.T, s *Service, key string, f *testhelpers.Fixture) {
	t.Helper()
	component := f.Component(key)
	if _, err := s.Add(context.Background(), testUser, component.Category, component.ID); err != nil {
		t.Fatalf("Add(%s) failed: %v", key, err)
	}
}

func TestAddRemove_RoundTrip(t *testing.T) {
	f := testhelpers.NewStorefrontFixture()
	s := newTestService(f)
	ctx := context.Background()

	mustAdd(t, s, "cpu_am5_entry", f)
	mustAdd(t, s, "board_am5_matx", f)

	workspace, err := s.Get(ctx, testUser)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(workspace.Components) != 2 {
		t.Fatalf("expected 2 components, got %d", len(workspace.Components))
	}
	if workspace.Components[entities.SlugCPU] != f.Component("cpu_am5_entry").ID {
		t.Error("cpu slot holds the wrong component")
	}

	if _, err := s.Remove(ctx, testUser, entities.SlugCPU); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	workspace, _ = s.Get(ctx, testUser)
	if _, present := workspace.Components[entities.SlugCPU]; present {
		t.Error("cpu slot survived removal")
	}

	// Removing an empty slot is a no-op, not an error.
	if _, err := s.Remove(ctx, testUser, entities.SlugGPU); err != nil {
		t.Errorf("removing an empty slot errored: %v", err)
	}
}

func TestAdd_ReplacesSameCategory(t *testing.T) {
	f := testhelpers.NewStorefrontFixture()
	s := newTestService(f)
	ctx := context.Background()

	mustAdd(t, s, "cpu_am5_entry", f)
	mustAdd(t, s, "cpu_am5_mid", f)

	workspace, _ := s.Get(ctx, testUser)
	if workspace.Components[entities.SlugCPU] != f.Component("cpu_am5_mid").ID {
		t.Error("second add did not replace the cpu slot")
	}
	if len(workspace.Components) != 1 {
		t.Errorf("expected 1 component, got %d", len(workspace.Components))
	}
}

func TestAdd_RejectsIncompatibleAndLeavesWorkspaceUntouched(t *testing.T) {
	f := testhelpers.NewStorefrontFixture()
	s := newTestService(f)
	ctx := context.Background()

	mustAdd(t, s, "board_am5_matx", f)

	lga := f.Component("cpu_lga_mid")
	_, err := s.Add(ctx, testUser, entities.SlugCPU, lga.ID)
	if err == nil {
		t.Fatal("expected a compatibility rejection")
	}
	compatErr, ok := entities.AsCompatibilityError(err)
	if !ok {
		t.Fatalf("expected CompatibilityError, got %T: %v", err, err)
	}
	if compatErr.Reason != services.ReasonCPUSocket {
		t.Errorf("reason = %q, want %q", compatErr.Reason, services.ReasonCPUSocket)
	}

	workspace, _ := s.Get(ctx, testUser)
	if _, present := workspace.Components[entities.SlugCPU]; present {
		t.Error("rejected candidate was written to the workspace")
	}
}

func TestAdd_RejectsCategoryMismatch(t *testing.T) {
	f := testhelpers.NewStorefrontFixture()
	s := newTestService(f)

	gpu := f.Component("gpu_mid")
	_, err := s.Add(context.Background(), testUser, entities.SlugCPU, gpu.ID)
	if !errors.Is(err, entities.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestListPickable_FiltersIncompatible(t *testing.T) {
	f := testhelpers.NewStorefrontFixture()
	s := newTestService(f)
	ctx := context.Background()

	mustAdd(t, s, "cpu_am5_entry", f)

	boards, err := s.ListPickable(ctx, testUser, entities.SlugMotherboard)
	if err != nil {
		t.Fatalf("ListPickable failed: %v", err)
	}
	for _, board := range boards {
		specs := board.Specs.(*entities.MotherboardSpecs)
		if specs.Socket != "AM5" {
			t.Errorf("pickable board %s has socket %s", board.Name, specs.Socket)
		}
	}
	if len(boards) != 2 {
		t.Errorf("expected the 2 AM5 boards, got %d", len(boards))
	}
}

func TestSave_DefaultsNameAndClearsWorkspace(t *testing.T) {
	f := testhelpers.NewStorefrontFixture()
	s := newTestService(f)
	ctx := context.Background()

	mustAdd(t, s, "cpu_am5_entry", f)
	mustAdd(t, s, "board_am5_matx", f)

	build, err := s.Save(ctx, testUser, "")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if build.Name != DefaultBuildName {
		t.Errorf("name = %q, want %q", build.Name, DefaultBuildName)
	}
	if build.Compatibility != entities.BuildIncomplete {
		t.Errorf("compatibility = %s, want incomplete (required categories missing)", build.Compatibility)
	}
	wantTotal := f.Component("cpu_am5_entry").Price.Add(f.Component("board_am5_matx").Price)
	if !build.TotalPrice.Equal(wantTotal) {
		t.Errorf("total = %s, want %s", build.TotalPrice, wantTotal)
	}

	workspace, _ := s.Get(ctx, testUser)
	if len(workspace.Components) != 0 {
		t.Error("workspace not cleared after save")
	}
}

func TestSave_EmptyWorkspaceRejected(t *testing.T) {
	f := testhelpers.NewStorefrontFixture()
	s := newTestService(f)

	if _, err := s.Save(context.Background(), testUser, "Empty"); !errors.Is(err, entities.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSave_CompleteBuildClassifiedOK(t *testing.T) {
	f := testhelpers.NewStorefrontFixture()
	s := newTestService(f)

	for _, key := range []string{"cpu_am5_entry", "board_am5_matx", "mem_ddr5_16", "psu_550", "case_matx"} {
		mustAdd(t, s, key, f)
	}

	build, err := s.Save(context.Background(), testUser, "Starter")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if build.Compatibility != entities.BuildOK {
		t.Errorf("compatibility = %s, want ok", build.Compatibility)
	}
	if build.PowerUsage != 65 {
		t.Errorf("power usage = %d, want 65", build.PowerUsage)
	}
}

func TestLoadEditUpdate_RoundTrip(t *testing.T) {
	f := testhelpers.NewStorefrontFixture()
	s := newTestService(f)
	ctx := context.Background()

	for _, key := range []string{"cpu_am5_entry", "board_am5_matx", "mem_ddr5_16", "psu_550", "case_matx"} {
		mustAdd(t, s, key, f)
	}
	build, err := s.Save(ctx, testUser, "Starter")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	workspace, err := s.Load(ctx, testUser, build.ID)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if workspace.SourceBuildID == nil || *workspace.SourceBuildID != build.ID {
		t.Fatal("edit marker missing after load")
	}

	// Swap the CPU while editing; the marker must survive.
	mustAdd(t, s, "cpu_am5_mid", f)
	workspace, _ = s.Get(ctx, testUser)
	if workspace.SourceBuildID == nil || *workspace.SourceBuildID != build.ID {
		t.Fatal("edit marker lost after a mutation")
	}

	updated, err := s.UpdateSaved(ctx, testUser, build.ID, "Starter v2")
	if err != nil {
		t.Fatalf("UpdateSaved failed: %v", err)
	}
	if updated.Name != "Starter v2" {
		t.Errorf("name = %q, want %q", updated.Name, "Starter v2")
	}
	if updated.Components[entities.SlugCPU] != f.Component("cpu_am5_mid").ID {
		t.Error("updated build still holds the old cpu")
	}

	workspace, _ = s.Get(ctx, testUser)
	if len(workspace.Components) != 0 || workspace.SourceBuildID != nil {
		t.Error("workspace not cleared after update")
	}
}

func TestUpdateSaved_RejectsForeignWorkspace(t *testing.T) {
	f := testhelpers.NewStorefrontFixture()
	s := newTestService(f)
	ctx := context.Background()

	for _, key := range []string{"cpu_am5_entry", "board_am5_matx", "mem_ddr5_16", "psu_550", "case_matx"} {
		mustAdd(t, s, key, f)
	}
	build, err := s.Save(ctx, testUser, "Starter")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Fresh workspace with a different category set, no edit marker.
	mustAdd(t, s, "gpu_mid", f)
	if _, err := s.UpdateSaved(ctx, testUser, build.ID, ""); !errors.Is(err, entities.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDuplicate_NameDerivation(t *testing.T) {
	f := testhelpers.NewStorefrontFixture()
	s := newTestService(f)
	ctx := context.Background()

	mustAdd(t, s, "cpu_am5_entry", f)
	mustAdd(t, s, "board_am5_matx", f)
	build, err := s.Save(ctx, testUser, "Gaming Rig")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	first, err := s.Duplicate(ctx, testUser, build.ID)
	if err != nil {
		t.Fatalf("Duplicate failed: %v", err)
	}
	if first.Name != "Gaming Rig (1)" {
		t.Errorf("first copy = %q, want %q", first.Name, "Gaming Rig (1)")
	}

	second, err := s.Duplicate(ctx, testUser, build.ID)
	if err != nil {
		t.Fatalf("Duplicate failed: %v", err)
	}
	if second.Name != "Gaming Rig (2)" {
		t.Errorf("second copy = %q, want %q", second.Name, "Gaming Rig (2)")
	}

	// Copying an already-numbered name appends rather than renumbering.
	nested, err := s.Duplicate(ctx, testUser, second.ID)
	if err != nil {
		t.Fatalf("Duplicate failed: %v", err)
	}
	if nested.Name != "Gaming Rig (2)(1)" {
		t.Errorf("nested copy = %q, want %q", nested.Name, "Gaming Rig (2)(1)")
	}

	if first.ID == build.ID || second.ID == first.ID {
		t.Error("duplicates must carry fresh ids")
	}
	if first.Components[entities.SlugCPU] != build.Components[entities.SlugCPU] {
		t.Error("duplicate lost the original's components")
	}
}

func TestDelete_SoftDeleteHidesFromList(t *testing.T) {
	f := testhelpers.NewStorefrontFixture()
	s := newTestService(f)
	ctx := context.Background()

	mustAdd(t, s, "cpu_am5_entry", f)
	build, err := s.Save(ctx, testUser, "Doomed")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := s.Delete(ctx, testUser, build.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	builds, _ := s.ListSaved(ctx, testUser)
	for _, b := range builds {
		if b.ID == build.ID {
			t.Error("soft-deleted build still listed")
		}
	}
	if _, err := s.GetSaved(ctx, testUser, build.ID); !errors.Is(err, entities.ErrNotFound) {
		t.Errorf("expected not-found for soft-deleted build, got %v", err)
	}
}

func TestExpand_StrictOmitsDanglingIDs(t *testing.T) {
	f := testhelpers.NewStorefrontFixture()
	s := newTestService(f)
	ctx := context.Background()

	cpu := f.Component("cpu_am5_entry")
	dangling := f.Component("gpu_mid").ID
	if err := f.Catalog.DeleteComponent(ctx, dangling); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	components := map[entities.Slug]uuid.UUID{
		entities.SlugCPU: cpu.ID,
		entities.SlugGPU: dangling,
	}

	strict, err := s.Expand(ctx, components, false)
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}
	if _, present := strict[entities.SlugGPU]; present {
		t.Error("strict expand kept a dangling slot")
	}

	lenient, err := s.Expand(ctx, components, true)
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}
	part, present := lenient[entities.SlugGPU]
	if !present || !part.Placeholder() {
		t.Error("lenient expand should keep a placeholder for the dangling slot")
	}
}
