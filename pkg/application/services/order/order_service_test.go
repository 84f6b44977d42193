package order

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rigforge/rigforge/pkg/application/services/cart"
	"github.com/rigforge/rigforge/pkg/application/services/catalog"
	"github.com/rigforge/rigforge/pkg/application/services/workspace"
	"github.com/rigforge/rigforge/pkg/domain/entities"
	"github.com/rigforge/rigforge/pkg/domain/services"
	testhelpers "github.com/rigforge/rigforge/pkg/infrastructure/testing"
	"github.com/shopspring/decimal"
)

const testUser = "user-1"

type testEnv struct {
	fixture   *testhelpers.Fixture
	orders    *Service
	cart      *cart.Service
	workspace *workspace.Service
	catalog   *catalog.Service
}

func newTestEnv() *testEnv {
	f := testhelpers.NewStorefrontFixture()
	catalogService := catalog.NewService(f.Catalog)
	checker := services.NewCompatibilityChecker()
	return &testEnv{
		fixture:   f,
		orders:    NewService(f.Orders, f.Checkout, nil),
		cart:      cart.NewService(f.Carts, f.Workspaces, f.Builds, catalogService),
		workspace: workspace.NewService(f.Workspaces, f.Builds, catalogService, checker),
		catalog:   catalogService,
	}
}

func (e *testEnv) addToCart(t *testing.T, key string, quantity int) *entities.CartItem {
	t.Helper()
	item, err := e.cart.AddComponent(context.Background(), testUser, e.fixture.Component(key).ID, quantity)
	if err != nil {
		t.Fatalf("cart add %s failed: %v", key, err)
	}
	return item
}

func (e *testEnv) saveBuild(t *testing.T, keys ...string) *entities.SavedBuild {
	t.Helper()
	ctx := context.Background()
	for _, key := range keys {
		component := e.fixture.Component(key)
		if _, err := e.workspace.Add(ctx, testUser, component.Category, component.ID); err != nil {
			t.Fatalf("workspace add %s failed: %v", key, err)
		}
	}
	build, err := e.workspace.Save(ctx, testUser, "Checkout Build")
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	return build
}

func (e *testEnv) stock(t *testing.T, key string) int {
	t.Helper()
	detail, err := e.catalog.GetComponentByID(context.Background(), e.fixture.Component(key).ID)
	if err != nil || detail == nil {
		t.Fatalf("failed to read %s", key)
	}
	return detail.Stock
}

func TestCheckoutCart_SelectiveLines(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()

	a := e.addToCart(t, "cpu_am5_entry", 2)
	e.addToCart(t, "gpu_mid", 1) // B, stays in the cart
	c := e.addToCart(t, "mem_ddr5_16", 1)

	stockA := e.stock(t, "cpu_am5_entry")
	stockB := e.stock(t, "gpu_mid")
	stockC := e.stock(t, "mem_ddr5_16")

	order, err := e.orders.CheckoutCart(ctx, testUser, []uuid.UUID{a.ID, c.ID}, "", "")
	if err != nil {
		t.Fatalf("CheckoutCart failed: %v", err)
	}
	if order.Status != entities.OrderPending {
		t.Errorf("status = %s, want pending", order.Status)
	}
	if order.PaymentMethod != entities.DefaultPaymentMethod {
		t.Errorf("payment method = %q, want %q", order.PaymentMethod, entities.DefaultPaymentMethod)
	}

	items, err := e.orders.ListItems(ctx, testUser, order.ID)
	if err != nil {
		t.Fatalf("ListItems failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 order items, got %d", len(items))
	}

	// Order total equals the sum of its items.
	itemSum := decimal.Zero
	for _, item := range items {
		itemSum = itemSum.Add(item.PriceEach.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	if !order.Total.Equal(itemSum) {
		t.Errorf("order total %s != item sum %s", order.Total, itemSum)
	}

	// Stock moved only for the selected lines.
	if got := e.stock(t, "cpu_am5_entry"); got != stockA-2 {
		t.Errorf("stock A = %d, want %d", got, stockA-2)
	}
	if got := e.stock(t, "mem_ddr5_16"); got != stockC-1 {
		t.Errorf("stock C = %d, want %d", got, stockC-1)
	}
	if got := e.stock(t, "gpu_mid"); got != stockB {
		t.Errorf("stock B = %d, want unchanged %d", got, stockB)
	}

	// The unselected line survives; the selected ones are gone.
	view, _ := e.cart.List(ctx, testUser)
	if len(view.Items) != 1 || view.Items[0].ComponentID != e.fixture.Component("gpu_mid").ID {
		t.Error("expected only the unselected line to remain in the cart")
	}
}

func TestCheckoutCart_EmptyCart(t *testing.T) {
	e := newTestEnv()
	_, err := e.orders.CheckoutCart(context.Background(), testUser, nil, "", "")
	if err == nil || !strings.Contains(err.Error(), "Cart is empty") {
		t.Fatalf("expected empty-cart rejection, got %v", err)
	}
}

func TestCheckoutCart_NoValidSelection(t *testing.T) {
	e := newTestEnv()
	e.addToCart(t, "cpu_am5_entry", 1)

	_, err := e.orders.CheckoutCart(context.Background(), testUser, []uuid.UUID{uuid.New()}, "", "")
	if err == nil || !strings.Contains(err.Error(), "No valid items selected") {
		t.Fatalf("expected no-valid-items rejection, got %v", err)
	}
}

func TestCheckoutCart_BundleLineExpandsToComponents(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()

	build := e.saveBuild(t, "cpu_am5_entry", "board_am5_matx", "mem_ddr5_16", "psu_550", "case_matx")
	bundle, err := e.cart.AddBuild(ctx, testUser, build.ID)
	if err != nil {
		t.Fatalf("AddBuild failed: %v", err)
	}

	order, err := e.orders.CheckoutCart(ctx, testUser, []uuid.UUID{bundle.ID}, "card", "gift")
	if err != nil {
		t.Fatalf("CheckoutCart failed: %v", err)
	}
	if order.PaymentMethod != "card" || order.Notes != "gift" {
		t.Error("payment method and notes not recorded")
	}

	items, _ := e.orders.ListItems(ctx, testUser, order.ID)
	if len(items) != len(build.Components) {
		t.Fatalf("expected %d order items, got %d", len(build.Components), len(items))
	}
	for _, item := range items {
		if item.BuildID != build.ID {
			t.Error("bundle expansion item missing the build reference")
		}
		if item.ComponentName == "" || item.ComponentCategory == "" {
			t.Error("order item missing snapshot fields")
		}
	}
}

func TestCheckoutCart_InsufficientStockRollsBack(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()

	a := e.addToCart(t, "cpu_am5_entry", 1)
	flagship := e.fixture.Component("gpu_flagship") // stock 3
	b, err := e.cart.AddComponent(ctx, testUser, flagship.ID, 4)
	if err != nil {
		t.Fatalf("cart add failed: %v", err)
	}

	stockA := e.stock(t, "cpu_am5_entry")

	_, err = e.orders.CheckoutCart(ctx, testUser, []uuid.UUID{a.ID, b.ID}, "", "")
	if err == nil {
		t.Fatal("expected stock rejection")
	}
	stockErr, ok := entities.AsStockError(err)
	if !ok {
		t.Fatalf("expected StockError, got %T: %v", err, err)
	}
	if stockErr.ComponentName != flagship.Name || stockErr.Remaining != 3 {
		t.Errorf("stock error = %v, want %s remaining 3", stockErr, flagship.Name)
	}

	// Nothing observable changed.
	if got := e.stock(t, "cpu_am5_entry"); got != stockA {
		t.Errorf("stock A = %d after rollback, want %d", got, stockA)
	}
	orders, _ := e.orders.List(ctx, testUser)
	if len(orders) != 0 {
		t.Error("order row observable after rollback")
	}
	view, _ := e.cart.List(ctx, testUser)
	if len(view.Items) != 2 {
		t.Error("cart mutated by a failed checkout")
	}
}

func TestCheckoutSavedBuild_InsufficientStock(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()

	build := e.saveBuild(t, "cpu_am5_entry", "board_am5_matx", "mem_ddr5_16", "psu_550", "case_matx")

	// Drain the PSU's stock to zero after the build was saved.
	psu := e.fixture.Component("psu_550")
	if err := e.fixture.Catalog.AdjustStock(psu.ID, -e.stock(t, "psu_550")); err != nil {
		t.Fatalf("failed to drain stock: %v", err)
	}
	stockCPU := e.stock(t, "cpu_am5_entry")

	_, err := e.orders.CheckoutSavedBuild(ctx, testUser, build.ID, "", "")
	stockErr, ok := entities.AsStockError(err)
	if !ok {
		t.Fatalf("expected StockError, got %v", err)
	}
	if stockErr.ComponentName != psu.Name || stockErr.Remaining != 0 {
		t.Errorf("stock error = %v, want %s remaining 0", stockErr, psu.Name)
	}

	if got := e.stock(t, "cpu_am5_entry"); got != stockCPU {
		t.Error("unrelated stock changed on a failed build checkout")
	}
	// Build is untouched.
	if _, err := e.workspace.GetSaved(ctx, testUser, build.ID); err != nil {
		t.Errorf("build should survive a failed checkout: %v", err)
	}
}

func TestCheckoutSavedBuild_SoftDeletesBuild(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()

	build := e.saveBuild(t, "cpu_am5_entry", "board_am5_matx", "mem_ddr5_16", "psu_550", "case_matx")

	order, err := e.orders.CheckoutSavedBuild(ctx, testUser, build.ID, "", "")
	if err != nil {
		t.Fatalf("CheckoutSavedBuild failed: %v", err)
	}

	items, _ := e.orders.ListItems(ctx, testUser, order.ID)
	if len(items) != len(build.Components) {
		t.Fatalf("expected %d order items, got %d", len(build.Components), len(items))
	}
	itemSum := decimal.Zero
	for _, item := range items {
		if item.BuildID != build.ID {
			t.Error("order item missing the build reference")
		}
		itemSum = itemSum.Add(item.PriceEach.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	if !order.Total.Equal(itemSum) {
		t.Errorf("order total %s != item sum %s", order.Total, itemSum)
	}

	// The build is gone from the user's lists but its row still backs
	// the order items.
	if _, err := e.workspace.GetSaved(ctx, testUser, build.ID); !errors.Is(err, entities.ErrNotFound) {
		t.Errorf("expected not-found for checked-out build, got %v", err)
	}
	if _, err := e.fixture.Builds.Get(ctx, build.ID); err != nil {
		t.Errorf("soft-deleted build must stay resolvable by id: %v", err)
	}
}

func TestUpdateStatus_StampsTransitionTimestamp(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()

	e.addToCart(t, "cpu_am5_entry", 1)
	order, err := e.orders.CheckoutCart(ctx, testUser, nil, "", "")
	if err != nil {
		t.Fatalf("CheckoutCart failed: %v", err)
	}

	updated, err := e.orders.UpdateStatus(ctx, order.ID, "  SHIPPED ")
	if err != nil {
		t.Fatalf("UpdateStatus failed: %v", err)
	}
	if updated.Status != entities.OrderShipped {
		t.Errorf("status = %s, want shipped", updated.Status)
	}
	if updated.ShippedAt == nil {
		t.Error("shipped_at not stamped")
	}
	if updated.PaidAt != nil || updated.CompletedAt != nil || updated.CancelledAt != nil || updated.RefundedAt != nil {
		t.Error("unrelated transition timestamps were stamped")
	}

	if _, err := e.orders.UpdateStatus(ctx, order.ID, "misplaced"); !errors.Is(err, entities.ErrValidation) {
		t.Fatalf("expected validation error for unknown status, got %v", err)
	}
}

func TestGet_ScopedToOwner(t *testing.T) {
	e := newTestEnv()
	ctx := context.Background()

	e.addToCart(t, "cpu_am5_entry", 1)
	order, err := e.orders.CheckoutCart(ctx, testUser, nil, "", "")
	if err != nil {
		t.Fatalf("CheckoutCart failed: %v", err)
	}

	if _, err := e.orders.Get(ctx, "someone-else", order.ID); !errors.Is(err, entities.ErrNotFound) {
		t.Fatalf("expected not-found for a foreign user, got %v", err)
	}
	if _, err := e.orders.Get(ctx, testUser, order.ID); err != nil {
		t.Fatalf("owner read failed: %v", err)
	}
}
