package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rigforge/rigforge/pkg/application/services/autobuild"
	"github.com/rigforge/rigforge/pkg/application/services/cart"
	"github.com/rigforge/rigforge/pkg/application/services/catalog"
	"github.com/rigforge/rigforge/pkg/application/services/order"
	"github.com/rigforge/rigforge/pkg/application/services/workspace"
	"github.com/rigforge/rigforge/pkg/domain/services"
	"github.com/rigforge/rigforge/pkg/infrastructure/auth"
	testhelpers "github.com/rigforge/rigforge/pkg/infrastructure/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// stubVerifier resolves fixed tokens without the identity provider
type stubVerifier struct{}

func (stubVerifier) Verify(_ context.Context, token string) (*auth.Identity, error) {
	switch token {
	case "user-token":
		return &auth.Identity{UserID: "user-1"}, nil
	case "admin-token":
		return &auth.Identity{UserID: "admin-1", Admin: true}, nil
	}
	return nil, fmt.Errorf("unknown token")
}

func newTestServer(t *testing.T) (*Server, *testhelpers.Fixture) {
	t.Helper()
	f := testhelpers.NewStorefrontFixture()
	catalogService := catalog.NewService(f.Catalog)
	checker := services.NewCompatibilityChecker()
	logger := zap.NewNop()

	svcs := Services{
		Catalog:   catalogService,
		Workspace: workspace.NewService(f.Workspaces, f.Builds, catalogService, checker),
		Builder:   autobuild.NewBuilder(catalogService, checker, logger),
		Cart:      cart.NewService(f.Carts, f.Workspaces, f.Builds, catalogService),
		Orders:    order.NewService(f.Orders, f.Checkout, logger),
		Checker:   checker,
	}
	return NewServer(":0", svcs, stubVerifier{}, nil, logger), f
}

func doRequest(t *testing.T, server *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	recorder := httptest.NewRecorder()
	server.Handler().ServeHTTP(recorder, req)
	return recorder
}

func decodeResponse(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var response map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
	return response
}

func TestAuth_MissingTokenRejected(t *testing.T) {
	server, _ := newTestServer(t)
	recorder := doRequest(t, server, http.MethodGet, "/api/builder/temp", "", nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestAuth_BadTokenRejected(t *testing.T) {
	server, _ := newTestServer(t)
	recorder := doRequest(t, server, http.MethodGet, "/api/builder/temp", "forged", nil)
	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestHealthz_NoAuthRequired(t *testing.T) {
	server, _ := newTestServer(t)
	recorder := doRequest(t, server, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestListComponents_UnknownCategory(t *testing.T) {
	server, _ := newTestServer(t)
	recorder := doRequest(t, server, http.MethodGet, "/api/builder/components?category=ssd", "user-token", nil)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestListComponents_OK(t *testing.T) {
	server, _ := newTestServer(t)
	recorder := doRequest(t, server, http.MethodGet, "/api/builder/components?category=cpu", "user-token", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	response := decodeResponse(t, recorder)
	components, ok := response["components"].([]any)
	require.True(t, ok)
	assert.NotEmpty(t, components)
}

func TestWorkspaceAdd_IncompatibleReturnsReason(t *testing.T) {
	server, f := newTestServer(t)

	// Seed the workspace with an AM5 board, then offer an LGA CPU.
	board := f.Component("board_am5_matx")
	recorder := doRequest(t, server, http.MethodPost, "/api/builder/temp/add", "user-token", map[string]any{
		"category":    "motherboard",
		"componentId": board.ID,
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	lga := f.Component("cpu_lga_mid")
	recorder = doRequest(t, server, http.MethodPost, "/api/builder/temp/add", "user-token", map[string]any{
		"category":    "cpu",
		"componentId": lga.ID,
	})
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	response := decodeResponse(t, recorder)
	assert.Equal(t, "Incompatible component", response["error"])
	assert.Equal(t, services.ReasonCPUSocket, response["reason"])

	// Workspace untouched: the cpu slot is still empty.
	recorder = doRequest(t, server, http.MethodGet, "/api/builder/temp", "user-token", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	build := decodeResponse(t, recorder)["build"].(map[string]any)
	_, present := build["cpu"]
	assert.False(t, present)
}

func TestWorkspaceAdd_PSUWattageBoundary(t *testing.T) {
	server, f := newTestServer(t)

	// 170W CPU + 450W GPU needs ceil(620*1.25) = 775W.
	for _, seed := range []struct{ category, key string }{
		{"cpu", "cpu_am5_high"},
		{"gpu", "gpu_flagship"},
	} {
		recorder := doRequest(t, server, http.MethodPost, "/api/builder/temp/add", "user-token", map[string]any{
			"category":    seed.category,
			"componentId": f.Component(seed.key).ID,
		})
		require.Equal(t, http.StatusOK, recorder.Code)
	}

	recorder := doRequest(t, server, http.MethodPost, "/api/builder/temp/add", "user-token", map[string]any{
		"category":    "psu",
		"componentId": f.Component("psu_750").ID,
	})
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, services.ReasonPSUWattage, decodeResponse(t, recorder)["reason"])

	recorder = doRequest(t, server, http.MethodPost, "/api/builder/temp/add", "user-token", map[string]any{
		"category":    "psu",
		"componentId": f.Component("psu_1000").ID,
	})
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestSaveAndListBuilds(t *testing.T) {
	server, f := newTestServer(t)

	cpu := f.Component("cpu_am5_entry")
	recorder := doRequest(t, server, http.MethodPost, "/api/builder/temp/add", "user-token", map[string]any{
		"category":    "cpu",
		"componentId": cpu.ID,
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = doRequest(t, server, http.MethodPost, "/api/builder/save", "user-token", map[string]any{})
	require.Equal(t, http.StatusOK, recorder.Code)
	saved := decodeResponse(t, recorder)["build"].(map[string]any)
	assert.Equal(t, workspace.DefaultBuildName, saved["name"])

	recorder = doRequest(t, server, http.MethodGet, "/api/builder/my", "user-token", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	builds := decodeResponse(t, recorder)["builds"].([]any)
	assert.Len(t, builds, 1)
}

func TestAutoBuild_WritesWorkspace(t *testing.T) {
	server, _ := newTestServer(t)

	recorder := doRequest(t, server, http.MethodPost, "/api/builder/autobuild", "user-token", map[string]any{
		"purpose": "gaming",
		"budget":  80000,
	})
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())

	response := decodeResponse(t, recorder)
	build := response["build"].(map[string]any)
	for _, slug := range []string{"cpu", "motherboard", "memory", "psu", "case", "gpu", "storage"} {
		assert.Contains(t, build, slug, "missing %s in generated build", slug)
	}

	// The generated build persisted into the workspace.
	recorder = doRequest(t, server, http.MethodGet, "/api/builder/temp", "user-token", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	persisted := decodeResponse(t, recorder)["build"].(map[string]any)
	assert.Contains(t, persisted, "cpu")
}

func TestAutoBuild_UnknownPurpose(t *testing.T) {
	server, _ := newTestServer(t)
	recorder := doRequest(t, server, http.MethodPost, "/api/builder/autobuild", "user-token", map[string]any{
		"purpose": "mining",
	})
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestCartAndCheckoutFlow(t *testing.T) {
	server, f := newTestServer(t)

	cpu := f.Component("cpu_am5_entry")
	recorder := doRequest(t, server, http.MethodPost, "/api/cart/add", "user-token", map[string]any{
		"componentId": cpu.ID,
		"quantity":    2,
	})
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = doRequest(t, server, http.MethodGet, "/api/cart", "user-token", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	view := decodeResponse(t, recorder)
	assert.Len(t, view["items"].([]any), 1)

	recorder = doRequest(t, server, http.MethodPost, "/api/checkout", "user-token", map[string]any{
		"payment_method": "card",
	})
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	placed := decodeResponse(t, recorder)["order"].(map[string]any)
	assert.Equal(t, "pending", placed["status"])
	assert.Equal(t, "card", placed["payment_method"])

	recorder = doRequest(t, server, http.MethodGet, "/api/orders", "user-token", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	orders := decodeResponse(t, recorder)["orders"].([]any)
	require.Len(t, orders, 1)

	orderID := orders[0].(map[string]any)["id"].(string)
	recorder = doRequest(t, server, http.MethodGet, "/api/orders/"+orderID, "user-token", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	items := decodeResponse(t, recorder)["items"].([]any)
	assert.Len(t, items, 1)
}

func TestCheckout_EmptyCart(t *testing.T) {
	server, _ := newTestServer(t)
	recorder := doRequest(t, server, http.MethodPost, "/api/checkout", "user-token", map[string]any{})
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, decodeResponse(t, recorder)["error"], "Cart is empty")
}

func TestAdminRoutes_RequireAdminClaim(t *testing.T) {
	server, f := newTestServer(t)

	// Place an order as the user first.
	cpu := f.Component("cpu_am5_entry")
	doRequest(t, server, http.MethodPost, "/api/cart/add", "user-token", map[string]any{"componentId": cpu.ID})
	recorder := doRequest(t, server, http.MethodPost, "/api/checkout", "user-token", map[string]any{})
	require.Equal(t, http.StatusOK, recorder.Code)
	orderID := decodeResponse(t, recorder)["order"].(map[string]any)["id"].(string)

	// A plain user is rejected.
	recorder = doRequest(t, server, http.MethodPut, "/api/admin/orders/"+orderID+"/status", "user-token", map[string]any{"status": "paid"})
	assert.Equal(t, http.StatusForbidden, recorder.Code)

	// The admin claim gets through, and the transition stamps its field.
	recorder = doRequest(t, server, http.MethodPut, "/api/admin/orders/"+orderID+"/status", "admin-token", map[string]any{"status": "paid"})
	require.Equal(t, http.StatusOK, recorder.Code)
	updated := decodeResponse(t, recorder)["order"].(map[string]any)
	assert.Equal(t, "paid", updated["status"])
	assert.Contains(t, updated, "paid_at")
}

func TestAdminCreateComponent(t *testing.T) {
	server, _ := newTestServer(t)

	recorder := doRequest(t, server, http.MethodPost, "/api/admin/components", "admin-token", map[string]any{
		"category": "cpu",
		"name":     "Ryzen 5 9600X",
		"brand":    "AMD",
		"price":    18000,
		"stock":    10,
		"specs":    map[string]any{"socket": "AM5", "cores": 6, "tdp": 65},
	})
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	component := decodeResponse(t, recorder)["component"].(map[string]any)
	specs := component["specs"].(map[string]any)
	assert.Equal(t, "AM5", specs["socket"])
}
