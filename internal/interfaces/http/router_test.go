package http_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pasteops-api/internal/application/fieldservice"
	"github.com/jhoicas/pasteops-api/internal/application/inventory"
	"github.com/jhoicas/pasteops-api/internal/application/ledger"
	"github.com/jhoicas/pasteops-api/internal/application/production"
	"github.com/jhoicas/pasteops-api/internal/application/usecase"
	"github.com/jhoicas/pasteops-api/internal/infrastructure/memory"
	"github.com/jhoicas/pasteops-api/internal/infrastructure/pdf"
	apphttp "github.com/jhoicas/pasteops-api/internal/interfaces/http"
	pkgjwt "github.com/jhoicas/pasteops-api/pkg/jwt"
)

type apiClient struct {
	t     *testing.T
	app   *fiber.App
	token string
}

// newAPI levanta la API completa sobre el store en memoria.
func newAPI(t *testing.T) *apiClient {
	t.Helper()
	store := memory.NewStore()
	repos := store.Repos()
	l := ledger.New(repos, store)
	batches := production.NewBatchUseCase(repos, store, l, pdf.NewBatchRecordGenerator("PasteOps"))

	app := fiber.New(fiber.Config{ErrorHandler: apphttp.ErrorHandler})
	apphttp.Router(app, apphttp.RouterDeps{
		Materials: usecase.NewMaterialUseCase(repos.Materials),
		Recipes:   usecase.NewRecipeUseCase(repos, store),
		Stock:     inventory.NewStockUseCase(l, repos, store, nil),
		Checks:    inventory.NewReconciliationUseCase(repos, store, l),
		Orders:    production.NewOrderUseCase(repos.Orders, repos.Recipes),
		Batches:   batches,
		Service:   fieldservice.NewServiceOrderUseCase(repos, store),
		JWTSecret: testJWTSecret,
		JWTIssuer: testIssuer,
	})

	tok, err := pkgjwt.Generate(testJWTSecret, testUserID, "Operario", testIssuer, time.Hour)
	require.NoError(t, err)
	return &apiClient{t: t, app: app, token: tok}
}

// do envía la petición autenticada y decodifica el cuerpo JSON (si lo hay) en un mapa.
func (a *apiClient) do(method, path string, body any) (int, map[string]any) {
	a.t.Helper()
	resp := a.raw(method, path, body, true)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(a.t, err)
	out := map[string]any{}
	if len(data) > 0 && data[0] == '{' {
		require.NoError(a.t, json.Unmarshal(data, &out), string(data))
	}
	return resp.StatusCode, out
}

func (a *apiClient) raw(method, path string, body any, auth bool) *http.Response {
	a.t.Helper()
	var rd io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rd = bytes.NewBufferString(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(a.t, err)
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rd)
	if rd != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	resp, err := a.app.Test(req, -1)
	require.NoError(a.t, err)
	return resp
}

func (a *apiClient) createMaterial(code string) string {
	a.t.Helper()
	status, body := a.do(http.MethodPost, "/api/materials", map[string]any{
		"code": code, "name": code, "category": "RAW_MATERIAL", "unit": "kg",
	})
	require.Equal(a.t, http.StatusCreated, status, body)
	return body["id"].(string)
}

func (a *apiClient) receive(materialID, qty, date string) {
	a.t.Helper()
	status, body := a.do(http.MethodPost, "/api/inventory/lots", map[string]any{
		"material_id": materialID, "quantity": qty, "received_date": date,
	})
	require.Equal(a.t, http.StatusCreated, status, body)
}

func details(t *testing.T, body map[string]any) map[string]any {
	t.Helper()
	d, ok := body["details"].(map[string]any)
	require.True(t, ok, "la respuesta debe incluir details: %v", body)
	return d
}

// ──────────────────────────────────────────────────────────────────────────────
// Rutas públicas y autenticación
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_HealthEsPublico(t *testing.T) {
	api := newAPI(t)
	resp := api.raw(http.MethodGet, "/health", nil, false)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAPI_RutasProtegidasSinToken(t *testing.T) {
	api := newAPI(t)
	for _, path := range []string{"/api/materials", "/api/inventory/summary", "/api/production/batches"} {
		resp := api.raw(http.MethodGet, path, nil, false)
		resp.Body.Close()
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}
}

func TestAPI_RutaDesconocida(t *testing.T) {
	api := newAPI(t)
	status, body := api.do(http.MethodGet, "/api/no-existe", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", body["code"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Catálogo
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_Materiales(t *testing.T) {
	api := newAPI(t)
	id := api.createMaterial("SN96")

	status, body := api.do(http.MethodGet, "/api/materials/"+id, nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "SN96", body["code"])

	status, body = api.do(http.MethodPost, "/api/materials", map[string]any{
		"code": "SN96", "name": "otro", "category": "RAW_MATERIAL", "unit": "kg",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "DUPLICATE", body["code"])

	status, body = api.do(http.MethodPost, "/api/materials", map[string]any{
		"code": "X1", "name": "x", "category": "PLASTIC", "unit": "kg",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", body["code"])
	assert.Contains(t, details(t, body), "category")

	status, body = api.do(http.MethodPost, "/api/materials", `{"code":`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "INVALID_BODY", body["code"])

	status, body = api.do(http.MethodGet, "/api/materials/00000000-0000-0000-0000-0000000000ff", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", body["code"])

	status, body = api.do(http.MethodGet, "/api/materials?limit=1", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Len(t, body["items"], 1)
	assert.EqualValues(t, 1, body["limit"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Producción: consumo FIFO, falta de existencia y hoja de registro
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_ProduccionDeLote(t *testing.T) {
	api := newAPI(t)
	sn := api.createMaterial("SN96")
	api.receive(sn, "40", "2026-01-01T00:00:00Z")
	api.receive(sn, "30", "2026-01-02T00:00:00Z")

	status, recipe := api.do(http.MethodPost, "/api/recipes", map[string]any{
		"code": "SAC305-T4", "name": "Pasta SAC305",
		"ingredients": []map[string]any{{"material_id": sn, "quantity": "0.6"}},
	})
	require.Equal(t, http.StatusCreated, status, recipe)
	recipeID := recipe["id"].(string)

	status, req := api.do(http.MethodGet, "/api/recipes/"+recipeID+"/requirements?qty=100", nil)
	require.Equal(t, http.StatusOK, status, req)
	assert.Equal(t, true, req["feasible"])

	status, body := api.do(http.MethodGet, "/api/recipes/"+recipeID+"/requirements?qty=abc", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION", body["code"])

	status, batch := api.do(http.MethodPost, "/api/production/batches", map[string]any{
		"batch_number": "B-001", "recipe_id": recipeID, "produced_qty": "100",
	})
	require.Equal(t, http.StatusCreated, status, batch)
	assert.Len(t, batch["movements"], 2, "40 del primer lote y 20 del segundo")

	status, ledgerBody := api.do(http.MethodGet, "/api/inventory/materials/"+sn+"/ledger", nil)
	require.Equal(t, http.StatusOK, status, ledgerBody)

	status, body = api.do(http.MethodPost, "/api/production/batches", map[string]any{
		"batch_number": "B-002", "recipe_id": recipeID, "produced_qty": "100",
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "INSUFFICIENT_STOCK", body["code"])
	d := details(t, body)
	assert.Equal(t, sn, d["material_id"])
	assert.Equal(t, "60", d["required"])
	assert.Equal(t, "10", d["available"])

	status, _ = api.do(http.MethodGet, "/api/production/batches?status=NOT_A_STATUS", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	resp := api.raw(http.MethodGet, "/api/production/batches/"+batch["id"].(string)+"/record.pdf", nil, true)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "lote-B-001.pdf")
	data, _ := io.ReadAll(resp.Body)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestAPI_RecetaInactiva(t *testing.T) {
	api := newAPI(t)
	sn := api.createMaterial("SN96")
	api.receive(sn, "10", "2026-01-01T00:00:00Z")
	status, recipe := api.do(http.MethodPost, "/api/recipes", map[string]any{
		"code": "OLD", "name": "Receta retirada", "is_active": false,
		"ingredients": []map[string]any{{"material_id": sn, "quantity": "1"}},
	})
	require.Equal(t, http.StatusCreated, status, recipe)

	status, body := api.do(http.MethodPost, "/api/production/batches", map[string]any{
		"batch_number": "B-9", "recipe_id": recipe["id"], "produced_qty": "1",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "INACTIVE_RECIPE", body["code"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Conteo físico
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_ConteoFisico(t *testing.T) {
	api := newAPI(t)
	sn := api.createMaterial("SN96")
	api.receive(sn, "50", "2026-01-01T00:00:00Z")

	status, check := api.do(http.MethodPost, "/api/inventory/checks", map[string]any{"check_number": "INV-1"})
	require.Equal(t, http.StatusCreated, status, check)
	checkID := check["id"].(string)

	status, body := api.do(http.MethodPost, "/api/inventory/checks/"+checkID+"/complete", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Equal(t, "EMPTY_CHECK", body["code"])

	status, body = api.do(http.MethodPost, "/api/inventory/checks/"+checkID+"/items", map[string]any{
		"material_id": sn, "actual_qty": "47",
	})
	require.Equal(t, http.StatusCreated, status, body)

	status, body = api.do(http.MethodPost, "/api/inventory/checks/"+checkID+"/complete", nil)
	require.Equal(t, http.StatusOK, status, body)
	assert.Len(t, body["adjustments"], 1)

	status, body = api.do(http.MethodPost, "/api/inventory/checks/"+checkID+"/complete", nil)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "ALREADY_COMPLETED", body["code"])

	status, stock := api.do(http.MethodGet, "/api/materials/"+sn+"/stock", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "47", stock["available"])
}

// ──────────────────────────────────────────────────────────────────────────────
// Servicio técnico: consumos contra órdenes de servicio
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_OrdenDeServicio(t *testing.T) {
	api := newAPI(t)
	wipe := api.createMaterial("WIPE-01")
	api.receive(wipe, "20", "2026-01-01T00:00:00Z")

	status, order := api.do(http.MethodPost, "/api/service/orders", map[string]any{
		"order_number": "OS-500", "equipment_type": "Horno de reflujo", "priority": "HIGH",
	})
	require.Equal(t, http.StatusCreated, status, order)
	id := order["id"].(string)
	assert.Equal(t, "PLANNED", order["status"])

	status, body := api.do(http.MethodPost, "/api/inventory/consumptions", map[string]any{
		"material_id": wipe, "quantity": "1", "service_order_id": "00000000-0000-0000-0000-0000000000ff",
	})
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", body["code"])

	status, body = api.do(http.MethodPost, "/api/inventory/consumptions", map[string]any{
		"material_id": wipe, "quantity": "1",
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Contains(t, details(t, body), "service_order_id")

	workLog := map[string]any{"start_time": "2026-03-02T08:00:00Z", "description": "Limpieza de zona 3"}
	status, body = api.do(http.MethodPost, "/api/service/orders/"+id+"/work-logs", workLog)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", body["code"])

	status, body = api.do(http.MethodPost, "/api/service/orders/"+id+"/assignments", map[string]any{"engineer_id": testUserID})
	require.Equal(t, http.StatusCreated, status, body)
	assert.Equal(t, "ASSIGNED", body["status"])
	status, body = api.do(http.MethodPost, "/api/service/orders/"+id+"/work-logs", workLog)
	require.Equal(t, http.StatusCreated, status, body)

	status, _ = api.do(http.MethodPost, "/api/inventory/consumptions", map[string]any{
		"material_id": wipe, "quantity": "4", "service_order_id": id,
	})
	require.Equal(t, http.StatusCreated, status)

	status, body = api.do(http.MethodGet, "/api/service/orders/"+id, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "IN_PROGRESS", body["status"])
	movs, ok := body["movements"].([]any)
	require.True(t, ok, body)
	require.Len(t, movs, 1)
	assert.Equal(t, "4", movs[0].(map[string]any)["quantity"])
	assert.Equal(t, "OS-500", movs[0].(map[string]any)["document_number"])

	status, body = api.do(http.MethodPatch, "/api/service/orders/"+id+"/status", map[string]any{"status": "COMPLETED"})
	require.Equal(t, http.StatusOK, status, body)

	status, body = api.do(http.MethodPost, "/api/inventory/consumptions", map[string]any{
		"material_id": wipe, "quantity": "1", "service_order_id": id,
	})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "CONFLICT", body["code"])

	status, _ = api.do(http.MethodDelete, "/api/service/orders/"+id, nil)
	assert.Equal(t, http.StatusConflict, status)

	status, stock := api.do(http.MethodGet, "/api/materials/"+wipe+"/stock", nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, "16", stock["available"])
}
