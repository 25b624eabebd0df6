package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
	"github.com/jhoicas/stock-ledger-api/internal/application/usecase"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/memory"
	"github.com/jhoicas/stock-ledger-api/internal/infrastructure/observability"
	apphttp "github.com/jhoicas/stock-ledger-api/internal/interfaces/http"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers de test
// ──────────────────────────────────────────────────────────────────────────────

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Count   *int            `json:"count"`
	Data    json.RawMessage `json:"data"`
	Errors  []string        `json:"errors"`
}

type testServer struct {
	app     *fiber.App
	metrics *observability.Metrics
}

// buildTestApp arma la API completa sobre el motor en memoria.
func buildTestApp(t *testing.T, healthCheck func(context.Context) error) *testServer {
	t.Helper()
	store := memory.MustNewStore()
	metrics := observability.NewMetrics("test")
	log := zerolog.Nop()

	ledger := inventory.NewStockLedgerUseCase(memory.NewTxRunner(store), store.Products(), store.Locations(), nil, metrics, log)
	reader := inventory.NewStockReaderUseCase(store.Products(), store.Locations(), store.StockLevels(), store.Adjustments(), store.Transfers())

	app := apphttp.NewApp(apphttp.AppOptions{Name: "test", Log: log, Metrics: metrics})
	apphttp.Router(app, apphttp.RouterDeps{
		ServiceName:    "stock-ledger-api",
		Version:        "test",
		StorageName:    "memory",
		ProductUC:      usecase.NewProductUseCase(store.Products()),
		LocationUC:     usecase.NewLocationUseCase(store.Locations()),
		Ledger:         ledger,
		Reader:         reader,
		HealthCheck:    healthCheck,
		MetricsHandler: metrics.Handler(),
	})
	return &testServer{app: app, metrics: metrics}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) (*http.Response, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	}
	return resp, env
}

// createProduct devuelve el id del producto creado.
func (s *testServer) createProduct(t *testing.T, name, sku string) string {
	t.Helper()
	resp, env := s.do(t, http.MethodPost, "/api/products", map[string]interface{}{
		"name": name, "sku": sku, "price": 12.5, "category": "ferretería",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Message)
	var p struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &p))
	return p.ID
}

func (s *testServer) createLocation(t *testing.T, name string) string {
	t.Helper()
	resp, env := s.do(t, http.MethodPost, "/api/locations", map[string]interface{}{"name": name})
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Message)
	var l struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &l))
	return l.ID
}

// ──────────────────────────────────────────────────────────────────────────────
// Catálogo
// ──────────────────────────────────────────────────────────────────────────────

// Caso 1: Crear producto normaliza el SKU; repetirlo devuelve 409.
func TestProducts_CrearYDuplicado(t *testing.T) {
	s := buildTestApp(t, nil)

	resp, env := s.do(t, http.MethodPost, "/api/products", map[string]interface{}{
		"name": "Martillo", "sku": " mar-01 ", "price": "19.99",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.True(t, env.Success)
	var p map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &p))
	assert.Equal(t, "MAR-01", p["sku"])
	assert.Equal(t, "pcs", p["unit_of_measurement"])
	assert.Equal(t, true, p["is_active"])

	resp, env = s.do(t, http.MethodPost, "/api/products", map[string]interface{}{
		"name": "Otro", "sku": "MAR-01", "price": 1,
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.False(t, env.Success)
	assert.Equal(t, "DUPLICATE", env.Code)
}

// Caso 2: Validación de campos: lista de errores "<campo>: <mensaje>".
func TestProducts_ErrorDeValidacion(t *testing.T) {
	s := buildTestApp(t, nil)

	resp, env := s.do(t, http.MethodPost, "/api/products", map[string]interface{}{
		"name": "Sin precio", "sku": "X-1",
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "error de validación", env.Message)
	assert.Contains(t, env.Errors, "price: es obligatorio")

	resp, env = s.do(t, http.MethodPost, "/api/products", map[string]interface{}{
		"name": "Negativo", "sku": "X-2", "price": -1,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, env.Errors, "price: debe ser mayor o igual a 0")
}

// Caso 3: Id con formato inválido se rechaza antes de llegar al caso de uso.
func TestProducts_IDInvalido(t *testing.T) {
	s := buildTestApp(t, nil)

	resp, env := s.do(t, http.MethodGet, "/api/products/123", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", env.Code)

	resp, env = s.do(t, http.MethodGet, "/api/products/0123456789abcdef01234567", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", env.Code)
}

// Caso 4: Listado con filtro active y paginación.
func TestProducts_ListarFiltrandoActivos(t *testing.T) {
	s := buildTestApp(t, nil)
	s.createProduct(t, "B producto", "B-1")
	id := s.createProduct(t, "A producto", "A-1")

	resp, _ := s.do(t, http.MethodPut, "/api/products/"+id, map[string]interface{}{"is_active": false})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env := s.do(t, http.MethodGet, "/api/products?active=true", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, env.Count)
	assert.Equal(t, 1, *env.Count)

	resp, env = s.do(t, http.MethodGet, "/api/products?limit=1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var items []map[string]interface{}
	require.NoError(t, json.Unmarshal(env.Data, &items))
	require.Len(t, items, 1)
	assert.Equal(t, "A producto", items[0]["name"])

	resp, _ = s.do(t, http.MethodGet, "/api/products?active=tal-vez", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// Caso 5: Ubicaciones con nombre duplicado y borrado.
func TestLocations_DuplicadoYBorrado(t *testing.T) {
	s := buildTestApp(t, nil)
	id := s.createLocation(t, "Bodega Norte")

	resp, env := s.do(t, http.MethodPost, "/api/locations", map[string]interface{}{"name": "Bodega Norte"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "DUPLICATE", env.Code)

	resp, _ = s.do(t, http.MethodDelete, "/api/locations/"+id, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = s.do(t, http.MethodDelete, "/api/locations/"+id, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Ledger
// ──────────────────────────────────────────────────────────────────────────────

// Caso 6: Stock inicial 201 al crear y 200 al sobrescribir.
func TestStockLevels_InicialCreaYSobrescribe(t *testing.T) {
	s := buildTestApp(t, nil)
	productID := s.createProduct(t, "Tornillo", "TOR-1")
	locationID := s.createLocation(t, "Central")

	body := map[string]interface{}{"product_id": productID, "location_id": locationID, "quantity": 10}
	resp, env := s.do(t, http.MethodPost, "/api/stocklevels/initial", body)
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Message)

	body["quantity"] = 7
	resp, env = s.do(t, http.MethodPost, "/api/stocklevels/initial", body)
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)

	var out struct {
		StockLevel struct {
			Quantity int64 `json:"quantity"`
		} `json:"stock_level"`
		Adjustment struct {
			AdjustmentType string `json:"adjustment_type"`
			QuantityChange int64  `json:"quantity_change"`
		} `json:"adjustment"`
		Created bool `json:"created"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.Equal(t, int64(7), out.StockLevel.Quantity)
	assert.Equal(t, "initial", out.Adjustment.AdjustmentType)
	assert.Equal(t, int64(-3), out.Adjustment.QuantityChange)
	assert.False(t, out.Created)
}

// Caso 7: Ajuste que dejaría stock negativo: 400 y sin registro en el historial.
func TestStockAdjustments_RechazaNegativo(t *testing.T) {
	s := buildTestApp(t, nil)
	productID := s.createProduct(t, "Tuerca", "TUE-1")
	locationID := s.createLocation(t, "Central")
	s.do(t, http.MethodPost, "/api/stocklevels/initial", map[string]interface{}{
		"product_id": productID, "location_id": locationID, "quantity": 5,
	})

	resp, env := s.do(t, http.MethodPost, "/api/stockadjustments", map[string]interface{}{
		"product_id": productID, "location_id": locationID,
		"adjustment_type": "remove", "quantity_change": -6,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INSUFFICIENT_STOCK", env.Code)
	assert.Contains(t, env.Message, "disponible: 5")

	_, env = s.do(t, http.MethodGet, "/api/products/"+productID+"/history", nil)
	require.NotNil(t, env.Count)
	assert.Equal(t, 1, *env.Count, "solo el ajuste inicial")

	resp, env = s.do(t, http.MethodPost, "/api/stockadjustments", map[string]interface{}{
		"product_id": productID, "location_id": locationID,
		"adjustment_type": "initial", "quantity_change": 1,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, env.Errors, "adjustment_type: debe ser uno de: add, remove, damage, loss")
}

func TestStock_RechazaCantidadesFueraDeRango(t *testing.T) {
	s := buildTestApp(t, nil)
	productID := s.createProduct(t, "Arandela", "ARA-1")
	north := s.createLocation(t, "Norte")
	south := s.createLocation(t, "Sur")
	s.do(t, http.MethodPost, "/api/stocklevels/initial", map[string]interface{}{
		"product_id": productID, "location_id": north, "quantity": 10,
	})

	tooBig := int64(9007199254740992)

	resp, env := s.do(t, http.MethodPost, "/api/stockadjustments", map[string]interface{}{
		"product_id": productID, "location_id": north,
		"adjustment_type": "add", "quantity_change": tooBig,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", env.Code)
	assert.Contains(t, env.Errors, "quantity_change: debe ser menor o igual a 9007199254740991")

	resp, env = s.do(t, http.MethodPost, "/api/stocktransfers", map[string]interface{}{
		"product_id": productID, "from_location_id": north, "to_location_id": south, "quantity": tooBig,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, env.Errors, "quantity: debe ser menor o igual a 9007199254740991")

	// Destino en el máximo: el traslado se rechaza con 400 y no se registra.
	s.do(t, http.MethodPost, "/api/stocklevels/initial", map[string]interface{}{
		"product_id": productID, "location_id": south, "quantity": tooBig - 1,
	})
	resp, env = s.do(t, http.MethodPost, "/api/stocktransfers", map[string]interface{}{
		"product_id": productID, "from_location_id": north, "to_location_id": south, "quantity": 5,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", env.Code)
	assert.Contains(t, env.Message, "excede el máximo")

	_, env = s.do(t, http.MethodGet, "/api/products/"+productID+"/history", nil)
	require.NotNil(t, env.Count)
	assert.Equal(t, 2, *env.Count, "solo las dos cargas iniciales")
}

// Caso 8: Traslado conserva el total y aparece en stock por producto y por ubicación.
func TestStockTransfers_FlujoCompleto(t *testing.T) {
	s := buildTestApp(t, nil)
	productID := s.createProduct(t, "Clavo", "CLA-1")
	from := s.createLocation(t, "Origen")
	to := s.createLocation(t, "Destino")
	s.do(t, http.MethodPost, "/api/stocklevels/initial", map[string]interface{}{
		"product_id": productID, "location_id": from, "quantity": 10,
	})

	resp, env := s.do(t, http.MethodPost, "/api/stocktransfers", map[string]interface{}{
		"product_id": productID, "from_location_id": from, "to_location_id": from, "quantity": 1,
	})
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, env.Errors, "to_location_id: debe ser distinto de from_location_id")

	resp, env = s.do(t, http.MethodPost, "/api/stocktransfers", map[string]interface{}{
		"product_id": productID, "from_location_id": from, "to_location_id": to, "quantity": 4,
		"requested_by": "ana",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Message)

	var out struct {
		Transfer struct {
			Status string `json:"status"`
		} `json:"transfer"`
		Source      struct{ Quantity int64 } `json:"source"`
		Destination struct{ Quantity int64 } `json:"destination"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.Equal(t, "completed", out.Transfer.Status)
	assert.Equal(t, int64(6), out.Source.Quantity)
	assert.Equal(t, int64(4), out.Destination.Quantity)

	_, env = s.do(t, http.MethodGet, "/api/products/"+productID+"/stock", nil)
	var levels []struct {
		Quantity int64 `json:"quantity"`
		Location struct {
			Name string `json:"name"`
		} `json:"location"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &levels))
	require.Len(t, levels, 2)
	assert.Equal(t, "Destino", levels[0].Location.Name)
	assert.Equal(t, int64(10), levels[0].Quantity+levels[1].Quantity)

	_, env = s.do(t, http.MethodGet, "/api/locations/"+to+"/stock", nil)
	require.NotNil(t, env.Count)
	assert.Equal(t, 1, *env.Count)

	_, env = s.do(t, http.MethodGet, "/api/products/"+productID+"/history", nil)
	var history []struct {
		Type      string    `json:"type"`
		Timestamp time.Time `json:"timestamp"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &history))
	require.Len(t, history, 2)
	for i := 1; i < len(history); i++ {
		assert.False(t, history[i].Timestamp.After(history[i-1].Timestamp))
	}
}

// Caso 9: Traslado sin stock en origen y ubicación inexistente.
func TestStockTransfers_Errores(t *testing.T) {
	s := buildTestApp(t, nil)
	productID := s.createProduct(t, "Arandela", "ARA-1")
	from := s.createLocation(t, "Origen")
	to := s.createLocation(t, "Destino")

	resp, env := s.do(t, http.MethodPost, "/api/stocktransfers", map[string]interface{}{
		"product_id": productID, "from_location_id": from, "to_location_id": to, "quantity": 1,
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", env.Code)

	resp, _ = s.do(t, http.MethodPost, "/api/stocktransfers", map[string]interface{}{
		"product_id": productID, "from_location_id": from, "to_location_id": "0123456789abcdef01234567", "quantity": 1,
	})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// Caso 10: Reporte de bajo stock con umbral y parámetro inválido.
func TestProducts_LowStock(t *testing.T) {
	s := buildTestApp(t, nil)
	low := s.createProduct(t, "Escaso", "ESC-1")
	s.createProduct(t, "Sin niveles", "SIN-1")
	locationID := s.createLocation(t, "Central")
	s.do(t, http.MethodPost, "/api/stocklevels/initial", map[string]interface{}{
		"product_id": low, "location_id": locationID, "quantity": 2,
	})

	_, env := s.do(t, http.MethodGet, "/api/products/low-stock?threshold=5", nil)
	var items []struct {
		ProductID  string `json:"product_id"`
		TotalStock int64  `json:"total_stock"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &items))
	require.Len(t, items, 1)
	assert.Equal(t, low, items[0].ProductID)

	_, env = s.do(t, http.MethodGet, "/api/products/low-stock?threshold=5&include_unstocked=true", nil)
	require.NotNil(t, env.Count)
	assert.Equal(t, 2, *env.Count)

	resp, _ := s.do(t, http.MethodGet, "/api/products/low-stock?threshold=-1", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// ──────────────────────────────────────────────────────────────────────────────
// Sistema
// ──────────────────────────────────────────────────────────────────────────────

func TestInfoYHealth(t *testing.T) {
	s := buildTestApp(t, nil)

	resp, env := s.do(t, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, env.Success)

	resp, env = s.do(t, http.MethodGet, "/api", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(env.Data), "/api/stocktransfers")

	resp, _ = s.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	down := buildTestApp(t, func(context.Context) error { return errors.New("sin conexión") })
	resp, _ = down.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestRutaInexistente(t *testing.T) {
	s := buildTestApp(t, nil)
	resp, env := s.do(t, http.MethodGet, "/api/nada", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.False(t, env.Success)
	assert.Equal(t, "NOT_FOUND", env.Code)
}

func TestRequestID(t *testing.T) {
	s := buildTestApp(t, nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(apphttp.HeaderRequestID, "abc-123")
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, "abc-123", resp.Header.Get(apphttp.HeaderRequestID))

	resp, err = s.app.Test(httptest.NewRequest(http.MethodGet, "/health", nil), -1)
	require.NoError(t, err)
	assert.Len(t, resp.Header.Get(apphttp.HeaderRequestID), 36)
}

func TestMetricsEndpoint(t *testing.T) {
	s := buildTestApp(t, nil)
	s.do(t, http.MethodGet, "/api/products", nil)

	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil), -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "test_http_requests_total")
	assert.Contains(t, string(raw), `status="200"`)
}

// Los errores no clasificados se ocultan salvo en development; los panics también terminan en el envelope.
func TestErrorHandler_OcultaInternos(t *testing.T) {
	for _, expose := range []bool{false, true} {
		app := apphttp.NewApp(apphttp.AppOptions{Log: zerolog.Nop(), ExposeInternal: expose})
		app.Get("/boom", func(c *fiber.Ctx) error { return errors.New("detalle interno") })
		app.Get("/panic", func(c *fiber.Ctx) error { panic("fallo") })

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/boom", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		var env envelope
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
		if expose {
			assert.Equal(t, "detalle interno", env.Message)
		} else {
			assert.Equal(t, "error interno del servidor", env.Message)
		}

		resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/panic", nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	}
}
