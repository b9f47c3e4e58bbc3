package main

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/MatheusLuisLorscheiter/precificador-receitas-iogar-sub000/internal/audit"
	"github.com/MatheusLuisLorscheiter/precificador-receitas-iogar-sub000/internal/catalog"
	"github.com/MatheusLuisLorscheiter/precificador-receitas-iogar-sub000/internal/db"
	"github.com/MatheusLuisLorscheiter/precificador-receitas-iogar-sub000/internal/migrations"
)

func newTestServer(t *testing.T) (*server, http.Handler, *sql.DB) {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "server-test.db"))
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	if err := migrations.Up(database, "../../migrations"); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	srv := &server{
		store:   catalog.NewStore(database),
		audit:   audit.NewLog(database),
		targets: []float64{0.20, 0.25, 0.30},
	}

	r := chi.NewRouter()
	srv.routes(r)

	return srv, r, database
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

// insertSupplierItem seeds one supplier with one catalog item and returns
// the supplier and item ids.
func insertSupplierItem(t *testing.T, database *sql.DB, supplierName, code string, unitPrice, factor float64) (int64, int64) {
	t.Helper()

	result, err := database.Exec(`INSERT INTO suppliers (name) VALUES (?)`, supplierName)
	if err != nil {
		t.Fatalf("insert supplier: %v", err)
	}
	supplierID, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("read supplier id: %v", err)
	}

	result, err = database.Exec(`
		INSERT INTO supplier_items (supplier_id, code, name, unit, unit_price, conversion_factor)
		VALUES (?, ?, ?, 'volume', ?, ?)
	`, supplierID, code, code, unitPrice, factor)
	if err != nil {
		t.Fatalf("insert supplier item: %v", err)
	}
	itemID, err := result.LastInsertId()
	if err != nil {
		t.Fatalf("read supplier item id: %v", err)
	}

	return supplierID, itemID
}

func TestHealthz(t *testing.T) {
	t.Parallel()
	_, handler, _ := newTestServer(t)

	rec := doJSON(t, handler, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", rec.Code)
	}
}
