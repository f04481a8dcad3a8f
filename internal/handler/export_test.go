package handler_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nolanv/doorstep/internal/domain"
	"github.com/nolanv/doorstep/internal/handler"
)

// mockExportServicer is a test double for handler.ExportServicer.
type mockExportServicer struct {
	export func(ctx context.Context) (domain.Export, error)
	imprt  func(ctx context.Context, records []domain.PersonRecord) (int, error)
}

func (m *mockExportServicer) Export(ctx context.Context) (domain.Export, error) {
	return m.export(ctx)
}
func (m *mockExportServicer) Import(ctx context.Context, records []domain.PersonRecord) (int, error) {
	return m.imprt(ctx, records)
}

var _ handler.ExportServicer = (*mockExportServicer)(nil)

// ---- GET /export ----------------------------------------------------------------

func TestExportData_200(t *testing.T) {
	h := newHTTPHandler(serverDeps{
		export: &mockExportServicer{
			export: func(_ context.Context) (domain.Export, error) {
				return domain.Export{
					ExportID:   uuid.New(),
					ExportedAt: time.Now().UTC(),
					People: []domain.PersonRecord{
						{ID: 1, Name: "Alice", Notes: []domain.NoteRecord{{Content: "about alice"}}},
					},
				}, nil
			},
		},
	})

	rec := doRequest(h, http.MethodGet, "/export", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "doorstep-export.json")

	var resp domain.Export
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.NotEqual(t, uuid.Nil, resp.ExportID)
	require.Len(t, resp.People, 1)
	assert.Equal(t, "Alice", resp.People[0].Name)
}

// ---- POST /import ----------------------------------------------------------------

func TestImportData_200_Envelope(t *testing.T) {
	var got []domain.PersonRecord
	h := newHTTPHandler(serverDeps{
		export: &mockExportServicer{
			imprt: func(_ context.Context, records []domain.PersonRecord) (int, error) {
				got = records
				return len(records), nil
			},
		},
	})

	body := jsonBody(t, map[string]any{
		"export_id":   uuid.New().String(),
		"exported_at": time.Now().UTC(),
		"people": []map[string]any{
			{"name": "Alice"},
			{"name": "Bob"},
		},
	})
	rec := doRequest(h, http.MethodPost, "/import", body)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"imported":2`)
	require.Len(t, got, 2)
	assert.Equal(t, "Alice", got[0].Name)
}

func TestImportData_200_BareArray(t *testing.T) {
	h := newHTTPHandler(serverDeps{
		export: &mockExportServicer{
			imprt: func(_ context.Context, records []domain.PersonRecord) (int, error) {
				return len(records), nil
			},
		},
	})

	body := jsonBody(t, []map[string]any{{"name": "Alice"}})
	rec := doRequest(h, http.MethodPost, "/import", body)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"imported":1`)
}

func TestImportData_422_InvalidRecordReportsProgress(t *testing.T) {
	h := newHTTPHandler(serverDeps{
		export: &mockExportServicer{
			imprt: func(_ context.Context, _ []domain.PersonRecord) (int, error) {
				return 1, fmt.Errorf("%w: name is required", domain.ErrValidation)
			},
		},
	})

	body := jsonBody(t, []map[string]any{{"name": "Alice"}, {"name": ""}})
	rec := doRequest(h, http.MethodPost, "/import", body)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), `"imported":1`)
	assert.Contains(t, rec.Body.String(), "name is required")
}

func TestImportData_422_GarbageBody(t *testing.T) {
	h := newHTTPHandler(serverDeps{export: &mockExportServicer{}})

	body := jsonBody(t, map[string]any{"unexpected": true})
	rec := doRequest(h, http.MethodPost, "/import", body)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}
