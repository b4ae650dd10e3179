package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"job-connect-backend/config"
	"job-connect-backend/internal/db"
	"job-connect-backend/internal/importer"
	"job-connect-backend/internal/model"
	"job-connect-backend/internal/mw"
	"job-connect-backend/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeImporter struct {
	report  *importer.Report
	err     error
	calls   int
	running bool
}

func (f *fakeImporter) ImportOnce(ctx context.Context) (*importer.Report, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.report, nil
}

func (f *fakeImporter) LastReport() (*importer.Report, bool) {
	return f.report, f.report != nil
}

func (f *fakeImporter) Running() bool {
	return f.running
}

func ptr(v int64) *int64 { return &v }

func newTestRouter(t *testing.T, imp Importer) (*gin.Engine, *gorm.DB) {
	t.Helper()

	gormDB, err := db.Init(context.Background(), &config.DatabaseConfig{
		Driver:       "sqlite",
		DSN:          fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	require.NoError(t, err)
	sqlDB, _ := gormDB.DB()
	t.Cleanup(func() { sqlDB.Close() })

	cfg := config.Default().Server
	cfg.RateLimitPerSec = 1000
	cfg.RateLimitBurst = 1000
	r := NewRouter(context.Background(), cfg, store.NewGormStore(gormDB), imp, mw.NewResponseCache(time.Minute))
	return r, gormDB
}

func seed(t *testing.T, gormDB *gorm.DB) {
	t.Helper()
	rows := []any{
		&model.DeviceType{Base: model.Base{ID: 1, UUID: "6f9619ff-8b86-d011-b42d-00cf4fc964ff"}, Name: "Pump"},
		&model.DeviceType{Base: model.Base{ID: 2}, Name: "Valve"},
		&model.DeviceType{Base: model.Base{ID: 3, Disabled: true}, Name: "Retired"},
		&model.DeviceState{Base: model.Base{ID: 1}, Name: "Open"},
		&model.DeviceState{Base: model.Base{ID: 2}, Name: "Closed", IsFinal: true},
		&model.DeviceStateMachine{Base: model.Base{ID: 1}, Name: "Default", DefaultInitialStateID: ptr(1)},
		&model.DeviceTransition{Base: model.Base{ID: 1}, Name: "Close", StateMachineID: ptr(1), SourceStateID: ptr(1), TargetStateID: ptr(2)},
	}
	for _, row := range rows {
		require.NoError(t, gormDB.Create(row).Error)
	}
}

func get(r *gin.Engine, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, path, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestListEntityTypes(t *testing.T) {
	r, gormDB := newTestRouter(t, &fakeImporter{})
	seed(t, gormDB)

	w := get(r, "/api/entities")
	require.Equal(t, http.StatusOK, w.Code)

	var body []entitySummary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body, len(model.All()))
	assert.Contains(t, body, entitySummary{Name: "DeviceType", Count: 3})
	assert.Contains(t, body, entitySummary{Name: "WorkForm", Count: 0})
}

func TestListEntities(t *testing.T) {
	r, gormDB := newTestRouter(t, &fakeImporter{})
	seed(t, gormDB)

	testCases := []struct {
		name      string
		path      string
		wantCode  int
		wantTotal int64
		wantItems int
	}{
		{"enabled only", "/api/entities/DeviceType", http.StatusOK, 2, 2},
		{"include disabled", "/api/entities/DeviceType?include_disabled=true", http.StatusOK, 3, 3},
		{"paged", "/api/entities/DeviceType?page=2&page_size=1", http.StatusOK, 2, 1},
		{"past the end", "/api/entities/DeviceType?page=5", http.StatusOK, 2, 0},
		{"unknown type", "/api/entities/Dorm", http.StatusNotFound, 0, 0},
		{"bad page", "/api/entities/DeviceType?page=0", http.StatusBadRequest, 0, 0},
		{"bad page size", "/api/entities/DeviceType?page_size=x", http.StatusBadRequest, 0, 0},
		{"bad flag", "/api/entities/DeviceType?include_disabled=maybe", http.StatusBadRequest, 0, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w := get(r, tc.path)
			require.Equal(t, tc.wantCode, w.Code, w.Body.String())
			if tc.wantCode != http.StatusOK {
				return
			}

			var page struct {
				Entity string           `json:"entity"`
				Total  int64            `json:"total"`
				Items  []map[string]any `json:"items"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
			assert.Equal(t, "DeviceType", page.Entity)
			assert.Equal(t, tc.wantTotal, page.Total)
			assert.Len(t, page.Items, tc.wantItems)
		})
	}
}

func TestGetEntity(t *testing.T) {
	r, gormDB := newTestRouter(t, &fakeImporter{})
	seed(t, gormDB)

	w := get(r, "/api/entities/DeviceType/1")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":1,"uuid":"6f9619ff-8b86-d011-b42d-00cf4fc964ff","disabled":false,"name":"Pump","manufacturer":"","model":""}`, w.Body.String())

	w = get(r, "/api/entities/DeviceType/6F9619FF-8B86-D011-B42D-00CF4FC964FF")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Pump"`)

	assert.Equal(t, http.StatusNotFound, get(r, "/api/entities/DeviceType/99").Code)
	assert.Equal(t, http.StatusNotFound, get(r, "/api/entities/Dorm/1").Code)
}

func TestGetDeviceStateMachine(t *testing.T) {
	r, gormDB := newTestRouter(t, &fakeImporter{})
	seed(t, gormDB)

	w := get(r, "/api/state-machines/device/1")
	require.Equal(t, http.StatusOK, w.Code)

	var sm model.DeviceStateMachine
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sm))
	require.NotNil(t, sm.DefaultInitialState)
	assert.Equal(t, "Open", sm.DefaultInitialState.Name)
	require.Len(t, sm.Transitions, 1)
	require.NotNil(t, sm.Transitions[0].TargetState)
	assert.Equal(t, "Closed", sm.Transitions[0].TargetState.Name)

	assert.Equal(t, http.StatusBadRequest, get(r, "/api/state-machines/device/abc").Code)
	assert.Equal(t, http.StatusNotFound, get(r, "/api/state-machines/device/42").Code)
	assert.Equal(t, http.StatusNotFound, get(r, "/api/state-machines/sr/1").Code)
}

func TestImports(t *testing.T) {
	imp := &fakeImporter{}
	r, _ := newTestRouter(t, imp)

	assert.Equal(t, http.StatusNotFound, get(r, "/api/imports/latest").Code)

	imp.running = true
	w := get(r, "/api/imports/latest")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"running":true}`, w.Body.String())
	imp.running = false

	post := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req, _ := http.NewRequest(http.MethodPost, "/api/imports", nil)
		r.ServeHTTP(w, req)
		return w
	}

	imp.err = importer.ErrImportRunning
	assert.Equal(t, http.StatusConflict, post().Code)

	imp.err = fmt.Errorf("%w: missing", importer.ErrDataFile)
	assert.Equal(t, http.StatusUnprocessableEntity, post().Code)

	imp.err = nil
	imp.report = &importer.Report{Source: "data.json", Entities: []importer.EntityReport{{Entity: "Priority"}}}
	w = post()
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"source":"data.json"`)

	w = get(r, "/api/imports/latest")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"entity":"Priority"`)
	assert.Contains(t, w.Body.String(), `"running":false`)
	assert.Equal(t, 3, imp.calls)
}
