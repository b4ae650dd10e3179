package importer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"job-connect-backend/config"
	"job-connect-backend/internal/mapper"
	"job-connect-backend/internal/model"
)

// recorder collects the calls made on the fake stack and mapper, in order.
type recorder struct {
	calls   []string
	batches map[string][]map[string]any
}

type fakeStack struct {
	rec     *recorder
	saveErr error
}

func (f *fakeStack) ChildContext(ctx context.Context) (*gorm.DB, error) {
	f.rec.calls = append(f.rec.calls, "child")
	return nil, nil
}

func (f *fakeStack) SaveChildContext(child *gorm.DB) error {
	f.rec.calls = append(f.rec.calls, "save")
	return f.saveErr
}

func (f *fakeStack) DiscardChildContext(child *gorm.DB) {
	f.rec.calls = append(f.rec.calls, "discard")
}

type fakeMapper struct {
	rec *recorder
	err error
}

func (f *fakeMapper) ResetMapper() {
	f.rec.calls = append(f.rec.calls, "reset")
}

func (f *fakeMapper) ProcessStaticData(ctx context.Context, et model.EntityType, records []map[string]any) (mapper.Stats, error) {
	f.rec.calls = append(f.rec.calls, "process:"+et.Name)
	f.rec.batches[et.Name] = records
	return mapper.Stats{Received: len(records), Saved: len(records)}, f.err
}

func newTestService(t *testing.T, cfg *config.ImportConfig, mapperErr error, opts ...Option) (*Service, *recorder) {
	t.Helper()
	rec := &recorder{batches: make(map[string][]map[string]any)}
	factory := func(child *gorm.DB, deleteNotProvided bool) (ObjectMapper, error) {
		assert.True(t, deleteNotProvided)
		return &fakeMapper{rec: rec, err: mapperErr}, nil
	}
	opts = append([]Option{WithMapperFactory(factory)}, opts...)
	return NewService(context.Background(), cfg, &fakeStack{rec: rec}, opts...), rec
}

func writeDataFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestProcessData_ProcessesPresentEntitiesInOrder(t *testing.T) {
	svc, rec := newTestService(t, &config.ImportConfig{}, nil)

	priorities := []any{map[string]any{"id": 1.0, "name": "High"}}
	data := map[string]any{
		"entities": map[string]any{
			"Priority": priorities,
			"Contract": []any{map[string]any{"id": 7.0}},
			"Symptom":  map[string]any{"id": 1.0},
			"Device":   []any{map[string]any{"id": 3.0}},
			"WorkForm": []any{},
		},
	}

	report, err := svc.ProcessData(context.Background(), data)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"child",
		"reset", "process:Contract",
		"reset", "process:Priority",
		"reset", "process:WorkForm",
		"save",
	}, rec.calls)
	assert.Equal(t, []map[string]any{{"id": 1.0, "name": "High"}}, rec.batches["Priority"])
	assert.Empty(t, rec.batches["WorkForm"])
	assert.NotContains(t, rec.batches, "Device", "names outside the allow-list are not imported")

	require.Len(t, report.Entities, 3)
	assert.Equal(t, []SkippedEntity{{Entity: "Symptom", Reason: "not an array of objects"}}, report.Skipped)
}

func TestProcessData_WrongShapeNeverReachesMapper(t *testing.T) {
	testCases := []struct {
		name string
		data any
	}{
		{"top level array", []any{map[string]any{}}},
		{"top level string", "entities"},
		{"missing entities", map[string]any{"other": map[string]any{}}},
		{"entities is an array", map[string]any{"entities": []any{}}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc, rec := newTestService(t, &config.ImportConfig{}, nil)

			report, err := svc.ProcessData(context.Background(), tc.data)
			assert.ErrorIs(t, err, ErrNoEntities)
			assert.Nil(t, report)
			assert.Empty(t, rec.calls)
		})
	}
}

func TestProcessData_EmptyEntitiesStillSavesOnce(t *testing.T) {
	svc, rec := newTestService(t, &config.ImportConfig{}, nil)

	_, err := svc.ProcessData(context.Background(), map[string]any{"entities": map[string]any{}})
	require.NoError(t, err)
	assert.Equal(t, []string{"child", "save"}, rec.calls)
}

func TestProcessData_MapperErrorDiscardsChild(t *testing.T) {
	svc, rec := newTestService(t, &config.ImportConfig{}, errors.New("disk full"))

	data := map[string]any{"entities": map[string]any{
		"Organization": []any{map[string]any{"id": 1.0}},
		"User":         []any{map[string]any{"id": 2.0}},
	}}
	_, err := svc.ProcessData(context.Background(), data)
	require.ErrorContains(t, err, "disk full")
	assert.Equal(t, []string{"child", "reset", "process:Organization", "discard"}, rec.calls)
}

func TestProcessData_ConfiguredEntities(t *testing.T) {
	cfg := &config.ImportConfig{Entities: []string{"User", "Organization", "User", "Dorm"}}
	svc, rec := newTestService(t, cfg, nil)

	data := map[string]any{"entities": map[string]any{
		"Organization": []any{},
		"User":         []any{},
		"Dorm":         []any{},
	}}
	report, err := svc.ProcessData(context.Background(), data)
	require.NoError(t, err)

	assert.Equal(t, []string{"child", "reset", "process:User", "reset", "process:Organization", "save"}, rec.calls)
	assert.Equal(t, []SkippedEntity{{Entity: "Dorm", Reason: model.ErrUnknownEntity.Error()}}, report.Skipped)
}

func TestReadDataFile(t *testing.T) {
	testCases := []struct {
		name    string
		path    func(t *testing.T) string
		wantErr bool
	}{
		{"valid", func(t *testing.T) string { return writeDataFile(t, `{"entities":{}}`) }, false},
		{"invalid json", func(t *testing.T) string { return writeDataFile(t, `{"entities":`) }, true},
		{"missing", func(t *testing.T) string { return filepath.Join(t.TempDir(), "nope.json") }, true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			svc, _ := newTestService(t, &config.ImportConfig{DataFile: tc.path(t)}, nil)

			data, err := svc.ReadDataFile(context.Background())
			if tc.wantErr {
				assert.ErrorIs(t, err, ErrDataFile)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, map[string]any{"entities": map[string]any{}}, data)
		})
	}
}

func TestReadDataFile_FromURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte(`{"entities":{"Priority":[]}}`))
	}))
	defer server.Close()

	cfg := &config.ImportConfig{URL: server.URL, Headers: map[string]string{"Authorization": "Bearer token"}}
	svc, _ := newTestService(t, cfg, nil)

	data, err := svc.ReadDataFile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"entities": map[string]any{"Priority": []any{}}}, data)

	cfg.Headers = nil
	_, err = svc.ReadDataFile(context.Background())
	assert.ErrorIs(t, err, ErrDataFile)
}

func TestRun_MissingDataFileIsFatal(t *testing.T) {
	var fatalErr error
	cfg := &config.ImportConfig{DataFile: filepath.Join(t.TempDir(), "data.json")}
	svc, rec := newTestService(t, cfg, nil, WithFatalHook(func(err error) { fatalErr = err }))

	svc.Run(context.Background())

	assert.ErrorIs(t, fatalErr, ErrDataFile)
	assert.Empty(t, rec.calls, "nothing is imported when the data file cannot be read")

	report, ok := svc.LastReport()
	require.True(t, ok)
	assert.NotEmpty(t, report.Error)
}

func TestRun_InvalidJSONIsFatal(t *testing.T) {
	var fatalErr error
	cfg := &config.ImportConfig{DataFile: writeDataFile(t, `not json`)}
	svc, rec := newTestService(t, cfg, nil, WithFatalHook(func(err error) { fatalErr = err }))

	svc.Run(context.Background())

	assert.ErrorIs(t, fatalErr, ErrDataFile)
	assert.Empty(t, rec.calls)
}

func TestRun_RefreshKeepsPreviousDataOnFailure(t *testing.T) {
	var imports atomic.Int32
	var fatalErr atomic.Value
	cfg := &config.ImportConfig{
		DataFile:        writeDataFile(t, `{"entities":{"Priority":[{"id":1}]}}`),
		RefreshInterval: 10 * time.Millisecond,
	}
	svc, rec := newTestService(t, cfg, nil,
		OnImported(func(*Report) { imports.Add(1) }),
		WithFatalHook(func(err error) { fatalErr.Store(err) }),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool { return imports.Load() >= 1 }, time.Second, 5*time.Millisecond)
	require.NoError(t, os.WriteFile(cfg.DataFile, []byte(`not json`), 0o600))

	require.Eventually(t, func() bool {
		report, ok := svc.LastReport()
		return ok && report.Error != ""
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancellation")
	}

	assert.Nil(t, fatalErr.Load(), "a failing refresh is not fatal")
	assert.NotContains(t, rec.calls, "discard", "unreadable data never opens a child context")
	assert.Contains(t, rec.calls, "save")
}

func TestRun_SkipsWhileAnotherImportRuns(t *testing.T) {
	var fatalErr error
	cfg := &config.ImportConfig{
		DataFile:        writeDataFile(t, `{"entities":{}}`),
		RefreshInterval: 5 * time.Millisecond,
	}
	svc, rec := newTestService(t, cfg, nil, WithFatalHook(func(err error) { fatalErr = err }))
	svc.running.Store(true)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	svc.Run(ctx)

	assert.NoError(t, fatalErr)
	assert.Empty(t, rec.calls)
	_, ok := svc.LastReport()
	assert.False(t, ok)
	assert.True(t, svc.Running())
}

func TestImportOnce(t *testing.T) {
	var notified *Report
	cfg := &config.ImportConfig{DataFile: writeDataFile(t, `{"entities":{"Priority":[{"id":1},{"id":2}]}}`)}
	svc, _ := newTestService(t, cfg, nil, OnImported(func(r *Report) { notified = r }))

	_, ok := svc.LastReport()
	assert.False(t, ok)

	report, err := svc.ImportOnce(context.Background())
	require.NoError(t, err)
	assert.Same(t, report, notified)
	assert.Equal(t, cfg.DataFile, report.Source)
	assert.Equal(t, mapper.Stats{Received: 2, Saved: 2}, report.Totals())
	assert.False(t, report.FinishedAt.Before(report.StartedAt))

	last, ok := svc.LastReport()
	require.True(t, ok)
	assert.Same(t, report, last)
}

func TestImportOnce_RejectsConcurrentImport(t *testing.T) {
	cfg := &config.ImportConfig{DataFile: writeDataFile(t, `{"entities":{}}`)}
	svc, rec := newTestService(t, cfg, nil)

	svc.running.Store(true)
	_, err := svc.ImportOnce(context.Background())
	assert.ErrorIs(t, err, ErrImportRunning)
	assert.Empty(t, rec.calls)
}

func TestRequestEntitiesAreRegistered(t *testing.T) {
	assert.Len(t, RequestEntities, 19)
	for _, name := range RequestEntities {
		_, ok := model.Lookup(name)
		assert.True(t, ok, name)
	}
}
