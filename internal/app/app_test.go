package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"callpulse/internal/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()

	dataDir := t.TempDir()
	csv := "Month,Date,Customer Name,Phone,Region,City,Company,Provider,Service Type,Service Description,Notes\n" +
		"Oct,5/10/2025,Huda,599000001,الرياض,الرياض,Alpha,Dana,استفسار,سؤال عن الخدمة,\n" +
		"Oct,12/10/2025,Omar,599000002,المنطقة الشرقية,الدمام,Beta,Dana,شكوى,تأخر الرد,\n"
	require.NoError(t, os.WriteFile(filepath.Join(dataDir, "Dana-Oct.csv"), []byte(csv), 0o644))

	cfg := config.Default()
	cfg.Paths.DataDir = dataDir
	cfg.Paths.WebDir = filepath.Join(dataDir, "no-web")
	cfg.Logging.Output = "stdout"
	cfg.Security.RateLimit.Enabled = false
	return cfg
}

func TestNew_WiresAllHandlers(t *testing.T) {
	app, err := New(testConfig(t))
	require.NoError(t, err)
	require.NotNil(t, app.Router())

	assert.NotNil(t, app.dataService)
	assert.NotNil(t, app.reportService)
	assert.NotNil(t, app.healthService)
	assert.NotNil(t, app.dashboardHandler)
	assert.NotNil(t, app.recordsHandler)
	assert.NotNil(t, app.metaHandler)
	assert.NotNil(t, app.healthHandler)
}

func TestRouter_Endpoints(t *testing.T) {
	app, err := New(testConfig(t))
	require.NoError(t, err)

	_, err = app.dataService.Table(context.Background())
	require.NoError(t, err)

	srv := httptest.NewServer(app.Router())
	defer srv.Close()

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{"health check", "/healthz", http.StatusOK},
		{"metrics", "/metrics", http.StatusOK},
		{"dashboard summary", "/api/dashboard/summary", http.StatusOK},
		{"dashboard aggregate", "/api/dashboard/aggregate?dimension=region", http.StatusOK},
		{"dashboard forecast", "/api/dashboard/forecast?source=Dana", http.StatusOK},
		{"dashboard map", "/api/dashboard/map", http.StatusOK},
		{"records list", "/api/records", http.StatusOK},
		{"records export", "/api/export/records.csv", http.StatusOK},
		{"months", "/api/months", http.StatusOK},
		{"sources", "/api/sources", http.StatusOK},
		{"unknown route", "/api/nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Get(srv.URL + tt.path)
			require.NoError(t, err)
			defer resp.Body.Close()
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestRouter_InvalidDimensionRejected(t *testing.T) {
	app, err := New(testConfig(t))
	require.NoError(t, err)

	srv := httptest.NewServer(app.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/dashboard/aggregate?dimension=bogus")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
