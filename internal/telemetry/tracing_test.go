package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func env(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func TestEnabled(t *testing.T) {
	assert.False(t, Enabled(env(nil)))
	assert.False(t, Enabled(env(map[string]string{"OTEL_EXPORTER_OTLP_ENDPOINT": ""})))
	assert.True(t, Enabled(env(map[string]string{"OTEL_EXPORTER_OTLP_ENDPOINT": "http://collector:4318"})))
	assert.True(t, Enabled(env(map[string]string{"OTEL_EXPORTER_OTLP_TRACES_ENDPOINT": "http://collector:4318/v1/traces"})))
	assert.False(t, Enabled(env(map[string]string{
		"OTEL_EXPORTER_OTLP_ENDPOINT": "http://collector:4318",
		"OTEL_SDK_DISABLED":           "true",
	})))
}

func TestInit_Disabled(t *testing.T) {
	shutdown, err := Init(context.Background(), Options{ServiceName: "docstore", LookupEnv: env(nil)})
	require.NoError(t, err)
	require.NotNil(t, shutdown)
	assert.NoError(t, shutdown(context.Background()))
}

func TestTransport_PropagatesTraceContext(t *testing.T) {
	_, err := Init(context.Background(), Options{ServiceName: "docstore", LookupEnv: env(nil)})
	require.NoError(t, err)

	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := &http.Client{Transport: Transport(nil)}
	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer t1")

	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	assert.Equal(t, "Bearer t1", gotAuth)
}
