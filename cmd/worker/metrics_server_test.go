package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthquiz/internal/usecase/notify"
)

type fakeNotify struct {
	notify.Service
	statuses []notify.ChannelHealthStatus
}

func (f fakeNotify) GetChannelHealth() []notify.ChannelHealthStatus { return f.statuses }

func TestChannelHealth(t *testing.T) {
	tests := []struct {
		name     string
		statuses []notify.ChannelHealthStatus
		code     int
	}{
		{"all closed", []notify.ChannelHealthStatus{{Name: "slack", Enabled: true}}, http.StatusOK},
		{"disabled channel open is ignored", []notify.ChannelHealthStatus{{Name: "discord", CircuitBreakerOpen: true}}, http.StatusOK},
		{"enabled channel open", []notify.ChannelHealthStatus{{Name: "slack", Enabled: true, CircuitBreakerOpen: true}}, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mux := newMetricsMux(fakeNotify{statuses: tt.statuses})
			rec := httptest.NewRecorder()
			mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/channels", nil))

			assert.Equal(t, tt.code, rec.Code)
			var body ChannelHealthResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.code == http.StatusOK, body.Healthy)
			assert.Len(t, body.Channels, len(tt.statuses))
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	newMetricsMux(fakeNotify{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}
