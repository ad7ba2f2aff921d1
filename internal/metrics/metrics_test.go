package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchMetrics_Record(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := New(reg)

	m.RecordCall("/app/")
	m.RecordCall("/app/")
	m.RecordPage("/app/", 3)
	m.RecordPage("/app/", 2)
	m.RecordFetch("/app/", nil, 10*time.Millisecond)
	m.RecordFetch("/app/", errors.New("boom"), time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Calls.WithLabelValues("/app/")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Pages.WithLabelValues("/app/")))
	assert.Equal(t, 5.0, testutil.ToFloat64(m.Parameters.WithLabelValues("/app/")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Failures.WithLabelValues("/app/")))
	assert.Equal(t, 2, testutil.CollectAndCount(m.Duration))
}

func TestFetchMetrics_NilIsNoop(t *testing.T) {
	t.Parallel()

	var m *FetchMetrics
	assert.NotPanics(t, func() {
		m.RecordCall("/x/")
		m.RecordPage("/x/", 1)
		m.RecordFetch("/x/", errors.New("boom"), time.Second)
	})
}

func TestDefaultIsSingleton(t *testing.T) {
	assert.Same(t, Default(), Default())
}

func TestServer_ServesMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := New(reg)
	m.RecordCall("/served/")

	config := DefaultServerConfig()
	config.Addr = "127.0.0.1:0"
	srv := NewServer(config, reg, nil)
	require.NoError(t, srv.Start())
	defer func() { _ = srv.Stop(context.Background()) }()

	resp, err := http.Get("http://" + srv.Addr() + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `ssmconfig_remote_calls_total{path="/served/"} 1`)
}

func TestServer_DisabledWithoutAddr(t *testing.T) {
	t.Parallel()

	srv := NewServer(DefaultServerConfig(), nil, nil)
	require.NoError(t, srv.Start())
	assert.Empty(t, srv.Addr())
	assert.NoError(t, srv.Stop(context.Background()))
}
