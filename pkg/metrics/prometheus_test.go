package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/cloud-bulldozer/search-bench/pkg/archive"
	"github.com/cloud-bulldozer/search-bench/pkg/config"
	result "github.com/cloud-bulldozer/search-bench/pkg/results"
	"github.com/cloud-bulldozer/search-bench/pkg/sample"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRun(t *testing.T) archive.Run {
	t.Helper()
	set := sample.SampleSet{
		{DurationNanos: 100, Succeeded: true},
		{DurationNanos: 200, Succeeded: true},
		{DurationNanos: 300, Succeeded: true},
		{DurationNanos: 400, Succeeded: false},
	}
	rep, err := result.Summarize(set, sample.IncludeFailures)
	require.NoError(t, err)
	return archive.Run{UUID: "run-1", Config: config.Default(), Samples: set, Report: rep}
}

func TestWriteTextfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "search-bench.prom")
	require.NoError(t, WriteTextfile(path, Registry(testRun(t))))

	buf, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(buf)
	assert.Contains(t, out, "search_bench_latency_mean_nanoseconds")
	assert.Contains(t, out, `percentile="p50"`)
	assert.Contains(t, out, `percentile="p100"`)
	assert.Contains(t, out, `driver="elasticsearch"`)
	assert.Contains(t, out, "search_bench_failed_trials")

	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "search_bench_latency_percentile_nanoseconds") && strings.Contains(line, `"p100"`) {
			assert.True(t, strings.HasSuffix(line, " 400"), line)
		}
	}
}

func TestPush(t *testing.T) {
	var (
		mu     sync.Mutex
		method string
		path   string
		body   []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		mu.Lock()
		method, path, body = r.Method, r.URL.Path, b
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	require.NoError(t, Push(srv.URL, Registry(testRun(t))))
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, http.MethodPut, method)
	assert.Equal(t, "/metrics/job/"+JobName, path)
	assert.NotEmpty(t, body)
}

func TestPushFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()
	require.Error(t, Push(srv.URL, Registry(testRun(t))))
}
