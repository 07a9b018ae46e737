package metrics

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/cloud-bulldozer/search-bench/pkg/archive"
	"github.com/cloud-bulldozer/search-bench/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/prometheus/common/expfmt"
)

const namespace = "search_bench"

// JobName is the Pushgateway job the gauges are grouped under.
const JobName = "search-bench"

// Registry returns a registry holding the run report as gauges.
func Registry(r archive.Run) *prometheus.Registry {
	labels := prometheus.Labels{
		"driver": r.Config.Driver,
		"mode":   r.Config.Mode,
		"index":  r.Config.Index,
		"uuid":   r.UUID,
	}
	gauge := func(name, help string, v float64) prometheus.Gauge {
		g := prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        name,
			Help:        help,
			ConstLabels: labels,
		})
		g.Set(v)
		return g
	}
	percentiles := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace:   namespace,
		Name:        "latency_percentile_nanoseconds",
		Help:        "Nearest-rank latency percentile of one trial.",
		ConstLabels: labels,
	}, []string{"percentile"})
	for _, pv := range r.Report.Percentiles {
		percentiles.WithLabelValues(archive.PercentileKey(pv.Fraction)).Set(float64(pv.Nanos))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		gauge("latency_mean_nanoseconds", "Mean latency of the included trials.", r.Report.Mean),
		gauge("latency_stddev_nanoseconds", "Standard deviation of the included trials.", r.Report.StdDev),
		gauge("trials", "Trials executed.", float64(r.Report.Trials)),
		gauge("failed_trials", "Trials whose operation failed.", float64(r.Report.Failures)),
		gauge("samples", "Trials included in the statistics.", float64(r.Report.Samples)),
		percentiles,
	)
	return reg
}

// WriteTextfile writes the gauges in the text exposition format, replacing
// path atomically so a textfile collector never reads a partial file.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	mfs, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gathering metrics: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".search-bench-*.prom")
	if err != nil {
		return fmt.Errorf("failed to open metrics file: %w", err)
	}
	defer os.Remove(tmp.Name())
	for _, mf := range mfs {
		if _, err := expfmt.MetricFamilyToText(tmp, mf); err != nil {
			tmp.Close()
			return fmt.Errorf("failed to write metrics file: %w", err)
		}
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return err
	}
	logging.Infof("Wrote %d metric families to %s", len(mfs), path)
	return nil
}

// Push sends the gauges to a Pushgateway, replacing the previous push of the job.
func Push(url string, g prometheus.Gatherer) error {
	if err := push.New(url, JobName).Gatherer(g).Push(); err != nil {
		return fmt.Errorf("pushing metrics to %s: %w", url, err)
	}
	logging.Infof("📈 Pushed metrics to %s", url)
	return nil
}
