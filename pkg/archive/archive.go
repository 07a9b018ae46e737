package archive

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/cloud-bulldozer/go-commons/indexers"
	"github.com/cloud-bulldozer/search-bench/pkg/config"
	"github.com/cloud-bulldozer/search-bench/pkg/logging"
	result "github.com/cloud-bulldozer/search-bench/pkg/results"
	"github.com/cloud-bulldozer/search-bench/pkg/sample"
)

const ltcyMetric = "ns"

// Doc struct of the JSON document to be indexed
type Doc struct {
	UUID          string           `json:"uuid"`
	Timestamp     time.Time        `json:"timestamp"`
	Driver        string           `json:"driver"`
	Mode          string           `json:"mode"`
	Index         string           `json:"index"`
	FreshClient   bool             `json:"freshClient"`
	Runs          int              `json:"runs"`
	Failures      int              `json:"failures"`
	Samples       int              `json:"samples"`
	FailurePolicy string           `json:"failurePolicy"`
	LtcyMetric    string           `json:"ltcyMetric"`
	Mean          float64          `json:"mean"`
	Min           int64            `json:"min"`
	Max           int64            `json:"max"`
	StdDev        float64          `json:"stdDev"`
	Percentiles   map[string]int64 `json:"percentiles"`
	StartTime     time.Time        `json:"startTime"`
	EndTime       time.Time        `json:"endTime"`
	Config        config.Config    `json:"config"`
}

// Run is everything archived about one benchmark.
type Run struct {
	UUID      string
	Config    config.Config
	Samples   sample.SampleSet
	Report    result.Report
	StartTime time.Time
	EndTime   time.Time
}

// Connect returns a client connected to the desired results cluster.
func Connect(url, index, indexerType string) (*indexers.Indexer, error) {
	var err error
	var indexer *indexers.Indexer
	indexerConfig := indexers.IndexerConfig{
		Type:               indexers.IndexerType(indexerType),
		Servers:            []string{url},
		Index:              index,
		InsecureSkipVerify: true,
	}
	logging.Infof("📁 Creating indexer: %s", indexerConfig.Type)
	indexer, err = indexers.NewIndexer(indexerConfig)
	if err != nil {
		logging.Errorf("%v indexer: %v", indexerConfig.Type, err.Error())
		return nil, fmt.Errorf("failure while connecting to %s", indexerType)
	}
	logging.Infof("Connected to : %s ", url)
	return indexer, nil
}

// BuildDoc returns the document describing the run.
func BuildDoc(r Run) Doc {
	d := Doc{
		UUID:          r.UUID,
		Timestamp:     time.Now().UTC(),
		Driver:        r.Config.Driver,
		Mode:          r.Config.Mode,
		Index:         r.Config.Index,
		FreshClient:   r.Config.FreshClient,
		Runs:          r.Report.Trials,
		Failures:      r.Report.Failures,
		Samples:       r.Report.Samples,
		FailurePolicy: string(r.Report.Policy),
		LtcyMetric:    ltcyMetric,
		Mean:          r.Report.Mean,
		Min:           r.Report.Min,
		Max:           r.Report.Max,
		StdDev:        r.Report.StdDev,
		Percentiles:   make(map[string]int64, len(r.Report.Percentiles)),
		StartTime:     r.StartTime,
		EndTime:       r.EndTime,
		Config:        r.Config,
	}
	for _, pv := range r.Report.Percentiles {
		d.Percentiles[PercentileKey(pv.Fraction)] = pv.Nanos
	}
	return d
}

// PercentileKey names a fraction the way documents and metrics label it: p50, p99, p100.
func PercentileKey(p float64) string {
	return "p" + strconv.FormatFloat(result.Percent(p), 'f', -1, 64)
}

// Index ships the run document to the results index.
func Index(indexer indexers.Indexer, r Run) error {
	docs := []interface{}{BuildDoc(r)}
	logging.Infof("Indexing [%d] documents with UUID %s", len(docs), r.UUID)
	resp, err := indexer.Index(docs, indexers.IndexingOpts{})
	if err != nil {
		return err
	}
	logging.Info(resp)
	return nil
}

// WriteJSONResult writes the run document as JSON
func WriteJSONResult(w io.Writer, r Run) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(BuildDoc(r)); err != nil {
		return fmt.Errorf("failed to write json result: %w", err)
	}
	return nil
}

// WriteCSVResult writes one row per trial, in execution order.
func WriteCSVResult(path string, set sample.SampleSet) error {
	fp, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to open archive file: %w", err)
	}
	defer fp.Close()
	archive := csv.NewWriter(fp)
	if err := archive.Write([]string{"Trial", "Duration (ns)", "Succeeded", "Error"}); err != nil {
		return fmt.Errorf("failed to write archive to file")
	}
	for i, t := range set {
		if err := archive.Write([]string{
			strconv.Itoa(i + 1),
			strconv.FormatInt(t.DurationNanos, 10),
			strconv.FormatBool(t.Succeeded),
			t.Err,
		}); err != nil {
			return fmt.Errorf("failed to write archive to file")
		}
	}
	archive.Flush()
	if err := archive.Error(); err != nil {
		return fmt.Errorf("failed to write archive to file: %w", err)
	}
	logging.Infof("Wrote %d trials to %s", len(set), path)
	return nil
}
