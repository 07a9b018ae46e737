package drivers

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"

	"github.com/cloud-bulldozer/search-bench/pkg/config"
	log "github.com/cloud-bulldozer/search-bench/pkg/logging"
	"github.com/cloud-bulldozer/search-bench/pkg/trial"
)

// Driver is a search client issuing one request per Invoke.
type Driver interface {
	// Connect builds a new client, replacing any previous one.
	Connect() error
	// Invoke sends one request with the current client.
	Invoke(ctx context.Context) error
	// Close releases the idle connections of the current client.
	Close()
	Name() string
}

// NewDriver returns a Driver based on cfg.Driver.
// It currently supports the "elasticsearch" and "opensearch" drivers.
// If the driver name is not recognized, it returns an error.
func NewDriver(cfg config.Config) (Driver, error) {
	req, err := newRequest(cfg.Mode, cfg.Index, cfg.Body, cfg.FilterPath)
	if err != nil {
		return nil, err
	}
	switch cfg.Driver {
	case "elasticsearch":
		return &elastic{driverName: cfg.Driver, cfg: cfg, req: req}, nil
	case "opensearch":
		return &opensearchDriver{driverName: cfg.Driver, cfg: cfg, req: req}, nil
	default:
		return nil, fmt.Errorf("unknown driver: %s", cfg.Driver)
	}
}

// Operation adapts d for the trial runner. With fresh set the client is
// rebuilt inside every trial, so its construction and the teardown of the
// previous client's connections are part of the measured latency. Otherwise
// it is built once here and a failure is returned before any trial runs.
func Operation(d Driver, fresh bool) (trial.Operation, error) {
	if fresh {
		log.Debugf("🔥 %s client rebuilt for every trial", d.Name())
		return trial.OperationFunc(func(ctx context.Context) error {
			if err := d.Connect(); err != nil {
				return err
			}
			return d.Invoke(ctx)
		}), nil
	}
	if err := d.Connect(); err != nil {
		return nil, fmt.Errorf("%s client: %w", d.Name(), err)
	}
	log.Debugf("🔥 %s client reused across trials", d.Name())
	return trial.OperationFunc(d.Invoke), nil
}

func transport(insecure bool) *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	if insecure {
		t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return t
}

// reconnect closes the idle connections of the previous transport, if any,
// and returns a new one.
func reconnect(prev *http.Transport, insecure bool) *http.Transport {
	if prev != nil {
		prev.CloseIdleConnections()
	}
	return transport(insecure)
}

// drain reads what is left of a response so its connection can be reused
// or closed as idle, then closes it.
func drain(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, body)
	body.Close()
}
