package drivers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/cloud-bulldozer/search-bench/pkg/config"
	log "github.com/cloud-bulldozer/search-bench/pkg/logging"
	"github.com/elastic/go-elasticsearch/v7"
	"github.com/elastic/go-elasticsearch/v7/esapi"
)

type elastic struct {
	driverName string
	cfg        config.Config
	req        request
	tr         *http.Transport
	client     *elasticsearch.Client
}

func (e *elastic) Name() string {
	return e.driverName
}

// Connect accepts the benchmark config which describes how to connect to ES.
func (e *elastic) Connect() error {
	log.Debugf("Connecting to ES - %s", e.cfg.URL)
	tr := reconnect(e.tr, e.cfg.Insecure)
	esc := elasticsearch.Config{
		Username:  e.cfg.Username,
		Password:  e.cfg.Password,
		Addresses: []string{e.cfg.URL},
		Transport: tr,
	}
	ec, err := elasticsearch.NewClient(esc)
	if err != nil {
		return fmt.Errorf("error connecting to ES: %w", err)
	}
	e.tr = tr
	e.client = ec
	return nil
}

// Close drops the idle connections of the current client.
func (e *elastic) Close() {
	if e.tr != nil {
		e.tr.CloseIdleConnections()
	}
}

// Invoke sends one request and consumes the whole response.
func (e *elastic) Invoke(ctx context.Context) error {
	if e.client == nil {
		return fmt.Errorf("elasticsearch client not connected")
	}
	var (
		res *esapi.Response
		err error
	)
	body := bytes.NewReader(e.req.body)
	if e.req.mode == "bulk" {
		res, err = e.client.Bulk(body,
			e.client.Bulk.WithContext(ctx),
			e.client.Bulk.WithIndex(e.req.index))
	} else {
		opts := []func(*esapi.SearchRequest){
			e.client.Search.WithContext(ctx),
			e.client.Search.WithIndex(e.req.index),
			e.client.Search.WithBody(body),
		}
		if len(e.req.filterPath) > 0 {
			opts = append(opts, e.client.Search.WithFilterPath(e.req.filterPath...))
		}
		res, err = e.client.Search(opts...)
	}
	if err != nil {
		return err
	}
	defer drain(res.Body)
	return e.req.consume(res.StatusCode, res.Body)
}
