package drivers

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/cloud-bulldozer/search-bench/pkg/config"
	log "github.com/cloud-bulldozer/search-bench/pkg/logging"
	"github.com/opensearch-project/opensearch-go"
	"github.com/opensearch-project/opensearch-go/opensearchapi"
)

type opensearchDriver struct {
	driverName string
	cfg        config.Config
	req        request
	tr         *http.Transport
	client     *opensearch.Client
}

func (o *opensearchDriver) Name() string {
	return o.driverName
}

// Connect returns a client connected to the desired cluster.
func (o *opensearchDriver) Connect() error {
	log.Debugf("Connecting to OpenSearch - %s", o.cfg.URL)
	tr := reconnect(o.tr, o.cfg.Insecure)
	oc, err := opensearch.NewClient(opensearch.Config{
		Username:  o.cfg.Username,
		Password:  o.cfg.Password,
		Addresses: []string{o.cfg.URL},
		Transport: tr,
	})
	if err != nil {
		return fmt.Errorf("error connecting to OpenSearch: %w", err)
	}
	o.tr = tr
	o.client = oc
	return nil
}

func (o *opensearchDriver) Close() {
	if o.tr != nil {
		o.tr.CloseIdleConnections()
	}
}

func (o *opensearchDriver) Invoke(ctx context.Context) error {
	if o.client == nil {
		return fmt.Errorf("opensearch client not connected")
	}
	var (
		res *opensearchapi.Response
		err error
	)
	body := bytes.NewReader(o.req.body)
	if o.req.mode == "bulk" {
		res, err = o.client.Bulk(body,
			o.client.Bulk.WithContext(ctx),
			o.client.Bulk.WithIndex(o.req.index))
	} else {
		opts := []func(*opensearchapi.SearchRequest){
			o.client.Search.WithContext(ctx),
			o.client.Search.WithIndex(o.req.index),
			o.client.Search.WithBody(body),
		}
		if len(o.req.filterPath) > 0 {
			opts = append(opts, o.client.Search.WithFilterPath(o.req.filterPath...))
		}
		res, err = o.client.Search(opts...)
	}
	if err != nil {
		return err
	}
	defer drain(res.Body)
	return o.req.consume(res.StatusCode, res.Body)
}
