package drivers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

// bulkDocs is the number of documents indexed by one bulk trial.
const bulkDocs = 999

// BenchDoc is the document shape a search trial decodes.
type BenchDoc struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Timestamp int64  `json:"timestamp"`
}

type searchResponse struct {
	Took     int  `json:"took"`
	TimedOut bool `json:"timed_out"`
	Hits     struct {
		Total json.RawMessage `json:"total"`
		Hits  []struct {
			Index  string   `json:"_index"`
			ID     string   `json:"_id"`
			Source BenchDoc `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

type bulkResponse struct {
	Took   int                          `json:"took"`
	Errors bool                         `json:"errors"`
	Items  []map[string]json.RawMessage `json:"items"`
}

// request is what a driver sends on every trial. The body is built once.
type request struct {
	mode       string
	index      string
	body       []byte
	filterPath []string
}

// newRequest builds the request of a trial. filterPath is a comma separated
// list of response paths the cluster keeps; it only applies to searches.
func newRequest(mode, index, body, filterPath string) (request, error) {
	r := request{mode: mode, index: index}
	switch mode {
	case "search", "raw":
		r.body = []byte(body)
		for _, p := range strings.Split(filterPath, ",") {
			if p = strings.TrimSpace(p); p != "" {
				r.filterPath = append(r.filterPath, p)
			}
		}
	case "bulk":
		r.body = bulkBody(index)
	default:
		return r, fmt.Errorf("unknown mode: %s", mode)
	}
	return r, nil
}

// bulkBody returns the NDJSON payload for a bulk trial.
func bulkBody(index string) []byte {
	var b bytes.Buffer
	for i := 1; i <= bulkDocs; i++ {
		fmt.Fprintf(&b, `{"index":{"_index":%q,"_id":"%d"}}`+"\n", index, i)
		fmt.Fprintf(&b, `{"title":"string value %d"}`+"\n", i)
	}
	return b.Bytes()
}

// consume reads a response according to the mode. Any non-2xx status or a
// body that does not decode is a failed trial.
func (r request) consume(status int, body io.Reader) error {
	if status < 200 || status > 299 {
		msg, _ := io.ReadAll(io.LimitReader(body, 512))
		return fmt.Errorf("%s returned status %d: %s", r.mode, status, bytes.TrimSpace(msg))
	}
	switch r.mode {
	case "raw":
		_, err := io.Copy(io.Discard, body)
		return err
	case "bulk":
		var br bulkResponse
		if err := json.NewDecoder(body).Decode(&br); err != nil {
			return fmt.Errorf("decoding bulk response: %w", err)
		}
		if br.Errors {
			return fmt.Errorf("bulk response reported item errors")
		}
		return nil
	default:
		var sr searchResponse
		if err := json.NewDecoder(body).Decode(&sr); err != nil {
			return fmt.Errorf("decoding search response: %w", err)
		}
		if sr.TimedOut {
			return fmt.Errorf("search timed out on the server after %dms", sr.Took)
		}
		return nil
	}
}
