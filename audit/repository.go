// Repository indexes Records in Elasticsearch. Bodies are
// gzip-compressed before indexing to keep the audit index's storage
// footprint down under sustained decision volume.
package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/klauspost/compress/gzip"
)

type Repository interface {
	LogDecision(ctx context.Context, record Record) error
	QueryDecisions(ctx context.Context, from, to time.Time, subject, resource string) ([]Record, error)
}

type ElasticsearchRepository struct {
	esClient *elasticsearch.Client
	index    string
}

func NewElasticsearchRepository(esURL, index string) (*ElasticsearchRepository, error) {
	cfg := elasticsearch.Config{Addresses: []string{esURL}}
	esClient, err := elasticsearch.NewClient(cfg)
	if err != nil {
		return nil, err
	}
	return &ElasticsearchRepository{esClient: esClient, index: index}, nil
}

func (r *ElasticsearchRepository) LogDecision(ctx context.Context, record Record) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(data); err != nil {
		return err
	}
	if err := gz.Close(); err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      r.index,
		DocumentID: fmt.Sprintf("%d-%s", record.Timestamp.Unix(), record.DecisionID),
		Body:       &buf,
		Header:     map[string][]string{"Content-Encoding": {"gzip"}},
		Refresh:    "true",
	}

	res, err := req.Do(ctx, r.esClient)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("audit: error indexing record: %s", res.String())
	}
	return nil
}

func (r *ElasticsearchRepository) QueryDecisions(ctx context.Context, from, to time.Time, subject, resource string) ([]Record, error) {
	must := []interface{}{
		map[string]interface{}{
			"range": map[string]interface{}{
				"timestamp": map[string]interface{}{
					"gte": from.Format(time.RFC3339),
					"lte": to.Format(time.RFC3339),
				},
			},
		},
	}
	if subject != "" {
		must = append(must, map[string]interface{}{"match": map[string]interface{}{"subject": subject}})
	}
	if resource != "" {
		must = append(must, map[string]interface{}{"match": map[string]interface{}{"resource": resource}})
	}
	query := map[string]interface{}{"query": map[string]interface{}{"bool": map[string]interface{}{"must": must}}}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		return nil, err
	}

	res, err := r.esClient.Search(
		r.esClient.Search.WithContext(ctx),
		r.esClient.Search.WithIndex(r.index),
		r.esClient.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("audit: error searching records: %s", res.String())
	}

	var rmap struct {
		Hits struct {
			Hits []struct {
				Source Record `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&rmap); err != nil {
		return nil, err
	}

	records := make([]Record, len(rmap.Hits.Hits))
	for i, h := range rmap.Hits.Hits {
		records[i] = h.Source
	}
	return records, nil
}
