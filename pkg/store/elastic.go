package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	elasticsearch "github.com/elastic/go-elasticsearch/v7"
	"github.com/elastic/go-elasticsearch/v7/esapi"

	"github.com/jurisgraph/jurisgraph/pkg/types"
)

// convertedField is the per-record marker indicating the record's statements
// have been durably persisted downstream.
const convertedField = "processed"

// ElasticStore implements Store against an Elasticsearch judgments index.
type ElasticStore struct {
	es      *elasticsearch.Client
	index   string
	maxDocs int
	log     *slog.Logger
}

// NewElasticStore connects to the cluster and verifies the index exists.
func NewElasticStore(addresses []string, index string, maxDocs int, log *slog.Logger) (*ElasticStore, error) {
	if log == nil {
		log = slog.Default()
	}
	if maxDocs <= 0 {
		maxDocs = 10000
	}

	es, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: addresses})
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}

	s := &ElasticStore{es: es, index: index, maxDocs: maxDocs, log: log}
	return s, nil
}

// Ping verifies connectivity and index existence.
func (s *ElasticStore) Ping(ctx context.Context) error {
	res, err := s.es.Ping(s.es.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch unreachable: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("elasticsearch ping failed: %s", res.Status())
	}

	exists, err := s.es.Indices.Exists([]string{s.index}, s.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to check index %s: %w", s.index, err)
	}
	defer exists.Body.Close()
	if exists.IsError() {
		return fmt.Errorf("index %s does not exist", s.index)
	}
	return nil
}

func (s *ElasticStore) LoadAll(ctx context.Context) ([]types.SourceDocument, error) {
	return s.search(ctx, map[string]any{"match_all": map[string]any{}})
}

func (s *ElasticStore) LoadByIDs(ctx context.Context, docIDs []string) ([]types.SourceDocument, error) {
	return s.search(ctx, map[string]any{"terms": map[string]any{"doc_id": docIDs}})
}

func (s *ElasticStore) LoadUnconverted(ctx context.Context) ([]types.SourceDocument, error) {
	return s.search(ctx, unconvertedQuery())
}

// unconvertedQuery matches records where the converted flag is absent or
// false.
func unconvertedQuery() map[string]any {
	return map[string]any{
		"bool": map[string]any{
			"must_not": map[string]any{
				"term": map[string]any{convertedField: true},
			},
		},
	}
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string         `json:"_id"`
			Source map[string]any `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (s *ElasticStore) search(ctx context.Context, query map[string]any) ([]types.SourceDocument, error) {
	body, err := json.Marshal(map[string]any{"query": query, "size": s.maxDocs})
	if err != nil {
		return nil, err
	}

	res, err := s.es.Search(
		s.es.Search.WithContext(ctx),
		s.es.Search.WithIndex(s.index),
		s.es.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch search failed: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch search failed: %s", res.Status())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	docs := make([]types.SourceDocument, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		docs = append(docs, types.SourceDocument{StoreID: hit.ID, Fields: hit.Source})
	}
	s.log.Debug("loaded documents from elasticsearch", "index", s.index, "count", len(docs))
	return docs, nil
}

func (s *ElasticStore) Count(ctx context.Context) (int, error) {
	return s.count(ctx, nil)
}

func (s *ElasticStore) CountUnconverted(ctx context.Context) (int, error) {
	return s.count(ctx, unconvertedQuery())
}

func (s *ElasticStore) count(ctx context.Context, query map[string]any) (int, error) {
	opts := []func(*esapi.CountRequest){
		s.es.Count.WithContext(ctx),
		s.es.Count.WithIndex(s.index),
	}
	if query != nil {
		body, err := json.Marshal(map[string]any{"query": query})
		if err != nil {
			return 0, err
		}
		opts = append(opts, s.es.Count.WithBody(bytes.NewReader(body)))
	}

	res, err := s.es.Count(opts...)
	if err != nil {
		return 0, fmt.Errorf("elasticsearch count failed: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, fmt.Errorf("elasticsearch count failed: %s", res.Status())
	}

	var parsed struct {
		Count int `json:"count"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("failed to decode count response: %w", err)
	}
	return parsed.Count, nil
}

// MarkConverted flags the given records as converted with a timestamp.
func (s *ElasticStore) MarkConverted(ctx context.Context, docIDs []string) (int, error) {
	if len(docIDs) == 0 {
		return 0, nil
	}
	script := fmt.Sprintf("ctx._source.%s = true; ctx._source.%s_at = params.ts", convertedField, convertedField)
	return s.updateByQuery(ctx, docIDs, script)
}

// ResetConverted clears the converted flag; an empty docIDs resets every
// record.
func (s *ElasticStore) ResetConverted(ctx context.Context, docIDs []string) (int, error) {
	script := fmt.Sprintf("ctx._source.%s = false", convertedField)
	return s.updateByQuery(ctx, docIDs, script)
}

func (s *ElasticStore) updateByQuery(ctx context.Context, docIDs []string, script string) (int, error) {
	var query map[string]any
	if len(docIDs) == 0 {
		query = map[string]any{"match_all": map[string]any{}}
	} else {
		query = map[string]any{"terms": map[string]any{"doc_id": docIDs}}
	}

	body, err := json.Marshal(map[string]any{
		"query": query,
		"script": map[string]any{
			"source": script,
			"lang":   "painless",
			"params": map[string]any{"ts": time.Now().UTC().Format(time.RFC3339)},
		},
	})
	if err != nil {
		return 0, err
	}

	res, err := s.es.UpdateByQuery(
		[]string{s.index},
		s.es.UpdateByQuery.WithContext(ctx),
		s.es.UpdateByQuery.WithBody(bytes.NewReader(body)),
		s.es.UpdateByQuery.WithRefresh(true),
	)
	if err != nil {
		return 0, fmt.Errorf("elasticsearch update-by-query failed: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		msg, _ := io.ReadAll(res.Body)
		return 0, fmt.Errorf("elasticsearch update-by-query failed: %s: %s", res.Status(), msg)
	}

	var parsed struct {
		Updated int `json:"updated"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return 0, fmt.Errorf("failed to decode update-by-query response: %w", err)
	}
	return parsed.Updated, nil
}
