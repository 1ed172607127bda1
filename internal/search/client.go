// Package search keeps an Elasticsearch index of tag labels for prefix
// completion. The SQL tags table stays the source of truth.
package search

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v9"
	jsoniter "github.com/json-iterator/go"
	"github.com/zfogg/clipfeed/internal/config"
	"github.com/zfogg/clipfeed/internal/feed"
	"github.com/zfogg/clipfeed/internal/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// TagsIndex is the tag completion index
const TagsIndex = "tags"

// Client wraps the Elasticsearch client with the tag index operations
type Client struct {
	es *elasticsearch.Client
}

// NewClient connects to the configured cluster and verifies it answers.
// transport may be nil.
func NewClient(cfg config.SearchConfig, transport http.RoundTripper) (*Client, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Transport: transport,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	res, err := es.Info()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Elasticsearch: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("failed to connect to Elasticsearch: [%s]", res.Status())
	}

	return &Client{es: es}, nil
}

// EnsureTagIndex creates the tag index unless it already exists
func (c *Client) EnsureTagIndex(ctx context.Context) error {
	res, err := c.es.Indices.Exists([]string{TagsIndex}, c.es.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to check if index exists: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	mapping := map[string]interface{}{
		"mappings": map[string]interface{}{
			"properties": map[string]interface{}{
				"label": map[string]interface{}{
					"type":  "keyword",
					"index": false,
				},
				"label_lower": map[string]interface{}{
					"type": "keyword",
				},
			},
		},
	}
	body, err := json.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	res, err = c.es.Indices.Create(TagsIndex,
		c.es.Indices.Create.WithBody(bytes.NewReader(body)),
		c.es.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer res.Body.Close()
	return responseError("creating index", res.Status(), res.IsError(), res.Body)
}

// IndexTags upserts the labels, keyed by their feed slug
func (c *Client) IndexTags(ctx context.Context, labels []string) (err error) {
	start := time.Now()
	defer func() { observe("index", start, err) }()

	for _, label := range feed.NormalizeTags(labels) {
		body, err := json.Marshal(tagDoc{Label: label, LabelLower: strings.ToLower(label)})
		if err != nil {
			return fmt.Errorf("failed to marshal tag document: %w", err)
		}

		res, err := c.es.Index(TagsIndex, bytes.NewReader(body),
			c.es.Index.WithDocumentID(feed.LabelToSlug(label)),
			c.es.Index.WithContext(ctx),
		)
		if err != nil {
			return fmt.Errorf("failed to index tag: %w", err)
		}
		err = responseError("indexing tag", res.Status(), res.IsError(), res.Body)
		res.Body.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// SuggestTags returns up to limit labels whose lowercase form starts with
// prefix, in label order
func (c *Client) SuggestTags(ctx context.Context, prefix string, limit int) (labels []string, err error) {
	start := time.Now()
	defer func() { observe("suggest", start, err) }()

	prefix = strings.ToLower(strings.TrimSpace(prefix))
	query := map[string]interface{}{"match_all": map[string]interface{}{}}
	if prefix != "" {
		query = map[string]interface{}{
			"prefix": map[string]interface{}{
				"label_lower": map[string]interface{}{"value": prefix},
			},
		}
	}
	searchQuery := map[string]interface{}{
		"size":    limit,
		"query":   query,
		"sort":    []map[string]interface{}{{"label_lower": "asc"}},
		"_source": []string{"label"},
	}
	body, err := json.Marshal(searchQuery)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query: %w", err)
	}

	res, err := c.es.Search(
		c.es.Search.WithContext(ctx),
		c.es.Search.WithIndex(TagsIndex),
		c.es.Search.WithBody(bytes.NewReader(body)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search tags: %w", err)
	}
	defer res.Body.Close()
	if err := responseError("searching tags", res.Status(), res.IsError(), res.Body); err != nil {
		return nil, err
	}

	var resp struct {
		Hits struct {
			Hits []struct {
				Source tagDoc `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	labels = make([]string, 0, len(resp.Hits.Hits))
	for _, hit := range resp.Hits.Hits {
		labels = append(labels, hit.Source.Label)
	}
	return feed.NormalizeTags(labels), nil
}

func observe(op string, start time.Time, err error) {
	m := metrics.Get().App
	m.SearchQueryDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.SearchQueriesTotal.WithLabelValues(op, status).Inc()
}

type tagDoc struct {
	Label      string `json:"label"`
	LabelLower string `json:"label_lower"`
}

func responseError(action, status string, isError bool, body io.Reader) error {
	if !isError {
		return nil
	}
	var errResp map[string]interface{}
	if err := json.NewDecoder(body).Decode(&errResp); err != nil {
		return fmt.Errorf("error %s: [%s]", action, status)
	}
	return fmt.Errorf("error %s: [%s] %v", action, status, errResp["error"])
}
