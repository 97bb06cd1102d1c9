package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/olivere/elastic/v7"

	"github.com/vidtube/backend/internal/config"
	"github.com/vidtube/backend/internal/logging"
	"github.com/vidtube/backend/internal/repositories"
)

// ElasticSearcher ranks videos with an Elasticsearch multi_match query and
// returns only their ids. Documents are expected to be indexed under the
// video id.
type ElasticSearcher struct {
	client     *elastic.Client
	index      string
	maxResults int
}

// NewElasticSearcher builds a client for the configured cluster. Sniffing and
// background health checks are disabled so a single URL behind a load
// balancer works.
func NewElasticSearcher(cfg config.SearchConfig) (*ElasticSearcher, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, errors.New("elastic searcher: url is required")
	}
	if strings.TrimSpace(cfg.Index) == "" {
		return nil, errors.New("elastic searcher: index is required")
	}

	client, err := elastic.NewClient(
		elastic.SetURL(cfg.URL),
		elastic.SetSniff(false),
		elastic.SetHealthcheck(false),
	)
	if err != nil {
		return nil, fmt.Errorf("elastic searcher: %w", err)
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 1000
	}

	return &ElasticSearcher{client: client, index: cfg.Index, maxResults: maxResults}, nil
}

// Search returns the ids of the best matching videos, best match first.
func (s *ElasticSearcher) Search(ctx context.Context, query string, fields []string) ([]string, error) {
	q := elastic.NewMultiMatchQuery(query, fields...).Type("best_fields")

	res, err := s.client.Search().
		Index(s.index).
		Query(q).
		Size(s.maxResults).
		FetchSourceContext(elastic.NewFetchSourceContext(false)).
		Do(ctx)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: search %s: %v", repositories.ErrUnavailable, s.index, err)
	}

	if res.Hits == nil {
		return []string{}, nil
	}
	if total := res.TotalHits(); total > int64(s.maxResults) {
		logging.FromContext(ctx).Warn("search results truncated",
			"index", s.index,
			"total_hits", total,
			"max_results", s.maxResults,
		)
	}

	ids := make([]string, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		if hit.Id != "" {
			ids = append(ids, hit.Id)
		}
	}
	return ids, nil
}
