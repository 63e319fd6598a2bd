// internal/admission/search/index.go

// Package search pushes finished merit lists into Elasticsearch for the back
// office's search and reporting screens. Indexing is best effort; a run never
// fails because the index write did.
package search

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"admission-workers/internal/common/logger"
	"admission-workers/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// Entry is one applicant's row in an indexed merit list.
type Entry struct {
	ApplicationID string                   `json:"applicationId"`
	Category      string                   `json:"category,omitempty"`
	MeritScore    float64                  `json:"meritScore"`
	MeritRank     int                      `json:"meritRank"`
	Status        models.ApplicationStatus `json:"status"`
}

// Document is the full merit list for one run, stored under the run id.
type Document struct {
	RunID       string    `json:"runId"`
	CampaignID  string    `json:"campaignId"`
	Entries     []Entry   `json:"entries"`
	Selected    int       `json:"selected"`
	Waitlisted  int       `json:"waitlisted"`
	Rejected    int       `json:"rejected"`
	GeneratedAt time.Time `json:"generatedAt"`
}

// Indexer writes merit-list documents. A nil client disables indexing.
type Indexer struct {
	client *elasticsearch.Client
	index  string
	logger logger.Logger
}

func NewIndexer(client *elasticsearch.Client, index string, log logger.Logger) *Indexer {
	return &Indexer{
		client: client,
		index:  index,
		logger: log.WithFields(map[string]interface{}{"component": "meritlist-indexer"}),
	}
}

// IndexMeritList stores one run's ranked list. Errors are returned so the
// caller can count them, but callers treat them as non-critical.
func (i *Indexer) IndexMeritList(ctx context.Context, doc Document) error {
	if i.client == nil {
		return nil
	}

	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal merit list document: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      i.index,
		DocumentID: doc.RunID,
		Body:       strings.NewReader(string(body)),
	}

	res, err := req.Do(ctx, i.client)
	if err != nil {
		return fmt.Errorf("index merit list: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index merit list: %s", res.String())
	}

	i.logger.Info("merit list indexed", map[string]interface{}{
		"runId":      doc.RunID,
		"campaignId": doc.CampaignID,
		"entries":    len(doc.Entries),
	})
	return nil
}
