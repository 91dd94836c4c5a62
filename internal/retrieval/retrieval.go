// Package retrieval selects the messages that feed a digest.
//
// When keyword terms are configured the full-text index is asked first;
// on index failure, and on an empty hit set, retrieval falls back to a
// plain time-range scan of the primary table. Index trouble therefore
// widens the candidate set instead of erroring toward the caller.
package retrieval

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/lueurxax/teledigest/internal/storage"
)

const digestWindow = 24 * time.Hour

// Store is the slice of the message store retrieval depends on.
type Store interface {
	MessagesBetween(ctx context.Context, start, end time.Time, limit int) ([]storage.StoredMessage, error)
	SearchMessagesBetween(ctx context.Context, match string, start, end time.Time, limit int) ([]storage.StoredMessage, storage.IndexStatus)
}

type Retriever struct {
	store    Store
	keywords []string
	logger   *zerolog.Logger
}

func New(store Store, keywords []string, logger *zerolog.Logger) *Retriever {
	return &Retriever{
		store:    store,
		keywords: keywords,
		logger:   logger,
	}
}

// BuildQuery OR-joins the non-blank keyword terms into one FTS5 match
// expression. Returns "" when no usable term remains.
func BuildQuery(keywords []string) string {
	terms := make([]string, 0, len(keywords))

	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw != "" {
			terms = append(terms, kw)
		}
	}

	return strings.Join(terms, " OR ")
}

// Retrieve returns the digest candidates for [start, end].
//
// Zero full-text hits fall back to the range scan just like an index
// error does: on quiet days genuinely matching nothing this widens the
// digest to every stored message, which is accepted over missing a day.
func (r *Retriever) Retrieve(ctx context.Context, start, end time.Time, maxDocs int) ([]storage.StoredMessage, error) {
	query := BuildQuery(r.keywords)
	if query == "" {
		return r.store.MessagesBetween(ctx, start, end, maxDocs)
	}

	msgs, status := r.store.SearchMessagesBetween(ctx, query, start, end, maxDocs)
	if status == storage.IndexUnavailable {
		r.logger.Warn().Str("query", query).Msg("full-text search unavailable, falling back to range scan")

		return r.store.MessagesBetween(ctx, start, end, maxDocs)
	}

	if len(msgs) == 0 {
		r.logger.Debug().Str("query", query).Msg("no full-text hits, falling back to range scan")

		return r.store.MessagesBetween(ctx, start, end, maxDocs)
	}

	return msgs, nil
}

// RetrieveLast24h retrieves over the rolling window ending now, the only
// window the scheduler and bot commands use.
func (r *Retriever) RetrieveLast24h(ctx context.Context, maxDocs int) ([]storage.StoredMessage, error) {
	end := time.Now().UTC()

	return r.Retrieve(ctx, end.Add(-digestWindow), end, maxDocs)
}
