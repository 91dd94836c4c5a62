// Package digest runs the daily digest cycle.
//
// The scheduler polls the wall clock in the configured timezone and
// fires once per calendar date at the configured hour and minute. The
// completed date lives in memory only: a restart inside the trigger
// minute can post twice, and a process down across the trigger minute
// skips that day. There is no retry and no backfill.
package digest

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/lueurxax/teledigest/internal/llm"
	"github.com/lueurxax/teledigest/internal/observability"
	"github.com/lueurxax/teledigest/internal/retrieval"
	"github.com/lueurxax/teledigest/internal/storage"
)

const (
	pollInterval = 30 * time.Second
	// Longer than a minute so one trigger minute cannot fire twice even
	// if the date bookkeeping were lost.
	postFireSleep = 65 * time.Second

	dateLayout = "2006-01-02"

	statusSuccess = "success"
	statusFailure = "failure"
)

// Poster delivers the finished digest text.
type Poster interface {
	SendDigest(ctx context.Context, text string) error
}

// Retriever selects the messages feeding a digest.
type Retriever interface {
	RetrieveLast24h(ctx context.Context, maxDocs int) ([]storage.StoredMessage, error)
}

type Scheduler struct {
	hour    int
	minute  int
	loc     *time.Location
	maxDocs int

	retriever Retriever
	llmClient llm.Client
	poster    Poster
	logger    *zerolog.Logger

	lastRun string
}

func New(hour, minute int, loc *time.Location, maxDocs int, retriever Retriever, llmClient llm.Client, poster Poster, logger *zerolog.Logger) *Scheduler {
	return &Scheduler{
		hour:      hour,
		minute:    minute,
		loc:       loc,
		maxDocs:   maxDocs,
		retriever: retriever,
		llmClient: llmClient,
		poster:    poster,
		logger:    logger,
	}
}

var _ Retriever = (*retrieval.Retriever)(nil)

func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info().
		Int("hour", s.hour).
		Int("minute", s.minute).
		Str("timezone", s.loc.String()).
		Msg("Digest scheduler started")

	for {
		now := time.Now().In(s.loc)

		if shouldFire(now, s.hour, s.minute, s.lastRun) {
			s.RunOnce(ctx)

			// Mark the date complete regardless of the cycle outcome:
			// one attempt per day, never a retry.
			s.lastRun = now.Format(dateLayout)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(postFireSleep):
			}

			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(pollInterval):
		}
	}
}

// RunOnce executes one digest cycle: retrieve, summarize, post.
func (s *Scheduler) RunOnce(ctx context.Context) {
	day := time.Now().In(s.loc).Format(dateLayout)

	s.logger.Info().Str("day", day).Msg("Starting digest cycle")

	text := s.buildDigest(ctx, day)

	if err := s.poster.SendDigest(ctx, text); err != nil {
		s.logger.Error().Err(err).Str("day", day).Msg("failed to post digest")
		observability.DigestsPosted.WithLabelValues(statusFailure).Inc()

		return
	}

	observability.DigestsPosted.WithLabelValues(statusSuccess).Inc()
	s.logger.Info().Str("day", day).Msg("Digest posted")
}

func (s *Scheduler) buildDigest(ctx context.Context, day string) string {
	msgs, err := s.retriever.RetrieveLast24h(ctx, s.maxDocs)
	if err != nil {
		s.logger.Error().Err(err).Msg("digest retrieval failed")

		return llm.Placeholder(day, err)
	}

	if len(msgs) == 0 {
		return fmt.Sprintf("No messages to summarize for %s.", day)
	}

	start := time.Now()

	summary, err := s.llmClient.Summarize(ctx, day, msgs)

	observability.SummaryDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		s.logger.Error().Err(err).Str("day", day).Msg("summarization failed")

		return llm.Placeholder(day, err)
	}

	return summary
}

// shouldFire reports whether the trigger minute in now has been reached
// and the date has not been completed yet.
func shouldFire(now time.Time, hour, minute int, lastRun string) bool {
	if now.Hour() != hour || now.Minute() != minute {
		return false
	}

	return now.Format(dateLayout) != lastRun
}
