package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"studentdash-be/config"
	"studentdash-be/internal/models"
	"studentdash-be/internal/rate"
	"studentdash-be/internal/utils"

	"google.golang.org/api/gmail/v1"
)

const dailyBreakdownDays = 7

// TypeFilter narrows a StatsResult to one direction after aggregation.
type TypeFilter string

const (
	FilterAll      TypeFilter = "all"
	FilterSent     TypeFilter = "sent"
	FilterReceived TypeFilter = "received"
)

// StatsOptions are the caller-facing knobs for one statistics request.
type StatsOptions struct {
	WindowDays int
	Keywords   []string // empty means DefaultKeywords
	TypeFilter TypeFilter
}

// ThreadOptions control the recent-threads listing.
type ThreadOptions struct {
	Keywords   []string
	MaxResults int64
}

// StatsService aggregates communication statistics over concurrent,
// windowed Gmail queries. All results are request-scoped values; the
// service itself holds only configuration.
type StatsService struct {
	domains        []string
	pageCap        int64
	maxConcurrency int
	limiter        rate.Limiter
	backoff        time.Duration
	now            func() time.Time
}

func NewStatsService(cfg *config.Config, limiter rate.Limiter) *StatsService {
	maxConc := cfg.StatsMaxConcurrency
	if maxConc <= 0 {
		maxConc = 8
	}
	pageCap := cfg.StatsPageCap
	if pageCap <= 0 {
		pageCap = 500
	}
	return &StatsService{
		domains:        cfg.StudentDomains,
		pageCap:        pageCap,
		maxConcurrency: maxConc,
		limiter:        limiter,
		backoff:        cfg.StatsBackoff,
		now:            time.Now,
	}
}

// GetStats fans out the window-level, prior-window, and daily-bucket
// counts concurrently and reduces them into a single StatsResult.
//
// Failure policy: every per-call failure degrades to an empty result
// (DegradeToZero) except auth/permission failures on the current-window
// calls, which propagate because the credential is unusable for any
// further call. Both current-window calls failing transiently surfaces
// a generic error instead of an all-zero dashboard.
func (s *StatsService) GetStats(ctx context.Context, p MailProvider, opts StatsOptions) (*models.StatsResult, error) {
	days := opts.WindowDays
	if days <= 0 {
		days = 30
	}

	now := s.now()
	current := LastDays(now, days)
	prior := current.Prior()

	sem := make(chan struct{}, s.maxConcurrency)
	var wg sync.WaitGroup

	// Window-level counts: current sent/received feed the headline
	// numbers, prior sent/received only feed the trend.
	var curSent, curRecv, priorSent, priorRecv countResult
	windowCalls := []struct {
		slot   *countResult
		window TimeWindow
		dir    Direction
	}{
		{&curSent, current, DirectionSent},
		{&curRecv, current, DirectionReceived},
		{&priorSent, prior, DirectionSent},
		{&priorRecv, prior, DirectionReceived},
	}
	for _, call := range windowCalls {
		wg.Add(1)
		go func(slot *countResult, w TimeWindow, dir Direction) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			slot.n, slot.err = s.countMessages(ctx, p, Compose(w, dir, s.domains, opts.Keywords))
		}(call.slot, call.window, call.dir)
	}

	// Daily buckets: always the last 7 calendar days including today,
	// oldest first, assembled by index so completion order is
	// irrelevant. Each day's pair is independent.
	daily := make([]models.DailyBucket, dailyBreakdownDays)
	for i := 0; i < dailyBreakdownDays; i++ {
		day := Day(now.AddDate(0, 0, i-(dailyBreakdownDays-1)))
		daily[i].Date = day.Start.Format("2006-01-02")

		for _, dir := range []Direction{DirectionSent, DirectionReceived} {
			wg.Add(1)
			go func(idx int, w TimeWindow, dir Direction) {
				defer wg.Done()
				sem <- struct{}{}
				defer func() { <-sem }()
				n, err := s.countMessages(ctx, p, Compose(w, dir, s.domains, opts.Keywords))
				n = degradeToZero(n, err, fmt.Sprintf("daily bucket %s", w.Start.Format("2006-01-02")))
				if dir == DirectionSent {
					daily[idx].SentCount = n
				} else {
					daily[idx].ReceivedCount = n
				}
			}(i, day, dir)
		}
	}

	wg.Wait()

	// Only the two current-window calls may abort the aggregation.
	for _, res := range []countResult{curSent, curRecv} {
		if res.err != nil && isCredentialError(res.err) {
			return nil, res.err
		}
	}
	if curSent.err != nil && curRecv.err != nil {
		return nil, fmt.Errorf("current window counts unavailable: %v; %v", curSent.err, curRecv.err)
	}

	sent := degradeToZero(curSent.n, curSent.err, "current sent count")
	received := degradeToZero(curRecv.n, curRecv.err, "current received count")
	priorTotal := degradeToZero(priorSent.n, priorSent.err, "prior sent count") +
		degradeToZero(priorRecv.n, priorRecv.err, "prior received count")

	result := &models.StatsResult{
		Total:          sent + received,
		Sent:           sent,
		Received:       received,
		TrendPercent:   Trend(sent+received, priorTotal),
		DailyBreakdown: daily,
		PeriodLabel:    fmt.Sprintf("%dd", days),
	}
	applyTypeFilter(result, opts.TypeFilter)
	return result, nil
}

type countResult struct {
	n   int
	err error
}

// countMessages issues one capped list call. Results beyond the page
// cap are not paginated, so large windows undercount; that boundary is
// inherited from the original dashboard and kept deliberate.
func (s *StatsService) countMessages(ctx context.Context, p MailProvider, query string) (int, error) {
	n, err := s.listCount(ctx, p, query)
	if err == nil || !isRetryable(err) {
		return n, err
	}
	// One backoff-then-retry on rate-limit responses; concurrent
	// branches each back off independently instead of hammering the
	// provider in lockstep.
	select {
	case <-ctx.Done():
		return 0, classifyProviderError(ctx.Err())
	case <-time.After(s.backoff):
	}
	return s.listCount(ctx, p, query)
}

func (s *StatsService) listCount(ctx context.Context, p MailProvider, query string) (int, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return 0, err
	}
	msgs, err := p.ListMessages(ctx, query, s.pageCap)
	if err != nil {
		return 0, classifyProviderError(err)
	}
	return len(msgs), nil
}

// degradeToZero is the DegradeToZero policy: a failed per-unit provider
// call silently reads as zero so the dashboard stays usable.
func degradeToZero(n int, err error, what string) int {
	if err != nil {
		log.Printf("stats: %s degraded to zero: %v", what, err)
		return 0
	}
	return n
}

// applyTypeFilter zeroes the non-selected direction after aggregation.
// It runs post-hoc, not in the queries, because the unfiltered totals
// already fed the trend.
func applyTypeFilter(r *models.StatsResult, filter TypeFilter) {
	switch filter {
	case FilterSent:
		r.Received = 0
		r.Total = r.Sent
		for i := range r.DailyBreakdown {
			r.DailyBreakdown[i].ReceivedCount = 0
		}
	case FilterReceived:
		r.Sent = 0
		r.Total = r.Received
		for i := range r.DailyBreakdown {
			r.DailyBreakdown[i].SentCount = 0
		}
	}
}

// RecentThreads lists a bounded number of matching conversation threads
// and hydrates their metadata concurrently. A single thread fetch
// failure drops that thread from the result; provider order is
// preserved by assembling into index slots.
func (s *StatsService) RecentThreads(ctx context.Context, p MailProvider, opts ThreadOptions) ([]models.ThreadSummary, error) {
	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = 5
	}

	query := Compose(LastDays(s.now(), 30), DirectionEither, s.domains, opts.Keywords)

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	threads, err := p.ListThreads(ctx, query, maxResults)
	if err != nil {
		return nil, classifyProviderError(err)
	}
	if len(threads) == 0 {
		return []models.ThreadSummary{}, nil
	}

	slots := make([]*models.ThreadSummary, len(threads))
	sem := make(chan struct{}, s.maxConcurrency)
	var wg sync.WaitGroup
	for i, th := range threads {
		wg.Add(1)
		go func(idx int, id string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			if err := s.limiter.Wait(ctx); err != nil {
				return
			}
			full, err := p.GetThread(ctx, id)
			if err != nil {
				log.Printf("stats: dropping thread %s: %v", id, err)
				return
			}
			if summary := summarizeThread(full); summary != nil {
				slots[idx] = summary
			}
		}(i, th.Id)
	}
	wg.Wait()

	result := make([]models.ThreadSummary, 0, len(slots))
	for _, summary := range slots {
		if summary != nil {
			result = append(result, *summary)
		}
	}
	return result, nil
}

// GetEmailStats is the entry point older dashboard builds call.
//
// Deprecated: use GetStats.
func (s *StatsService) GetEmailStats(ctx context.Context, p MailProvider, windowDays int) (*models.StatsResult, error) {
	return s.GetStats(ctx, p, StatsOptions{WindowDays: windowDays})
}

func summarizeThread(th *gmail.Thread) *models.ThreadSummary {
	if th == nil || len(th.Messages) == 0 {
		return nil
	}
	first := th.Messages[0]

	summary := &models.ThreadSummary{
		ID:           th.Id,
		Snippet:      utils.SanitizeSnippet(utils.ToValidUTF8(first.Snippet)),
		MessageCount: len(th.Messages),
	}
	if first.Payload != nil {
		for _, h := range first.Payload.Headers {
			switch h.Name {
			case "Subject":
				summary.Subject = utils.ToValidUTF8(h.Value)
			case "From":
				summary.From = parseAddress(utils.ToValidUTF8(h.Value))
			case "To":
				summary.To = parseAddresses(utils.ToValidUTF8(h.Value))
			case "Date":
				summary.Date = h.Value
			}
		}
	}
	return summary
}

func parseAddress(addr string) models.EmailAddress {
	// Simple parser: "Name <email>" or "email"
	if strings.Contains(addr, "<") {
		parts := strings.SplitN(addr, "<", 2)
		name := strings.TrimSpace(parts[0])
		email := strings.TrimSpace(strings.TrimSuffix(parts[1], ">"))
		return models.EmailAddress{Name: name, Email: email}
	}
	return models.EmailAddress{Name: "", Email: strings.TrimSpace(addr)}
}

func parseAddresses(addrs string) []models.EmailAddress {
	var result []models.EmailAddress
	if addrs == "" {
		return result
	}
	for _, p := range strings.Split(addrs, ",") {
		result = append(result, parseAddress(strings.TrimSpace(p)))
	}
	return result
}
