package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"studentdash-be/config"
	"studentdash-be/internal/rate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
)

var testNow = time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

func newTestStatsService(domains []string) *StatsService {
	s := NewStatsService(&config.Config{
		StudentDomains:      domains,
		StatsPageCap:        500,
		StatsMaxConcurrency: 4,
		StatsBackoff:        time.Millisecond,
	}, rate.Unlimited{})
	s.now = func() time.Time { return testNow }
	return s
}

type fakeProvider struct {
	listMessages func(query string, maxResults int64) ([]*gmail.Message, error)
	listThreads  func(query string, maxResults int64) ([]*gmail.Thread, error)
	getThread    func(id string) (*gmail.Thread, error)
}

func (f *fakeProvider) ListMessages(_ context.Context, query string, maxResults int64) ([]*gmail.Message, error) {
	return f.listMessages(query, maxResults)
}

func (f *fakeProvider) GetMessageMetadata(_ context.Context, id string) (*gmail.Message, error) {
	return &gmail.Message{Id: id}, nil
}

func (f *fakeProvider) ListThreads(_ context.Context, query string, maxResults int64) ([]*gmail.Thread, error) {
	return f.listThreads(query, maxResults)
}

func (f *fakeProvider) GetThread(_ context.Context, id string) (*gmail.Thread, error) {
	return f.getThread(id)
}

func msgs(n int) []*gmail.Message {
	out := make([]*gmail.Message, n)
	for i := range out {
		out[i] = &gmail.Message{Id: fmt.Sprintf("m-%d", i)}
	}
	return out
}

// queryWindow pulls the epoch boundaries back out of a composed query.
func queryWindow(t *testing.T, query string) (start, end int64) {
	t.Helper()
	_, err := fmt.Sscanf(query, "after:%d before:%d", &start, &end)
	require.NoError(t, err, "query %q must start with a date-range clause", query)
	return start, end
}

func isSentQuery(q string) bool     { return strings.HasSuffix(q, " in:sent") }
func isReceivedQuery(q string) bool { return strings.HasSuffix(q, " -in:sent") }

func TestGetStatsScenarioA(t *testing.T) {
	s := newTestStatsService(nil)
	current := LastDays(testNow, 30)
	prior := current.Prior()

	p := &fakeProvider{
		listMessages: func(q string, maxResults int64) ([]*gmail.Message, error) {
			assert.Equal(t, int64(500), maxResults, "list calls must stay capped")
			start, _ := queryWindow(t, q)
			switch start {
			case current.Start.Unix():
				if isSentQuery(q) {
					return msgs(12), nil
				}
				return msgs(8), nil
			case prior.Start.Unix():
				return msgs(5), nil
			default: // daily buckets
				return nil, nil
			}
		},
	}

	result, err := s.GetStats(context.Background(), p, StatsOptions{WindowDays: 30})
	require.NoError(t, err)

	assert.Equal(t, 20, result.Total)
	assert.Equal(t, 12, result.Sent)
	assert.Equal(t, 8, result.Received)
	assert.Equal(t, 100, result.TrendPercent, "round((20-10)/10*100)")
	assert.Equal(t, "30d", result.PeriodLabel)
}

func TestGetStatsDailyBreakdownShape(t *testing.T) {
	s := newTestStatsService(nil)

	p := &fakeProvider{
		listMessages: func(q string, _ int64) ([]*gmail.Message, error) {
			return msgs(1), nil
		},
	}

	result, err := s.GetStats(context.Background(), p, StatsOptions{WindowDays: 90})
	require.NoError(t, err)

	require.Len(t, result.DailyBreakdown, 7, "always 7 buckets regardless of window size")
	for i, bucket := range result.DailyBreakdown {
		expected := testNow.AddDate(0, 0, i-6).Format("2006-01-02")
		assert.Equal(t, expected, bucket.Date, "buckets ordered oldest first")
	}
	assert.Equal(t, testNow.Format("2006-01-02"), result.DailyBreakdown[6].Date, "last bucket is today")
	assert.Equal(t, result.Sent+result.Received, result.Total)
}

func TestGetStatsScenarioBDailyFailureDegradesToZero(t *testing.T) {
	s := newTestStatsService(nil)
	current := LastDays(testNow, 30)
	badDay := Day(testNow.AddDate(0, 0, -3))

	p := &fakeProvider{
		listMessages: func(q string, _ int64) ([]*gmail.Message, error) {
			start, end := queryWindow(t, q)
			if end-start == int64(24*time.Hour/time.Second) {
				if start == badDay.Start.Unix() {
					return nil, errors.New("connection reset")
				}
				return msgs(1), nil
			}
			if start == current.Start.Unix() {
				if isSentQuery(q) {
					return msgs(3), nil
				}
				return msgs(2), nil
			}
			return msgs(1), nil
		},
	}

	result, err := s.GetStats(context.Background(), p, StatsOptions{WindowDays: 30})
	require.NoError(t, err)

	for _, bucket := range result.DailyBreakdown {
		if bucket.Date == badDay.Start.Format("2006-01-02") {
			assert.Zero(t, bucket.SentCount, "failed bucket reads as zero")
			assert.Zero(t, bucket.ReceivedCount)
		} else {
			assert.Equal(t, 1, bucket.SentCount, "other buckets keep real values")
			assert.Equal(t, 1, bucket.ReceivedCount)
		}
	}

	// headline numbers come from the window-level calls only
	assert.Equal(t, 3, result.Sent)
	assert.Equal(t, 2, result.Received)
	assert.Equal(t, 5, result.Total)
}

func TestGetStatsScenarioCAuthFailurePropagates(t *testing.T) {
	s := newTestStatsService(nil)
	current := LastDays(testNow, 30)

	p := &fakeProvider{
		listMessages: func(q string, _ int64) ([]*gmail.Message, error) {
			start, _ := queryWindow(t, q)
			if start == current.Start.Unix() && isSentQuery(q) {
				return nil, &googleapi.Error{Code: 401, Message: "Invalid Credentials"}
			}
			return msgs(1), nil
		},
	}

	result, err := s.GetStats(context.Background(), p, StatsOptions{WindowDays: 30})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuthenticationExpired)
	assert.Nil(t, result, "no partial result on auth failure")
}

func TestGetStatsPermissionScopePropagates(t *testing.T) {
	s := newTestStatsService(nil)
	current := LastDays(testNow, 30)

	p := &fakeProvider{
		listMessages: func(q string, _ int64) ([]*gmail.Message, error) {
			start, _ := queryWindow(t, q)
			if start == current.Start.Unix() && isReceivedQuery(q) {
				return nil, &googleapi.Error{
					Code:    403,
					Message: "Insufficient Permission",
					Errors:  []googleapi.ErrorItem{{Reason: "insufficientPermissions"}},
				}
			}
			return msgs(1), nil
		},
	}

	_, err := s.GetStats(context.Background(), p, StatsOptions{WindowDays: 30})
	assert.ErrorIs(t, err, ErrPermissionScope)
}

func TestGetStatsBothCurrentCallsFailingTransientlySurfaces(t *testing.T) {
	s := newTestStatsService(nil)
	current := LastDays(testNow, 30)

	p := &fakeProvider{
		listMessages: func(q string, _ int64) ([]*gmail.Message, error) {
			start, _ := queryWindow(t, q)
			if start == current.Start.Unix() {
				return nil, errors.New("dial tcp: i/o timeout")
			}
			return msgs(1), nil
		},
	}

	result, err := s.GetStats(context.Background(), p, StatsOptions{WindowDays: 30})
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrAuthenticationExpired)
	assert.Nil(t, result)
}

func TestGetStatsSingleTransientFailureDegrades(t *testing.T) {
	s := newTestStatsService(nil)
	current := LastDays(testNow, 30)

	p := &fakeProvider{
		listMessages: func(q string, _ int64) ([]*gmail.Message, error) {
			start, _ := queryWindow(t, q)
			if start == current.Start.Unix() && isSentQuery(q) {
				return nil, errors.New("503 backend error")
			}
			return msgs(4), nil
		},
	}

	result, err := s.GetStats(context.Background(), p, StatsOptions{WindowDays: 30})
	require.NoError(t, err)
	assert.Zero(t, result.Sent, "failed side degrades to zero")
	assert.Equal(t, 4, result.Received)
	assert.Equal(t, 4, result.Total)
}

func TestGetStatsTypeFilter(t *testing.T) {
	s := newTestStatsService(nil)
	current := LastDays(testNow, 30)
	prior := current.Prior()

	provider := func() *fakeProvider {
		return &fakeProvider{
			listMessages: func(q string, _ int64) ([]*gmail.Message, error) {
				start, end := queryWindow(t, q)
				if end-start == int64(24*time.Hour/time.Second) {
					return msgs(2), nil
				}
				if start == prior.Start.Unix() {
					return msgs(5), nil
				}
				return msgs(10), nil
			},
		}
	}

	t.Run("sent only", func(t *testing.T) {
		result, err := s.GetStats(context.Background(), provider(), StatsOptions{WindowDays: 30, TypeFilter: FilterSent})
		require.NoError(t, err)

		assert.Zero(t, result.Received)
		assert.Equal(t, result.Sent, result.Total)
		for _, bucket := range result.DailyBreakdown {
			assert.Zero(t, bucket.ReceivedCount)
		}
		// trend still reflects the unfiltered totals: (20-10)/10
		assert.Equal(t, 100, result.TrendPercent)
	})

	t.Run("received only", func(t *testing.T) {
		result, err := s.GetStats(context.Background(), provider(), StatsOptions{WindowDays: 30, TypeFilter: FilterReceived})
		require.NoError(t, err)

		assert.Zero(t, result.Sent)
		assert.Equal(t, result.Received, result.Total)
		for _, bucket := range result.DailyBreakdown {
			assert.Zero(t, bucket.SentCount)
		}
	})
}

func TestGetStatsRateLimitedRetriesOnce(t *testing.T) {
	s := newTestStatsService(nil)

	var mu sync.Mutex
	failed := map[string]bool{}
	p := &fakeProvider{}
	p.listMessages = func(q string, _ int64) ([]*gmail.Message, error) {
		mu.Lock()
		defer mu.Unlock()
		if !failed[q] {
			failed[q] = true
			return nil, &googleapi.Error{Code: 429, Message: "Too many requests"}
		}
		return msgs(2), nil
	}

	result, err := s.GetStats(context.Background(), p, StatsOptions{WindowDays: 7})
	require.NoError(t, err)
	assert.Equal(t, 2, result.Sent, "rate-limited call succeeds after one backoff")
	assert.Equal(t, 2, result.Received)
}

func TestGetEmailStatsDelegates(t *testing.T) {
	s := newTestStatsService(nil)
	p := &fakeProvider{
		listMessages: func(q string, _ int64) ([]*gmail.Message, error) {
			return msgs(1), nil
		},
	}

	result, err := s.GetEmailStats(context.Background(), p, 7)
	require.NoError(t, err)
	assert.Equal(t, "7d", result.PeriodLabel)
}

func testThread(id string, n int) *gmail.Thread {
	return &gmail.Thread{
		Id: id,
		Messages: func() []*gmail.Message {
			out := make([]*gmail.Message, n)
			for i := range out {
				out[i] = &gmail.Message{Id: fmt.Sprintf("%s-m%d", id, i)}
			}
			out[0].Snippet = "snippet for " + id
			out[0].Payload = &gmail.MessagePart{
				Headers: []*gmail.MessagePartHeader{
					{Name: "Subject", Value: "Question about " + id},
					{Name: "From", Value: "Student <student@school.org>"},
					{Name: "To", Value: "teacher@example.com"},
					{Name: "Date", Value: "Fri, 15 Mar 2024 10:00:00 +0000"},
				},
			}
			return out
		}(),
	}
}

func TestRecentThreadsScenarioD(t *testing.T) {
	s := newTestStatsService([]string{"@school.org"})

	all := []*gmail.Thread{
		{Id: "t-1"}, {Id: "t-2"}, {Id: "t-3"}, {Id: "t-4"},
		{Id: "t-5"}, {Id: "t-6"}, {Id: "t-7"}, {Id: "t-8"},
	}
	p := &fakeProvider{
		listThreads: func(q string, maxResults int64) ([]*gmail.Thread, error) {
			assert.Contains(t, q, "from:@school.org")
			if int64(len(all)) > maxResults {
				return all[:maxResults], nil
			}
			return all, nil
		},
		getThread: func(id string) (*gmail.Thread, error) {
			if id == "t-3" {
				return nil, errors.New("metadata fetch failed")
			}
			return testThread(id, 2), nil
		},
	}

	threads, err := s.RecentThreads(context.Background(), p, ThreadOptions{MaxResults: 5})
	require.NoError(t, err)

	// failed thread is dropped, not zero-filled; provider order kept
	require.Len(t, threads, 4)
	ids := make([]string, len(threads))
	for i, th := range threads {
		ids[i] = th.ID
	}
	assert.Equal(t, []string{"t-1", "t-2", "t-4", "t-5"}, ids)

	first := threads[0]
	assert.Equal(t, "Question about t-1", first.Subject)
	assert.Equal(t, "student@school.org", first.From.Email)
	assert.Equal(t, "Student", first.From.Name)
	assert.Equal(t, 2, first.MessageCount)
	assert.Equal(t, "snippet for t-1", first.Snippet)
}

func TestRecentThreadsListFailurePropagates(t *testing.T) {
	s := newTestStatsService(nil)
	p := &fakeProvider{
		listThreads: func(string, int64) ([]*gmail.Thread, error) {
			return nil, &googleapi.Error{Code: 401, Message: "Invalid Credentials"}
		},
	}

	_, err := s.RecentThreads(context.Background(), p, ThreadOptions{})
	assert.ErrorIs(t, err, ErrAuthenticationExpired)
}

func TestRecentThreadsEmpty(t *testing.T) {
	s := newTestStatsService(nil)
	p := &fakeProvider{
		listThreads: func(string, int64) ([]*gmail.Thread, error) { return nil, nil },
	}

	threads, err := s.RecentThreads(context.Background(), p, ThreadOptions{})
	require.NoError(t, err)
	assert.Empty(t, threads)
}
