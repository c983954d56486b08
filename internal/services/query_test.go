package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompose(t *testing.T) {
	window := TimeWindow{
		Start: time.Unix(1700000000, 0),
		End:   time.Unix(1700100000, 0),
	}

	cases := []struct {
		name     string
		dir      Direction
		domains  []string
		keywords []string
		expected string
	}{
		{
			name:     "domains and keywords, sent",
			dir:      DirectionSent,
			domains:  []string{"@school.org"},
			keywords: []string{"exam"},
			expected: `after:1700000000 before:1700100000 (from:@school.org OR to:@school.org OR ("exam")) in:sent`,
		},
		{
			name:     "received is negated sent",
			dir:      DirectionReceived,
			keywords: []string{"exam"},
			expected: `after:1700000000 before:1700100000 ("exam") -in:sent`,
		},
		{
			name:     "either omits the direction clause",
			dir:      DirectionEither,
			keywords: []string{"exam", "grade"},
			expected: `after:1700000000 before:1700100000 ("exam" OR "grade")`,
		},
		{
			name:     "multiple domains OR-joined on both sides",
			dir:      DirectionSent,
			domains:  []string{"@a.edu", "@b.edu"},
			keywords: []string{"exam"},
			expected: `after:1700000000 before:1700100000 (from:@a.edu OR to:@a.edu OR from:@b.edu OR to:@b.edu OR ("exam")) in:sent`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, Compose(window, tc.dir, tc.domains, tc.keywords))
		})
	}
}

func TestComposeDefaultKeywords(t *testing.T) {
	window := TimeWindow{Start: time.Unix(0, 0), End: time.Unix(100, 0)}

	got := Compose(window, DirectionEither, nil, nil)
	for _, kw := range DefaultKeywords {
		assert.Contains(t, got, fmt.Sprintf("%q", kw))
	}
}

func TestComposeDeterministic(t *testing.T) {
	window := TimeWindow{Start: time.Unix(1700000000, 0), End: time.Unix(1700100000, 0)}
	domains := []string{"@school.org"}
	keywords := []string{"exam", "grade"}

	first := Compose(window, DirectionSent, domains, keywords)
	second := Compose(window, DirectionSent, domains, keywords)
	assert.Equal(t, first, second)
}

func TestTimeWindowPrior(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	current := LastDays(now, 30)
	prior := current.Prior()

	require.Equal(t, current.Start, prior.End, "prior window must end where current starts")
	assert.Equal(t, current.End.Sub(current.Start), prior.End.Sub(prior.Start), "windows must be equal length")
	assert.True(t, prior.Start.Before(prior.End))
}

func TestDay(t *testing.T) {
	at := time.Date(2024, 3, 15, 17, 42, 3, 0, time.UTC)
	day := Day(at)

	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), day.Start)
	assert.Equal(t, 24*time.Hour, day.End.Sub(day.Start))
}
