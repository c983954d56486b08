package models

// DailyBucket - sent/received counts for one calendar day
type DailyBucket struct {
	Date          string `json:"date"` // YYYY-MM-DD format
	SentCount     int    `json:"sentCount"`
	ReceivedCount int    `json:"receivedCount"`
}

// StatsResult - communication statistics for the dashboard.
// Total always equals Sent + Received; DailyBreakdown always holds
// exactly 7 entries, oldest first, ending with today.
type StatsResult struct {
	Total          int           `json:"total"`
	Sent           int           `json:"sent"`
	Received       int           `json:"received"`
	TrendPercent   int           `json:"trendPercent"`
	DailyBreakdown []DailyBucket `json:"dailyBreakdown"`
	PeriodLabel    string        `json:"period"` // "7d", "30d", "90d"
}

// EmailAddress - parsed "Name <email>" pair
type EmailAddress struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ThreadSummary - one matching conversation thread, shaped for display.
// Built per request from provider thread metadata; never persisted.
type ThreadSummary struct {
	ID           string         `json:"id"`
	Subject      string         `json:"subject"`
	From         EmailAddress   `json:"from"`
	To           []EmailAddress `json:"to"`
	Date         string         `json:"date"`
	Snippet      string         `json:"snippet,omitempty"`
	MessageCount int            `json:"messageCount"`
}
