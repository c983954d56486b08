package services

import (
	"context"
	"strings"

	"studentdash-be/internal/utils"

	"google.golang.org/api/gmail/v1"
)

// IsStudentRelated reports whether a message belongs on the dashboard:
// either an allowlisted domain appears in From/To, or a keyword appears
// in From/To/Subject. Matching is case- and accent-insensitive
// substring matching; header names are matched case-insensitively.
func IsStudentRelated(headers map[string]string, domains, keywords []string) bool {
	var from, to, subject string
	for name, value := range headers {
		switch utils.NormalizeForMatch(name) {
		case "from":
			from = utils.NormalizeForMatch(value)
		case "to":
			to = utils.NormalizeForMatch(value)
		case "subject":
			subject = utils.NormalizeForMatch(value)
		}
	}

	for _, d := range domains {
		d = utils.NormalizeForMatch(d)
		if d == "" {
			continue
		}
		if strings.Contains(from, d) || strings.Contains(to, d) {
			return true
		}
	}

	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}
	for _, kw := range keywords {
		kw = utils.NormalizeForMatch(kw)
		if kw == "" {
			continue
		}
		if strings.Contains(from, kw) || strings.Contains(to, kw) || strings.Contains(subject, kw) {
			return true
		}
	}
	return false
}

// metadataFetcher is the slice of MailProvider the classifier needs
// when it only has a message id.
type metadataFetcher interface {
	GetMessageMetadata(ctx context.Context, id string) (*gmail.Message, error)
}

// ClassifyMessage fetches per-message metadata and classifies it.
// FailClosed policy: a message whose headers cannot be retrieved is
// treated as not student-related so one bad message cannot abort a
// batch.
func ClassifyMessage(ctx context.Context, f metadataFetcher, id string, domains, keywords []string) bool {
	msg, err := f.GetMessageMetadata(ctx, id)
	if err != nil {
		return false
	}
	return IsStudentRelated(headerMap(msg), domains, keywords)
}

func headerMap(msg *gmail.Message) map[string]string {
	headers := map[string]string{}
	if msg == nil || msg.Payload == nil {
		return headers
	}
	for _, h := range msg.Payload.Headers {
		headers[h.Name] = h.Value
	}
	return headers
}
