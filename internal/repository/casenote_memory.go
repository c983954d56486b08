package repository

import (
	"context"
	"sync"
	"time"

	"studentdash-be/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

var timeNow = time.Now

// MemoryCaseNoteStore keeps case notes in a bounded in-process buffer
// with the same eviction policy as the MongoDB store.
type MemoryCaseNoteStore struct {
	mu    sync.Mutex
	notes []models.CaseNote
	max   int
}

func NewMemoryCaseNoteStore() *MemoryCaseNoteStore {
	return &MemoryCaseNoteStore{max: MaxCaseNotes}
}

func (s *MemoryCaseNoteStore) Append(_ context.Context, note *models.CaseNote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if note.ID == "" {
		note.ID = primitive.NewObjectID().Hex()
	}
	if note.CreatedAt.IsZero() {
		note.CreatedAt = timeNow()
	}

	s.notes = append(s.notes, *note)
	// keep the most recent max entries, evicting from the front
	if len(s.notes) > s.max {
		s.notes = s.notes[len(s.notes)-s.max:]
	}
	return nil
}

func (s *MemoryCaseNoteStore) List(_ context.Context, studentEmail string) ([]models.CaseNote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.CaseNote, 0, len(s.notes))
	// newest first, matching the MongoDB store's sort
	for i := len(s.notes) - 1; i >= 0; i-- {
		if studentEmail == "" || s.notes[i].StudentEmail == studentEmail {
			out = append(out, s.notes[i])
		}
	}
	return out, nil
}

func (s *MemoryCaseNoteStore) DeleteByID(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.notes {
		if s.notes[i].ID == id {
			s.notes = append(s.notes[:i], s.notes[i+1:]...)
			return nil
		}
	}
	return mongo.ErrNoDocuments
}

var _ CaseNoteStore = (*MemoryCaseNoteStore)(nil)
