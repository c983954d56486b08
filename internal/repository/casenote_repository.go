package repository

import (
	"context"
	"time"

	"studentdash-be/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MaxCaseNotes bounds the store: the most recent 1000 notes are kept
// and the oldest are evicted first.
const MaxCaseNotes = 1000

// CaseNoteStore is the injected storage surface for case notes.
type CaseNoteStore interface {
	Append(ctx context.Context, note *models.CaseNote) error
	List(ctx context.Context, studentEmail string) ([]models.CaseNote, error)
	DeleteByID(ctx context.Context, id string) error
}

// CaseNoteRepository is the MongoDB-backed store.
type CaseNoteRepository struct {
	collection *mongo.Collection
}

func NewCaseNoteRepository(db *mongo.Database) *CaseNoteRepository {
	return &CaseNoteRepository{
		collection: db.Collection("casenotes"),
	}
}

func (r *CaseNoteRepository) Append(ctx context.Context, note *models.CaseNote) error {
	if note.ID == "" {
		note.ID = primitive.NewObjectID().Hex()
	}
	note.CreatedAt = time.Now()

	if _, err := r.collection.InsertOne(ctx, note); err != nil {
		return err
	}
	return r.evictOldest(ctx)
}

// evictOldest deletes everything beyond the newest MaxCaseNotes entries.
func (r *CaseNoteRepository) evictOldest(ctx context.Context) error {
	opts := options.Find().
		SetSort(bson.M{"createdAt": -1}).
		SetSkip(MaxCaseNotes).
		SetProjection(bson.M{"_id": 1})

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return err
	}
	defer cursor.Close(ctx)

	var stale []bson.M
	if err = cursor.All(ctx, &stale); err != nil {
		return err
	}
	if len(stale) == 0 {
		return nil
	}

	ids := make([]interface{}, len(stale))
	for i, doc := range stale {
		ids[i] = doc["_id"]
	}
	_, err = r.collection.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	return err
}

func (r *CaseNoteRepository) List(ctx context.Context, studentEmail string) ([]models.CaseNote, error) {
	filter := bson.M{}
	if studentEmail != "" {
		filter["studentEmail"] = studentEmail
	}

	opts := options.Find().SetSort(bson.M{"createdAt": -1})
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var notes []models.CaseNote
	if err = cursor.All(ctx, &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

func (r *CaseNoteRepository) DeleteByID(ctx context.Context, id string) error {
	res, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

var _ CaseNoteStore = (*CaseNoteRepository)(nil)
