// ============================================================================
// backend/internal/store/mongo_store.go
// MongoDB-backed student record store
// ============================================================================

package store

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"marklist/backend/internal/shared"
)

// StudentsCollection matches the collection Mongoose creates for a
// "Student" model, so existing data is read as-is.
const StudentsCollection = "students"

// MongoStore keeps one flat document per student: identity fields, one
// numeric field per subject, and createdAt/updatedAt timestamps.
type MongoStore struct {
	studentsCol *mongo.Collection
	subjects    []string
	now         func() time.Time
}

// NewMongoStore creates a new MongoStore over db
func NewMongoStore(db *mongo.Database, subjects []string) *MongoStore {
	return newMongoStore(db.Collection(StudentsCollection), subjects)
}

func newMongoStore(col *mongo.Collection, subjects []string) *MongoStore {
	return &MongoStore{
		studentsCol: col,
		subjects:    subjects,
		now:         time.Now,
	}
}

// EnsureIndexes creates the unique register number index.
// It is idempotent and safe to call on every startup.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	index := mongo.IndexModel{
		Keys:    bson.D{{Key: shared.FieldRegisterNumber, Value: 1}},
		Options: options.Index().SetUnique(true).SetName("registerNumber_1"),
	}

	if _, err := s.studentsCol.Indexes().CreateOne(ctx, index); err != nil {
		return &shared.StoreError{Op: "create index", Err: err}
	}
	return nil
}

// List returns every student in natural (unsorted) order
func (s *MongoStore) List(ctx context.Context) ([]shared.Student, error) {
	cursor, err := s.studentsCol.Find(ctx, bson.M{})
	if err != nil {
		return nil, &shared.StoreError{Op: "list", Err: err}
	}
	defer cursor.Close(ctx)

	students := []shared.Student{}
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			log.Printf("WARN: Skipping undecodable student document: %v", err)
			continue
		}

		st, err := s.documentToStudent(doc)
		if err != nil {
			log.Printf("WARN: Skipping student document %v: %v", doc["_id"], err)
			continue
		}
		students = append(students, st)
	}

	if err := cursor.Err(); err != nil {
		return nil, &shared.StoreError{Op: "list", Err: err}
	}

	return students, nil
}

// Insert stores a new student. The unique index turns a register number
// clash into shared.ErrDuplicateKey.
func (s *MongoStore) Insert(ctx context.Context, st shared.Student) (shared.Student, error) {
	now := s.now().UTC().Truncate(time.Millisecond)
	st.CreatedAt = now
	st.UpdatedAt = now

	oid := primitive.NewObjectID()
	doc := bson.D{
		{Key: "_id", Value: oid},
		{Key: shared.FieldStudentName, Value: st.StudentName},
		{Key: shared.FieldRegisterNumber, Value: st.RegisterNumber},
	}
	for _, subject := range s.subjects {
		doc = append(doc, bson.E{Key: subject, Value: int32(st.Marks[subject])})
	}
	doc = append(doc,
		bson.E{Key: "createdAt", Value: primitive.NewDateTimeFromTime(now)},
		bson.E{Key: "updatedAt", Value: primitive.NewDateTimeFromTime(now)},
	)

	if _, err := s.studentsCol.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return shared.Student{}, shared.ErrDuplicateKey
		}
		return shared.Student{}, &shared.StoreError{Op: "insert", Err: err}
	}

	st.ID = oid.Hex()
	return st, nil
}

// FindByID looks a student up by hex ObjectID. Malformed ids are reported
// as not found, like any other id that matches nothing.
func (s *MongoStore) FindByID(ctx context.Context, id string) (shared.Student, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return shared.Student{}, shared.ErrNotFound
	}

	var doc bson.M
	err = s.studentsCol.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return shared.Student{}, shared.ErrNotFound
		}
		return shared.Student{}, &shared.StoreError{Op: "find", Err: err}
	}

	st, err := s.documentToStudent(doc)
	if err != nil {
		return shared.Student{}, &shared.StoreError{Op: "decode", Err: err}
	}
	return st, nil
}

// Count returns the number of stored students
func (s *MongoStore) Count(ctx context.Context) (int64, error) {
	count, err := s.studentsCol.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, &shared.StoreError{Op: "count", Err: err}
	}
	return count, nil
}

// ============================================================================
// Helper Functions
// ============================================================================

func (s *MongoStore) documentToStudent(doc bson.M) (shared.Student, error) {
	st := shared.Student{Marks: make(map[string]int, len(s.subjects))}

	id, err := shared.GetObjectIDHex(doc["_id"])
	if err != nil {
		return st, fmt.Errorf("missing _id")
	}
	st.ID = id

	if st.StudentName, err = shared.GetString(doc[shared.FieldStudentName]); err != nil {
		return st, fmt.Errorf("missing %s", shared.FieldStudentName)
	}
	if st.RegisterNumber, err = shared.GetString(doc[shared.FieldRegisterNumber]); err != nil {
		return st, fmt.Errorf("missing %s", shared.FieldRegisterNumber)
	}

	for _, subject := range s.subjects {
		mark, err := shared.GetInt(doc[subject])
		if err != nil {
			return st, fmt.Errorf("subject %s: %w", subject, err)
		}
		st.Marks[subject] = mark
	}

	if createdAt, err := shared.GetTime(doc["createdAt"]); err == nil {
		st.CreatedAt = createdAt
	}
	if updatedAt, err := shared.GetTime(doc["updatedAt"]); err == nil {
		st.UpdatedAt = updatedAt
	}

	return st, nil
}
