package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harentsoaR/dentaflow-api/internal/models"
)

const (
	usersCollection        = "users"
	appointmentsCollection = "appointments"
	ratingsCollection      = "ratings"
	countersCollection     = "counters"

	// Attempts before giving up on a record that keeps changing under UpdateByID.
	maxReplaceAttempts = 3
)

var errConcurrentUpdate = errors.New("appointment changed concurrently")

// NewMongo returns a directory backed by db. Ids stay integers, drawn from a
// counters collection, so clients see the same shapes as with the memory store.
func NewMongo(ctx context.Context, db *mongo.Database) (*Directory, error) {
	users := db.Collection(usersCollection)
	_, err := users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("create email index: %w", err)
	}

	seq := &mongoSequence{counters: db.Collection(countersCollection)}
	return &Directory{
		Users:        &MongoUsers{coll: users, seq: seq},
		Appointments: &MongoAppointments{coll: db.Collection(appointmentsCollection), seq: seq},
		Ratings:      &MongoRatings{coll: db.Collection(ratingsCollection), seq: seq},
	}, nil
}

type mongoSequence struct {
	counters *mongo.Collection
}

func (s *mongoSequence) next(ctx context.Context, name string) (int64, error) {
	var doc struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := s.counters.FindOneAndUpdate(ctx, bson.M{"_id": name}, bson.M{"$inc": bson.M{"seq": 1}}, opts).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("next %s id: %w", name, err)
	}
	return doc.Seq, nil
}

var insertionOrder = options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})

type MongoUsers struct {
	coll *mongo.Collection
	seq  *mongoSequence
}

func (m *MongoUsers) List(ctx context.Context, filter UserFilter) ([]models.User, error) {
	q := bson.M{}
	if filter.Email != "" {
		q["email"] = filter.Email
	}
	if filter.Role != "" {
		q["role"] = filter.Role
	}
	cursor, err := m.coll.Find(ctx, q, insertionOrder)
	if err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	defer cursor.Close(ctx)

	users := make([]models.User, 0)
	if err := cursor.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

func (m *MongoUsers) Insert(ctx context.Context, u *models.User) error {
	id, err := m.seq.next(ctx, usersCollection)
	if err != nil {
		return err
	}
	u.ID = id
	if _, err := m.coll.InsertOne(ctx, u); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

type MongoAppointments struct {
	coll *mongo.Collection
	seq  *mongoSequence
}

func (m *MongoAppointments) List(ctx context.Context, filter AppointmentFilter) ([]models.Appointment, error) {
	q := bson.M{}
	if filter.PatientID != nil {
		q["patientId"] = *filter.PatientID
	}
	cursor, err := m.coll.Find(ctx, q, insertionOrder)
	if err != nil {
		return nil, fmt.Errorf("find appointments: %w", err)
	}
	defer cursor.Close(ctx)

	appointments := make([]models.Appointment, 0)
	if err := cursor.All(ctx, &appointments); err != nil {
		return nil, fmt.Errorf("decode appointments: %w", err)
	}
	return appointments, nil
}

func (m *MongoAppointments) Insert(ctx context.Context, a *models.Appointment) error {
	id, err := m.seq.next(ctx, appointmentsCollection)
	if err != nil {
		return err
	}
	a.ID = id
	if _, err := m.coll.InsertOne(ctx, a); err != nil {
		return fmt.Errorf("insert appointment: %w", err)
	}
	return nil
}

// UpdateByID replaces the record only if it still holds the values mutate saw,
// retrying a few times when another writer got there first.
func (m *MongoAppointments) UpdateByID(ctx context.Context, id int64, mutate func(*models.Appointment) error) (models.Appointment, error) {
	for attempt := 0; attempt < maxReplaceAttempts; attempt++ {
		var current models.Appointment
		err := m.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&current)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Appointment{}, ErrNotFound
		}
		if err != nil {
			return models.Appointment{}, fmt.Errorf("find appointment %d: %w", id, err)
		}

		updated := current
		if err := mutate(&updated); err != nil {
			return current, err
		}
		updated.ID = id

		guard := bson.M{"_id": id, "status": current.Status, "date": current.Date, "time": current.Time}
		res, err := m.coll.ReplaceOne(ctx, guard, updated)
		if err != nil {
			return models.Appointment{}, fmt.Errorf("replace appointment %d: %w", id, err)
		}
		if res.MatchedCount == 1 {
			return updated, nil
		}
	}
	return models.Appointment{}, fmt.Errorf("update appointment %d: %w", id, errConcurrentUpdate)
}

type MongoRatings struct {
	coll *mongo.Collection
	seq  *mongoSequence
}

func (m *MongoRatings) List(ctx context.Context) ([]models.Rating, error) {
	cursor, err := m.coll.Find(ctx, bson.M{}, insertionOrder)
	if err != nil {
		return nil, fmt.Errorf("find ratings: %w", err)
	}
	defer cursor.Close(ctx)

	ratings := make([]models.Rating, 0)
	if err := cursor.All(ctx, &ratings); err != nil {
		return nil, fmt.Errorf("decode ratings: %w", err)
	}
	return ratings, nil
}

func (m *MongoRatings) Insert(ctx context.Context, r *models.Rating) error {
	id, err := m.seq.next(ctx, ratingsCollection)
	if err != nil {
		return err
	}
	r.ID = id
	if _, err := m.coll.InsertOne(ctx, r); err != nil {
		return fmt.Errorf("insert rating: %w", err)
	}
	return nil
}
