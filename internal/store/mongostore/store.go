package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/druedada/projecte-final/internal/model"
)

const collectionName = "tasks"

// taskDoc is the stored document shape.
type taskDoc struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Status      string             `bson:"status"`
	Priority    string             `bson:"priority"`
	DueDate     *time.Time         `bson:"dueDate"`
	CreatedAt   time.Time          `bson:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt"`
}

type TaskStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// Connect creates a client for uri. The database name comes from the
// URI path (mongodb://host/taskmanager) unless database is set.
func Connect(ctx context.Context, uri, database string) (*TaskStore, error) {
	opts := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if database == "" {
		database = databaseFromURI(uri)
	}
	return New(client, client.Database(database)), nil
}

func New(client *mongo.Client, db *mongo.Database) *TaskStore {
	return &TaskStore{client: client, coll: db.Collection(collectionName)}
}

// Migrate creates the createdAt index used by List.
func (s *TaskStore) Migrate(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "createdAt", Value: -1}},
	})
	return err
}

func (s *TaskStore) PingContext(ctx context.Context) error {
	return s.client.Ping(ctx, nil)
}

func (s *TaskStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.client.Disconnect(ctx)
}

func (s *TaskStore) Create(ctx context.Context, t model.Task) (model.Task, error) {
	doc := toDoc(t)
	doc.ID = primitive.NewObjectID()
	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return model.Task{}, err
	}
	return fromDoc(doc), nil
}

func (s *TaskStore) List(ctx context.Context) ([]model.Task, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cur, err := s.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []model.Task{}
	for cur.Next(ctx) {
		var doc taskDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		out = append(out, fromDoc(doc))
	}
	return out, cur.Err()
}

func (s *TaskStore) Get(ctx context.Context, id string) (model.Task, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return model.Task{}, model.ErrNotFound
	}

	var doc taskDoc
	err = s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return model.Task{}, model.ErrNotFound
		}
		return model.Task{}, err
	}
	return fromDoc(doc), nil
}

func (s *TaskStore) Update(ctx context.Context, t model.Task) (model.Task, error) {
	oid, err := primitive.ObjectIDFromHex(t.ID)
	if err != nil {
		return model.Task{}, model.ErrNotFound
	}

	set := bson.D{
		{Key: "title", Value: t.Title},
		{Key: "description", Value: t.Description},
		{Key: "status", Value: string(t.Status)},
		{Key: "priority", Value: string(t.Priority)},
		{Key: "dueDate", Value: t.DueDate},
		{Key: "updatedAt", Value: t.UpdatedAt.UTC()},
	}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc taskDoc
	err = s.coll.FindOneAndUpdate(ctx, bson.D{{Key: "_id", Value: oid}}, bson.D{{Key: "$set", Value: set}}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return model.Task{}, model.ErrNotFound
		}
		return model.Task{}, err
	}
	return fromDoc(doc), nil
}

func (s *TaskStore) Delete(ctx context.Context, id string) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return model.ErrNotFound
	}

	res, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return model.ErrNotFound
	}
	return nil
}

// toDoc truncates times to milliseconds, the BSON datetime resolution, so
// the value Create returns matches what a later Get reads back.
func toDoc(t model.Task) taskDoc {
	doc := taskDoc{
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		CreatedAt:   t.CreatedAt.UTC().Truncate(time.Millisecond),
		UpdatedAt:   t.UpdatedAt.UTC().Truncate(time.Millisecond),
	}
	if t.DueDate != nil {
		due := t.DueDate.UTC().Truncate(time.Millisecond)
		doc.DueDate = &due
	}
	return doc
}

func fromDoc(doc taskDoc) model.Task {
	t := model.Task{
		ID:          doc.ID.Hex(),
		Title:       doc.Title,
		Description: doc.Description,
		Status:      model.Status(doc.Status),
		Priority:    model.Priority(doc.Priority),
		CreatedAt:   doc.CreatedAt.UTC(),
		UpdatedAt:   doc.UpdatedAt.UTC(),
	}
	if doc.DueDate != nil {
		due := doc.DueDate.UTC()
		t.DueDate = &due
	}
	// documents written by older versions carry no priority
	if t.Priority == "" {
		t.Priority = model.PriorityMedium
	}
	return t
}
