package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/matzehuels/gridlay/pkg/document"
	errs "github.com/matzehuels/gridlay/pkg/errors"
)

// Defaults for MongoConfig.
const (
	DefaultDatabase   = "gridlay"
	DefaultCollection = "documents"
)

// MongoConfig selects a MongoDB collection.
type MongoConfig struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// MongoStore keeps one BSON record per document, keyed by name.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to MongoDB and pings the primary.
func NewMongoStore(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	if cfg.Database == "" {
		cfg.Database = DefaultDatabase
	}
	if cfg.Collection == "" {
		cfg.Collection = DefaultCollection
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(cfg.Database).Collection(cfg.Collection),
	}, nil
}

// Put upserts the record. The id and creation time are set only on insert.
func (s *MongoStore) Put(ctx context.Context, name string, doc *document.Document) (Record, error) {
	if err := checkPut(name, doc); err != nil {
		return Record{}, err
	}

	// BSON dates have millisecond precision.
	now := time.Now().UTC().Truncate(time.Millisecond)
	filter := bson.D{{Key: "_id", Value: name}}
	update := bson.D{
		{Key: "$set", Value: bson.D{
			{Key: "document", Value: doc},
			{Key: "updated_at", Value: now},
		}},
		{Key: "$setOnInsert", Value: bson.D{
			{Key: "id", Value: uuid.NewString()},
			{Key: "created_at", Value: now},
		}},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var rec Record
	if err := s.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&rec); err != nil {
		return Record{}, errs.Wrap(errs.ErrCodeInternal, err, "store document %q", name)
	}
	return rec, nil
}

func (s *MongoStore) Get(ctx context.Context, name string) (Record, error) {
	if err := errs.ValidateDocumentName(name); err != nil {
		return Record{}, err
	}
	var rec Record
	err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: name}}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return Record{}, notFound(name)
	}
	if err != nil {
		return Record{}, errs.Wrap(errs.ErrCodeInternal, err, "load document %q", name)
	}
	return rec, nil
}

func (s *MongoStore) List(ctx context.Context) ([]Record, error) {
	cur, err := s.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "list documents")
	}
	recs := []Record{}
	if err := cur.All(ctx, &recs); err != nil {
		return nil, errs.Wrap(errs.ErrCodeInternal, err, "list documents")
	}
	return recs, nil
}

func (s *MongoStore) Delete(ctx context.Context, name string) error {
	if err := errs.ValidateDocumentName(name); err != nil {
		return err
	}
	res, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: name}})
	if err != nil {
		return errs.Wrap(errs.ErrCodeInternal, err, "delete document %q", name)
	}
	if res.DeletedCount == 0 {
		return notFound(name)
	}
	return nil
}

func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

var _ Store = (*MongoStore)(nil)
