package etl

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/BartekS5/gaexport/internal/config"
	"github.com/BartekS5/gaexport/pkg/logger"
	"github.com/BartekS5/gaexport/pkg/models"
)

// MongoSink mirrors the run's rows into a MongoDB collection.
type MongoSink struct {
	Client     *mongo.Client
	Database   string
	Collection string
}

func NewMongoSink(client *mongo.Client, cfg config.MongoMirror) *MongoSink {
	return &MongoSink{Client: client, Database: cfg.Database, Collection: cfg.Collection}
}

func (m *MongoSink) Name() string  { return "mongodb" }
func (m *MongoSink) Table() string { return m.Collection }

func (m *MongoSink) TableNames(ctx context.Context) ([]string, error) {
	names, err := m.Client.Database(m.Database).ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("list collections in %s: %w", m.Database, err)
	}
	return names, nil
}

// CreateTable creates the collection with a validator that mirrors the
// warehouse schema: all four fields required.
func (m *MongoSink) CreateTable(ctx context.Context) error {
	opts := options.CreateCollection().SetValidator(bson.M{"$jsonSchema": outputJSONSchema()})
	if err := m.Client.Database(m.Database).CreateCollection(ctx, m.Collection, opts); err != nil {
		return fmt.Errorf("create collection %s.%s: %w", m.Database, m.Collection, err)
	}
	return nil
}

func (m *MongoSink) Load(ctx context.Context, batch Batch) error {
	docs := make([]interface{}, 0, len(batch.Rows))
	for _, r := range batch.Rows {
		docs = append(docs, bson.D{
			{Key: models.ColumnTID, Value: r.TID},
			{Key: models.ColumnClientID, Value: r.ClientID},
			{Key: models.ColumnApplicationID, Value: r.ApplicationID},
			{Key: models.ColumnCreatedAt, Value: r.CreatedAt.UTC()},
		})
	}

	res, err := m.Client.Database(m.Database).Collection(m.Collection).InsertMany(ctx, docs)
	if err != nil {
		return fmt.Errorf("insert into %s.%s: %w", m.Database, m.Collection, err)
	}
	logger.Infof("Mongo InsertMany: %d documents into %s.%s", len(res.InsertedIDs), m.Database, m.Collection)
	return nil
}

func outputJSONSchema() bson.M {
	required := make(bson.A, 0, len(models.OutputColumns))
	for _, c := range models.OutputColumns {
		required = append(required, c)
	}
	return bson.M{
		"bsonType": "object",
		"required": required,
		"properties": bson.M{
			models.ColumnTID:           bson.M{"bsonType": "string"},
			models.ColumnClientID:      bson.M{"bsonType": "string"},
			models.ColumnApplicationID: bson.M{"bsonType": "string"},
			models.ColumnCreatedAt:     bson.M{"bsonType": "date"},
		},
	}
}
