package storage

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// kvDocument is one key in the collection; the key doubles as _id.
type kvDocument struct {
	Key   string `bson:"_id"`
	Value string `bson:"value"`
}

// MongoBackend stores each key as a document in a single collection.
// Standalone servers have no multi-document transactions, so Replace is a
// delete followed by a bulk insert.
type MongoBackend struct {
	collection *mongo.Collection
}

// NewMongoBackend uses the named collection of db ("kv_store" when empty).
func NewMongoBackend(db *mongo.Database, collection string) *MongoBackend {
	if collection == "" {
		collection = "kv_store"
	}
	return &MongoBackend{collection: db.Collection(collection)}
}

func (m *MongoBackend) Get(ctx context.Context, key string) (string, bool, error) {
	var doc kvDocument
	err := m.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return doc.Value, true, nil
}

func (m *MongoBackend) Set(ctx context.Context, key, value string) error {
	_, err := m.collection.ReplaceOne(ctx,
		bson.M{"_id": key},
		kvDocument{Key: key, Value: value},
		options.Replace().SetUpsert(true))
	return err
}

func (m *MongoBackend) Keys(ctx context.Context) ([]string, error) {
	opts := options.Find().
		SetProjection(bson.M{"_id": 1}).
		SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := m.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	var keys []string
	for cursor.Next(ctx) {
		var doc kvDocument
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		keys = append(keys, doc.Key)
	}
	return keys, cursor.Err()
}

func (m *MongoBackend) Clear(ctx context.Context) error {
	_, err := m.collection.DeleteMany(ctx, bson.M{})
	return err
}

func (m *MongoBackend) Replace(ctx context.Context, entries map[string]string) error {
	if err := m.Clear(ctx); err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	docs := make([]interface{}, 0, len(entries))
	for k, v := range entries {
		docs = append(docs, kvDocument{Key: k, Value: v})
	}
	_, err := m.collection.InsertMany(ctx, docs)
	return err
}
