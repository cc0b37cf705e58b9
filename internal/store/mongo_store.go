package store

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// MongoStore maps every logical collection onto a mongo collection keyed by _id.
// Timestamps come back as primitive.DateTime and are left for callers to decode.
type MongoStore struct {
	db *mongo.Database
}

// NewMongoStore wraps a mongo database handle.
func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

func (s *MongoStore) Query(ctx context.Context, collection string, filters ...Filter) ([]Document, error) {
	filter := bson.D{}
	for _, f := range filters {
		filter = append(filter, bson.E{Key: f.Field, Value: scalar(f.Value)})
	}

	cursor, err := s.db.Collection(collection).Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	documents := make([]Document, 0)
	for cursor.Next(ctx) {
		var raw bson.M
		if err := cursor.Decode(&raw); err != nil {
			return nil, err
		}
		documents = append(documents, fromBSON(raw))
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return documents, nil
}

func (s *MongoStore) Get(ctx context.Context, collection, id string) (Document, error) {
	var raw bson.M
	err := s.db.Collection(collection).FindOne(ctx, bson.M{"_id": id}).Decode(&raw)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Document{}, ErrNotFound
		}
		return Document{}, err
	}

	return fromBSON(raw), nil
}

func (s *MongoStore) Set(ctx context.Context, collection, id string, data map[string]any) error {
	replacement := bson.M{}
	for key, value := range data {
		if key == "_id" {
			continue
		}
		replacement[key] = value
	}

	_, err := s.db.Collection(collection).ReplaceOne(ctx, bson.M{"_id": id}, replacement, options.Replace().SetUpsert(true))
	return err
}

func (s *MongoStore) Update(ctx context.Context, collection, id string, fields map[string]any) error {
	result, err := s.db.Collection(collection).UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M(fields)})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, collection, id string) error {
	_, err := s.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// Ping checks that the primary is reachable.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, readpref.Primary())
}

func fromBSON(raw bson.M) Document {
	id, _ := raw["_id"].(string)
	delete(raw, "_id")
	return Document{ID: id, Data: plainMap(raw)}
}

func plainMap(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for key, value := range in {
		out[key] = plainValue(value)
	}
	return out
}

func plainValue(value any) any {
	switch v := value.(type) {
	case primitive.M:
		return plainMap(v)
	case map[string]any:
		return plainMap(v)
	case primitive.D:
		return plainMap(v.Map())
	case primitive.A:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = plainValue(item)
		}
		return out
	default:
		return v
	}
}
