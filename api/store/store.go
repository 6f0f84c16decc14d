/* store.go
 * Contains the MongoDB settings backend. Each profile is one document in the settings collection, holding the values
 * that differ from the schema defaults
 */

package store

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoStore struct {
	Client     *mongo.Client
	Database   *mongo.Database
	Collection *mongo.Collection
	Profile    string
}

// settingsDocument is the stored shape of a profile
type settingsDocument struct {
	Profile string         `bson:"_id"`
	Values  map[string]any `bson:"values"`
}

// Function for initialising MongoStore. Connects to the database and selects the settings collection
// Preconditions: Receives the mongo connection string, the database name and the profile name
// Postconditions: Returns a connected store, or an error if the connection cannot be established
func NewMongoStore(ctx context.Context, mongoURI string, dbName string, profile string) (*MongoStore, error) {
	if dbName == "" || profile == "" {
		return nil, fmt.Errorf("dbName and profile cannot be empty")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(mongoURI))
	if err != nil {
		return nil, fmt.Errorf("error connecting to mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("error pinging mongo: %w", err)
	}
	db := client.Database(dbName)
	return &MongoStore{
		Client:     client,
		Database:   db,
		Collection: db.Collection("settings"),
		Profile:    profile,
	}, nil
}

// Close disconnects the client
func (s *MongoStore) Close(ctx context.Context) error {
	return s.Client.Disconnect(ctx)
}

// value returns the stored value of key, or the schema default when the profile or the key is absent
func (s *MongoStore) value(ctx context.Context, key string, kind Kind) (any, error) {
	entry, err := lookup(key, kind)
	if err != nil {
		return nil, err
	}

	var doc settingsDocument
	err = s.Collection.FindOne(ctx, bson.M{"_id": s.Profile}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return entry.Default, nil
	}
	if err != nil {
		return nil, fmt.Errorf("error reading setting %s: %w", key, err)
	}
	v, ok := doc.Values[key]
	if !ok || v == nil {
		return entry.Default, nil
	}
	return v, nil
}

func (s *MongoStore) GetBoolean(ctx context.Context, key string) (bool, error) {
	v, err := s.value(ctx, key, KindBool)
	if err != nil {
		return false, err
	}
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("%w: stored %s is %T", ErrWrongType, key, v)
	}
	return b, nil
}

func (s *MongoStore) GetInt(ctx context.Context, key string) (int, error) {
	v, err := s.value(ctx, key, KindInt)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case int:
		return n, nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case float64:
		return int(n), nil
	}
	return 0, fmt.Errorf("%w: stored %s is %T", ErrWrongType, key, v)
}

func (s *MongoStore) GetStrv(ctx context.Context, key string) ([]string, error) {
	v, err := s.value(ctx, key, KindStrv)
	if err != nil {
		return nil, err
	}
	switch list := v.(type) {
	case []string:
		return append([]string{}, list...), nil
	case bson.A:
		return stringsFromArray(key, list)
	case []any:
		return stringsFromArray(key, list)
	}
	return nil, fmt.Errorf("%w: stored %s is %T", ErrWrongType, key, v)
}

func stringsFromArray(key string, list []any) ([]string, error) {
	out := make([]string, 0, len(list))
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("%w: stored %s contains %T", ErrWrongType, key, item)
		}
		out = append(out, s)
	}
	return out, nil
}

func (s *MongoStore) SetBoolean(ctx context.Context, key string, value bool) error {
	return s.set(ctx, key, KindBool, value)
}

func (s *MongoStore) SetInt(ctx context.Context, key string, value int) error {
	return s.set(ctx, key, KindInt, value)
}

func (s *MongoStore) SetStrv(ctx context.Context, key string, value []string) error {
	if value == nil {
		value = []string{}
	}
	return s.set(ctx, key, KindStrv, value)
}

func (s *MongoStore) set(ctx context.Context, key string, kind Kind, value any) error {
	if _, err := lookup(key, kind); err != nil {
		return err
	}
	filter := bson.M{"_id": s.Profile}
	update := bson.M{"$set": bson.M{"values." + key: value}}
	_, err := s.Collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("error writing setting %s: %w", key, err)
	}
	return nil
}
