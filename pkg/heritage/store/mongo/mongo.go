// Package mongo implements the document store on MongoDB.
package mongo

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/tendant/heritage-content/pkg/heritage/store"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Store implements store.Store over a single MongoDB client. The driver
// pools connections internally, so one Store is shared by all requests.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
}

// Open connects to uri, verifies the connection and ensures the unique
// indexes described by specs. A failure here is returned as-is; there is
// no retry.
func Open(ctx context.Context, uri, database string, specs ...store.CollectionSpec) (*Store, error) {
	if uri == "" {
		return nil, errors.New("mongo connection string is required")
	}
	if database == "" {
		return nil, errors.New("mongo database name is required")
	}

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping mongo: %w", err)
	}

	s := &Store{client: client, db: client.Database(database)}
	if err := s.ensureIndexes(ctx, specs); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}
	return s, nil
}

func (s *Store) ensureIndexes(ctx context.Context, specs []store.CollectionSpec) error {
	for _, spec := range specs {
		if len(spec.Unique) == 0 {
			continue
		}
		models := make([]mongo.IndexModel, 0, len(spec.Unique))
		for _, field := range spec.Unique {
			models = append(models, mongo.IndexModel{
				Keys:    bson.D{{Key: field, Value: 1}},
				Options: options.Index().SetUnique(true).SetName(field + "_unique"),
			})
		}
		if _, err := s.db.Collection(spec.Name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", spec.Name, err)
		}
	}
	return nil
}

// Collection returns a handle for the named collection
func (s *Store) Collection(name string) store.Collection {
	return &Collection{coll: s.db.Collection(name)}
}

// Ping verifies the primary is reachable
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Collection implements store.Collection on a mongo collection
type Collection struct {
	coll *mongo.Collection
}

func (c *Collection) Name() string {
	return c.coll.Name()
}

func (c *Collection) Count(ctx context.Context, filters ...store.Filter) (int64, error) {
	n, err := c.coll.CountDocuments(ctx, toFilter(filters))
	if err != nil {
		return 0, c.wrap("count", err)
	}
	return n, nil
}

func (c *Collection) Find(ctx context.Context, opts store.FindOptions, results any) error {
	findOpts := options.Find()
	if opts.Sort.Field != "" {
		dir := 1
		if opts.Sort.Desc {
			dir = -1
		}
		findOpts.SetSort(bson.D{{Key: opts.Sort.Field, Value: dir}})
	}

	cursor, err := c.coll.Find(ctx, toFilter(opts.Filters), findOpts)
	if err != nil {
		return c.wrap("find", err)
	}
	if err := cursor.All(ctx, results); err != nil {
		return c.wrap("find", err)
	}
	return nil
}

func (c *Collection) FindOne(ctx context.Context, result any, filters ...store.Filter) error {
	err := c.coll.FindOne(ctx, toFilter(filters)).Decode(result)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.ErrNotFound
	}
	if err != nil {
		return c.wrap("find one", err)
	}
	return nil
}

func (c *Collection) InsertOne(ctx context.Context, doc any) error {
	if _, err := c.coll.InsertOne(ctx, doc); err != nil {
		return c.wrap("insert", err)
	}
	return nil
}

func (c *Collection) InsertMany(ctx context.Context, docs []any) error {
	if len(docs) == 0 {
		return nil
	}
	if _, err := c.coll.InsertMany(ctx, docs); err != nil {
		return c.wrap("insert many", err)
	}
	return nil
}

func (c *Collection) SetOne(ctx context.Context, fields store.Fields, filters ...store.Filter) (int64, error) {
	res, err := c.coll.UpdateOne(ctx, toFilter(filters), bson.M{"$set": bson.M(fields)})
	if err != nil {
		return 0, c.wrap("update", err)
	}
	return res.MatchedCount, nil
}

func (c *Collection) DeleteOne(ctx context.Context, filters ...store.Filter) (int64, error) {
	res, err := c.coll.DeleteOne(ctx, toFilter(filters))
	if err != nil {
		return 0, c.wrap("delete", err)
	}
	return res.DeletedCount, nil
}

// wrap translates driver errors into store errors
func (c *Collection) wrap(op string, err error) error {
	if mongo.IsDuplicateKeyError(err) {
		err = fmt.Errorf("%w: %v", store.ErrDuplicate, err)
	}
	return &store.CollectionError{Collection: c.coll.Name(), Op: op, Err: err}
}

func toFilter(filters []store.Filter) bson.D {
	out := bson.D{}
	for _, f := range filters {
		switch f.Op {
		case store.OpIContains:
			text, _ := f.Value.(string)
			out = append(out, bson.E{Key: f.Field, Value: primitive.Regex{
				Pattern: regexp.QuoteMeta(text),
				Options: "i",
			}})
		default:
			out = append(out, bson.E{Key: f.Field, Value: f.Value})
		}
	}
	return out
}
