package store

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/strataviz/strataviz/pkg/errors"
	"github.com/strataviz/strataviz/pkg/graph"
)

const graphCollection = "graphs"

// graphDoc wraps a graph with storage metadata. The graph's own ID doubles
// as the Mongo document ID so saves are natural upserts.
type graphDoc struct {
	ID        string       `bson:"_id"`
	Name      string       `bson:"name"`
	NodeCount int          `bson:"node_count"`
	EdgeCount int          `bson:"edge_count"`
	UpdatedAt time.Time    `bson:"updated_at"`
	Graph     *graph.Graph `bson:"graph"`
}

// MongoStore implements Store on a MongoDB collection.
type MongoStore struct {
	client *mongo.Client
	coll   *mongo.Collection
}

// NewMongoStore connects to MongoDB at uri and uses the given database.
// The connection is verified with a ping before returning.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "connect to store")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, errors.Wrap(errors.ErrCodeStore, err, "ping store")
	}
	return &MongoStore{
		client: client,
		coll:   client.Database(database).Collection(graphCollection),
	}, nil
}

// SaveGraph upserts the graph under its own ID.
func (s *MongoStore) SaveGraph(ctx context.Context, g *graph.Graph) error {
	if g.ID == "" {
		return errors.New(errors.ErrCodeInvalidGraph, "graph has no id")
	}
	doc := graphDoc{
		ID:        g.ID,
		Name:      g.Name,
		NodeCount: g.NodeCount(),
		EdgeCount: g.EdgeCount(),
		UpdatedAt: time.Now().UTC(),
		Graph:     g,
	}
	_, err := s.coll.ReplaceOne(ctx, bson.M{"_id": g.ID}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "save graph %s", g.ID)
	}
	return nil
}

// LoadGraph fetches a graph by ID.
func (s *MongoStore) LoadGraph(ctx context.Context, id string) (*graph.Graph, error) {
	var doc graphDoc
	err := s.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, errors.New(errors.ErrCodeNotFound, "graph %s not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "load graph %s", id)
	}
	return doc.Graph, nil
}

// ListGraphs returns metadata for every stored graph, most recently
// updated first.
func (s *MongoStore) ListGraphs(ctx context.Context) ([]GraphInfo, error) {
	opts := options.Find().
		SetProjection(bson.M{"graph": 0}).
		SetSort(bson.M{"updated_at": -1})
	cur, err := s.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "list graphs")
	}
	defer cur.Close(ctx)

	var infos []GraphInfo
	for cur.Next(ctx) {
		var doc graphDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeStore, err, "decode graph listing")
		}
		infos = append(infos, GraphInfo{
			ID:        doc.ID,
			Name:      doc.Name,
			NodeCount: doc.NodeCount,
			EdgeCount: doc.EdgeCount,
			UpdatedAt: doc.UpdatedAt,
		})
	}
	if err := cur.Err(); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStore, err, "list graphs")
	}
	return infos, nil
}

// DeleteGraph removes a graph by ID. Deleting an unknown ID is NOT_FOUND.
func (s *MongoStore) DeleteGraph(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errors.Wrap(errors.ErrCodeStore, err, "delete graph %s", id)
	}
	if res.DeletedCount == 0 {
		return errors.New(errors.ErrCodeNotFound, "graph %s not found", id)
	}
	return nil
}

// Close disconnects from MongoDB.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Ensure MongoStore implements Store.
var _ Store = (*MongoStore)(nil)
