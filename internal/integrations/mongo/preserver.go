// Package mongo preserves the raw per-target RDF documents of a collection
// run. Unlike the relational sink, nothing is flattened: whatever the array
// returned is stored verbatim, so fields the tabular layout drops remain
// queryable.
package mongo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/sanwatch/rdfmon/internal/collector"
)

const (
	// DefaultDatabase matches the monitoring database the relational sink
	// lives in.
	DefaultDatabase   = "powermax_monitoring"
	DefaultCollection = "rdf_status"

	pingTimeout = 10 * time.Second
)

type Option func(*Preserver)

func WithLogger(logger *zap.Logger) Option {
	return func(p *Preserver) {
		p.logger = logger
	}
}

func WithDatabase(database string) Option {
	return func(p *Preserver) {
		p.database = database
	}
}

func WithCollection(collection string) Option {
	return func(p *Preserver) {
		p.collection = collection
	}
}

type Preserver struct {
	logger     *zap.Logger
	uri        string
	database   string
	collection string
	client     *mongo.Client
}

func New(uri string, opts ...Option) (*Preserver, error) {
	p := &Preserver{
		logger:     zap.NewNop(),
		uri:        uri,
		database:   DefaultDatabase,
		collection: DefaultCollection,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.uri == "" {
		return nil, fmt.Errorf("mongo: uri is required")
	}

	return p, nil
}

func (p *Preserver) Connect(ctx context.Context) error {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(p.uri))
	if err != nil {
		return err
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	if err := client.Ping(pingCtx, nil); err != nil {
		client.Disconnect(ctx)
		return err
	}

	p.client = client
	p.logger.Info("connected to mongodb",
		zap.String("database", p.database),
		zap.String("collection", p.collection),
	)
	return nil
}

// Preserve stores one document per polled target: the decoded RDF response
// for answered targets, the error string for failed ones.
func (p *Preserver) Preserve(ctx context.Context, run *collector.Run) error {
	if p.client == nil {
		return fmt.Errorf("mongo: not connected")
	}

	var docs []any
	for _, batch := range run.Batches {
		for _, result := range batch.Results {
			doc := bson.M{
				"run_id":          run.ID,
				"collection_time": run.StartTime,
				"symmetrix_id":    run.SymmetrixID,
				"storage_group":   result.StorageGroup,
				"batch":           batch.Number,
			}

			if result.Err != nil {
				doc["error"] = result.Err.Error()
			} else {
				var rdf map[string]any
				if err := json.Unmarshal(result.Raw, &rdf); err != nil {
					return fmt.Errorf("decode %s: %w", result.StorageGroup, err)
				}
				doc["rdf"] = rdf
			}

			docs = append(docs, doc)
		}
	}

	if len(docs) == 0 {
		p.logger.Info("no documents to preserve",
			zap.String("run_id", run.ID),
		)
		return nil
	}

	coll := p.client.Database(p.database).Collection(p.collection)
	if _, err := coll.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert documents: %w", err)
	}

	p.logger.Info("preserved run to mongodb",
		zap.String("run_id", run.ID),
		zap.Int("documents", len(docs)),
	)
	return nil
}

func (p *Preserver) Close(ctx context.Context) error {
	if p.client == nil {
		return nil
	}
	return p.client.Disconnect(ctx)
}
