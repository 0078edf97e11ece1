package catalog

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
	"go.uber.org/zap"
)

const (
	// SearchLimit caps a filtered search.
	SearchLimit = 20
	// BrandSearchLimit caps the brand-only fallback search.
	BrandSearchLimit = 10
)

// Searcher finds products. Store is the MongoDB implementation.
type Searcher interface {
	Search(ctx context.Context, f Filters) ([]Product, error)
	SearchByBrand(ctx context.Context, brand string) ([]Product, error)
}

// Config holds the MongoDB connection settings.
type Config struct {
	URI            string        `yaml:"uri" json:"uri"`
	Database       string        `yaml:"database" json:"database"`
	Collection     string        `yaml:"collection" json:"collection"`
	ConnectTimeout time.Duration `yaml:"connect_timeout" json:"connect_timeout"`
	QueryTimeout   time.Duration `yaml:"query_timeout" json:"query_timeout"`
	MaxPoolSize    uint64        `yaml:"max_pool_size" json:"max_pool_size"`
}

// DefaultConfig returns local development settings.
func DefaultConfig() Config {
	return Config{
		URI:            "mongodb://localhost:27017",
		Database:       "infinite_mart",
		Collection:     "products",
		ConnectTimeout: 10 * time.Second,
		QueryTimeout:   5 * time.Second,
		MaxPoolSize:    50,
	}
}

// Store queries the products collection. It is safe for concurrent use; the
// driver pools connections.
type Store struct {
	client     *mongo.Client
	collection *mongo.Collection
	timeout    time.Duration
	logger     *zap.Logger
}

// Connect dials MongoDB and verifies the connection with a ping.
func Connect(ctx context.Context, cfg Config, logger *zap.Logger) (*Store, error) {
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetConnectTimeout(cfg.ConnectTimeout)
	if cfg.MaxPoolSize > 0 {
		opts.SetMaxPoolSize(cfg.MaxPoolSize)
	}

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	s := NewStore(client, client.Database(cfg.Database).Collection(cfg.Collection), cfg.QueryTimeout, logger)
	s.logger.Info("catalog store connected",
		zap.String("database", cfg.Database),
		zap.String("collection", cfg.Collection),
	)
	return s, nil
}

// NewStore wraps an existing collection.
func NewStore(client *mongo.Client, collection *mongo.Collection, timeout time.Duration, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		client:     client,
		collection: collection,
		timeout:    timeout,
		logger:     logger.With(zap.String("component", "catalog")),
	}
}

// Search runs a filtered query and returns at most SearchLimit products.
func (s *Store) Search(ctx context.Context, f Filters) ([]Product, error) {
	query := BuildQuery(f)
	s.logger.Debug("catalog search", zap.Any("filters", f), zap.Stringer("query", bsonString(query)))
	return s.find(ctx, query, SearchLimit)
}

// SearchByBrand returns at most BrandSearchLimit products of brand. An empty
// brand yields no results.
func (s *Store) SearchByBrand(ctx context.Context, brand string) ([]Product, error) {
	if brand == "" {
		return nil, nil
	}
	return s.find(ctx, BrandQuery(brand), BrandSearchLimit)
}

func (s *Store) find(ctx context.Context, query bson.D, limit int64) ([]Product, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	opts := options.Find().
		SetProjection(SummaryProjection()).
		SetLimit(limit)

	cursor, err := s.collection.Find(ctx, query, opts)
	if err != nil {
		return nil, fmt.Errorf("catalog find: %w", err)
	}

	var products []Product
	if err := cursor.All(ctx, &products); err != nil {
		return nil, fmt.Errorf("catalog decode: %w", err)
	}
	return products, nil
}

// Ping checks connectivity to the primary.
func (s *Store) Ping(ctx context.Context) error {
	if s.client == nil {
		return fmt.Errorf("catalog store has no client")
	}
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (s *Store) Close(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

type bsonString bson.D

func (d bsonString) String() string {
	raw, err := bson.MarshalExtJSON(bson.D(d), false, false)
	if err != nil {
		return fmt.Sprintf("%v", bson.D(d))
	}
	return string(raw)
}
