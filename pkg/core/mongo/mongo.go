// Package mongo holds the shared MongoDB connection for handlers that
// persist events.
package mongo

import (
	"context"
	"fmt"

	mongodriver "go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.uber.org/zap"
)

// Mongo hands out collections from the configured database.
type Mongo interface {
	Collection(name string) *mongodriver.Collection
}

type client struct {
	client   *mongodriver.Client
	database *mongodriver.Database
	conf     Config
	log      *zap.Logger
}

func newClient(conf Config, log *zap.Logger) (*client, error) {
	c, err := mongodriver.Connect(options.Client().ApplyURI(conf.uri()))
	if err != nil {
		return nil, fmt.Errorf("creating mongo client: %w", err)
	}

	return &client{
		client:   c,
		database: c.Database(conf.Database),
		conf:     conf,
		log:      log.With(zap.String("component", "mongo")),
	}, nil
}

func (c *client) Collection(name string) *mongodriver.Collection {
	return c.database.Collection(name)
}

// connect validates the connection with a ping; the driver connects
// lazily otherwise and errors would only surface on first use.
func (c *client) connect(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.conf.ConnectTimeout)
	defer cancel()

	if err := c.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("pinging mongo: %w", err)
	}

	c.log.Info("connected to mongo", zap.String("database", c.conf.Database))
	return nil
}

func (c *client) disconnect(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}
