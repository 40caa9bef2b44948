package mongodb

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoDbConfigModel struct {
	ConnectionUrl string
	DatabaseName  string
	// ConnectTimeout bounds the whole connect-and-ping retry loop
	ConnectTimeout time.Duration
}

type MongoDBClient struct {
	Client *mongo.Client
	Config MongoDbConfigModel
}

func InitializeDatabaseConnection(config MongoDbConfigModel) (*MongoDBClient, error) {
	if config.ConnectTimeout == 0 {
		config.ConnectTimeout = 30 * time.Second
	}

	// Untyped sub-documents decode as bson.M rather than bson.D, which keeps
	// stored tool arguments and results map-shaped.
	clientOptions := options.Client().
		ApplyURI(config.ConnectionUrl).
		SetBSONOptions(&options.BSONOptions{DefaultDocumentM: true})

	ctx, cancel := context.WithTimeout(context.Background(), config.ConnectTimeout)
	defer cancel()

	mongoClient, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("MongoDB connection error: %w", err)
	}

	// Ping the database until it answers or the timeout runs out
	_, err = backoff.Retry(ctx, func() (struct{}, error) {
		return struct{}{}, mongoClient.Ping(ctx, nil)
	},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(config.ConnectTimeout),
		backoff.WithNotify(func(err error, next time.Duration) {
			logrus.WithError(err).Warnf("MongoDB ping failed, retrying in %s", next)
		}),
	)
	if err != nil {
		_ = mongoClient.Disconnect(context.Background())
		return nil, fmt.Errorf("MongoDB ping error: %w", err)
	}

	logrus.Info("✨ Connected to MongoDB.")

	return &MongoDBClient{
		Client: mongoClient,
		Config: config,
	}, nil
}

func (client *MongoDBClient) GetCollectionByName(collectionName string) *mongo.Collection {
	collection := client.Client.Database(client.Config.DatabaseName).Collection(collectionName)
	return collection
}

func (client *MongoDBClient) Disconnect(ctx context.Context) error {
	return client.Client.Disconnect(ctx)
}
