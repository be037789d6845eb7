// Package db implements the MongoDB storage layer for webform definitions
// and their submissions.
package db

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.vocdoni.io/dvote/log"
)

const dbTimeout = 10 * time.Second

// MongoStorage uses an external MongoDB service for storing webforms and
// submissions. Submission serials are kept in a separate counters collection.
type MongoStorage struct {
	client      *mongo.Client
	database    string
	webforms    *mongo.Collection
	submissions *mongo.Collection
	serials     *mongo.Collection
}

// New connects to the MongoDB server and initializes the collections and
// indexes. If the WEBFORM_MONGO_RESET_DB environment variable is set, the
// database documents are dropped and the indexes recreated.
func New(url, database string) (*MongoStorage, error) {
	if url == "" {
		return nil, fmt.Errorf("mongo URL is not defined")
	}
	if database == "" {
		return nil, fmt.Errorf("mongo database is not defined")
	}
	log.Infow("connecting to mongodb", "url", url, "database", database)
	opts := options.Client()
	opts.ApplyURI(url)
	opts.SetConnectTimeout(dbTimeout)
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()
	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("cannot connect to mongodb: %w", err)
	}
	pingCtx, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel2()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("cannot connect to mongodb: %w", err)
	}

	ms := &MongoStorage{
		client:      client,
		database:    database,
		webforms:    client.Database(database).Collection("webforms"),
		submissions: client.Database(database).Collection("submissions"),
		serials:     client.Database(database).Collection("serials"),
	}
	if reset := os.Getenv("WEBFORM_MONGO_RESET_DB"); reset != "" {
		if err := ms.Reset(); err != nil {
			return nil, err
		}
	} else if err := ms.createIndexes(); err != nil {
		return nil, err
	}
	return ms, nil
}

// Close disconnects the MongoDB client.
func (ms *MongoStorage) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()
	if err := ms.client.Disconnect(ctx); err != nil {
		log.Warn(err)
	}
}

// Reset drops the database collections and recreates the indexes.
func (ms *MongoStorage) Reset() error {
	log.Infof("resetting database")
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()
	for _, col := range []*mongo.Collection{ms.webforms, ms.submissions, ms.serials} {
		if err := col.Drop(ctx); err != nil {
			return err
		}
	}
	return ms.createIndexes()
}

func (ms *MongoStorage) createIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()
	// submissions are looked up by webform and serial when reconciling
	_, err := ms.submissions.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "webform_id", Value: 1},
			{Key: "serial", Value: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("cannot create submissions index: %w", err)
	}
	return nil
}
