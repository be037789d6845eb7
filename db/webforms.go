package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// SetWebform creates or replaces a webform definition. The webform ID is the
// document key, so storing twice with the same ID updates the definition.
func (ms *MongoStorage) SetWebform(webform *Webform) error {
	if webform == nil || webform.ID == "" {
		return ErrInvalidData
	}
	if webform.CreatedAt.IsZero() {
		webform.CreatedAt = time.Now()
	}
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()
	opts := options.Replace().SetUpsert(true)
	_, err := ms.webforms.ReplaceOne(ctx, bson.M{"_id": webform.ID}, webform, opts)
	return err
}

// Webform returns the webform with the given ID, or ErrNotFound.
func (ms *MongoStorage) Webform(id string) (*Webform, error) {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()
	webform := &Webform{}
	if err := ms.webforms.FindOne(ctx, bson.M{"_id": id}).Decode(webform); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return webform, nil
}

// DelWebform removes a webform definition. Submissions already stored for the
// webform are kept, so inbound webhook events can still be correlated.
func (ms *MongoStorage) DelWebform(id string) error {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()
	_, err := ms.webforms.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

// Webforms returns all stored webform definitions.
func (ms *MongoStorage) Webforms() ([]*Webform, error) {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()
	cur, err := ms.webforms.Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	defer func() { _ = cur.Close(ctx) }()
	var webforms []*Webform
	for cur.Next(ctx) {
		webform := &Webform{}
		if err := cur.Decode(webform); err != nil {
			return nil, err
		}
		webforms = append(webforms, webform)
	}
	return webforms, cur.Err()
}
