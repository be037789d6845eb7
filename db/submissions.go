package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// NewSubmission stores a freshly created submission, assigning it the next
// serial number of its webform. The caller provides the unique ID.
func (ms *MongoStorage) NewSubmission(submission *Submission) error {
	if submission == nil || submission.ID == "" || submission.WebformID == "" {
		return ErrInvalidData
	}
	serial, err := ms.nextSubmissionSerial(submission.WebformID)
	if err != nil {
		return err
	}
	submission.Serial = serial
	now := time.Now()
	submission.CreatedAt = now
	submission.UpdatedAt = now
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()
	_, err = ms.submissions.InsertOne(ctx, submission)
	return err
}

// UpdateSubmissionValues replaces the field values of an existing submission.
// It never touches serial or creation time, and it is the storage operation
// behind the update path that must not re-trigger any payment.
func (ms *MongoStorage) UpdateSubmissionValues(id string, values map[string]any) error {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()
	res, err := ms.submissions.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$set": bson.M{
			"values":     values,
			"updated_at": time.Now(),
		},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Submission returns the submission with the given ID, or ErrNotFound.
func (ms *MongoStorage) Submission(id string) (*Submission, error) {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()
	submission := &Submission{}
	if err := ms.submissions.FindOne(ctx, bson.M{"_id": id}).Decode(submission); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return submission, nil
}

// nextSubmissionSerial atomically increments and returns the per-webform
// submission counter.
func (ms *MongoStorage) nextSubmissionSerial(webformID string) (int64, error) {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	err := ms.serials.FindOneAndUpdate(ctx,
		bson.M{"_id": webformID},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, err
	}
	return counter.Seq, nil
}
