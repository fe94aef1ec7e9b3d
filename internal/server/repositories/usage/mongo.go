package usage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
	"github.com/dmitrijs2005/accountkeeper/internal/timex"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const CollectionName = "usage"

type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(CollectionName)}
}

func Indexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "account_id", Value: 1}, {Key: "day", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}
}

func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	if _, err := r.coll.Indexes().CreateMany(ctx, Indexes()); err != nil {
		return fmt.Errorf("mongo error: create usage indexes: %w", err)
	}
	return nil
}

func dayFilter(accountID string, day time.Time) bson.M {
	return bson.M{"account_id": accountID, "day": timex.DayKey(day)}
}

// ActivityUpdate prepends activity to the trail, keeps the newest entries
// and bumps the counter in a single update document.
func ActivityUpdate(activity models.Activity) bson.M {
	return bson.M{
		"$inc": bson.M{"current_usage": 1},
		"$push": bson.M{"recent_activities": bson.M{
			"$each":     bson.A{activity},
			"$position": 0,
			"$slice":    common.MaxRecentActivities,
		}},
	}
}

func (r *MongoRepository) Increment(ctx context.Context, accountID string, day time.Time) error {
	return r.upsert(ctx, dayFilter(accountID, day), bson.M{"$inc": bson.M{"current_usage": 1}})
}

func (r *MongoRepository) RecordActivity(ctx context.Context, accountID string, day time.Time, activity models.Activity) error {
	return r.upsert(ctx, dayFilter(accountID, day), ActivityUpdate(activity))
}

// upsert retries once on a duplicate key: two first-of-day upserts can race
// on the unique (account_id, day) index and the loser must then update.
func (r *MongoRepository) upsert(ctx context.Context, filter, update bson.M) error {
	opts := options.UpdateOne().SetUpsert(true)

	_, err := r.coll.UpdateOne(ctx, filter, update, opts)
	if mongo.IsDuplicateKeyError(err) {
		_, err = r.coll.UpdateOne(ctx, filter, update, opts)
	}
	if err != nil {
		return fmt.Errorf("mongo error: %w", err)
	}
	return nil
}

func (r *MongoRepository) Get(ctx context.Context, accountID string, day time.Time) (*models.UsageRecord, error) {
	var rec models.UsageRecord
	if err := r.coll.FindOne(ctx, dayFilter(accountID, day)).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("mongo error: %w", err)
	}
	return &rec, nil
}
