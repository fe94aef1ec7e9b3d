package subscriptions

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const CollectionName = "subscriptions"

// MongoRepository keys subscriptions by account id (_id), which makes the
// one-subscription-per-account rule a primary key constraint.
type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(CollectionName)}
}

func (r *MongoRepository) Get(ctx context.Context, accountID string) (*models.Subscription, error) {
	var s models.Subscription
	if err := r.coll.FindOne(ctx, bson.M{"_id": accountID}).Decode(&s); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("mongo error: %w", err)
	}
	return &s, nil
}

func (r *MongoRepository) Upsert(ctx context.Context, accountID, planID string) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": accountID},
		bson.M{"$set": bson.M{"plan_id": planID}},
		options.UpdateOne().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo error: %w", err)
	}
	return nil
}
