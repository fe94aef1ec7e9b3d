package tokens

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

// MongoRepository keeps one document per email (the email is the _id), so
// replace-all and consume-all are single-document operations.
type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database, purpose models.TokenPurpose) *MongoRepository {
	return &MongoRepository{coll: db.Collection(mustTableName(purpose))}
}

func (r *MongoRepository) Replace(ctx context.Context, token *models.Token) error {
	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": token.Email}, token, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo error: %w", err)
	}
	return nil
}

func (r *MongoRepository) Consume(ctx context.Context, email, value string) (*models.Token, error) {
	var t models.Token
	err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": email, "token": value}).Decode(&t)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrTokenNotFound
		}
		return nil, fmt.Errorf("mongo error: %w", err)
	}
	return &t, nil
}
