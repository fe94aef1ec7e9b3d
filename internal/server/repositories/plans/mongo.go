package plans

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

const CollectionName = "plans"

type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(CollectionName)}
}

func (r *MongoRepository) SeedIfEmpty(ctx context.Context, catalog []models.Plan) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return false, fmt.Errorf("mongo error: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	docs := make([]any, 0, len(catalog))
	for i := range catalog {
		docs = append(docs, catalog[i])
	}

	// Unordered so one duplicate from a concurrent seeder does not stop the rest.
	_, err = r.coll.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return false, fmt.Errorf("mongo error: %w", err)
	}
	return true, nil
}

func (r *MongoRepository) Get(ctx context.Context, planID string) (*models.Plan, error) {
	var p models.Plan
	if err := r.coll.FindOne(ctx, bson.M{"_id": planID}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("mongo error: %w", err)
	}
	return &p, nil
}

func (r *MongoRepository) List(ctx context.Context) ([]models.Plan, error) {
	opts := options.Find().SetSort(bson.D{{Key: "price", Value: 1}, {Key: "_id", Value: 1}})

	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo error: %w", err)
	}

	var out []models.Plan
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("mongo error: %w", err)
	}
	return out, nil
}
