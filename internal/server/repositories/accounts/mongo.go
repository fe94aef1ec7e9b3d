package accounts

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

const CollectionName = "accounts"

type MongoRepository struct {
	coll *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) *MongoRepository {
	return &MongoRepository{coll: db.Collection(CollectionName)}
}

// Indexes returns the unique sparse indexes backing email/phone uniqueness.
func Indexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		{Keys: bson.D{{Key: "phone", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		{Keys: bson.D{{Key: "created_at", Value: 1}}},
	}
}

func (r *MongoRepository) EnsureIndexes(ctx context.Context) error {
	if _, err := r.coll.Indexes().CreateMany(ctx, Indexes()); err != nil {
		return fmt.Errorf("mongo error: create account indexes: %w", err)
	}
	return nil
}

func (r *MongoRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {
	prepare(account)

	if _, err := r.coll.InsertOne(ctx, account); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, common.ErrDuplicateIdentity
		}
		return nil, fmt.Errorf("mongo error: %w", err)
	}
	return account, nil
}

// IdentifierFilter matches identifier against either contact field.
func IdentifierFilter(identifier string) bson.M {
	return bson.M{"$or": bson.A{bson.M{"email": identifier}, bson.M{"phone": identifier}}}
}

func (r *MongoRepository) FindByIdentifier(ctx context.Context, identifier string) (*models.Account, error) {
	if identifier == "" {
		return nil, common.ErrorNotFound
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: 1}})
	return r.findOne(ctx, IdentifierFilter(identifier), opts)
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrorNotFound
	}
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	if email == "" {
		return nil, common.ErrorNotFound
	}
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoRepository) SetVerified(ctx context.Context, email string) (bool, error) {
	res, err := r.coll.UpdateOne(ctx, bson.M{"email": email}, bson.M{"$set": bson.M{"verified": true}})
	if err != nil {
		return false, fmt.Errorf("mongo error: %w", err)
	}
	return res.MatchedCount > 0, nil
}

func (r *MongoRepository) UpdatePassword(ctx context.Context, email string, salt, hash []byte) (bool, error) {
	update := bson.M{"$set": bson.M{"salt": salt, "password_hash": hash}}
	res, err := r.coll.UpdateOne(ctx, bson.M{"email": email}, update)
	if err != nil {
		return false, fmt.Errorf("mongo error: %w", err)
	}
	return res.MatchedCount > 0, nil
}

func (r *MongoRepository) findOne(ctx context.Context, filter any, opts ...options.Lister[options.FindOneOptions]) (*models.Account, error) {
	var a models.Account
	if err := r.coll.FindOne(ctx, filter, opts...).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("mongo error: %w", err)
	}
	return &a, nil
}
