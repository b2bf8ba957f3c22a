package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/NoBodyyy-dev/shispare-backend-sub000/internal/entity"
	"github.com/NoBodyyy-dev/shispare-backend-sub000/internal/usecase"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const cartsCollection = "carts"

// MongoCartRepo keeps at most one cart document per user, keyed by user id.
type MongoCartRepo struct {
	col *mongo.Collection
}

func NewMongoCartRepo(db *mongo.Database) *MongoCartRepo {
	return &MongoCartRepo{col: db.Collection(cartsCollection)}
}

// Get returns an empty cart when none exists yet; carts are created lazily on
// first add.
func (r *MongoCartRepo) Get(ctx context.Context, userID string) (*domain.Cart, error) {
	var cart domain.Cart
	err := r.col.FindOne(ctx, bson.M{"_id": userID}).Decode(&cart)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return &domain.Cart{UserID: userID}, nil
		}
		return nil, fmt.Errorf("find cart: %w", err)
	}
	return &cart, nil
}

func (r *MongoCartRepo) Upsert(ctx context.Context, cart *domain.Cart) error {
	opts := options.Replace().SetUpsert(true)
	if _, err := r.col.ReplaceOne(ctx, bson.M{"_id": cart.UserID}, cart, opts); err != nil {
		return fmt.Errorf("upsert cart: %w", err)
	}
	return nil
}

// Clear empties the cart document but keeps it.
func (r *MongoCartRepo) Clear(ctx context.Context, userID string) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"_id": userID},
		bson.M{"$set": bson.M{"items": []domain.CartItem{}, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

var _ usecase.CartRepo = (*MongoCartRepo)(nil)
