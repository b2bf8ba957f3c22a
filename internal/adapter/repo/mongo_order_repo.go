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

const ordersCollection = "orders"

type MongoOrderRepo struct {
	col *mongo.Collection
}

func NewMongoOrderRepo(db *mongo.Database) *MongoOrderRepo {
	return &MongoOrderRepo{col: db.Collection(ordersCollection)}
}

func (r *MongoOrderRepo) Create(ctx context.Context, o *domain.Order) error {
	if _, err := r.col.InsertOne(ctx, o); err != nil {
		return fmt.Errorf("insert order %s: %w", o.Number, err)
	}
	return nil
}

func (r *MongoOrderRepo) GetByNumber(ctx context.Context, number string) (*domain.Order, error) {
	var o domain.Order
	err := r.col.FindOne(ctx, bson.M{"_id": number}).Decode(&o)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("find order %s: %w", number, err)
	}
	return &o, nil
}

func (r *MongoOrderRepo) GetByPaymentID(ctx context.Context, paymentID string) (*domain.Order, error) {
	var o domain.Order
	err := r.col.FindOne(ctx, bson.M{"payment_id": paymentID}).Decode(&o)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, fmt.Errorf("find order by payment %s: %w", paymentID, err)
	}
	return &o, nil
}

func (r *MongoOrderRepo) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return r.list(ctx, bson.M{"user_id": userID})
}

func (r *MongoOrderRepo) List(ctx context.Context) ([]domain.Order, error) {
	return r.list(ctx, bson.M{})
}

func (r *MongoOrderRepo) list(ctx context.Context, filter bson.M) ([]domain.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer cur.Close(ctx)

	var orders []domain.Order
	if err := cur.All(ctx, &orders); err != nil {
		return nil, fmt.Errorf("decode orders: %w", err)
	}
	return orders, nil
}

// UpdateStatusIf is the guarded transition: it matches on the current status
// so concurrent actors cannot both claim the same move. The transition-owned
// fields are $set in the same write; a losing actor modifies nothing, so a
// stale in-memory copy can never clobber another actor's transition.
func (r *MongoOrderRepo) UpdateStatusIf(ctx context.Context, number string, fromStatus, toStatus domain.Status, patch domain.StatusPatch) (bool, error) {
	set := bson.M{"status": toStatus, "updated_at": time.Now().UTC()}
	if patch.Paid != nil {
		set["paid"] = *patch.Paid
	}
	if patch.TrackingNumber != nil {
		set["tracking_number"] = *patch.TrackingNumber
	}
	if patch.CancellationReason != nil {
		set["cancellation_reason"] = *patch.CancellationReason
	}
	if patch.DeliveryDate != nil {
		set["delivery_date"] = *patch.DeliveryDate
	}
	if patch.CancelledAt != nil {
		set["cancelled_at"] = *patch.CancelledAt
	}
	if patch.DeliveredAt != nil {
		set["delivered_at"] = *patch.DeliveredAt
	}

	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": number, "status": fromStatus},
		bson.M{"$set": set},
	)
	if err != nil {
		return false, fmt.Errorf("guarded status update %s: %w", number, err)
	}
	// ModifiedCount == 0 -> nothing matched (not found or status mismatch).
	return res.ModifiedCount > 0, nil
}

var _ usecase.OrderRepo = (*MongoOrderRepo)(nil)
