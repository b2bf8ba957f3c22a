package repo

import (
	"context"
	"fmt"

	"github.com/NoBodyyy-dev/shispare-backend-sub000/internal/usecase"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const countersCollection = "counters"

// MongoOrderNumbers issues human-legible monotonic order numbers backed by an
// atomically incremented counter document.
type MongoOrderNumbers struct {
	col    *mongo.Collection
	prefix string
}

func NewMongoOrderNumbers(db *mongo.Database, prefix string) *MongoOrderNumbers {
	if prefix == "" {
		prefix = "SH"
	}
	return &MongoOrderNumbers{col: db.Collection(countersCollection), prefix: prefix}
}

func (n *MongoOrderNumbers) Next(ctx context.Context) (string, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc struct {
		Seq int64 `bson:"seq"`
	}
	err := n.col.FindOneAndUpdate(ctx,
		bson.M{"_id": "order_number"},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&doc)
	if err != nil {
		return "", fmt.Errorf("next order number: %w", err)
	}
	return fmt.Sprintf("%s-%06d", n.prefix, doc.Seq), nil
}

var _ usecase.OrderNumbers = (*MongoOrderNumbers)(nil)
