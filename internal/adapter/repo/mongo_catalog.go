package repo

import (
	"context"
	"errors"
	"fmt"

	domain "github.com/NoBodyyy-dev/shispare-backend-sub000/internal/entity"
	"github.com/NoBodyyy-dev/shispare-backend-sub000/internal/usecase"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const productsCollection = "products"

// productDoc is the stored product shape; variants are embedded.
type productDoc struct {
	ID       string `bson:"_id"`
	Title    string `bson:"title"`
	Variants []struct {
		Article     string `bson:"article"`
		PriceKop    int64  `bson:"price_kop"`
		DiscountPct int64  `bson:"discount_pct"`
		Count       int64  `bson:"count"`
		Purchased   int64  `bson:"purchased"`
	} `bson:"variants"`
}

// MongoCatalog is the inventory ledger over the products collection. Stock
// mutation is a single conditional update so the count can never go negative.
type MongoCatalog struct {
	col *mongo.Collection
}

func NewMongoCatalog(db *mongo.Database) *MongoCatalog {
	return &MongoCatalog{col: db.Collection(productsCollection)}
}

func (c *MongoCatalog) ResolveVariant(ctx context.Context, productID, article string) (*domain.Variant, error) {
	var doc productDoc
	err := c.col.FindOne(ctx, bson.M{"_id": productID, "variants.article": article}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrVariantNotFound
		}
		return nil, fmt.Errorf("find product %s: %w", productID, err)
	}
	for _, v := range doc.Variants {
		if v.Article == article {
			return &domain.Variant{
				ProductID:    doc.ID,
				ProductTitle: doc.Title,
				Article:      v.Article,
				PriceKop:     v.PriceKop,
				DiscountPct:  v.DiscountPct,
				Stock:        v.Count,
				Purchased:    v.Purchased,
			}, nil
		}
	}
	return nil, domain.ErrVariantNotFound
}

// CheckAvailability is read-only; callers must still rely on DecrementStock
// for the actual fence against overselling.
func (c *MongoCatalog) CheckAvailability(ctx context.Context, productID, article string, quantity int64) (bool, error) {
	v, err := c.ResolveVariant(ctx, productID, article)
	if err != nil {
		return false, err
	}
	return v.Stock >= quantity, nil
}

// DecrementStock collapses check and write into one conditional update: the
// filter matches only while remaining stock covers the quantity.
func (c *MongoCatalog) DecrementStock(ctx context.Context, productID, article string, quantity int64) error {
	res, err := c.col.UpdateOne(ctx,
		bson.M{
			"_id":      productID,
			"variants": bson.M{"$elemMatch": bson.M{"article": article, "count": bson.M{"$gte": quantity}}},
		},
		bson.M{"$inc": bson.M{"variants.$.count": -quantity}},
	)
	if err != nil {
		return fmt.Errorf("decrement stock %s/%s: %w", productID, article, err)
	}
	if res.ModifiedCount == 0 {
		available := int64(0)
		if v, rerr := c.ResolveVariant(ctx, productID, article); rerr == nil {
			available = v.Stock
		}
		return &domain.InsufficientStockError{Article: article, Requested: quantity, Available: available}
	}
	return nil
}

func (c *MongoCatalog) IncrementPurchased(ctx context.Context, productID, article string, quantity int64) error {
	_, err := c.col.UpdateOne(ctx,
		bson.M{"_id": productID, "variants.article": article},
		bson.M{"$inc": bson.M{"variants.$.purchased": quantity}},
	)
	if err != nil {
		return fmt.Errorf("increment purchased %s/%s: %w", productID, article, err)
	}
	return nil
}

var _ usecase.Catalog = (*MongoCatalog)(nil)
