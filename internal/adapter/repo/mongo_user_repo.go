package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/NoBodyyy-dev/shispare-backend-sub000/internal/usecase"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const usersCollection = "users"

// MongoUserRepo resolves user contact details for the notification fan-out.
type MongoUserRepo struct {
	col *mongo.Collection
}

func NewMongoUserRepo(db *mongo.Database) *MongoUserRepo {
	return &MongoUserRepo{col: db.Collection(usersCollection)}
}

func (r *MongoUserRepo) Contact(ctx context.Context, userID string) (usecase.Contact, error) {
	var doc struct {
		Email          string `bson:"email"`
		TelegramChatID int64  `bson:"telegram_chat_id"`
	}
	err := r.col.FindOne(ctx, bson.M{"_id": userID}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return usecase.Contact{}, fmt.Errorf("user %s not found", userID)
		}
		return usecase.Contact{}, fmt.Errorf("find user %s: %w", userID, err)
	}
	return usecase.Contact{Email: doc.Email, TelegramChatID: doc.TelegramChatID}, nil
}

var _ usecase.UserDirectory = (*MongoUserRepo)(nil)
