package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coderarham/storefront/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type mongoRepository struct {
	collection *mongo.Collection
}

func NewMongoRepository(db *mongo.Database) CartRepository {
	return &mongoRepository{
		collection: db.Collection("carts"),
	}
}

func (m *mongoRepository) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	var cart domain.Cart

	filter := bson.M{"user_id": userID}
	err := m.collection.FindOne(ctx, filter).Decode(&cart)

	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to get cart: %w", err)
	}

	if cart.Items == nil {
		cart.Items = []domain.CartItem{}
	}
	return &cart, nil
}

// AddItem merges the item into the user's cart, creating the cart document
// lazily on first add. The whole document is rewritten so total_amount is
// always the sum over the lines it sits next to.
func (m *mongoRepository) AddItem(ctx context.Context, userID string, item domain.CartItem) (*domain.Cart, error) {
	now := time.Now()
	item.AddedAt = now

	cart, err := m.GetCart(ctx, userID)
	if err != nil {
		if !errors.Is(err, ErrCartNotFound) {
			return nil, err
		}
		cart = domain.EmptyCart(userID)
	}

	cart.AddItem(item)
	if err := m.replaceCart(ctx, cart, now); err != nil {
		return nil, err
	}
	return cart, nil
}

func (m *mongoRepository) UpdateQuantity(ctx context.Context, userID, productID, size string, quantity int) (*domain.Cart, error) {
	if quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	cart, err := m.GetCart(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrCartNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}

	if !cart.SetQuantity(productID, size, quantity) {
		return nil, ErrItemNotFound
	}

	if err := m.replaceCart(ctx, cart, time.Now()); err != nil {
		return nil, err
	}
	return cart, nil
}

// RemoveItem is idempotent: removing a line that is not there leaves the
// cart untouched and is not an error. An absent cart reads as empty.
func (m *mongoRepository) RemoveItem(ctx context.Context, userID, productID, size string) (*domain.Cart, error) {
	cart, err := m.GetCart(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrCartNotFound) {
			return domain.EmptyCart(userID), nil
		}
		return nil, err
	}

	cart.RemoveItem(productID, size)
	if err := m.replaceCart(ctx, cart, time.Now()); err != nil {
		return nil, err
	}
	return cart, nil
}

// ClearCart empties the lines but keeps the document; a cleared cart and a
// never-created cart read back identically.
func (m *mongoRepository) ClearCart(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, err := m.GetCart(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrCartNotFound) {
			return domain.EmptyCart(userID), nil
		}
		return nil, err
	}

	cart.Clear()
	if err := m.replaceCart(ctx, cart, time.Now()); err != nil {
		return nil, err
	}
	return cart, nil
}

func (m *mongoRepository) replaceCart(ctx context.Context, cart *domain.Cart, now time.Time) error {
	if cart.CreatedAt.IsZero() {
		cart.CreatedAt = now
	}
	cart.UpdatedAt = now

	filter := bson.M{"user_id": cart.UserID}
	update := bson.M{"$set": bson.M{
		"user_id":      cart.UserID,
		"items":        cart.Items,
		"total_amount": cart.TotalAmount,
		"created_at":   cart.CreatedAt,
		"updated_at":   cart.UpdatedAt,
	}}
	opts := options.Update().SetUpsert(true)

	_, err := m.collection.UpdateOne(ctx, filter, update, opts)
	if err != nil {
		return fmt.Errorf("failed to upsert cart: %w", err)
	}

	return nil
}

func (m *mongoRepository) CreateIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "updated_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(90 * 24 * 60 * 60), // 90 days TTL
		},
	}

	_, err := m.collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	return nil
}
