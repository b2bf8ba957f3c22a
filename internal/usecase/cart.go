package usecase

import (
	"context"
	"fmt"
	"time"

	domain "github.com/NoBodyyy-dev/shispare-backend-sub000/internal/entity"
)

// CartView is the cart plus its live-price projection. Totals here are never
// persisted pricing truth; the order snapshot is taken at checkout.
type CartView struct {
	Cart   *domain.Cart
	Lines  []domain.PricedLine
	Totals domain.Totals
}

type CartService struct {
	carts   CartRepo
	catalog Catalog
}

func NewCartService(carts CartRepo, catalog Catalog) *CartService {
	return &CartService{carts: carts, catalog: catalog}
}

func (s *CartService) Get(ctx context.Context, userID string) (CartView, error) {
	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		return CartView{}, fmt.Errorf("load cart: %w", err)
	}
	return s.project(ctx, cart)
}

func (s *CartService) AddItem(ctx context.Context, userID, productID, article string, quantity int64) (CartView, error) {
	if quantity < 1 {
		return CartView{}, domain.ErrInvalidQuantity
	}
	if _, err := s.catalog.ResolveVariant(ctx, productID, article); err != nil {
		return CartView{}, err
	}
	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		return CartView{}, fmt.Errorf("load cart: %w", err)
	}
	cart.Add(productID, article, quantity, time.Now().UTC())
	if err := s.carts.Upsert(ctx, cart); err != nil {
		return CartView{}, fmt.Errorf("save cart: %w", err)
	}
	return s.project(ctx, cart)
}

func (s *CartService) UpdateQuantity(ctx context.Context, userID, productID, article string, quantity int64) (CartView, error) {
	if quantity < 1 {
		return CartView{}, domain.ErrInvalidQuantity
	}
	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		return CartView{}, fmt.Errorf("load cart: %w", err)
	}
	if err := cart.SetQuantity(productID, article, quantity, time.Now().UTC()); err != nil {
		return CartView{}, err
	}
	if err := s.carts.Upsert(ctx, cart); err != nil {
		return CartView{}, fmt.Errorf("save cart: %w", err)
	}
	return s.project(ctx, cart)
}

func (s *CartService) RemoveItem(ctx context.Context, userID, productID, article string) (CartView, error) {
	cart, err := s.carts.Get(ctx, userID)
	if err != nil {
		return CartView{}, fmt.Errorf("load cart: %w", err)
	}
	if err := cart.Remove(productID, article, time.Now().UTC()); err != nil {
		return CartView{}, err
	}
	if err := s.carts.Upsert(ctx, cart); err != nil {
		return CartView{}, fmt.Errorf("save cart: %w", err)
	}
	return s.project(ctx, cart)
}

func (s *CartService) Clear(ctx context.Context, userID string) error {
	if err := s.carts.Clear(ctx, userID); err != nil {
		return fmt.Errorf("clear cart: %w", err)
	}
	return nil
}

// project joins cart lines with current catalog pricing and recomputes totals
// deterministically.
func (s *CartService) project(ctx context.Context, cart *domain.Cart) (CartView, error) {
	lines := make([]domain.PricedLine, 0, len(cart.Items))
	for _, item := range cart.Items {
		v, err := s.catalog.ResolveVariant(ctx, item.ProductID, item.Article)
		if err != nil {
			return CartView{}, fmt.Errorf("resolve variant %s: %w", item.Article, err)
		}
		lines = append(lines, domain.PricedLine{
			ProductID:   item.ProductID,
			Title:       v.ProductTitle,
			Article:     item.Article,
			Quantity:    item.Quantity,
			PriceKop:    v.PriceKop,
			DiscountPct: v.DiscountPct,
		})
	}
	return CartView{Cart: cart, Lines: lines, Totals: domain.TotalsOf(lines)}, nil
}
