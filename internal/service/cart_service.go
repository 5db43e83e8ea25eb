package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/coderarham/storefront/internal/cache"
	"github.com/coderarham/storefront/internal/domain"
	"github.com/coderarham/storefront/internal/repository"
	"golang.org/x/sync/singleflight"
)

type CartService struct {
	repo  repository.CartRepository
	cache cache.CartCache
	sfg   singleflight.Group // Prevents cache stampede
}

func NewCartService(repo repository.CartRepository, cache cache.CartCache) *CartService {
	return &CartService{
		repo:  repo,
		cache: cache,
	}
}

// GetCart never surfaces cart absence as an error: a user with no cart
// document gets the canonical empty cart.
func (s *CartService) GetCart(ctx context.Context, userID string) (*domain.Cart, error) {
	// Use singleflight to prevent multiple concurrent cache misses for same key
	v, err, _ := s.sfg.Do(userID, func() (interface{}, error) {

		cart, err := s.cache.Get(ctx, userID)
		if err == nil {
			return cart, nil // cart is in cache
		}

		if !errors.Is(err, cache.ErrCacheMiss) {
			log.Printf("cache get error: %v \n", err) // log cache error but continue
		}

		cart, errGet := s.repo.GetCart(ctx, userID)
		if errGet != nil && errors.Is(errGet, repository.ErrCartNotFound) {
			return domain.EmptyCart(userID), nil
		}
		if errGet != nil {
			return nil, errGet // err from repo is not cache miss, return it
		}

		// set cache
		go func() {
			errSet := s.cache.Set(context.Background(), userID, cart)
			if errSet != nil {
				log.Printf("cache set error: %v \n", errSet)
			}
		}()

		return cart, nil // cart was not in cache, return it from repo
	})

	if err != nil {
		return nil, err
	}

	return v.(*domain.Cart), nil
}

func (s *CartService) AddItem(ctx context.Context, userID string, item domain.CartItem) (*domain.Cart, error) {
	cart, errAdd := s.repo.AddItem(ctx, userID, item)
	if errAdd != nil {
		log.Printf("repo add item error: %v \n", errAdd)
		return nil, errAdd
	}

	invalidateCache(s, userID)
	return cart, nil
}

func (s *CartService) UpdateQuantity(ctx context.Context, userID, productID, size string, quantity int) (*domain.Cart, error) {
	if quantity <= 0 {
		return nil, repository.ErrInvalidQuantity
	}

	cart, errUpdate := s.repo.UpdateQuantity(ctx, userID, productID, size, quantity)
	if errUpdate != nil {
		log.Printf("repo update item quantity error: %v \n", errUpdate)
		return nil, errUpdate
	}

	invalidateCache(s, userID)
	return cart, nil
}

func (s *CartService) RemoveItem(ctx context.Context, userID, productID, size string) (*domain.Cart, error) {
	cart, errRemove := s.repo.RemoveItem(ctx, userID, productID, size)
	if errRemove != nil {
		log.Printf("repo remove item error: %v \n", errRemove)
		return nil, errRemove
	}

	invalidateCache(s, userID)
	return cart, nil
}

func (s *CartService) ClearCart(ctx context.Context, userID string) (*domain.Cart, error) {
	cart, errClear := s.repo.ClearCart(ctx, userID)
	if errClear != nil {
		log.Printf("repo clear cart error: %v \n", errClear)
		return nil, errClear
	}

	invalidateCache(s, userID)
	return cart, nil
}

func invalidateCache(s *CartService, userID string) {
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	errInvalidate := s.cache.Delete(ctx, userID)
	if errInvalidate != nil {
		log.Printf("cache invalidate error: %v \n", errInvalidate)
	}
}
