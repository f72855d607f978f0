package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ProductDetails describes one purchasable in-app product.
type ProductDetails struct {
	ProductID   string
	Title       string
	PriceMicros int64
	Currency    string
}

// PurchaseState follows the store's lifecycle for a purchase.
type PurchaseState string

const (
	PurchasePending   PurchaseState = "pending"
	PurchasePurchased PurchaseState = "purchased"
)

// Purchase is the provider's record of one completed or pending purchase.
type Purchase struct {
	OrderID       string
	ProductID     string
	PurchaseToken string
	State         PurchaseState
	Acknowledged  bool
	PurchasedAt   time.Time
}

// BillingService is the boundary to the external billing provider. The
// core only uses it as a trigger: a verified, acknowledged purchase flips
// an entitlement or executes a destroy; payment logic stays outside.
type BillingService interface {
	QueryProduct(ctx context.Context, productID string) (*ProductDetails, error)
	LaunchPurchase(ctx context.Context, userID string, details *ProductDetails) (*Purchase, error)
	Acknowledge(ctx context.Context, purchaseToken string) error
	Consume(ctx context.Context, purchaseToken string) error
}

// SimulatedBillingService - local implementation for development and tests.
// Every launched purchase settles immediately as purchased.
type SimulatedBillingService struct {
	catalog map[string]*ProductDetails

	mu        sync.Mutex
	purchases map[string]*Purchase
	consumed  map[string]bool
}

func NewSimulatedBillingService(productIDs ...string) *SimulatedBillingService {
	catalog := make(map[string]*ProductDetails)
	for _, id := range productIDs {
		catalog[id] = &ProductDetails{
			ProductID:   id,
			Title:       id,
			PriceMicros: 990000,
			Currency:    "USD",
		}
	}
	return &SimulatedBillingService{
		catalog:   catalog,
		purchases: make(map[string]*Purchase),
		consumed:  make(map[string]bool),
	}
}

func (s *SimulatedBillingService) QueryProduct(ctx context.Context, productID string) (*ProductDetails, error) {
	details, ok := s.catalog[productID]
	if !ok {
		log.Printf("QueryProduct: product %s not in catalog", productID)
		return nil, fmt.Errorf("product %s not found", productID)
	}
	return details, nil
}

func (s *SimulatedBillingService) LaunchPurchase(ctx context.Context, userID string, details *ProductDetails) (*Purchase, error) {
	if _, ok := s.catalog[details.ProductID]; !ok {
		return nil, fmt.Errorf("product %s not found", details.ProductID)
	}

	purchase := &Purchase{
		OrderID:       uuid.New().String(),
		ProductID:     details.ProductID,
		PurchaseToken: uuid.New().String(),
		State:         PurchasePurchased,
		PurchasedAt:   time.Now(),
	}

	s.mu.Lock()
	s.purchases[purchase.PurchaseToken] = purchase
	s.mu.Unlock()

	log.Printf("LaunchPurchase: user %s purchased %s (order %s)", userID, details.ProductID, purchase.OrderID)
	return purchase, nil
}

func (s *SimulatedBillingService) Acknowledge(ctx context.Context, purchaseToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	purchase, ok := s.purchases[purchaseToken]
	if !ok {
		return fmt.Errorf("unknown purchase token %s", purchaseToken)
	}
	if purchase.State != PurchasePurchased {
		return fmt.Errorf("purchase %s not in purchased state", purchase.OrderID)
	}
	purchase.Acknowledged = true
	return nil
}

func (s *SimulatedBillingService) Consume(ctx context.Context, purchaseToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	purchase, ok := s.purchases[purchaseToken]
	if !ok {
		return fmt.Errorf("unknown purchase token %s", purchaseToken)
	}
	if s.consumed[purchaseToken] {
		return fmt.Errorf("purchase %s already consumed", purchase.OrderID)
	}
	s.consumed[purchaseToken] = true
	log.Printf("Consume: token for order %s consumed", purchase.OrderID)
	return nil
}
