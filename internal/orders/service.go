package orders

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefront-labs/storefront-backend/pkg/db"
	"github.com/storefront-labs/storefront-backend/pkg/db/models"
	"github.com/storefront-labs/storefront-backend/pkg/enums"
	pkgerrors "github.com/storefront-labs/storefront-backend/pkg/errors"
	"github.com/storefront-labs/storefront-backend/pkg/logger"
	"github.com/storefront-labs/storefront-backend/pkg/pagination"
	"github.com/storefront-labs/storefront-backend/pkg/validation"
)

// Service exposes order placement and the status workflow.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateOrderInput) (*OrderDTO, error)
	Get(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error)
	GetForUser(ctx context.Context, orderID, userID uuid.UUID) (*OrderDTO, error)
	ListForUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderList, error)
	ListByStatus(ctx context.Context, status enums.OrderStatus, params pagination.Params) (*OrderList, error)
	Transition(ctx context.Context, orderID uuid.UUID, next enums.OrderStatus) (*OrderDTO, error)
	Cancel(ctx context.Context, orderID, userID uuid.UUID) (*OrderDTO, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type addressReader interface {
	FindForUser(ctx context.Context, id, userID uuid.UUID) (*models.Address, error)
}

type productReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
}

type metricsRecorder interface {
	OrdersCreated(n int)
	Transition(from, to string)
}

type service struct {
	repo      Repository
	tx        txRunner
	addresses addressReader
	products  productReader
	metrics   metricsRecorder
	logg      *logger.Logger
}

// NewService wires the orders service.
func NewService(repo Repository, tx txRunner, addresses addressReader, products productReader, metrics metricsRecorder, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if addresses == nil {
		return nil, fmt.Errorf("address reader required")
	}
	if products == nil {
		return nil, fmt.Errorf("product reader required")
	}
	if metrics == nil {
		return nil, fmt.Errorf("metrics recorder required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:      repo,
		tx:        tx,
		addresses: addresses,
		products:  products,
		metrics:   metrics,
		logg:      logg,
	}, nil
}

// Create places an order. Status always starts at Pending and ordered_date is
// stamped once by the model hook.
func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateOrderInput) (*OrderDTO, error) {
	if err := validation.Struct(&input); err != nil {
		return nil, err
	}
	if _, err := s.addresses.FindForUser(ctx, input.AddressID, userID); err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeForeignKey, "address does not exist").
				WithDetails(map[string]any{"field": "address_id"})
		}
		return nil, db.MapError(err, "load address")
	}
	product, err := s.products.FindByID(ctx, input.ProductID)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, pkgerrors.New(pkgerrors.CodeForeignKey, "product does not exist").
				WithDetails(map[string]any{"field": "product_id"})
		}
		return nil, db.MapError(err, "load product")
	}
	if !product.IsActive {
		return nil, validation.Field("product_id", "product is not available")
	}

	order := &models.Order{
		UserID:    userID,
		AddressID: input.AddressID,
		ProductID: input.ProductID,
		Quantity:  input.Quantity,
		Status:    enums.OrderStatusPending,
	}
	if err := s.repo.Create(ctx, order); err != nil {
		return nil, db.MapError(err, "create order")
	}
	order.Product = product
	s.metrics.OrdersCreated(1)

	ctx = s.logg.WithOrderID(s.logg.WithUserID(ctx, userID.String()), order.ID.String())
	s.logg.Info(ctx, "order placed")
	return FromModel(order), nil
}

func (s *service) Get(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		return nil, db.MapError(err, "load order")
	}
	return FromModel(order), nil
}

func (s *service) GetForUser(ctx context.Context, orderID, userID uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindForUser(ctx, orderID, userID)
	if err != nil {
		return nil, db.MapError(err, "load order")
	}
	return FromModel(order), nil
}

func (s *service) ListForUser(ctx context.Context, userID uuid.UUID, params pagination.Params) (*OrderList, error) {
	rows, err := s.repo.ListByUser(ctx, userID, params)
	if err != nil {
		return nil, db.MapError(err, "list orders")
	}
	return buildList(rows, params), nil
}

func (s *service) ListByStatus(ctx context.Context, status enums.OrderStatus, params pagination.Params) (*OrderList, error) {
	if !status.IsValid() {
		return nil, validation.Field("status", "must be a known order status")
	}
	rows, err := s.repo.ListByStatus(ctx, status, params)
	if err != nil {
		return nil, db.MapError(err, "list orders")
	}
	return buildList(rows, params), nil
}

// Transition moves the order to next. Re-applying the current status is a no-op;
// moves out of Delivered or Cancelled, or backwards, are STATE_CONFLICT.
func (s *service) Transition(ctx context.Context, orderID uuid.UUID, next enums.OrderStatus) (*OrderDTO, error) {
	if !next.IsValid() {
		return nil, validation.Field("status", "must be a known order status")
	}
	return s.transition(ctx, next, func(repo Repository) (*models.Order, error) {
		return repo.FindByID(ctx, orderID)
	})
}

// Cancel lets the owner cancel an order that has not reached a terminal state.
func (s *service) Cancel(ctx context.Context, orderID, userID uuid.UUID) (*OrderDTO, error) {
	return s.transition(ctx, enums.OrderStatusCancelled, func(repo Repository) (*models.Order, error) {
		return repo.FindForUser(ctx, orderID, userID)
	})
}

// transition loads the order with load and writes next inside one transaction.
func (s *service) transition(ctx context.Context, next enums.OrderStatus, load func(Repository) (*models.Order, error)) (*OrderDTO, error) {
	var (
		order *models.Order
		from  enums.OrderStatus
	)
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		loaded, err := load(repo)
		if err != nil {
			return db.MapError(err, "load order")
		}
		order, from = loaded, loaded.Status
		if from == next {
			return nil
		}
		if !from.CanTransitionTo(next) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order status transition not allowed").
				WithDetails(map[string]any{"from": from, "to": next})
		}
		if err := repo.UpdateStatus(ctx, order.ID, order.Version, next); err != nil {
			return db.MapError(err, "update order status")
		}
		order.Status = next
		order.Version++
		return nil
	})
	if err != nil {
		return nil, err
	}

	if from != next {
		s.metrics.Transition(from.String(), next.String())
		ctx = s.logg.WithOrderID(ctx, order.ID.String())
		ctx = s.logg.WithFields(ctx, map[string]any{"from": from.String(), "to": next.String()})
		s.logg.Info(ctx, "order status changed")
	}
	return FromModel(order), nil
}

func buildList(rows []models.Order, params pagination.Params) *OrderList {
	items := make([]OrderDTO, 0, len(rows))
	for i := range rows {
		items = append(items, *FromModel(&rows[i]))
	}
	page := pagination.BuildPage(items, params.Limit, cursorOf)
	return &page
}
