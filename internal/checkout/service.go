package checkout

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"

	"github.com/storefront-labs/storefront-backend/internal/address"
	"github.com/storefront-labs/storefront-backend/internal/cart"
	"github.com/storefront-labs/storefront-backend/internal/orders"
	"github.com/storefront-labs/storefront-backend/pkg/db"
	"github.com/storefront-labs/storefront-backend/pkg/db/models"
	"github.com/storefront-labs/storefront-backend/pkg/enums"
	pkgerrors "github.com/storefront-labs/storefront-backend/pkg/errors"
	"github.com/storefront-labs/storefront-backend/pkg/logger"
	"github.com/storefront-labs/storefront-backend/pkg/validation"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type metricsRecorder interface {
	OrdersCreated(n int)
	Checkout(outcome string)
}

// Service converts a user's cart into orders.
type Service interface {
	Checkout(ctx context.Context, userID uuid.UUID, input CheckoutInput) (*Result, error)
}

// CheckoutInput selects the delivery address for every order created.
type CheckoutInput struct {
	AddressID uuid.UUID `json:"address_id" validate:"required"`
}

// Result lists the orders created, one per cart line, and their combined total.
type Result struct {
	Orders []orders.OrderDTO `json:"orders"`
	Total  decimal.Decimal   `json:"total"`
}

type service struct {
	tx        txRunner
	carts     *cart.Repository
	addresses *address.Repository
	orders    orders.Repository
	metrics   metricsRecorder
	logg      *logger.Logger
}

// NewService builds the checkout service.
func NewService(
	tx txRunner,
	carts *cart.Repository,
	addresses *address.Repository,
	ordersRepo orders.Repository,
	metrics metricsRecorder,
	logg *logger.Logger,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if addresses == nil {
		return nil, fmt.Errorf("address repository required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if metrics == nil {
		return nil, fmt.Errorf("metrics recorder required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		tx:        tx,
		carts:     carts,
		addresses: addresses,
		orders:    ordersRepo,
		metrics:   metrics,
		logg:      logg,
	}, nil
}

// Checkout runs in one transaction: every cart line becomes a Pending order with
// the same quantity and the converted lines are deleted. Nothing is written when
// any line fails validation.
func (s *service) Checkout(ctx context.Context, userID uuid.UUID, input CheckoutInput) (*Result, error) {
	ctx = s.logg.WithUserID(ctx, userID.String())
	result, err := s.checkout(ctx, userID, input)
	if err != nil {
		s.metrics.Checkout(string(pkgerrors.CodeOf(err)))
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "checkout rejected")
		return nil, err
	}
	s.metrics.Checkout("success")
	s.metrics.OrdersCreated(len(result.Orders))

	ctx = s.logg.WithFields(ctx, map[string]any{"orders": len(result.Orders), "total": result.Total.String()})
	s.logg.Info(ctx, "checkout completed")
	return result, nil
}

func (s *service) checkout(ctx context.Context, userID uuid.UUID, input CheckoutInput) (*Result, error) {
	if err := validation.Struct(&input); err != nil {
		return nil, err
	}

	result := &Result{Total: decimal.Zero}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if _, err := s.addresses.WithTx(tx).FindForUser(ctx, input.AddressID, userID); err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.New(pkgerrors.CodeForeignKey, "address does not exist").
					WithDetails(map[string]any{"field": "address_id"})
			}
			return db.MapError(err, "load address")
		}

		carts := s.carts.WithTx(tx)
		lines, err := carts.ListByUserForUpdate(ctx, userID)
		if err != nil {
			return db.MapError(err, "load cart")
		}
		if len(lines) == 0 {
			return validation.Field("cart", "is empty")
		}
		if err := validateLines(lines); err != nil {
			return err
		}

		placed := make([]models.Order, 0, len(lines))
		for _, line := range lines {
			placed = append(placed, models.Order{
				UserID:    userID,
				AddressID: input.AddressID,
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				Status:    enums.OrderStatusPending,
			})
		}
		if err := s.orders.WithTx(tx).CreateBatch(ctx, placed); err != nil {
			return db.MapError(err, "create orders")
		}

		// A line edited after it was read no longer matches its version and rolls
		// the whole checkout back.
		deleted, err := carts.DeleteLines(ctx, userID, lines)
		if err != nil {
			return db.MapError(err, "clear cart")
		}
		if deleted != int64(len(lines)) {
			return pkgerrors.New(pkgerrors.CodeConflict, "cart changed during checkout").
				WithDetails(map[string]any{"expected": len(lines), "deleted": deleted})
		}

		for i := range placed {
			placed[i].Product = lines[i].Product
			dto := orders.FromModel(&placed[i])
			result.Orders = append(result.Orders, *dto)
			result.Total = result.Total.Add(placed[i].LineTotal())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// validateLines collects every unavailable line so the caller sees all problems
// at once.
func validateLines(lines []models.Cart) error {
	var problems error
	for _, line := range lines {
		switch {
		case line.Product == nil:
			problems = multierr.Append(problems, fmt.Errorf("line %s: product no longer exists", line.ID))
		case !line.Product.IsActive:
			problems = multierr.Append(problems, fmt.Errorf("line %s: product %s is not available", line.ID, line.Product.SKU))
		case line.Quantity < 1:
			problems = multierr.Append(problems, fmt.Errorf("line %s: quantity must be at least 1", line.ID))
		}
	}
	if problems == nil {
		return nil
	}

	errs := multierr.Errors(problems)
	messages := make([]string, 0, len(errs))
	for _, err := range errs {
		messages = append(messages, err.Error())
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, problems, "cart contains unavailable items").
		WithDetails(map[string]any{"lines": messages})
}
