package routes

import (
	"github.com/storefront-labs/storefront-backend/internal/address"
	"github.com/storefront-labs/storefront-backend/internal/cart"
	"github.com/storefront-labs/storefront-backend/internal/categories"
	"github.com/storefront-labs/storefront-backend/internal/checkout"
	"github.com/storefront-labs/storefront-backend/internal/orders"
	product "github.com/storefront-labs/storefront-backend/internal/products"
	"github.com/storefront-labs/storefront-backend/internal/users"
	"github.com/storefront-labs/storefront-backend/pkg/db"
	"github.com/storefront-labs/storefront-backend/pkg/logger"
	"github.com/storefront-labs/storefront-backend/pkg/metrics"
)

// Services bundles the domain services the HTTP layer adapts.
type Services struct {
	Users      users.Service
	Addresses  address.Service
	Categories categories.Service
	Products   product.Service
	Cart       cart.Service
	Orders     orders.Service
	Checkout   checkout.Service
}

// NewServices wires every repository and service over one database client.
func NewServices(client *db.Client, orderMetrics *metrics.OrderMetrics, logg *logger.Logger) (*Services, error) {
	conn := client.DB()

	userRepo := users.NewRepository(conn)
	addressRepo := address.NewRepository(conn)
	categoryRepo := categories.NewRepository(conn)
	productRepo := product.NewRepository(conn)
	cartRepo := cart.NewRepository(conn)
	orderRepo := orders.NewRepository(conn)

	var (
		out Services
		err error
	)
	if out.Users, err = users.NewService(userRepo); err != nil {
		return nil, err
	}
	if out.Addresses, err = address.NewService(addressRepo, logg); err != nil {
		return nil, err
	}
	if out.Categories, err = categories.NewService(categoryRepo, logg); err != nil {
		return nil, err
	}
	if out.Products, err = product.NewService(productRepo, logg); err != nil {
		return nil, err
	}
	if out.Cart, err = cart.NewService(cartRepo, productRepo, logg); err != nil {
		return nil, err
	}
	if out.Orders, err = orders.NewService(orderRepo, client, addressRepo, productRepo, orderMetrics, logg); err != nil {
		return nil, err
	}
	if out.Checkout, err = checkout.NewService(client, cartRepo, addressRepo, orderRepo, orderMetrics, logg); err != nil {
		return nil, err
	}
	return &out, nil
}
