package odoo

import (
	"context"
	"fmt"
)

const (
	ModelStockQuant    = "stock.quant"
	ModelProduct       = "product.product"
	ModelStockLocation = "stock.location"

	MethodSearchRead = "search_read"
	MethodRead       = "read"
)

var (
	stockQuantFields = []string{"product_id", "location_id", "quantity", "reserved_quantity"}
	productFields    = []string{"display_name", "barcode"}
	locationFields   = []string{"complete_name"}
)

// Condition is one (field, operator, value) term of a search domain.
type Condition [3]any

// Domain is a conjunction of conditions.
type Domain []Condition

// InternalLocations restricts stock.quant to locations counted as on-hand stock.
var InternalLocations = Domain{{"location_id.usage", "=", "internal"}}

// InventorySource is the read side of Odoo used to build an inventory snapshot.
type InventorySource interface {
	Authenticate(ctx context.Context) error
	InternalStockQuants(ctx context.Context) ([]StockQuant, error)
	Products(ctx context.Context, ids []int64) ([]Product, error)
	Locations(ctx context.Context, ids []int64) ([]Location, error)
}

var _ InventorySource = (*Client)(nil)

// SearchRead returns the records of model matching domain, limited to fields.
func (c *Client) SearchRead(ctx context.Context, model string, domain Domain, fields []string, result any) error {
	if domain == nil {
		domain = Domain{}
	}
	return c.CallKW(ctx, model, MethodSearchRead, nil, map[string]any{
		"domain": domain,
		"fields": fields,
	}, result)
}

// Read returns exactly the records of model with the given ids.
func (c *Client) Read(ctx context.Context, model string, ids []int64, fields []string, result any) error {
	return c.CallKW(ctx, model, MethodRead, []any{ids}, map[string]any{
		"fields": fields,
	}, result)
}

func (c *Client) InternalStockQuants(ctx context.Context) ([]StockQuant, error) {
	var quants []StockQuant
	if err := c.SearchRead(ctx, ModelStockQuant, InternalLocations, stockQuantFields, &quants); err != nil {
		return nil, fmt.Errorf("search stock quants: %w", err)
	}
	return quants, nil
}

func (c *Client) Products(ctx context.Context, ids []int64) ([]Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var products []Product
	if err := c.Read(ctx, ModelProduct, ids, productFields, &products); err != nil {
		return nil, fmt.Errorf("read products: %w", err)
	}
	return products, nil
}

func (c *Client) Locations(ctx context.Context, ids []int64) ([]Location, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var locations []Location
	if err := c.Read(ctx, ModelStockLocation, ids, locationFields, &locations); err != nil {
		return nil, fmt.Errorf("read locations: %w", err)
	}
	return locations, nil
}
