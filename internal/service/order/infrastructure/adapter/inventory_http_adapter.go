// internal/service/order/infrastructure/adapter/inventory_http_adapter.go
package adapter

import (
	"context"
	"encoding/json"
	"net/http"

	"atlas/internal/pkg/httpclient"
	"atlas/internal/service/order/domain/port"

	"github.com/pkg/errors"
)

// InventoryServiceName is the logical name the resolver maps to a base URL.
const InventoryServiceName = "inventory-service"

// InventoryHTTPAdapter implements port.InventoryService against the
// inventory participant's HTTP surface. Classification contract: 404 is an
// absent SKU, 400 on a deduct is an underflow, any transport error or 5xx
// means the outcome is unknown and the participant is unavailable.
type InventoryHTTPAdapter struct {
	client *httpclient.Client
}

var _ port.InventoryService = (*InventoryHTTPAdapter)(nil)

func NewInventoryHTTPAdapter(client *httpclient.Client) *InventoryHTTPAdapter {
	return &InventoryHTTPAdapter{client: client}
}

func (a *InventoryHTTPAdapter) Lookup(ctx context.Context, sku, token string) (*port.Item, error) {
	resp, err := a.client.DoJSON(ctx, http.MethodGet, InventoryServiceName, "/"+sku, token, nil)
	if err != nil {
		return nil, errors.Wrapf(port.ErrUnavailable, "lookup %s: %v", sku, err)
	}
	switch {
	case resp.StatusCode == http.StatusOK:
		var item port.Item
		if err := json.Unmarshal(resp.Body, &item); err != nil {
			return nil, errors.Wrapf(err, "decode item %s", sku)
		}
		return &item, nil
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.Wrapf(port.ErrNotFound, "sku %s", sku)
	default:
		return nil, errors.Wrapf(port.ErrUnavailable, "lookup %s: status %d", sku, resp.StatusCode)
	}
}

type adjustRequest struct {
	Quantity  int    `json:"quantity"`
	Direction string `json:"direction"`
}

func (a *InventoryHTTPAdapter) Adjust(ctx context.Context, sku string, quantity int, direction port.Direction, token string) error {
	body := adjustRequest{Quantity: quantity, Direction: string(direction)}
	resp, err := a.client.DoJSON(ctx, http.MethodPost, InventoryServiceName, "/"+sku+"/adjust", token, body)
	if err != nil {
		return errors.Wrapf(port.ErrUnavailable, "adjust %s: %v", sku, err)
	}
	switch {
	case resp.StatusCode == http.StatusOK:
		return nil
	case resp.StatusCode == http.StatusNotFound:
		return errors.Wrapf(port.ErrNotFound, "sku %s", sku)
	case resp.StatusCode == http.StatusBadRequest && direction == port.DirectionDeduct:
		return errors.Wrapf(port.ErrInsufficientStock, "sku %s: %s", sku, detail(resp.Body))
	case resp.StatusCode < http.StatusInternalServerError:
		return errors.Errorf("adjust %s rejected: status %d: %s", sku, resp.StatusCode, detail(resp.Body))
	default:
		return errors.Wrapf(port.ErrUnavailable, "adjust %s: status %d", sku, resp.StatusCode)
	}
}

// AdjustBatch walks the items in order and stops at the first failing SKU.
// Adjustments already applied are not rolled back here.
func (a *InventoryHTTPAdapter) AdjustBatch(ctx context.Context, items []port.Item, direction port.Direction, token string) error {
	for _, item := range items {
		if err := a.Adjust(ctx, item.SKU, item.Quantity, direction, token); err != nil {
			return errors.Wrapf(err, "batch adjust stopped at %s", item.SKU)
		}
	}
	return nil
}

type provisionRequest struct {
	SKU      string `json:"sku"`
	Quantity int    `json:"quantity"`
}

// Provision creates the SKU on the participant. An "already exists" answer
// counts as success so the import path stays idempotent.
func (a *InventoryHTTPAdapter) Provision(ctx context.Context, sku string, quantity int, token string) error {
	body := provisionRequest{SKU: sku, Quantity: quantity}
	resp, err := a.client.DoJSON(ctx, http.MethodPost, InventoryServiceName, "/", token, body)
	if err != nil {
		return errors.Wrapf(port.ErrUnavailable, "provision %s: %v", sku, err)
	}
	switch {
	case resp.StatusCode == http.StatusCreated, resp.StatusCode == http.StatusBadRequest:
		return nil
	case resp.StatusCode < http.StatusInternalServerError:
		return errors.Errorf("provision %s rejected: status %d", sku, resp.StatusCode)
	default:
		return errors.Wrapf(port.ErrUnavailable, "provision %s: status %d", sku, resp.StatusCode)
	}
}

func detail(body []byte) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != "" {
		return payload.Detail
	}
	return string(body)
}
