package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"petlink/pkg/domain"
)

// OrdersQuery renders filters as the listing query string. Empty values
// are omitted; order_by is always present.
func OrdersQuery(f domain.OrderFilters) url.Values {
	q := url.Values{}
	sort := f.SortOrder
	if sort != domain.SortDesc {
		sort = domain.SortAsc
	}
	q.Set("order_by", string(sort))
	if s := strings.TrimSpace(string(f.Status)); s != "" {
		q.Set("status", s)
	}
	if v := strings.TrimSpace(f.DateFrom); v != "" {
		q.Set("date_from", v)
	}
	if v := strings.TrimSpace(f.DateTo); v != "" {
		q.Set("date_to", v)
	}
	if f.Skip > 0 {
		q.Set("skip", strconv.Itoa(f.Skip))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	return q
}

func (c *Client) ListOrders(ctx context.Context, token string, f domain.OrderFilters) ([]domain.Order, error) {
	var orders []domain.Order
	path := "/care_orders/?" + OrdersQuery(f).Encode()
	if err := c.doJSON(ctx, http.MethodGet, path, token, nil, &orders); err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, nil
}

func (c *Client) GetOrder(ctx context.Context, token string, id int64) (domain.Order, error) {
	var order domain.Order
	if err := c.doJSON(ctx, http.MethodGet, fmt.Sprintf("/care_orders/%d", id), token, nil, &order); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

func (c *Client) CreateOrder(ctx context.Context, token string, payload domain.OrderPayload) (domain.Order, error) {
	var order domain.Order
	if err := c.doJSON(ctx, http.MethodPost, "/care_orders/", token, payload, &order); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

func (c *Client) UpdateOrder(ctx context.Context, token string, id int64, patch domain.OrderPatch) (domain.Order, error) {
	var order domain.Order
	if err := c.doJSON(ctx, http.MethodPatch, fmt.Sprintf("/care_orders/%d", id), token, patch, &order); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

func (c *Client) DeleteOrder(ctx context.Context, token string, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/care_orders/%d", id), token, nil, nil)
}
