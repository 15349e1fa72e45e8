package app

import (
	"context"
	"time"

	"petlink/internal/util"
	"petlink/pkg/domain"
	"petlink/pkg/validate"
)

const editDateLayout = "2006-01-02T15:04"

// SetFilters replaces the listing filters and reloads the order listing.
func (a *App) SetFilters(ctx context.Context, f domain.OrderFilters) error {
	ctx = util.WithRequestID(ctx)
	if err := checkFilters(&f, a.loc); err != nil {
		return a.reportValidation(err)
	}
	a.mu.Lock()
	a.filters = f
	a.mu.Unlock()
	return a.dispatch(ctx, EventFiltersChanged)
}

func checkFilters(f *domain.OrderFilters, loc *time.Location) error {
	fields := map[string]string{}
	if f.Status != "" && !f.Status.Valid() {
		fields[validate.FieldStatus] = "Invalid status selected."
	}
	switch f.SortOrder {
	case "":
		f.SortOrder = domain.SortAsc
	case domain.SortAsc, domain.SortDesc:
	default:
		fields["sort_order"] = "Sort order must be 'asc' or 'desc'."
	}
	if f.DateFrom != "" {
		if _, ok := validate.ParseDate(f.DateFrom, loc); !ok {
			fields["date_from"] = "Date from is not a valid date."
		}
	}
	if f.DateTo != "" {
		if _, ok := validate.ParseDate(f.DateTo, loc); !ok {
			fields["date_to"] = "Date to is not a valid date."
		}
	}
	if f.Skip < 0 || f.Limit < 0 {
		fields["paging"] = "Skip and limit cannot be negative."
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// ListOrders reloads the order listing with the current filters and
// returns the refreshed cache.
func (a *App) ListOrders(ctx context.Context) ([]domain.Order, error) {
	ctx = util.WithRequestID(ctx)
	if _, err := a.requireSession(); err != nil {
		return nil, err
	}
	if err := a.refreshOrders(ctx); err != nil {
		return nil, err
	}
	return a.Orders(), nil
}

// refreshOrders replaces the order cache wholesale. A response that was
// overtaken by a newer listing or a logout is dropped.
func (a *App) refreshOrders(ctx context.Context) error {
	logger := util.LoggerFromContext(ctx)

	a.mu.Lock()
	if !a.session.Active() {
		a.mu.Unlock()
		return nil
	}
	a.orderGen++
	gen := a.orderGen
	token := a.session.Token
	filters := a.filters
	a.mu.Unlock()

	orders, err := a.api.ListOrders(ctx, token, filters)

	a.mu.Lock()
	stale := gen != a.orderGen
	if !stale && err == nil {
		a.orders = orders
	}
	a.mu.Unlock()

	if stale {
		logger.Debug("discarding stale order listing", "generation", gen)
		return nil
	}
	if err != nil {
		return a.reportRequest("Failed to fetch orders", newRequestError("list orders", "", err))
	}
	logger.Debug("orders loaded", "count", len(orders))
	return nil
}

// GetOrder fetches one order and refreshes its cached copy.
func (a *App) GetOrder(ctx context.Context, id int64) (domain.Order, error) {
	ctx = util.WithRequestID(ctx)
	sess, err := a.requireSession()
	if err != nil {
		return domain.Order{}, err
	}
	order, err := a.api.GetOrder(ctx, sess.Token, id)
	if err != nil {
		return domain.Order{}, a.reportRequest("Error loading order", newRequestError("get order", "Failed to load order", err))
	}
	a.mu.Lock()
	if a.stillCurrentLocked(sess.Token) {
		a.replaceOrderLocked(order)
	}
	a.mu.Unlock()
	return order, nil
}

// CreateOrder submits a new order as the logged-in owner. Dates are sent as
// UTC instants and the status is always open.
func (a *App) CreateOrder(ctx context.Context, draft domain.OrderDraft) (domain.Order, error) {
	ctx = util.WithRequestID(ctx)
	sess, err := a.requireSession()
	if err != nil {
		return domain.Order{}, err
	}
	if sess.Role != domain.RoleOwner {
		a.toasts.Warning("Only owners can create orders")
		return domain.Order{}, ErrRoleRequired
	}

	a.mu.Lock()
	a.forms.Order = draft
	a.mu.Unlock()

	if err := validate.OrderDraft(draft, false, a.loc); err != nil {
		return domain.Order{}, a.reportValidation(err)
	}
	start, _ := validate.CanonicalDate(draft.StartDate, a.loc)
	end, _ := validate.CanonicalDate(draft.EndDate, a.loc)
	payload := domain.OrderPayload{
		Title:       draft.Title,
		Description: draft.Description,
		StartDate:   start,
		EndDate:     end,
		Status:      domain.OrderOpen,
	}

	order, err := a.api.CreateOrder(ctx, sess.Token, payload)
	if err != nil {
		return domain.Order{}, a.reportRequest("Error creating order", newRequestError("create order", "Failed to create order", err))
	}

	a.mu.Lock()
	if a.stillCurrentLocked(sess.Token) {
		a.orders = append(a.orders, order)
		a.forms.Order = domain.OrderDraft{}
	}
	a.mu.Unlock()

	util.LoggerFromContext(ctx).Info("order created", "order_id", order.ID)
	a.toasts.Success("Order created successfully")
	return order, nil
}

// EditDraft prefills an edit form from order, showing dates in the local
// zone.
func (a *App) EditDraft(order domain.Order) domain.OrderDraft {
	d := domain.OrderDraft{
		Title:     order.Title,
		StartDate: a.localDate(order.StartDate),
		EndDate:   a.localDate(order.EndDate),
		Status:    order.Status,
	}
	if order.Description != nil {
		d.Description = *order.Description
	}
	return d
}

// Server timestamps without a zone are UTC.
func (a *App) localDate(value string) string {
	t, ok := validate.ParseDate(value, time.UTC)
	if !ok {
		return value
	}
	return t.In(a.loc).Format(editDateLayout)
}

// UpdateOrder sends the edited fields of order id.
func (a *App) UpdateOrder(ctx context.Context, id int64, draft domain.OrderDraft) (domain.Order, error) {
	ctx = util.WithRequestID(ctx)
	sess, err := a.requireSession()
	if err != nil {
		return domain.Order{}, err
	}
	if err := validate.OrderDraft(draft, true, a.loc); err != nil {
		return domain.Order{}, a.reportValidation(err)
	}
	start, _ := validate.CanonicalDate(draft.StartDate, a.loc)
	end, _ := validate.CanonicalDate(draft.EndDate, a.loc)
	status := draft.Status
	patch := domain.OrderPatch{
		Title:       &draft.Title,
		Description: &draft.Description,
		StartDate:   &start,
		EndDate:     &end,
		Status:      &status,
	}

	order, err := a.api.UpdateOrder(ctx, sess.Token, id, patch)
	if err != nil {
		return domain.Order{}, a.reportRequest("Error updating order", newRequestError("update order", "Failed to update order", err))
	}

	a.mu.Lock()
	if a.stillCurrentLocked(sess.Token) {
		a.replaceOrderLocked(order)
	}
	a.mu.Unlock()

	util.LoggerFromContext(ctx).Info("order updated", "order_id", order.ID)
	a.toasts.Success("Order updated successfully")
	return order, nil
}

func (a *App) replaceOrderLocked(order domain.Order) {
	for i := range a.orders {
		if a.orders[i].ID == order.ID {
			a.orders[i] = order
			break
		}
	}
	if a.selected != nil && a.selected.ID == order.ID {
		o := order
		a.selected = &o
	}
}

// DeleteOrder removes an order and its chat after confirmation. The chat
// goes first; if that fails the order is left untouched.
func (a *App) DeleteOrder(ctx context.Context, id int64) error {
	ctx = util.WithRequestID(ctx)
	logger := util.LoggerFromContext(ctx)
	sess, err := a.requireSession()
	if err != nil {
		return err
	}
	if !a.confirmed("Are you sure you want to delete this order?") {
		return ErrNotConfirmed
	}

	if err := a.api.DeleteMessagesByOrder(ctx, sess.Token, id); err != nil {
		logger.Warn("delete order messages failed", "order_id", id, "error", err)
		return a.reportRequest("Error deleting order", newRequestError("delete order messages", "Failed to delete messages", err))
	}
	if err := a.api.DeleteOrder(ctx, sess.Token, id); err != nil {
		logger.Warn("delete order failed", "order_id", id, "error", err)
		return a.reportRequest("Error deleting order", newRequestError("delete order", "Failed to delete order", err))
	}

	a.mu.Lock()
	kept := a.orders[:0]
	for _, o := range a.orders {
		if o.ID != id {
			kept = append(kept, o)
		}
	}
	a.orders = kept
	if a.selected != nil && a.selected.ID == id {
		a.selected = nil
		a.messages = nil
		a.msgGen++
	}
	a.mu.Unlock()

	logger.Info("order deleted", "order_id", id)
	a.toasts.Success("Order and messages deleted successfully")
	return nil
}
