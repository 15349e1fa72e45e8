package app

import (
	"context"
	"strings"

	"petlink/internal/util"
	"petlink/pkg/domain"
	"petlink/pkg/validate"
)

// ListProposals returns one page of proposals visible to the user.
func (a *App) ListProposals(ctx context.Context, skip, limit int) ([]domain.Proposal, error) {
	ctx = util.WithRequestID(ctx)
	sess, err := a.requireSession()
	if err != nil {
		return nil, err
	}
	if skip < 0 || limit < 0 {
		return nil, a.reportValidation(&ValidationError{Fields: map[string]string{"paging": "Skip and limit cannot be negative."}})
	}
	ps, err := a.api.ListProposals(ctx, sess.Token, skip, limit)
	if err != nil {
		return nil, a.reportRequest("Failed to fetch proposals", newRequestError("list proposals", "", err))
	}
	return ps, nil
}

// CreateProposal offers the logged-in petsitter's services for an order.
func (a *App) CreateProposal(ctx context.Context, orderID int64, price domain.Price, comment string) (domain.Proposal, error) {
	ctx = util.WithRequestID(ctx)
	sess, err := a.requireSession()
	if err != nil {
		return domain.Proposal{}, err
	}
	if sess.Role != domain.RolePetsitter {
		a.toasts.Warning("Only petsitters can send proposals")
		return domain.Proposal{}, ErrRoleRequired
	}
	if err := validate.Price(price); err != nil {
		return domain.Proposal{}, a.reportValidation(err)
	}

	payload := domain.ProposalPayload{OrderID: orderID, PetsitterID: sess.UserID, Price: price}
	if c := strings.TrimSpace(comment); c != "" {
		payload.Comment = &comment
	}
	p, err := a.api.CreateProposal(ctx, sess.Token, payload)
	if err != nil {
		return domain.Proposal{}, a.reportRequest("Error creating proposal", newRequestError("create proposal", "Failed to create proposal", err))
	}
	util.LoggerFromContext(ctx).Info("proposal created", "proposal_id", p.ID, "order_id", orderID)
	a.toasts.Success("Proposal sent successfully")
	return p, nil
}

// UpdateProposal changes price, comment or status of a proposal.
func (a *App) UpdateProposal(ctx context.Context, id int64, patch domain.ProposalPatch) (domain.Proposal, error) {
	ctx = util.WithRequestID(ctx)
	sess, err := a.requireSession()
	if err != nil {
		return domain.Proposal{}, err
	}
	if err := validate.ProposalPatch(patch); err != nil {
		return domain.Proposal{}, a.reportValidation(err)
	}
	p, err := a.api.UpdateProposal(ctx, sess.Token, id, patch)
	if err != nil {
		return domain.Proposal{}, a.reportRequest("Error updating proposal", newRequestError("update proposal", "Failed to update proposal", err))
	}
	a.toasts.Success("Proposal updated successfully")
	return p, nil
}

// DeleteProposal withdraws a proposal after confirmation.
func (a *App) DeleteProposal(ctx context.Context, id int64) error {
	ctx = util.WithRequestID(ctx)
	sess, err := a.requireSession()
	if err != nil {
		return err
	}
	if !a.confirmed("Are you sure you want to delete this proposal?") {
		return ErrNotConfirmed
	}
	if err := a.api.DeleteProposal(ctx, sess.Token, id); err != nil {
		return a.reportRequest("Error deleting proposal", newRequestError("delete proposal", "Failed to delete proposal", err))
	}
	a.toasts.Success("Proposal deleted successfully")
	return nil
}
