package apiclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"petlink/pkg/domain"
)

func (c *Client) ListProposals(ctx context.Context, token string, skip, limit int) ([]domain.Proposal, error) {
	q := url.Values{}
	if skip > 0 {
		q.Set("skip", strconv.Itoa(skip))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	path := "/proposals/"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}
	var out []domain.Proposal
	if err := c.doJSON(ctx, http.MethodGet, path, token, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []domain.Proposal{}
	}
	return out, nil
}

func (c *Client) CreateProposal(ctx context.Context, token string, payload domain.ProposalPayload) (domain.Proposal, error) {
	var p domain.Proposal
	if err := c.doJSON(ctx, http.MethodPost, "/proposals/", token, payload, &p); err != nil {
		return domain.Proposal{}, err
	}
	return p, nil
}

func (c *Client) UpdateProposal(ctx context.Context, token string, id int64, patch domain.ProposalPatch) (domain.Proposal, error) {
	var p domain.Proposal
	if err := c.doJSON(ctx, http.MethodPatch, fmt.Sprintf("/proposals/%d", id), token, patch, &p); err != nil {
		return domain.Proposal{}, err
	}
	return p, nil
}

func (c *Client) DeleteProposal(ctx context.Context, token string, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, fmt.Sprintf("/proposals/%d", id), token, nil, nil)
}
