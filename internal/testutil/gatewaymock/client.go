package gatewaymock

import (
	"context"
	"errors"

	"lr-validation-backend/internal/adapter/gateway"

	"github.com/google/uuid"
)

var _ gateway.Client = (*Client)(nil)

var errUnimplemented = errors.New("gatewaymock: method not implemented")

// Client is a function-backed mock of gateway.Client.
// Unset methods return errUnimplemented.
type Client struct {
	StartJobFn         func(ctx context.Context, documentID uint64) (*gateway.Job, error)
	GetJobFn           func(ctx context.Context, jobID uuid.UUID) (*gateway.Job, error)
	ListInvoicesFn     func(ctx context.Context, documentID uint64) ([]gateway.Invoice, error)
	PushCustomDataFn   func(ctx context.Context, invoiceID uint64, data map[string]string) error
	ValidateDocumentFn func(ctx context.Context, documentID uint64) error
}

func (m *Client) StartJob(ctx context.Context, documentID uint64) (*gateway.Job, error) {
	if m.StartJobFn != nil {
		return m.StartJobFn(ctx, documentID)
	}
	return nil, errUnimplemented
}

func (m *Client) GetJob(ctx context.Context, jobID uuid.UUID) (*gateway.Job, error) {
	if m.GetJobFn != nil {
		return m.GetJobFn(ctx, jobID)
	}
	return nil, errUnimplemented
}

func (m *Client) ListInvoices(ctx context.Context, documentID uint64) ([]gateway.Invoice, error) {
	if m.ListInvoicesFn != nil {
		return m.ListInvoicesFn(ctx, documentID)
	}
	return nil, errUnimplemented
}

func (m *Client) PushCustomData(ctx context.Context, invoiceID uint64, data map[string]string) error {
	if m.PushCustomDataFn != nil {
		return m.PushCustomDataFn(ctx, invoiceID, data)
	}
	return errUnimplemented
}

func (m *Client) ValidateDocument(ctx context.Context, documentID uint64) error {
	if m.ValidateDocumentFn != nil {
		return m.ValidateDocumentFn(ctx, documentID)
	}
	return errUnimplemented
}
