// Package api talks to the remote items collection.
//
// The remote store is a plain JSON collection mounted at /items. The only
// contract is the HTTP status: 2xx means success, anything else is a failure
// whose body text is the detail.
package api

import (
	"context"

	"github.com/idilsaglam/grocery/internal/model"
)

// Store is the remote item collection as seen by the list controller.
type Store interface {
	// List reads the whole collection.
	List(ctx context.Context) ([]model.Item, error)
	// Create sends a full item payload.
	Create(ctx context.Context, it model.Item) error
	// SetChecked partially updates the checked flag of one item.
	SetChecked(ctx context.Context, id string, checked bool) error
	// Delete removes one item.
	Delete(ctx context.Context, id string) error
}
