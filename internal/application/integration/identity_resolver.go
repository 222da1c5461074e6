package integration

import (
	"context"
	"errors"

	"github.com/storebridge/backend/internal/domain/integration"
)

// IdentityResolver answers "which remote entity corresponds to this local
// one". It consults the cross-reference store first and, for customers,
// falls back to an email lookup against the remote. It never creates
// anything and never guesses.
type IdentityResolver struct {
	refs    integration.CrossReferenceRepository
	gateway integration.ERPGateway
}

// NewIdentityResolver creates a new IdentityResolver.
func NewIdentityResolver(refs integration.CrossReferenceRepository, gateway integration.ERPGateway) *IdentityResolver {
	return &IdentityResolver{refs: refs, gateway: gateway}
}

// Resolve returns the remote id for a local entity, or 0 when no mapping
// exists. Errors are infrastructure failures, not missing mappings.
func (r *IdentityResolver) Resolve(ctx context.Context, entityType integration.SyncType, localID int64) (int64, error) {
	ref, err := r.refs.Find(ctx, entityType, localID)
	if err != nil {
		if errors.Is(err, integration.ErrCrossReferenceNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return ref.RemoteID, nil
}

// ResolveCustomer resolves a customer by cross-reference, then by email
// against the remote. Returns 0 when neither source knows the customer.
func (r *IdentityResolver) ResolveCustomer(ctx context.Context, localID int64, email string) (int64, error) {
	if localID > 0 {
		remoteID, err := r.Resolve(ctx, integration.SyncTypeCustomer, localID)
		if err != nil || remoteID > 0 {
			return remoteID, err
		}
	}
	return r.ResolveCustomerByEmail(ctx, email)
}

// ResolveCustomerByEmail looks up a remote third party by email alone.
func (r *IdentityResolver) ResolveCustomerByEmail(ctx context.Context, email string) (int64, error) {
	if email == "" {
		return 0, nil
	}
	party, err := r.gateway.FindThirdPartyByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, integration.ErrRemoteNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return party.ID, nil
}
