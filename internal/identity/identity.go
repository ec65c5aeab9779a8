// Package identity resolves candidate emails to identity-provider user ids.
// The pipeline treats the provider as a remote gateway: slow or failing calls
// become IdentityUnavailable and never block persistence semantics.
package identity

import (
	"context"

	"github.com/binarybreez/jobswipe/internal/common"
)

// Gateway is the identity-provider boundary.
type Gateway interface {
	// GetOrCreateIdentity resolves an email to the provider's user id,
	// creating the user on first sight. Failures surface as
	// IdentityUnavailable.
	GetOrCreateIdentity(ctx context.Context, email string) (string, error)
}

// unavailable wraps a provider error as an IdentityUnavailable failure.
func unavailable(op string, err error) error {
	if err == nil {
		return nil
	}
	if _, ok := common.AsFailure(err); ok {
		return err
	}
	return common.NewFailure(common.IdentityUnavailable, "identity: "+op, err)
}
