package core

import (
	"context"
	"fmt"
	"strings"
)

// federate exchanges the session's identity token for temporary pool-scoped
// credentials and stores them in the credential provider. Storing overwrites
// whatever credentials a previous federation established: the slot is shared
// mutable state and the last exchange to complete wins.
func (s *Service) federate(ctx context.Context, session Session) error {
	if s.exchange == nil {
		return ErrExchangeNotConfigured
	}
	if !session.Valid() {
		return fmt.Errorf("core: session carries no identity token")
	}
	if strings.TrimSpace(s.config.IdentityPoolID) == "" {
		return fmt.Errorf("core: identity_pool_id is required")
	}

	creds, err := s.exchange.Exchange(ctx, ExchangeRequest{
		IdentityPoolID: s.config.IdentityPoolID,
		Logins: map[string]string{
			s.config.LoginProviderKey(): session.IdentityToken,
		},
		// The exchange cannot disambiguate the federated identity on its
		// own when several directory logins map to the same one.
		LoginHint: session.Username,
	})
	if err != nil {
		return err
	}

	if s.credentialProvider == nil {
		return nil
	}
	return s.credentialProvider.Store(ctx, creds)
}
