package core

import "context"

const (
	AttributeEmail         = "email"
	AttributeEmailVerified = "email_verified"

	// The directory stores booleans as literal strings. Only the exact
	// string "true" counts as verified; every other value, including an
	// absent attribute, does not.
	attributeVerifiedTrue = "true"
)

// decideVerification is the email-verification gate shared by the login and
// attribute-update flows. Attribute fetch failures have no dedicated Outcome
// variant and propagate as errors.
func (s *Service) decideVerification(ctx context.Context, user DirectoryUser) (Outcome, error) {
	if user == nil {
		return Outcome{}, ErrNotAuthenticated
	}

	list, err := user.Attributes(ctx)
	if err != nil {
		return Outcome{}, err
	}
	attrs := s.attributeCodec.Decode(list)

	if !s.config.EmailVerificationIsMandatory() || attrs[AttributeEmailVerified] == attributeVerifiedTrue {
		return Outcome{Kind: OutcomeLoggedIn, User: user, Attributes: attrs}, nil
	}

	delivery, err := user.RequestAttributeVerification(ctx, AttributeEmail)
	if err != nil {
		return Outcome{
			Kind:       OutcomeEmailVerificationFailed,
			User:       user,
			Attributes: attrs,
			Reason:     ReasonFromError(err),
		}, nil
	}

	if !delivery.InputRequired {
		// The directory reported the code needs no user input, meaning the
		// attribute was effectively verified through a side channel. Treat
		// it as a completed login instead of blocking the flow.
		return Outcome{Kind: OutcomeLoggedIn, User: user, Attributes: attrs}, nil
	}

	return Outcome{
		Kind:           OutcomeEmailVerificationRequired,
		User:           user,
		Attributes:     attrs,
		DeliveryMedium: delivery.Medium,
	}, nil
}
