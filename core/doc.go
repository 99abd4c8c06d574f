// Package core contains the canonical federation domain contracts, entities,
// and orchestration logic: directory authentication, credential federation,
// and the email-verification gate. Provider and transport adapters must
// depend on this package; core must not depend on provider-specific code.
package core
