package core

import (
	"context"
	"fmt"
	"sync"
)

// MemoryCredentialProvider is the default CredentialProvider: a single
// in-process slot guarded by a mutex. The last Store wins; concurrent flows
// sharing one provider overwrite each other's credentials.
type MemoryCredentialProvider struct {
	mu     sync.Mutex
	active TemporaryCredentials
	set    bool
}

func NewMemoryCredentialProvider() *MemoryCredentialProvider {
	return &MemoryCredentialProvider{}
}

func (p *MemoryCredentialProvider) Store(_ context.Context, creds TemporaryCredentials) error {
	if p == nil {
		return fmt.Errorf("core: credential provider is not configured")
	}
	p.mu.Lock()
	p.active = creds
	p.set = true
	p.mu.Unlock()
	return nil
}

func (p *MemoryCredentialProvider) Active(_ context.Context) (TemporaryCredentials, bool) {
	if p == nil {
		return TemporaryCredentials{}, false
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active, p.set
}

var _ CredentialProvider = (*MemoryCredentialProvider)(nil)
