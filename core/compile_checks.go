package core

import glog "github.com/goliatone/go-logger/glog"

var (
	_ FederationService  = (*Service)(nil)
	_ AttributeCodec     = WireAttributeCodec{}
	_ CredentialProvider = (*MemoryCredentialProvider)(nil)
	_ OutcomeDispatcher  = DispatcherFunc(nil)

	_ Logger         = glog.Nop()
	_ LoggerProvider = glog.ProviderFromLogger(glog.Nop())
)
