package providers

import (
	"github.com/systmms/ssmconfig/pkg/configstore"
)

// LegacySSMStoreType is the type name used by older configuration files
const LegacySSMStoreType = "aws"

// NewRegistry creates a store registry with the built-in store types.
// opts are applied to every SSM store the registry creates.
func NewRegistry(opts ...SSMStoreOption) *configstore.Registry {
	registry := configstore.NewRegistry()

	ssmFactory := NewAWSSSMStoreFactory(opts...)
	registry.Register(ssmFactory)
	registry.RegisterAs(LegacySSMStoreType, ssmFactory)

	return registry
}
