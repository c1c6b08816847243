// Package connectors holds the mailbox provider adapters and the
// registry that resolves them by provider type.
package connectors

import (
	"fmt"
	"sync"

	"github.com/haulbridge/docpipe/internal/core/domain"
	"github.com/haulbridge/docpipe/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.ConnectorFactory = (*Factory)(nil)

// Factory is a registry of mail connectors keyed by provider type.
type Factory struct {
	mu         sync.RWMutex
	connectors map[domain.ProviderType]driven.MailConnector
}

// NewFactory creates a connector factory.
func NewFactory() *Factory {
	return &Factory{
		connectors: make(map[domain.ProviderType]driven.MailConnector),
	}
}

// Register registers a connector for its provider type. Re-registering
// a type replaces the previous connector.
func (f *Factory) Register(connector driven.MailConnector) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.connectors[connector.Type()] = connector
}

// Create returns the connector for the given provider type.
func (f *Factory) Create(providerType domain.ProviderType) (driven.MailConnector, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	connector, ok := f.connectors[providerType]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrConnectorNotFound, providerType)
	}
	return connector, nil
}

// SupportedTypes returns all registered provider types.
func (f *Factory) SupportedTypes() []domain.ProviderType {
	f.mu.RLock()
	defer f.mu.RUnlock()

	types := make([]domain.ProviderType, 0, len(f.connectors))
	for t := range f.connectors {
		types = append(types, t)
	}
	return types
}
