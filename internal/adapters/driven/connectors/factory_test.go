package connectors

import (
	"errors"
	"testing"

	"github.com/haulbridge/docpipe/internal/core/domain"
	"github.com/haulbridge/docpipe/internal/core/ports/driven/mocks"
)

func mockConnector(pt domain.ProviderType) *mocks.MockMailConnector {
	conn := mocks.NewMockMailConnector()
	conn.TypeFn = func() domain.ProviderType { return pt }
	return conn
}

func TestFactory_RegisterCreate(t *testing.T) {
	factory := NewFactory()
	factory.Register(mockConnector(domain.ProviderTypeOffice365))

	got, err := factory.Create(domain.ProviderTypeOffice365)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if got.Type() != domain.ProviderTypeOffice365 {
		t.Errorf("wrong connector type: %s", got.Type())
	}
}

func TestFactory_UnknownProvider(t *testing.T) {
	factory := NewFactory()

	_, err := factory.Create(domain.ProviderTypeGmail)
	if !errors.Is(err, domain.ErrConnectorNotFound) {
		t.Fatalf("expected ErrConnectorNotFound, got %v", err)
	}
}

func TestFactory_SupportedTypes(t *testing.T) {
	factory := NewFactory()
	factory.Register(mockConnector(domain.ProviderTypeOffice365))
	factory.Register(mockConnector(domain.ProviderTypeGmail))

	types := factory.SupportedTypes()
	if len(types) != 2 {
		t.Fatalf("expected 2 types, got %d", len(types))
	}
}
