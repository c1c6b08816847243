package mocks

import (
	"context"

	"github.com/haulbridge/docpipe/internal/core/domain"
	"github.com/haulbridge/docpipe/internal/core/ports/driven"
)

// MockMailConnector is a mock implementation of MailConnector for testing
type MockMailConnector struct {
	TypeFn                func() domain.ProviderType
	AuthenticateFn        func(ctx context.Context, cfg *domain.MonitorConfig) (string, error)
	ListCandidatesFn      func(ctx context.Context, cfg *domain.MonitorConfig, token string) ([]domain.MessageRef, error)
	FetchPDFAttachmentsFn func(ctx context.Context, cfg *domain.MonitorConfig, token string, msg domain.MessageRef) ([]domain.PDFAttachment, error)
	ApplyPostProcessFn    func(ctx context.Context, cfg *domain.MonitorConfig, token string, msg domain.MessageRef, action domain.PostProcessAction, folder string) error

	// PostProcessed records every post-process call when no hook is set
	PostProcessed []PostProcessCall
}

// PostProcessCall records one ApplyPostProcess invocation
type PostProcessCall struct {
	MessageID string
	Action    domain.PostProcessAction
	Folder    string
}

// NewMockMailConnector creates a new MockMailConnector
func NewMockMailConnector() *MockMailConnector {
	return &MockMailConnector{}
}

func (m *MockMailConnector) Type() domain.ProviderType {
	if m.TypeFn != nil {
		return m.TypeFn()
	}
	return domain.ProviderTypeOffice365
}

func (m *MockMailConnector) Authenticate(ctx context.Context, cfg *domain.MonitorConfig) (string, error) {
	if m.AuthenticateFn != nil {
		return m.AuthenticateFn(ctx, cfg)
	}
	return "mock-token", nil
}

func (m *MockMailConnector) ListCandidateMessages(ctx context.Context, cfg *domain.MonitorConfig, token string) ([]domain.MessageRef, error) {
	if m.ListCandidatesFn != nil {
		return m.ListCandidatesFn(ctx, cfg, token)
	}
	return nil, nil
}

func (m *MockMailConnector) FetchPDFAttachments(ctx context.Context, cfg *domain.MonitorConfig, token string, msg domain.MessageRef) ([]domain.PDFAttachment, error) {
	if m.FetchPDFAttachmentsFn != nil {
		return m.FetchPDFAttachmentsFn(ctx, cfg, token, msg)
	}
	return nil, nil
}

func (m *MockMailConnector) ApplyPostProcess(ctx context.Context, cfg *domain.MonitorConfig, token string, msg domain.MessageRef, action domain.PostProcessAction, folder string) error {
	if m.ApplyPostProcessFn != nil {
		return m.ApplyPostProcessFn(ctx, cfg, token, msg, action, folder)
	}
	m.PostProcessed = append(m.PostProcessed, PostProcessCall{MessageID: msg.ID, Action: action, Folder: folder})
	return nil
}

// MockConnectorFactory is a mock implementation of ConnectorFactory for testing
type MockConnectorFactory struct {
	connectors map[domain.ProviderType]driven.MailConnector
}

// NewMockConnectorFactory creates a factory pre-registered with the given connectors
func NewMockConnectorFactory(connectors ...driven.MailConnector) *MockConnectorFactory {
	f := &MockConnectorFactory{
		connectors: make(map[domain.ProviderType]driven.MailConnector),
	}
	for _, c := range connectors {
		f.Register(c)
	}
	return f
}

func (f *MockConnectorFactory) Register(connector driven.MailConnector) {
	f.connectors[connector.Type()] = connector
}

func (f *MockConnectorFactory) Create(providerType domain.ProviderType) (driven.MailConnector, error) {
	c, ok := f.connectors[providerType]
	if !ok {
		return nil, domain.ErrConnectorNotFound
	}
	return c, nil
}

func (f *MockConnectorFactory) SupportedTypes() []domain.ProviderType {
	types := make([]domain.ProviderType, 0, len(f.connectors))
	for t := range f.connectors {
		types = append(types, t)
	}
	return types
}

// MockBarcodeDetector is a mock implementation of BarcodeDetector for testing
type MockBarcodeDetector struct {
	DetectFn func(ctx context.Context, data []byte, filename string) ([]string, error)

	// Barcodes maps filename to detection results when DetectFn is unset
	Barcodes map[string][]string
}

// NewMockBarcodeDetector creates a new MockBarcodeDetector
func NewMockBarcodeDetector() *MockBarcodeDetector {
	return &MockBarcodeDetector{
		Barcodes: make(map[string][]string),
	}
}

func (m *MockBarcodeDetector) Detect(ctx context.Context, data []byte, filename string) ([]string, error) {
	if m.DetectFn != nil {
		return m.DetectFn(ctx, data, filename)
	}
	return m.Barcodes[filename], nil
}
