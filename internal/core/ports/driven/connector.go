package driven

import (
	"context"

	"github.com/haulbridge/docpipe/internal/core/domain"
)

// MailConnector adapts one mailbox provider behind a provider-neutral
// capability set. All provider quirks (pagination, label vs. folder
// semantics, trash vs. delete) live behind this interface so the poll
// orchestrator never sees them.
type MailConnector interface {
	// Type returns the provider type.
	Type() domain.ProviderType

	// Authenticate exchanges the stored credentials for a short-lived
	// bearer token. Failure is fatal for the run - there is no partial
	// credential retry within a run.
	Authenticate(ctx context.Context, cfg *domain.MonitorConfig) (string, error)

	// ListCandidateMessages returns unread messages with attachments.
	// When the config's cursor bound applies, the listing is additionally
	// restricted to messages received after it. The contract is a
	// monotonic, idempotent listing bounded by cursor.
	ListCandidateMessages(ctx context.Context, cfg *domain.MonitorConfig, token string) ([]domain.MessageRef, error)

	// FetchPDFAttachments downloads the message's PDF attachments.
	// Non-PDF attachments are skipped, not errored. A corrupt PDF yields
	// a conservative page count of 1 rather than failing the message.
	FetchPDFAttachments(ctx context.Context, cfg *domain.MonitorConfig, token string, msg domain.MessageRef) ([]domain.PDFAttachment, error)

	// ApplyPostProcess applies the configured action to a consumed
	// message. Move/archive create the destination folder or label when
	// absent. Best-effort: a failure here never reverts a classification
	// outcome that was already committed.
	ApplyPostProcess(ctx context.Context, cfg *domain.MonitorConfig, token string, msg domain.MessageRef, action domain.PostProcessAction, folder string) error
}

// ConnectorFactory resolves the connector for a monitor config's provider.
type ConnectorFactory interface {
	// Register registers a connector for its provider type.
	Register(connector MailConnector)

	// Create returns the connector for the given provider type.
	// Returns domain.ErrConnectorNotFound for unregistered providers.
	Create(providerType domain.ProviderType) (MailConnector, error)

	// SupportedTypes returns all registered provider types.
	SupportedTypes() []domain.ProviderType
}

// BarcodeDetector finds barcode strings on a PDF attachment. Decoding the
// barcode images is an external capability; this port is the seam to it.
type BarcodeDetector interface {
	// Detect returns every barcode found, in detection order. An
	// attachment with no barcodes returns an empty slice and no error.
	Detect(ctx context.Context, data []byte, filename string) ([]string, error)
}
