// Package office365 polls Microsoft 365 mailboxes through the Graph API.
package office365

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/haulbridge/docpipe/internal/core/domain"
	"github.com/haulbridge/docpipe/internal/core/ports/driven"
	"github.com/haulbridge/docpipe/internal/pdfutil"
)

// Verify interface compliance
var _ driven.MailConnector = (*Connector)(nil)

const (
	defaultGraphBaseURL = "https://graph.microsoft.com/v1.0"
	defaultLoginBaseURL = "https://login.microsoftonline.com"
	defaultScope        = "https://graph.microsoft.com/.default"

	pageSize = 50
)

// Connector implements MailConnector against the Microsoft Graph API
// using the client-credentials grant. One connector instance serves all
// monitor configs of this provider; per-config state rides on the
// config and token arguments.
type Connector struct {
	graphBaseURL string
	loginBaseURL string
	scope        string
	client       *http.Client
	logger       *slog.Logger
}

// Option customizes a Connector.
type Option func(*Connector)

// WithBaseURLs overrides the Graph and login endpoints. Used in tests.
func WithBaseURLs(graphBaseURL, loginBaseURL string) Option {
	return func(c *Connector) {
		c.graphBaseURL = graphBaseURL
		c.loginBaseURL = loginBaseURL
	}
}

// WithScope overrides the OAuth scope requested for the token.
func WithScope(scope string) Option {
	return func(c *Connector) {
		c.scope = scope
	}
}

// NewConnector creates a new Office 365 connector.
func NewConnector(logger *slog.Logger, opts ...Option) *Connector {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Connector{
		graphBaseURL: defaultGraphBaseURL,
		loginBaseURL: defaultLoginBaseURL,
		scope:        defaultScope,
		client:       &http.Client{Timeout: 60 * time.Second},
		logger:       logger.With("connector", "office365"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Type returns the provider type.
func (c *Connector) Type() domain.ProviderType {
	return domain.ProviderTypeOffice365
}

// Authenticate exchanges the tenant's client credentials for a
// short-lived Graph access token.
func (c *Connector) Authenticate(ctx context.Context, cfg *domain.MonitorConfig) (string, error) {
	creds := cfg.Credentials
	if creds.TenantID == "" || creds.ClientID == "" || creds.ClientSecret == "" {
		return "", fmt.Errorf("%w: missing tenant, client ID, or client secret", domain.ErrAuthFailed)
	}

	oauthCfg := &clientcredentials.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TokenURL:     fmt.Sprintf("%s/%s/oauth2/v2.0/token", c.loginBaseURL, url.PathEscape(creds.TenantID)),
		Scopes:       []string{c.scope},
	}

	token, err := oauthCfg.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrAuthFailed, err)
	}
	return token.AccessToken, nil
}

// graphMessage is one entry of a Graph messages listing.
type graphMessage struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
	From    struct {
		EmailAddress struct {
			Address string `json:"address"`
		} `json:"emailAddress"`
	} `json:"from"`
	ReceivedDateTime time.Time `json:"receivedDateTime"`
}

type graphMessageList struct {
	Value    []graphMessage `json:"value"`
	NextLink string         `json:"@odata.nextLink"`
}

// ListCandidateMessages returns unread messages with attachments,
// bounded by the config's cursor when it applies. Pagination follows
// @odata.nextLink until the listing is exhausted.
func (c *Connector) ListCandidateMessages(ctx context.Context, cfg *domain.MonitorConfig, token string) ([]domain.MessageRef, error) {
	filter := "isRead eq false and hasAttachments eq true"
	if bound, ok := cfg.CursorBound(); ok {
		filter += fmt.Sprintf(" and receivedDateTime gt %s", bound.UTC().Format(time.RFC3339))
	}

	query := url.Values{}
	query.Set("$filter", filter)
	query.Set("$select", "id,subject,from,receivedDateTime")
	query.Set("$orderby", "receivedDateTime asc")
	query.Set("$top", fmt.Sprintf("%d", pageSize))

	next := fmt.Sprintf("%s/users/%s/messages?%s",
		c.graphBaseURL, url.PathEscape(cfg.Credentials.Mailbox), query.Encode())

	var refs []domain.MessageRef
	for next != "" {
		var page graphMessageList
		if err := c.doJSON(ctx, token, http.MethodGet, next, nil, &page); err != nil {
			return nil, fmt.Errorf("list messages: %w", err)
		}

		for _, m := range page.Value {
			refs = append(refs, domain.MessageRef{
				ID:         m.ID,
				Subject:    m.Subject,
				From:       m.From.EmailAddress.Address,
				ReceivedAt: m.ReceivedDateTime,
			})
		}
		next = page.NextLink
	}

	return refs, nil
}

// graphAttachment is one entry of a Graph attachments listing.
type graphAttachment struct {
	ODataType    string `json:"@odata.type"`
	Name         string `json:"name"`
	ContentType  string `json:"contentType"`
	ContentBytes string `json:"contentBytes"`
}

type graphAttachmentList struct {
	Value []graphAttachment `json:"value"`
}

// FetchPDFAttachments downloads the message's PDF attachments. Non-PDF
// attachments are skipped, not errored.
func (c *Connector) FetchPDFAttachments(ctx context.Context, cfg *domain.MonitorConfig, token string, msg domain.MessageRef) ([]domain.PDFAttachment, error) {
	endpoint := fmt.Sprintf("%s/users/%s/messages/%s/attachments",
		c.graphBaseURL, url.PathEscape(cfg.Credentials.Mailbox), url.PathEscape(msg.ID))

	var list graphAttachmentList
	if err := c.doJSON(ctx, token, http.MethodGet, endpoint, nil, &list); err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}

	var attachments []domain.PDFAttachment
	for _, att := range list.Value {
		if att.ODataType != "" && att.ODataType != "#microsoft.graph.fileAttachment" {
			continue
		}
		if !domain.IsPDFFilename(att.Name) && att.ContentType != "application/pdf" {
			continue
		}

		data, err := base64.StdEncoding.DecodeString(att.ContentBytes)
		if err != nil {
			c.logger.Warn("skipping attachment with undecodable content",
				"message_id", msg.ID, "filename", att.Name, "error", err)
			continue
		}

		attachments = append(attachments, domain.PDFAttachment{
			Filename:  att.Name,
			Data:      data,
			PageCount: pdfutil.PageCount(data),
		})
	}

	return attachments, nil
}

// ApplyPostProcess applies the configured action to a consumed message.
func (c *Connector) ApplyPostProcess(ctx context.Context, cfg *domain.MonitorConfig, token string, msg domain.MessageRef, action domain.PostProcessAction, folder string) error {
	mailbox := url.PathEscape(cfg.Credentials.Mailbox)
	msgID := url.PathEscape(msg.ID)

	switch action {
	case domain.ActionNone:
		return nil

	case domain.ActionMarkRead:
		endpoint := fmt.Sprintf("%s/users/%s/messages/%s", c.graphBaseURL, mailbox, msgID)
		return c.doJSON(ctx, token, http.MethodPatch, endpoint, map[string]any{"isRead": true}, nil)

	case domain.ActionMove:
		folderID, err := c.ensureFolder(ctx, cfg, token, folder)
		if err != nil {
			return err
		}
		return c.moveMessage(ctx, cfg, token, msgID, folderID)

	case domain.ActionArchive:
		// "archive" is a Graph well-known folder name.
		return c.moveMessage(ctx, cfg, token, msgID, "archive")

	case domain.ActionDelete:
		endpoint := fmt.Sprintf("%s/users/%s/messages/%s", c.graphBaseURL, mailbox, msgID)
		return c.doJSON(ctx, token, http.MethodDelete, endpoint, nil, nil)

	default:
		return fmt.Errorf("%w: unknown action %q", domain.ErrInvalidInput, action)
	}
}

func (c *Connector) moveMessage(ctx context.Context, cfg *domain.MonitorConfig, token, msgID, destinationID string) error {
	endpoint := fmt.Sprintf("%s/users/%s/messages/%s/move",
		c.graphBaseURL, url.PathEscape(cfg.Credentials.Mailbox), msgID)
	return c.doJSON(ctx, token, http.MethodPost, endpoint, map[string]any{"destinationId": destinationID}, nil)
}

type graphFolder struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
}

type graphFolderList struct {
	Value []graphFolder `json:"value"`
}

// ensureFolder resolves a mail folder by display name, creating it when
// absent, and returns its ID.
func (c *Connector) ensureFolder(ctx context.Context, cfg *domain.MonitorConfig, token, name string) (string, error) {
	mailbox := url.PathEscape(cfg.Credentials.Mailbox)

	query := url.Values{}
	query.Set("$filter", fmt.Sprintf("displayName eq '%s'", name))
	endpoint := fmt.Sprintf("%s/users/%s/mailFolders?%s", c.graphBaseURL, mailbox, query.Encode())

	var list graphFolderList
	if err := c.doJSON(ctx, token, http.MethodGet, endpoint, nil, &list); err != nil {
		return "", fmt.Errorf("list folders: %w", err)
	}
	if len(list.Value) > 0 {
		return list.Value[0].ID, nil
	}

	var created graphFolder
	createEndpoint := fmt.Sprintf("%s/users/%s/mailFolders", c.graphBaseURL, mailbox)
	if err := c.doJSON(ctx, token, http.MethodPost, createEndpoint, map[string]any{"displayName": name}, &created); err != nil {
		return "", fmt.Errorf("create folder %q: %w", name, err)
	}

	c.logger.Info("created mail folder", "folder", name, "folder_id", created.ID)
	return created.ID, nil
}

// doJSON performs an authenticated Graph request, decoding the JSON
// response into out when out is non-nil.
func (c *Connector) doJSON(ctx context.Context, token, method, endpoint string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("graph request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: graph API returned %d", domain.ErrAuthFailed, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("graph API returned %d: %s", resp.StatusCode, snippet)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
