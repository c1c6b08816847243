// Package gmail polls Gmail mailboxes through the Gmail REST API.
package gmail

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
	"strconv"
	"time"

	"golang.org/x/oauth2"

	"github.com/haulbridge/docpipe/internal/core/domain"
	"github.com/haulbridge/docpipe/internal/core/ports/driven"
	"github.com/haulbridge/docpipe/internal/pdfutil"
)

// Verify interface compliance
var _ driven.MailConnector = (*Connector)(nil)

const (
	defaultAPIBaseURL = "https://gmail.googleapis.com/gmail/v1"
	defaultTokenURL   = "https://oauth2.googleapis.com/token"

	pageSize = 50
)

// Connector implements MailConnector against the Gmail API using the
// refresh-token grant. Gmail has labels rather than folders; the move
// action maps to adding a label and removing INBOX.
type Connector struct {
	apiBaseURL string
	tokenURL   string
	client     *http.Client
	logger     *slog.Logger
}

// Option customizes a Connector.
type Option func(*Connector)

// WithBaseURLs overrides the API and token endpoints. Used in tests.
func WithBaseURLs(apiBaseURL, tokenURL string) Option {
	return func(c *Connector) {
		c.apiBaseURL = apiBaseURL
		c.tokenURL = tokenURL
	}
}

// NewConnector creates a new Gmail connector.
func NewConnector(logger *slog.Logger, opts ...Option) *Connector {
	if logger == nil {
		logger = slog.Default()
	}

	c := &Connector{
		apiBaseURL: defaultAPIBaseURL,
		tokenURL:   defaultTokenURL,
		client:     &http.Client{Timeout: 60 * time.Second},
		logger:     logger.With("connector", "gmail"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Type returns the provider type.
func (c *Connector) Type() domain.ProviderType {
	return domain.ProviderTypeGmail
}

// Authenticate exchanges the stored refresh token for a short-lived
// access token.
func (c *Connector) Authenticate(ctx context.Context, cfg *domain.MonitorConfig) (string, error) {
	creds := cfg.Credentials
	if creds.ClientID == "" || creds.ClientSecret == "" || creds.RefreshToken == "" {
		return "", fmt.Errorf("%w: missing client ID, client secret, or refresh token", domain.ErrAuthFailed)
	}

	oauthCfg := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: c.tokenURL},
	}

	source := oauthCfg.TokenSource(ctx, &oauth2.Token{RefreshToken: creds.RefreshToken})
	token, err := source.Token()
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrAuthFailed, err)
	}
	return token.AccessToken, nil
}

type gmailMessageList struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
	NextPageToken string `json:"nextPageToken"`
}

type gmailMessage struct {
	ID           string `json:"id"`
	InternalDate string `json:"internalDate"`
	Payload      struct {
		Headers []struct {
			Name  string `json:"name"`
			Value string `json:"value"`
		} `json:"headers"`
		Parts []gmailPart `json:"parts"`
	} `json:"payload"`
}

type gmailPart struct {
	Filename string `json:"filename"`
	MimeType string `json:"mimeType"`
	Body     struct {
		AttachmentID string `json:"attachmentId"`
		Data         string `json:"data"`
	} `json:"body"`
	Parts []gmailPart `json:"parts"`
}

// ListCandidateMessages returns unread messages with PDF attachments,
// bounded by the config's cursor via the Gmail search query.
func (c *Connector) ListCandidateMessages(ctx context.Context, cfg *domain.MonitorConfig, token string) ([]domain.MessageRef, error) {
	mailbox := url.PathEscape(cfg.Credentials.Mailbox)

	q := "is:unread has:attachment filename:pdf"
	if bound, ok := cfg.CursorBound(); ok {
		// Gmail's after: accepts epoch seconds with per-second granularity.
		q += fmt.Sprintf(" after:%d", bound.Unix())
	}

	var refs []domain.MessageRef
	pageToken := ""
	for {
		query := url.Values{}
		query.Set("q", q)
		query.Set("maxResults", fmt.Sprintf("%d", pageSize))
		if pageToken != "" {
			query.Set("pageToken", pageToken)
		}

		var page gmailMessageList
		endpoint := fmt.Sprintf("%s/users/%s/messages?%s", c.apiBaseURL, mailbox, query.Encode())
		if err := c.doJSON(ctx, token, http.MethodGet, endpoint, nil, &page); err != nil {
			return nil, fmt.Errorf("list messages: %w", err)
		}

		for _, m := range page.Messages {
			ref, err := c.fetchMessageRef(ctx, cfg, token, m.ID)
			if err != nil {
				return nil, err
			}
			refs = append(refs, ref)
		}

		if page.NextPageToken == "" {
			break
		}
		pageToken = page.NextPageToken
	}

	return refs, nil
}

// fetchMessageRef loads the metadata needed to build a MessageRef. The
// Gmail list endpoint returns only IDs, so this is one extra round trip
// per message.
func (c *Connector) fetchMessageRef(ctx context.Context, cfg *domain.MonitorConfig, token, msgID string) (domain.MessageRef, error) {
	query := url.Values{}
	query.Set("format", "metadata")
	query.Add("metadataHeaders", "Subject")
	query.Add("metadataHeaders", "From")

	endpoint := fmt.Sprintf("%s/users/%s/messages/%s?%s",
		c.apiBaseURL, url.PathEscape(cfg.Credentials.Mailbox), url.PathEscape(msgID), query.Encode())

	var msg gmailMessage
	if err := c.doJSON(ctx, token, http.MethodGet, endpoint, nil, &msg); err != nil {
		return domain.MessageRef{}, fmt.Errorf("get message %s: %w", msgID, err)
	}

	ref := domain.MessageRef{ID: msg.ID}
	for _, h := range msg.Payload.Headers {
		switch h.Name {
		case "Subject":
			ref.Subject = h.Value
		case "From":
			ref.From = h.Value
		}
	}
	if ms, err := strconv.ParseInt(msg.InternalDate, 10, 64); err == nil {
		ref.ReceivedAt = time.UnixMilli(ms)
	}

	return ref, nil
}

// FetchPDFAttachments downloads the message's PDF attachments. Non-PDF
// parts are skipped, not errored.
func (c *Connector) FetchPDFAttachments(ctx context.Context, cfg *domain.MonitorConfig, token string, msg domain.MessageRef) ([]domain.PDFAttachment, error) {
	mailbox := url.PathEscape(cfg.Credentials.Mailbox)

	endpoint := fmt.Sprintf("%s/users/%s/messages/%s?format=full", c.apiBaseURL, mailbox, url.PathEscape(msg.ID))
	var full gmailMessage
	if err := c.doJSON(ctx, token, http.MethodGet, endpoint, nil, &full); err != nil {
		return nil, fmt.Errorf("get message %s: %w", msg.ID, err)
	}

	var attachments []domain.PDFAttachment
	var walk func(parts []gmailPart) error
	walk = func(parts []gmailPart) error {
		for _, part := range parts {
			if len(part.Parts) > 0 {
				if err := walk(part.Parts); err != nil {
					return err
				}
			}

			if !domain.IsPDFFilename(part.Filename) {
				continue
			}

			encoded := part.Body.Data
			if encoded == "" && part.Body.AttachmentID != "" {
				var err error
				encoded, err = c.fetchAttachmentData(ctx, cfg, token, msg.ID, part.Body.AttachmentID)
				if err != nil {
					return err
				}
			}
			if encoded == "" {
				continue
			}

			data, err := decodeWebSafe(encoded)
			if err != nil {
				c.logger.Warn("skipping attachment with undecodable content",
					"message_id", msg.ID, "filename", part.Filename, "error", err)
				continue
			}

			attachments = append(attachments, domain.PDFAttachment{
				Filename:  part.Filename,
				Data:      data,
				PageCount: pdfutil.PageCount(data),
			})
		}
		return nil
	}

	if err := walk(full.Payload.Parts); err != nil {
		return nil, err
	}
	return attachments, nil
}

func (c *Connector) fetchAttachmentData(ctx context.Context, cfg *domain.MonitorConfig, token, msgID, attachmentID string) (string, error) {
	endpoint := fmt.Sprintf("%s/users/%s/messages/%s/attachments/%s",
		c.apiBaseURL, url.PathEscape(cfg.Credentials.Mailbox), url.PathEscape(msgID), url.PathEscape(attachmentID))

	var body struct {
		Data string `json:"data"`
	}
	if err := c.doJSON(ctx, token, http.MethodGet, endpoint, nil, &body); err != nil {
		return "", fmt.Errorf("get attachment: %w", err)
	}
	return body.Data, nil
}

// ApplyPostProcess applies the configured action to a consumed message.
func (c *Connector) ApplyPostProcess(ctx context.Context, cfg *domain.MonitorConfig, token string, msg domain.MessageRef, action domain.PostProcessAction, folder string) error {
	switch action {
	case domain.ActionNone:
		return nil

	case domain.ActionMarkRead:
		return c.modifyLabels(ctx, cfg, token, msg.ID, nil, []string{"UNREAD"})

	case domain.ActionMove:
		labelID, err := c.ensureLabel(ctx, cfg, token, folder)
		if err != nil {
			return err
		}
		return c.modifyLabels(ctx, cfg, token, msg.ID, []string{labelID}, []string{"INBOX"})

	case domain.ActionArchive:
		return c.modifyLabels(ctx, cfg, token, msg.ID, nil, []string{"INBOX"})

	case domain.ActionDelete:
		endpoint := fmt.Sprintf("%s/users/%s/messages/%s/trash",
			c.apiBaseURL, url.PathEscape(cfg.Credentials.Mailbox), url.PathEscape(msg.ID))
		return c.doJSON(ctx, token, http.MethodPost, endpoint, nil, nil)

	default:
		return fmt.Errorf("%w: unknown action %q", domain.ErrInvalidInput, action)
	}
}

func (c *Connector) modifyLabels(ctx context.Context, cfg *domain.MonitorConfig, token, msgID string, add, remove []string) error {
	endpoint := fmt.Sprintf("%s/users/%s/messages/%s/modify",
		c.apiBaseURL, url.PathEscape(cfg.Credentials.Mailbox), url.PathEscape(msgID))

	body := map[string]any{}
	if len(add) > 0 {
		body["addLabelIds"] = add
	}
	if len(remove) > 0 {
		body["removeLabelIds"] = remove
	}
	return c.doJSON(ctx, token, http.MethodPost, endpoint, body, nil)
}

type gmailLabel struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ensureLabel resolves a label by name, creating it when absent, and
// returns its ID.
func (c *Connector) ensureLabel(ctx context.Context, cfg *domain.MonitorConfig, token, name string) (string, error) {
	mailbox := url.PathEscape(cfg.Credentials.Mailbox)

	var list struct {
		Labels []gmailLabel `json:"labels"`
	}
	endpoint := fmt.Sprintf("%s/users/%s/labels", c.apiBaseURL, mailbox)
	if err := c.doJSON(ctx, token, http.MethodGet, endpoint, nil, &list); err != nil {
		return "", fmt.Errorf("list labels: %w", err)
	}
	for _, label := range list.Labels {
		if label.Name == name {
			return label.ID, nil
		}
	}

	var created gmailLabel
	if err := c.doJSON(ctx, token, http.MethodPost, endpoint, map[string]any{"name": name}, &created); err != nil {
		return "", fmt.Errorf("create label %q: %w", name, err)
	}

	c.logger.Info("created label", "label", name, "label_id", created.ID)
	return created.ID, nil
}

// decodeWebSafe decodes Gmail's web-safe base64, with or without padding.
func decodeWebSafe(s string) ([]byte, error) {
	if data, err := base64.RawURLEncoding.DecodeString(s); err == nil {
		return data, nil
	}
	return base64.URLEncoding.DecodeString(s)
}

// doJSON performs an authenticated Gmail API request, decoding the JSON
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
		return fmt.Errorf("gmail request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: gmail API returned %d", domain.ErrAuthFailed, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("gmail API returned %d: %s", resp.StatusCode, snippet)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
