package documents

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/hashicorp-forge/docstore/pkg/hal"
)

const (
	// DefaultRootPath is the HAL root of the document store.
	DefaultRootPath = "/api/document-store"

	// DefaultPageSize is the page size sent with every query. Only the first
	// page is fetched.
	DefaultPageSize = 100

	// MostRecentVersion selects the latest version of a document.
	MostRecentVersion = "Most Recent"

	// DateLayout is the calendar date format the query endpoint expects.
	DateLayout = "2006-01-02"
)

// Relations advertised by the document store.
const (
	RelDocuments                 = "documents"
	RelDocument                  = "document"
	RelVersions                  = "versions"
	RelDocumentVersion           = "documentVersion"
	RelDocumentMostRecentVersion = "documentMostRecentVersion"
)

// Config configures a Client.
type Config struct {
	// BaseURL is the scheme and host of the API.
	BaseURL string

	// RootPath is the HAL root. Default: DefaultRootPath.
	RootPath string

	// PageSize is sent with queries. Default: DefaultPageSize.
	PageSize int

	// HTTPClient must authenticate its requests, e.g. with auth.Transport.
	HTTPClient *http.Client

	Logger hclog.Logger
}

// Client performs the document store operations by navigating the HAL API
// from its root.
type Client struct {
	nav      *hal.Navigator
	rootPath string
	pageSize int
	logger   hclog.Logger
}

// NewClient creates a new Client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.RootPath == "" {
		cfg.RootPath = DefaultRootPath
	}
	if cfg.PageSize == 0 {
		cfg.PageSize = DefaultPageSize
	}
	if cfg.PageSize < 0 {
		return nil, fmt.Errorf("page size must be positive, got: %d", cfg.PageSize)
	}
	if cfg.Logger == nil {
		cfg.Logger = hclog.NewNullLogger()
	}

	nav, err := hal.NewNavigator(hal.Config{
		BaseURL: cfg.BaseURL,
		Client:  cfg.HTTPClient,
		Logger:  cfg.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create navigator: %w", err)
	}

	return &Client{
		nav:      nav,
		rootPath: "/" + strings.Trim(cfg.RootPath, "/"),
		pageSize: cfg.PageSize,
		logger:   cfg.Logger.Named("documents"),
	}, nil
}

// RootURL returns the absolute URL of the API root.
func (c *Client) RootURL() string {
	u, err := c.nav.Resolve(c.rootPath)
	if err != nil {
		return c.nav.BaseURL() + c.rootPath
	}
	return u
}

// Relations fetches the API root and returns the relations it advertises.
func (c *Client) Relations(ctx context.Context) ([]string, error) {
	root, err := c.nav.Root(ctx, c.rootPath)
	if err != nil {
		return nil, c.unavailable("Relations", err)
	}
	return root.Relations(), nil
}

// QueryByDateRange returns the documents between from and to, both
// inclusive. The upper bound is sent as the day after to.
func (c *Client) QueryByDateRange(ctx context.Context, from, to time.Time) ([]DocumentSummary, error) {
	return c.queryDocuments(ctx, "QueryByDateRange", hal.Params{
		"startDate": from.Format(DateLayout),
		"endDate":   to.AddDate(0, 0, 1).Format(DateLayout),
		"pageSize":  c.pageSize,
	})
}

// QueryByMatterOrder returns the documents for a matter reference and/or
// order ID. Both are sent verbatim and may be blank.
func (c *Client) QueryByMatterOrder(ctx context.Context, matterReference, orderID string) ([]DocumentSummary, error) {
	return c.queryDocuments(ctx, "QueryByMatterOrder", hal.Params{
		"matterReference": matterReference,
		"orderId":         orderID,
		"pageSize":        c.pageSize,
	})
}

// GetDocumentByID returns a document and its versions.
func (c *Client) GetDocumentByID(ctx context.Context, documentID string) (*DocumentSummaryWithVersions, error) {
	const op = "GetDocumentByID"

	if strings.TrimSpace(documentID) == "" {
		return nil, &Error{Op: op, Err: ErrNotFound, Msg: "document id is required"}
	}

	root, err := c.root(ctx, op, RelDocument)
	if err != nil {
		return nil, &Error{Op: op, Err: ErrNotFound, Msg: fmt.Sprintf("document %q", documentID), Cause: err}
	}

	docRes, err := root.Get(ctx, RelDocument, hal.Params{"documentId": documentID})
	if err != nil {
		return nil, c.fail(op, fmt.Sprintf("document %q", documentID), err)
	}

	summary, err := hal.Item[DocumentSummary](docRes)
	if err != nil {
		return nil, c.fail(op, fmt.Sprintf("document %q", documentID), err)
	}

	versionsRes, err := docRes.Get(ctx, RelVersions, nil)
	if err != nil {
		return nil, c.fail(op, fmt.Sprintf("versions of document %q", documentID), err)
	}

	versions, err := hal.Items[DocumentVersion](versionsRes)
	if err != nil {
		return nil, c.fail(op, fmt.Sprintf("versions of document %q", documentID), err)
	}

	c.logger.Debug("retrieved document", "document_id", documentID, "versions", len(versions))

	return &DocumentSummaryWithVersions{
		DocumentSummary:  summary,
		DocumentVersions: versions,
	}, nil
}

// IsMostRecent reports whether selector asks for the latest version.
func IsMostRecent(selector string) bool {
	s := strings.TrimSpace(selector)
	return s == "" || strings.EqualFold(s, MostRecentVersion)
}

// DownloadDocumentContent downloads the blob of one version. A blank
// selector or MostRecentVersion downloads the latest version.
func (c *Client) DownloadDocumentContent(ctx context.Context, documentID, versionSelector string) (*DocumentContent, error) {
	const op = "DownloadDocumentContent"

	if strings.TrimSpace(documentID) == "" {
		return nil, &Error{Op: op, Err: ErrNotFound, Msg: "document id is required"}
	}

	version, err := c.resolveVersion(ctx, op, documentID, versionSelector)
	if err != nil {
		return nil, err
	}

	if version.IsAwaitingPdf {
		c.logger.Warn("version is still awaiting PDF rendering",
			"document_id", documentID, "version_id", version.DocumentVersionID)
	}

	blobPath := fmt.Sprintf("%s/documents/%s/versions/%s/blob",
		c.rootPath,
		url.PathEscape(documentID),
		url.PathEscape(version.DocumentVersionID))

	blob, err := c.nav.Fetch(ctx, blobPath)
	if err != nil {
		return nil, c.fail(op, fmt.Sprintf("blob of version %q", version.DocumentVersionID), err)
	}

	mimeType := version.MimeType
	if mimeType == "" {
		mimeType = blob.ContentType
	}

	c.logger.Debug("downloaded document content",
		"document_id", documentID,
		"version_id", version.DocumentVersionID,
		"bytes", len(blob.Data))

	return &DocumentContent{
		DocumentID:   documentID,
		VersionID:    version.DocumentVersionID,
		MimeType:     mimeType,
		DocumentName: version.DocumentName,
		Blob:         blob.Data,
	}, nil
}

func (c *Client) resolveVersion(ctx context.Context, op, documentID, selector string) (*DocumentVersion, error) {
	rel := RelDocumentVersion
	params := hal.Params{
		"documentId":        documentID,
		"documentVersionId": strings.TrimSpace(selector),
	}
	if IsMostRecent(selector) {
		rel = RelDocumentMostRecentVersion
		params = hal.Params{"documentId": documentID}
	}

	root, err := c.root(ctx, op, rel)
	if err != nil {
		return nil, err
	}

	res, err := root.Get(ctx, rel, params)
	if err != nil {
		return nil, c.fail(op, fmt.Sprintf("version %q of document %q", selector, documentID), err)
	}

	version, err := hal.Item[DocumentVersion](res)
	if err != nil {
		return nil, c.fail(op, fmt.Sprintf("version %q of document %q", selector, documentID), err)
	}
	if version.DocumentVersionID == "" {
		return nil, &Error{
			Op:  op,
			Err: ErrNotFound,
			Msg: fmt.Sprintf("version %q of document %q has no version id", selector, documentID),
		}
	}

	return &version, nil
}

func (c *Client) queryDocuments(ctx context.Context, op string, params hal.Params) ([]DocumentSummary, error) {
	root, err := c.root(ctx, op, RelDocuments)
	if err != nil {
		return nil, err
	}

	paged, err := root.Get(ctx, RelDocuments, params)
	if err != nil {
		return nil, c.fail(op, "", err)
	}

	if !paged.Has(RelDocuments) {
		return nil, noResults(op, params)
	}

	docs, err := paged.Get(ctx, RelDocuments, nil)
	if err != nil {
		return nil, c.fail(op, "", err)
	}

	items, err := hal.Items[DocumentSummary](docs)
	if err != nil {
		return nil, c.fail(op, "", err)
	}
	if len(items) == 0 {
		return nil, noResults(op, params)
	}

	c.logger.Debug("query returned documents", "op", op, "count", len(items))
	return items, nil
}

// root fetches the API root and checks that it advertises rel. Any failure
// here means the API cannot be talked to at all.
func (c *Client) root(ctx context.Context, op, rel string) (*hal.Resource, error) {
	root, err := c.nav.Root(ctx, c.rootPath)
	if err != nil {
		return nil, c.unavailable(op, err)
	}
	if !root.Has(rel) {
		c.logger.Debug("root does not advertise relation", "rel", rel, "available", root.Relations())
		return nil, c.unavailable(op, nil)
	}
	return root, nil
}

func (c *Client) unavailable(op string, cause error) error {
	return &Error{
		Op:  op,
		Err: ErrAPIUnavailable,
		Msg: fmt.Sprintf(
			"could not access the root of the API, either authentication failed or the URL %q could not be reached",
			c.RootURL()),
		Cause: cause,
	}
}

// fail maps a navigation, transport or decode error to an operation error.
func (c *Client) fail(op, msg string, err error) error {
	var tErr *hal.TransportError
	if errors.As(err, &tErr) && tErr.StatusCode == http.StatusNotFound {
		return &Error{Op: op, Err: ErrNotFound, Msg: msg, Cause: err}
	}
	return &Error{Op: op, Msg: msg, Cause: err}
}

func noResults(op string, params hal.Params) error {
	serialized, err := json.Marshal(params)
	if err != nil {
		serialized = []byte(fmt.Sprint(map[string]any(params)))
	}
	return &Error{
		Op:  op,
		Err: ErrNoResults,
		Msg: "parameters " + string(serialized),
	}
}
