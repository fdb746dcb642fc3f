package sheet

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dararith/vehicle-inventory/backend/internal/domain"
)

// Timeouts holds the per-call-class budgets for upstream requests.
// Upload is the slowest, most failure-prone call in the system and gets
// its own generous budget; Health is for cheap reachability probes.
type Timeouts struct {
	Read   time.Duration
	Write  time.Duration
	Upload time.Duration
	Health time.Duration
}

// DefaultTimeouts are the budgets used when config supplies none.
var DefaultTimeouts = Timeouts{
	Read:   30 * time.Second,
	Write:  30 * time.Second,
	Upload: 90 * time.Second,
	Health: 5 * time.Second,
}

// Client talks to the upstream Google Apps Script spreadsheet endpoint.
// Reads go through query-string action routing; writes POST a JSON body
// carrying the action name and the server-held bearer token. Read actions
// are unauthenticated to the upstream by contract.
type Client struct {
	baseURL string
	token   string
	logger  *slog.Logger

	read   *http.Client
	write  *http.Client
	upload *http.Client
	health *http.Client
}

// NewClient constructs a Client for the given Apps Script deployment URL.
// token is sent on write actions only; pass "" for read-only use.
func NewClient(baseURL, token string, t Timeouts, logger *slog.Logger) *Client {
	if t.Read <= 0 {
		t.Read = DefaultTimeouts.Read
	}
	if t.Write <= 0 {
		t.Write = DefaultTimeouts.Write
	}
	if t.Upload <= 0 {
		t.Upload = DefaultTimeouts.Upload
	}
	if t.Health <= 0 {
		t.Health = DefaultTimeouts.Health
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		logger:  logger,
		read:    &http.Client{Timeout: t.Read},
		write:   &http.Client{Timeout: t.Write},
		upload:  &http.Client{Timeout: t.Upload},
		health:  &http.Client{Timeout: t.Health},
	}
}

// Page is one page of raw rows plus whatever pagination meta the upstream
// chose to return. Meta is nil when the deployment predates pagination;
// callers must treat such a page as the entire dataset.
type Page struct {
	Rows []RawRow
	Meta map[string]any
}

// envelope is the upstream response shape shared by every action.
type envelope struct {
	OK     bool            `json:"ok"`
	Data   json.RawMessage `json:"data"`
	Meta   map[string]any  `json:"meta"`
	Error  string          `json:"error"`
	URL    string          `json:"url"`
	FileID string          `json:"fileId"`
}

// FetchPage requests one page of vehicles at the given offset.
func (c *Client) FetchPage(ctx context.Context, limit, offset int) (Page, error) {
	q := url.Values{
		"action": {"getVehicles"},
		"limit":  {strconv.Itoa(limit)},
		"offset": {strconv.Itoa(offset)},
	}
	env, err := c.get(ctx, c.read, "FetchPage", q)
	if err != nil {
		return Page{}, err
	}
	if !env.OK {
		return Page{}, fmt.Errorf("sheet.Client.FetchPage: %w: %s", domain.ErrUpstream, upstreamMessage(env))
	}

	var rows []RawRow
	if len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, &rows); err != nil {
			return Page{}, fmt.Errorf("sheet.Client.FetchPage: %w: malformed data array: %v", domain.ErrUpstream, err)
		}
	}
	return Page{Rows: rows, Meta: env.Meta}, nil
}

// GetByID asks the upstream for a single row via the optional getById
// action. Returns domain.ErrNotFound when the upstream conclusively
// reports the ID missing; any other failure (older deployments without
// the action, transport errors, garbage responses) surfaces as
// domain.ErrUpstream so callers can fall back to cache or full scan.
func (c *Client) GetByID(ctx context.Context, id string) (RawRow, error) {
	q := url.Values{"action": {"getById"}, "id": {id}}
	env, err := c.get(ctx, c.read, "GetByID", q)
	if err != nil {
		return nil, err
	}
	if !env.OK {
		if isNotFoundMessage(env.Error) {
			return nil, fmt.Errorf("sheet.Client.GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("sheet.Client.GetByID: %w: %s", domain.ErrUpstream, upstreamMessage(env))
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil, fmt.Errorf("sheet.Client.GetByID: %w", domain.ErrNotFound)
	}

	var row RawRow
	if err := json.Unmarshal(env.Data, &row); err != nil {
		return nil, fmt.Errorf("sheet.Client.GetByID: %w: malformed row: %v", domain.ErrUpstream, err)
	}
	return row, nil
}

// Add persists a new row via the "add" action. The upstream assigns the
// VehicleId and may echo the stored row back.
func (c *Client) Add(ctx context.Context, payload RawRow) (RawRow, error) {
	body := map[string]any{"action": "add", "data": payload, "token": c.token}
	return c.writeRow(ctx, c.write, "Add", body)
}

// Update overwrites an existing row via the "update" action. The upstream
// is authoritative on not-found; no pre-existence check happens here.
func (c *Client) Update(ctx context.Context, id string, payload RawRow) (RawRow, error) {
	body := map[string]any{"action": "update", "id": id, "data": payload, "token": c.token}
	return c.writeRow(ctx, c.write, "Update", body)
}

// Delete removes a row via the "delete" action. The ID rides under all
// three historical key spellings for the same reason the payload builder
// duplicates price headers. imageFileID, when known, lets the upstream
// garbage-collect the Drive-hosted image.
func (c *Client) Delete(ctx context.Context, id, imageFileID string) error {
	body := map[string]any{
		"action":    "delete",
		"VehicleId": id,
		"id":        id,
		"vehicleId": id,
		"token":     c.token,
	}
	if imageFileID != "" {
		body["imageFileId"] = imageFileID
	}
	_, err := c.writeRow(ctx, c.write, "Delete", body)
	return err
}

// UploadRequest carries everything the "uploadImage" action needs.
type UploadRequest struct {
	FolderID string
	Category string
	MimeType string
	FileName string
	// Data is the raw base64 payload, without the data-URI prefix.
	Data string
}

// UploadResult is what the upstream hands back for a stored image.
// Some deployments return only a URL, some only a Drive file ID.
type UploadResult struct {
	URL    string
	FileID string
}

// UploadImage stores an image in the category's Drive folder. It runs
// under the dedicated upload budget and surfaces timeouts as
// domain.ErrTimeout so callers can report them distinctly.
func (c *Client) UploadImage(ctx context.Context, req UploadRequest) (UploadResult, error) {
	body := map[string]any{
		"action":   "uploadImage",
		"folderId": req.FolderID,
		"category": req.Category,
		"token":    c.token,
		"mimeType": req.MimeType,
		"fileName": req.FileName,
		"data":     req.Data,
	}
	env, err := c.post(ctx, c.upload, "UploadImage", body)
	if err != nil {
		return UploadResult{}, err
	}
	if !env.OK {
		return UploadResult{}, fmt.Errorf("sheet.Client.UploadImage: %w: %s", domain.ErrUpstream, upstreamMessage(env))
	}

	result := UploadResult{URL: env.URL, FileID: env.FileID}
	if result.URL == "" && result.FileID == "" {
		// Some deployments nest the result under data.
		var data struct {
			URL    string `json:"url"`
			FileID string `json:"fileId"`
		}
		if len(env.Data) > 0 {
			_ = json.Unmarshal(env.Data, &data)
		}
		result.URL, result.FileID = data.URL, data.FileID
	}
	if result.URL == "" && result.FileID == "" {
		return UploadResult{}, fmt.Errorf("sheet.Client.UploadImage: %w: upload response carried neither url nor fileId", domain.ErrUpstream)
	}
	return result, nil
}

// UpdateMarketPrice writes the market-price research fields for a row.
func (c *Client) UpdateMarketPrice(ctx context.Context, id string, data RawRow) error {
	body := map[string]any{"action": "updateMarketPrice", "id": id, "data": data, "token": c.token}
	_, err := c.writeRow(ctx, c.write, "UpdateMarketPrice", body)
	return err
}

// Ping probes upstream reachability under the short health budget.
func (c *Client) Ping(ctx context.Context) error {
	q := url.Values{"action": {"getVehicles"}, "limit": {"1"}, "offset": {"0"}}
	_, err := c.get(ctx, c.health, "Ping", q)
	return err
}

// --- plumbing ---------------------------------------------------------------

func (c *Client) get(ctx context.Context, hc *http.Client, op string, q url.Values) (envelope, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return envelope{}, fmt.Errorf("sheet.Client.%s: build request: %w", op, err)
	}
	return c.do(hc, op, req)
}

func (c *Client) post(ctx context.Context, hc *http.Client, op string, body map[string]any) (envelope, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return envelope{}, fmt.Errorf("sheet.Client.%s: marshal body: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(encoded))
	if err != nil {
		return envelope{}, fmt.Errorf("sheet.Client.%s: build request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(hc, op, req)
}

func (c *Client) writeRow(ctx context.Context, hc *http.Client, op string, body map[string]any) (RawRow, error) {
	env, err := c.post(ctx, hc, op, body)
	if err != nil {
		return nil, err
	}
	if !env.OK {
		return nil, fmt.Errorf("sheet.Client.%s: %w: %s", op, domain.ErrUpstream, upstreamMessage(env))
	}
	var row RawRow
	if len(env.Data) > 0 && string(env.Data) != "null" {
		// Best effort: the echoed row is informational, not contractual.
		_ = json.Unmarshal(env.Data, &row)
	}
	return row, nil
}

func (c *Client) do(hc *http.Client, op string, req *http.Request) (envelope, error) {
	resp, err := hc.Do(req)
	if err != nil {
		return envelope{}, c.classify(op, err)
	}
	defer resp.Body.Close()

	// Apps Script redirects through script.googleusercontent.com and can
	// answer 200 with an HTML error page; the JSON decode below catches that.
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return envelope{}, fmt.Errorf("sheet.Client.%s: %w: upstream returned HTTP %d", op, domain.ErrUpstream, resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return envelope{}, c.classify(op, err)
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return envelope{}, fmt.Errorf("sheet.Client.%s: %w: non-JSON response", op, domain.ErrUpstream)
	}
	return env, nil
}

// classify separates timeout failures from other transport failures so
// the two get different user-facing messages.
func (c *Client) classify(op string, err error) error {
	var ne net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &ne) && ne.Timeout()) {
		return fmt.Errorf("sheet.Client.%s: %w: call exceeded its time budget", op, domain.ErrTimeout)
	}
	return fmt.Errorf("sheet.Client.%s: %w: %v", op, domain.ErrUpstream, err)
}

func upstreamMessage(env envelope) string {
	if env.Error != "" {
		return env.Error
	}
	return "upstream reported failure without a message"
}

// isNotFoundMessage sniffs the upstream's free-text error for a missing
// record. The upstream contract offers no structured code, so this
// substring match is the only available signal; replace it the moment the
// upstream grows one.
func isNotFoundMessage(msg string) bool {
	lower := strings.ToLower(msg)
	return strings.Contains(lower, "not") && strings.Contains(lower, "found")
}
