// Package api implements the HTTP client for the metadata server.
//
// The server's boundary is strictly request/response JSON over HTTP: history
// reads, reversal posts, folder listings, metadata reads and writes, renames,
// and whole-folder mutations. All methods take a context and return decoded
// wire types; callers that need to branch on failure kind inspect the coded
// error (api.unreachable, api.timeout, api.status, api.not_found).
//
// Idempotent GETs retry on transport errors with exponential backoff. POSTs
// never retry: a reversal or save that timed out may still have been applied,
// and repeating it would double-apply.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/google/uuid"

	apperr "github.com/tagdeck/tagdeck/internal/errors"
)

// Client talks to one metadata server.
type Client struct {
	base    *url.URL
	http    *http.Client
	retries int
}

// Options tunes a Client. Zero values select defaults.
type Options struct {
	// Timeout is the per-request deadline. Default: 15s.
	Timeout time.Duration

	// Retries is the retry count for idempotent GETs. Default: 2.
	Retries int

	// HTTPClient overrides the underlying client, mainly for tests.
	// Its Timeout is left untouched when set.
	HTTPClient *http.Client
}

// New validates the server URL and returns a Client for it.
func New(rawURL string, opts Options) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(rawURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, apperr.InvalidServer(rawURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, apperr.InvalidServer(rawURL)
	}

	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}

	retries := opts.Retries
	if retries <= 0 {
		retries = 2
	}

	return &Client{base: u, http: hc, retries: retries}, nil
}

// BaseURL returns the server URL the client was built with.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// History fetches the full edit log, newest first.
func (c *Client) History(ctx context.Context) ([]ActionRecord, error) {
	var body struct {
		Actions []ActionRecord `json:"actions"`
	}
	if err := c.getJSON(ctx, "/history", &body); err != nil {
		return nil, err
	}
	return body.Actions, nil
}

// HistoryDetail fetches the expanded view of one action.
func (c *Client) HistoryDetail(ctx context.Context, actionID string) (*ActionDetail, error) {
	var detail ActionDetail
	if err := c.getJSON(ctx, "/history/"+url.PathEscape(actionID), &detail); err != nil {
		return nil, err
	}
	return &detail, nil
}

// Undo reverses an action. The result is returned whenever the server sent
// one, regardless of HTTP status: an "error" status still carries the
// refreshed action record and must reach the caller.
func (c *Client) Undo(ctx context.Context, actionID string) (*UndoRedoResult, error) {
	return c.reversal(ctx, "/history/"+url.PathEscape(actionID)+"/undo")
}

// Redo re-applies a previously undone action. Same result semantics as Undo.
func (c *Client) Redo(ctx context.Context, actionID string) (*UndoRedoResult, error) {
	return c.reversal(ctx, "/history/"+url.PathEscape(actionID)+"/redo")
}

// ClearHistory empties the server's edit log.
func (c *Client) ClearHistory(ctx context.Context) error {
	var body struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	return c.postJSON(ctx, "/history/clear", nil, &body)
}

// Tree lists the folder children of subpath ("" for the library root).
func (c *Client) Tree(ctx context.Context, subpath string) ([]TreeItem, error) {
	var body struct {
		Items []TreeItem `json:"items"`
	}
	if err := c.getJSON(ctx, "/tree/"+escapePath(subpath), &body); err != nil {
		return nil, err
	}
	return body.Items, nil
}

// ListFiles lists the audio files under a folder, subfolders included.
func (c *Client) ListFiles(ctx context.Context, folder string) ([]FileEntry, error) {
	var body struct {
		Files []FileEntry `json:"files"`
	}
	if err := c.getJSON(ctx, "/files/"+escapePath(folder), &body); err != nil {
		return nil, err
	}
	return body.Files, nil
}

// Metadata fetches the editable fields and art info of one file.
func (c *Client) Metadata(ctx context.Context, filePath string) (*FileMetadata, error) {
	var meta FileMetadata
	if err := c.getJSON(ctx, "/metadata/"+escapePath(filePath), &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// SaveMetadata writes field values (and optionally an art change) to one
// file. The server logs one history action per actually-changed field.
func (c *Client) SaveMetadata(ctx context.Context, filePath string, fields map[string]string, art *ArtChange) error {
	payload := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		payload[k] = v
	}
	if art != nil {
		if art.Remove {
			payload["removeArt"] = true
		} else if art.Data != "" {
			payload["art"] = art.Data
		}
	}

	var body struct {
		Status string `json:"status"`
	}
	return c.postJSON(ctx, "/metadata/"+escapePath(filePath), payload, &body)
}

// Rename gives a file a new name within its folder. The server answers with
// the file's new server-relative path.
func (c *Client) Rename(ctx context.Context, oldPath, newName string) (*RenameResult, error) {
	payload := map[string]string{"oldPath": oldPath, "newName": newName}
	var res RenameResult
	if err := c.postJSON(ctx, "/rename", payload, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// RenameFolder gives a folder a new name, updating every path beneath it.
func (c *Client) RenameFolder(ctx context.Context, oldPath, newName string) (*RenameResult, error) {
	payload := map[string]string{"oldPath": oldPath, "newName": newName}
	var res RenameResult
	if err := c.postJSON(ctx, "/rename-folder", payload, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// DeleteField removes one tag from one file. Field ids containing slashes
// are escaped as "__", matching the route convention.
func (c *Client) DeleteField(ctx context.Context, filePath, field string) error {
	fieldID := strings.ReplaceAll(field, "/", "__")
	var body struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	return c.doJSON(ctx, http.MethodDelete, "/metadata/"+escapePath(filePath)+"/"+url.PathEscape(fieldID), nil, &body)
}

// CreateField writes a new custom tag to a file, or to every file in its
// folder when applyToFolder is set.
func (c *Client) CreateField(ctx context.Context, filePath, name, value string, applyToFolder bool) (*BatchResult, error) {
	payload := map[string]any{
		"filepath":        filePath,
		"field_name":      name,
		"field_value":     value,
		"apply_to_folder": applyToFolder,
	}
	var res BatchResult
	if err := c.postJSON(ctx, "/metadata/create-field", payload, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ApplyFieldToFolder writes one field value to every audio file directly in
// a folder.
func (c *Client) ApplyFieldToFolder(ctx context.Context, folder, field, value string) (*BatchResult, error) {
	payload := map[string]string{"folderPath": folder, "field": field, "value": value}
	var res BatchResult
	if err := c.postJSON(ctx, "/apply-field-to-folder", payload, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ApplyArtToFolder writes album art to every audio file directly in a folder.
func (c *Client) ApplyArtToFolder(ctx context.Context, folder, artData string) (*BatchResult, error) {
	payload := map[string]string{"folderPath": folder, "art": artData}
	var res BatchResult
	if err := c.postJSON(ctx, "/apply-art-to-folder", payload, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// DeleteFieldFromFolder removes one field from every audio file directly in
// a folder. Files without the field are counted as skipped.
func (c *Client) DeleteFieldFromFolder(ctx context.Context, folder, field string) (*BatchResult, error) {
	payload := map[string]string{"folderPath": folder, "fieldId": field}
	var res BatchResult
	if err := c.postJSON(ctx, "/delete-field-from-folder", payload, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// Suggest fetches inferred values for one field of one file. Cancellation is
// the caller's job: pass a context that is canceled when the field loses
// relevance.
func (c *Client) Suggest(ctx context.Context, filePath, field string) ([]Suggestion, error) {
	var body struct {
		Field       string       `json:"field"`
		Suggestions []Suggestion `json:"suggestions"`
	}
	if err := c.getJSON(ctx, "/infer/"+escapePath(filePath)+"/"+url.PathEscape(field), &body); err != nil {
		return nil, err
	}
	return body.Suggestions, nil
}

// CheckHealth probes the server's health endpoint.
func (c *Client) CheckHealth(ctx context.Context) (*Health, error) {
	var h Health
	if err := c.getJSON(ctx, "/health", &h); err != nil {
		return nil, err
	}
	return &h, nil
}

// reversal posts to an undo/redo endpoint and decodes the result from the
// body whatever the HTTP status. Bodies without a status field (lookup
// failures, precondition rejections) become coded errors instead.
func (c *Client) reversal(ctx context.Context, path string) (*UndoRedoResult, error) {
	resp, err := c.do(ctx, http.MethodPost, path, nil)
	if err != nil {
		return nil, c.transportError(path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperr.DecodeFailed(path, err)
	}

	var res UndoRedoResult
	if err := json.Unmarshal(raw, &res); err == nil && res.Status != "" {
		return &res, nil
	}

	// Plain error payload: {"error": "..."} with a 4xx/5xx status.
	msg := serverMessage(raw)
	if resp.StatusCode == http.StatusNotFound {
		if msg == "" {
			return nil, apperr.APINotFound("action")
		}
		return nil, apperr.New(apperr.CodeAPINotFound, msg)
	}
	if msg != "" {
		return nil, apperr.New(apperr.CodeAPIStatus, msg)
	}
	return nil, apperr.Status(http.MethodPost, path, resp.StatusCode)
}

// getJSON performs a GET with transport-level retries and decodes the body.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	op := func() error {
		resp, err := c.do(ctx, http.MethodGet, path, nil)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			log.Printf("api: GET %s failed, will retry: %v", path, err)
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(c.statusError(http.MethodGet, path, resp))
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return backoff.Permanent(apperr.DecodeFailed(path, err))
		}
		return nil
	}

	bo := backoff.WithContext(backoff.WithMaxRetries(newBackOff(), uint64(c.retries)), ctx)
	if err := backoff.Retry(op, bo); err != nil {
		return c.transportError(path, err)
	}
	return nil
}

// postJSON performs a POST without retries and decodes the body.
func (c *Client) postJSON(ctx context.Context, path string, payload, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, payload, out)
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload, out any) error {
	resp, err := c.do(ctx, method, path, payload)
	if err != nil {
		return c.transportError(path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.statusError(method, path, resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperr.DecodeFailed(path, err)
	}
	return nil
}

// do builds and executes one request. Every request carries a fresh
// correlation id so client and server logs can be lined up.
func (c *Client) do(ctx context.Context, method, path string, payload any) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return nil, apperr.Internal(fmt.Sprintf("encode %s %s", method, path), err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.String()+path, body)
	if err != nil {
		return nil, apperr.Internal(fmt.Sprintf("build %s %s", method, path), err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.http.Do(req)
}

// statusError turns a non-success response into a coded error, preferring
// the server's own message when the body carries one.
func (c *Client) statusError(method, path string, resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	msg := serverMessage(raw)

	if resp.StatusCode == http.StatusNotFound {
		if msg == "" {
			msg = fmt.Sprintf("%s %s: not found", method, path)
		}
		return apperr.New(apperr.CodeAPINotFound, msg)
	}
	if msg != "" {
		return apperr.New(apperr.CodeAPIStatus, msg)
	}
	return apperr.Status(method, path, resp.StatusCode)
}

// transportError classifies a failed request: coded errors pass through,
// deadline hits map to api.timeout, everything else is api.unreachable.
func (c *Client) transportError(path string, err error) error {
	var coded *apperr.CodedError
	if errors.As(err, &coded) {
		return coded
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.Wrap(apperr.CodeAPITimeout, fmt.Sprintf("request to %s timed out", path), err)
	}
	return apperr.Unreachable(c.base.String(), err)
}

// serverMessage extracts the server's error/message string from a JSON body,
// tolerating anything that is not the expected shape.
func serverMessage(raw []byte) string {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if body.Error != "" {
		return body.Error
	}
	return body.Message
}

// escapePath escapes a server-relative path segment by segment, preserving
// the separators the routes expect.
func escapePath(p string) string {
	if p == "" {
		return ""
	}
	parts := strings.Split(p, "/")
	for i, s := range parts {
		parts[i] = url.PathEscape(s)
	}
	return strings.Join(parts, "/")
}

// newBackOff is the retry schedule for idempotent GETs: quick first retry,
// bounded total wait.
func newBackOff() *backoff.ExponentialBackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 100 * time.Millisecond
	bo.MaxInterval = 2 * time.Second
	bo.MaxElapsedTime = 10 * time.Second
	return bo
}
