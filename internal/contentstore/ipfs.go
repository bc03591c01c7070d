package contentstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"credanchor/pkg/platform/sentinel"
)

// IPFS talks to a Kubo node over its HTTP API, storing documents as raw
// blocks so the returned CID matches the Reference contract (CIDv1, raw,
// sha2-256).
//
// Transport/reachability is not validity: every Get re-hashes the fetched
// bytes and rejects anything that does not match the requested reference.
type IPFS struct {
	apiURL string
	client *http.Client
}

// NewIPFS builds a client for a Kubo API endpoint, e.g.
// "http://127.0.0.1:5001".
func NewIPFS(apiURL string) *IPFS {
	return &IPFS{
		apiURL: strings.TrimRight(apiURL, "/"),
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (s *IPFS) Put(ctx context.Context, data []byte) (string, error) {
	reference, err := Reference(data)
	if err != nil {
		return "", err
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("data", "block")
	if err != nil {
		return "", fmt.Errorf("ipfs: build request: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("ipfs: build request: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("ipfs: build request: %w", err)
	}

	endpoint := s.apiURL + "/api/v0/block/put?cid-codec=raw&mhtype=sha2-256&pin=true"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &body)
	if err != nil {
		return "", fmt.Errorf("ipfs: build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("ipfs: block put: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ipfs: block put: status %d: %w", resp.StatusCode, sentinel.ErrUnavailable)
	}

	var putResp struct {
		Key string `json:"Key"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&putResp); err != nil {
		return "", fmt.Errorf("ipfs: decode block put response: %w", err)
	}
	if putResp.Key != reference {
		return "", fmt.Errorf("ipfs: node returned %s, expected %s: %w", putResp.Key, reference, sentinel.ErrMismatch)
	}
	return reference, nil
}

func (s *IPFS) Get(ctx context.Context, reference string) ([]byte, error) {
	if _, err := ParseReference(reference); err != nil {
		return nil, fmt.Errorf("ipfs: %w", err)
	}

	endpoint := s.apiURL + "/api/v0/block/get?arg=" + url.QueryEscape(reference)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("ipfs: build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ipfs: block get: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusInternalServerError {
		// Kubo reports missing blocks through the error body; treat both as
		// absent rather than surfacing node internals.
		return nil, fmt.Errorf("ipfs: %s: %w", reference, sentinel.ErrNotFound)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ipfs: block get: status %d: %w", resp.StatusCode, sentinel.ErrUnavailable)
	}

	// The block arrives as a stream; reassemble it fully before anyone
	// parses it.
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ipfs: read block: %w", err)
	}

	got, err := Reference(data)
	if err != nil {
		return nil, err
	}
	if got != reference {
		return nil, fmt.Errorf("ipfs: %s: %w", reference, sentinel.ErrMismatch)
	}
	return data, nil
}

func (s *IPFS) Has(ctx context.Context, reference string) bool {
	endpoint := s.apiURL + "/api/v0/block/stat?arg=" + url.QueryEscape(reference)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, nil)
	if err != nil {
		return false
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}
