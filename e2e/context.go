// Package e2e drives a running server through its HTTP surface. The suite
// is black-box: it only knows the base URL and a signing key for minting
// test tokens, both provided through the environment.
package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TestContext carries the HTTP client and the state shared between steps of
// one scenario.
type TestContext struct {
	BaseURL    string
	SigningKey string

	client       *http.Client
	accessToken  string
	lastStatus   int
	lastResponse map[string]any
	lastList     []map[string]any

	// Scenario state captured along the way.
	boxLabels  []string
	shipmentID int64
}

// NewTestContext builds a context for one scenario run.
func NewTestContext(baseURL, signingKey string) *TestContext {
	return &TestContext{
		BaseURL:    baseURL,
		SigningKey: signingKey,
		client:     &http.Client{Timeout: 10 * time.Second},
	}
}

// Reset clears per-scenario state so scenarios stay independent.
func (tc *TestContext) Reset() {
	tc.accessToken = ""
	tc.lastStatus = 0
	tc.lastResponse = nil
	tc.lastList = nil
	tc.boxLabels = nil
	tc.shipmentID = 0
}

// AuthenticateAs mints an access token for a user with the given
// organisation, bases, and permissions. The server trusts any token signed
// with the shared test key.
func (tc *TestContext) AuthenticateAs(userID string, orgID int64, baseIDs []any, permissions []any) error {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(time.Hour).Unix(),
		"https://www.boxtribute.com/organisation_id": orgID,
		"https://www.boxtribute.com/base_ids":        baseIDs,
		"https://www.boxtribute.com/permissions":     permissions,
	})
	signed, err := token.SignedString([]byte(tc.SigningKey))
	if err != nil {
		return fmt.Errorf("sign test token: %w", err)
	}
	tc.accessToken = signed
	return nil
}

// POST sends a JSON body and records the response.
func (tc *TestContext) POST(path string, body any) error {
	return tc.do(http.MethodPost, path, body)
}

// PATCH sends a JSON body and records the response.
func (tc *TestContext) PATCH(path string, body any) error {
	return tc.do(http.MethodPatch, path, body)
}

// GET records the response of a body-less request.
func (tc *TestContext) GET(path string) error {
	return tc.do(http.MethodGet, path, nil)
}

func (tc *TestContext) do(method, path string, body any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(method, tc.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tc.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+tc.accessToken)
	}

	resp, err := tc.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	tc.lastStatus = resp.StatusCode
	tc.lastResponse = nil
	tc.lastList = nil
	if len(raw) == 0 {
		return nil
	}
	if raw[0] == '[' {
		return json.Unmarshal(raw, &tc.lastList)
	}
	return json.Unmarshal(raw, &tc.lastResponse)
}

// LastStatus returns the status code of the most recent response.
func (tc *TestContext) LastStatus() int {
	return tc.lastStatus
}

// ResponseField returns a top-level field of the last JSON object response.
func (tc *TestContext) ResponseField(field string) (any, error) {
	if tc.lastResponse == nil {
		return nil, fmt.Errorf("no object response recorded")
	}
	v, ok := tc.lastResponse[field]
	if !ok {
		return nil, fmt.Errorf("response has no field %q", field)
	}
	return v, nil
}

// ResponseList returns the last JSON array response.
func (tc *TestContext) ResponseList() []map[string]any {
	return tc.lastList
}

// RememberBoxLabel stores a created box label for later steps.
func (tc *TestContext) RememberBoxLabel(label string) {
	tc.boxLabels = append(tc.boxLabels, label)
}

// BoxLabels returns the labels captured so far, in creation order.
func (tc *TestContext) BoxLabels() []string {
	return tc.boxLabels
}

// RememberShipmentID stores the scenario's shipment id.
func (tc *TestContext) RememberShipmentID(id int64) {
	tc.shipmentID = id
}

// ShipmentID returns the scenario's shipment id.
func (tc *TestContext) ShipmentID() int64 {
	return tc.shipmentID
}
