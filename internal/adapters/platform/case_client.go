// Package platform holds thin clients for sibling CaseTrail services. The
// assurance layer only needs two capabilities from the rest of the platform:
// legal-hold lookups and physical artifact deletion.
package platform

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// CaseClient answers legal-hold lookups against the case service.
type CaseClient struct {
	baseURL      string
	serviceToken string
	client       *http.Client
}

func NewCaseClient(baseURL, serviceToken string) *CaseClient {
	return &CaseClient{
		baseURL:      baseURL,
		serviceToken: serviceToken,
		client:       &http.Client{Timeout: 5 * time.Second},
	}
}

func (c *CaseClient) HasActiveLegalHold(ctx context.Context, caseID string) (bool, error) {
	endpoint := c.baseURL + "/cases/v1/" + url.PathEscape(caseID) + "/legal-hold"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, fmt.Errorf("build legal hold request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.serviceToken)

	resp, err := c.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("legal hold lookup: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		// Unknown case carries no hold.
		return false, nil
	default:
		return false, fmt.Errorf("legal hold lookup: unexpected status %d", resp.StatusCode)
	}

	var body struct {
		Data struct {
			Active bool `json:"active"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return false, fmt.Errorf("decode legal hold response: %w", err)
	}
	return body.Data.Active, nil
}

// StaticCaseService is the in-memory stand-in for local runs: the listed case
// ids are under hold, everything else is not.
type StaticCaseService struct {
	held map[string]bool
}

func NewStaticCaseService(heldCaseIDs []string) *StaticCaseService {
	held := make(map[string]bool, len(heldCaseIDs))
	for _, id := range heldCaseIDs {
		held[id] = true
	}
	return &StaticCaseService{held: held}
}

func (s *StaticCaseService) HasActiveLegalHold(_ context.Context, caseID string) (bool, error) {
	return s.held[caseID], nil
}
