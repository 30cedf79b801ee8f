package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/LovationAdmin/quote-api/models"
	"github.com/LovationAdmin/quote-api/utils"
)

// ============================================================================
// CSG CLIENT - quoting API
// Auth: POST /auth.json {"api_key"} -> {"token"}, sent back as x-api-token
// ============================================================================

// DefaultCSGBaseURL is the production endpoint of the quoting API.
const DefaultCSGBaseURL = "https://csgapi.appspot.com/v1"

// csgPaths maps product lines to their CSG resource.
var csgPaths = map[models.ProductLine]string{
	models.ProductMedigap:           "med_supp",
	models.ProductMedicareAdvantage: "medicare_advantage",
	models.ProductDental:            "dental",
	models.ProductHospitalIndemnity: "hospital_indemnity",
	models.ProductFinalExpense:      "final_expense_life",
	models.ProductCancer:            "cancer",
}

// CSGAPIError is a non-2xx answer from the quoting API.
type CSGAPIError struct {
	StatusCode int
	Body       string
}

func (e *CSGAPIError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200] + "..."
	}
	return fmt.Sprintf("CSG API returned status %d: %s", e.StatusCode, body)
}

// ErrCSGNotConfigured is returned when no API key was provided.
var ErrCSGNotConfigured = errors.New("CSG_API_KEY not set")

// Company is one carrier as listed by the CSG companies endpoint.
type Company struct {
	Name     string `json:"name"`
	FullName string `json:"name_full"`
	Logo     string `json:"logo_url"`
}

type CSGClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client

	mu    sync.Mutex
	token string
}

func NewCSGClient(baseURL, apiKey string, timeout time.Duration) *CSGClient {
	if baseURL == "" {
		baseURL = DefaultCSGBaseURL
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &CSGClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// ============================================================================
// QUOTES
// ============================================================================

// FetchQuotes returns the raw quotes body for params. The body is kept as
// bytes so the optimizer can report how much it shrank.
func (c *CSGClient) FetchQuotes(ctx context.Context, params models.SearchParams) ([]byte, error) {
	path, ok := csgPaths[params.Product]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProduct, params.Product)
	}
	endpoint := fmt.Sprintf("%s/%s/quotes.json?%s", c.baseURL, path, QueryValues(params).Encode())

	start := time.Now()
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	utils.SafeDebug("[CSG] %s quotes: %d bytes in %s", params.Product, len(body), time.Since(start))
	return body, nil
}

// FetchCompanies lists the carriers CSG knows for a product line.
func (c *CSGClient) FetchCompanies(ctx context.Context, product models.ProductLine) ([]Company, error) {
	path, ok := csgPaths[product]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProduct, product)
	}

	body, err := c.get(ctx, fmt.Sprintf("%s/%s/companies.json", c.baseURL, path))
	if err != nil {
		return nil, err
	}

	var companies []Company
	if err := json.Unmarshal(body, &companies); err != nil {
		return nil, fmt.Errorf("failed to parse companies: %w", err)
	}
	return companies, nil
}

// ============================================================================
// HELPER: EXECUTE REQUEST
// ============================================================================

// get performs an authenticated GET. A 401 drops the cached token and the
// request is retried once with a fresh one.
func (c *CSGClient) get(ctx context.Context, endpoint string) ([]byte, error) {
	for attempt := 0; ; attempt++ {
		token, err := c.authToken(ctx)
		if err != nil {
			return nil, err
		}

		status, body, err := c.do(ctx, http.MethodGet, endpoint, token, nil)
		if err != nil {
			return nil, err
		}
		if status == http.StatusUnauthorized && attempt == 0 {
			utils.SafeWarn("[CSG] token rejected, re-authenticating")
			c.resetToken(token)
			continue
		}
		if status < 200 || status >= 300 {
			return nil, &CSGAPIError{StatusCode: status, Body: string(body)}
		}
		return body, nil
	}
}

func (c *CSGClient) do(ctx context.Context, method, endpoint, token string, payload any) (int, []byte, error) {
	var reader io.Reader
	if payload != nil {
		jsonData, err := json.Marshal(payload)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("x-api-token", token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, body, nil
}

func (c *CSGClient) authToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" {
		return c.token, nil
	}
	if c.apiKey == "" {
		return "", ErrCSGNotConfigured
	}

	status, body, err := c.do(ctx, http.MethodPost, c.baseURL+"/auth.json", "", map[string]string{"api_key": c.apiKey})
	if err != nil {
		return "", fmt.Errorf("CSG auth failed: %w", err)
	}
	if status < 200 || status >= 300 {
		return "", &CSGAPIError{StatusCode: status, Body: string(body)}
	}

	var auth struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &auth); err != nil || auth.Token == "" {
		return "", fmt.Errorf("CSG auth returned no token")
	}

	utils.SafeInfo("[CSG] 🔑 Authenticated")
	c.token = auth.Token
	return c.token, nil
}

// resetToken forgets stale, unless another request already replaced it.
func (c *CSGClient) resetToken(stale string) {
	c.mu.Lock()
	if c.token == stale {
		c.token = ""
	}
	c.mu.Unlock()
}
