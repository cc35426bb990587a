// Package client is a small Go client for the agrovest HTTP API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/agrovest/agrovest/internal/domain"
)

const defaultTimeout = 3 * time.Second

type Client struct {
	client  *http.Client
	cache   *cache.Cache
	baseURL string
	token   string
}

func New(baseURL string) *Client {
	return &Client{
		client:  &http.Client{Timeout: defaultTimeout},
		cache:   cache.New(10*time.Second, time.Minute),
		baseURL: baseURL,
	}
}

// SetToken installs the bearer token used for authenticated calls.
func (c *Client) SetToken(token string) {
	c.token = token
}

type Session struct {
	Account     domain.Account `json:"account"`
	AccessToken string         `json:"access_token"`
	TokenType   string         `json:"token_type"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (c *Client) do(ctx context.Context, method, path string, body any, response any) error {
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to perform request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var payload struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&payload)
		if payload.Error != "" {
			return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, payload.Error)
		}
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	if response == nil {
		return nil
	}
	err = json.NewDecoder(resp.Body).Decode(response)
	if err != nil {
		return fmt.Errorf("failed to decode response: %v", err)
	}
	return nil
}

// Signup registers a new account under the given role and returns the issued
// session. The client does not retain the token; call SetToken to use it.
func (c *Client) Signup(ctx context.Context, role domain.Role, creds Credentials) (Session, error) {
	var session Session
	err := c.do(ctx, http.MethodPost, "/api/v1/"+string(role)+"/signup", creds, &session)
	if err != nil {
		return Session{}, fmt.Errorf("failed to sign up: %v", err)
	}
	return session, nil
}

func (c *Client) Login(ctx context.Context, role domain.Role, creds Credentials) (Session, error) {
	var session Session
	err := c.do(ctx, http.MethodPost, "/api/v1/"+string(role)+"/login", creds, &session)
	if err != nil {
		return Session{}, fmt.Errorf("failed to log in: %v", err)
	}
	return session, nil
}

// SearchTokens queries the token listing. Results are cached briefly per
// query, matching the server-side listing cache behavior.
func (c *Client) SearchTokens(ctx context.Context, criteria domain.SearchCriteria) ([]domain.TokenView, error) {
	path := "/api/v1/tokens?" + searchQuery(criteria).Encode()

	x, found := c.cache.Get(path)
	if found {
		return x.([]domain.TokenView), nil
	}

	var views []domain.TokenView
	err := c.do(ctx, http.MethodGet, path, nil, &views)
	if err != nil {
		return nil, fmt.Errorf("failed to search tokens: %v", err)
	}

	c.cache.Set(path, views, cache.DefaultExpiration)
	return views, nil
}

func searchQuery(criteria domain.SearchCriteria) url.Values {
	q := url.Values{}
	if criteria.Country != "" {
		q.Set("country", criteria.Country)
	}
	if criteria.Region != "" {
		q.Set("region", criteria.Region)
	}
	if criteria.CropName != "" {
		q.Set("crop_name", criteria.CropName)
	}
	if criteria.CropVariety != "" {
		q.Set("crop_variety", criteria.CropVariety)
	}
	if criteria.Status != "" {
		q.Set("status", criteria.Status)
	}
	if criteria.FarmerID != nil {
		q.Set("farmer_id", strconv.FormatUint(uint64(*criteria.FarmerID), 10))
	}
	if criteria.MinROI != nil {
		q.Set("min_roi", strconv.FormatFloat(*criteria.MinROI, 'f', -1, 64))
	}
	if criteria.Deadline != nil {
		q.Set("deadline", criteria.Deadline.Format("2006-01-02"))
	}
	if criteria.CreatedAfter != nil {
		q.Set("created_after", criteria.CreatedAfter.Format("2006-01-02"))
	}
	if criteria.FundedOnly != nil {
		q.Set("funded_only", strconv.FormatBool(*criteria.FundedOnly))
	}
	if criteria.OrganicOnly {
		q.Set("organic_only", "true")
	}
	return q
}

type TokenizeRequest struct {
	CropID             uint    `json:"crop_id"`
	TokenCount         int     `json:"token_count"`
	PricePerToken      int     `json:"price_per_token"`
	ExpectedYieldUnit  string  `json:"expected_yield_unit,omitempty"`
	ExpectedTotalYield int     `json:"expected_total_yield,omitempty"`
	ExpectedROI        float64 `json:"expected_roi"`
	FundingDeadline    string  `json:"funding_deadline"`
	Currency           string  `json:"currency,omitempty"`
}

func (c *Client) Tokenize(ctx context.Context, req TokenizeRequest) (domain.Token, error) {
	var token domain.Token
	err := c.do(ctx, http.MethodPost, "/api/v1/tokens", req, &token)
	if err != nil {
		return domain.Token{}, fmt.Errorf("failed to tokenize crop: %v", err)
	}
	return token, nil
}

type ContractRequest struct {
	TokenID      uint   `json:"token_id"`
	Quantity     int    `json:"quantity"`
	DeliveryType string `json:"delivery_type"`
}

func (c *Client) CreateContract(ctx context.Context, req ContractRequest) (domain.Contract, error) {
	var contract domain.Contract
	err := c.do(ctx, http.MethodPost, "/api/v1/contracts", req, &contract)
	if err != nil {
		return domain.Contract{}, fmt.Errorf("failed to create contract: %v", err)
	}
	return contract, nil
}

func (c *Client) MyContracts(ctx context.Context) ([]domain.Contract, error) {
	var contracts []domain.Contract
	err := c.do(ctx, http.MethodGet, "/api/v1/contracts", nil, &contracts)
	if err != nil {
		return nil, fmt.Errorf("failed to list contracts: %v", err)
	}
	return contracts, nil
}
