// internal/nutrition/client.go

// Package nutrition resolves free-text food descriptions into per-100g
// nutrient profiles using the Nutritionix natural-language endpoint.
package nutrition

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"nutrition-log/internal/models"
)

const (
	DefaultBaseURL = "https://trackapi.nutritionix.com"
	DefaultTimeout = 10 * time.Second

	nutrientsPath = "/v2/natural/nutrients"
)

// Resolver turns a food description into a normalized nutrient profile.
type Resolver interface {
	Resolve(ctx context.Context, description string) (models.NutrientProfile, error)
}

type Config struct {
	BaseURL string
	AppID   string
	AppKey  string
	Timeout time.Duration
}

// Client talks to Nutritionix. One attempt per call, no retries.
type Client struct {
	httpClient *http.Client
	baseURL    string
	appID      string
	appKey     string
}

func NewClient(cfg Config) *Client {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		appID:   cfg.AppID,
		appKey:  cfg.AppKey,
	}
}

type nutrientsRequest struct {
	Query string `json:"query"`
}

type nutrientsResponse struct {
	Foods []Food `json:"foods"`
}

// Food is one matched food as reported by the provider, for its own serving size.
type Food struct {
	FoodName           string   `json:"food_name"`
	ServingWeightGrams *float64 `json:"serving_weight_grams"`
	Calories           *float64 `json:"nf_calories"`
	Protein            *float64 `json:"nf_protein"`
	TotalFat           *float64 `json:"nf_total_fat"`
	TotalCarbohydrate  *float64 `json:"nf_total_carbohydrate"`
}

// Resolve looks up description and normalizes the first matched food.
func (c *Client) Resolve(ctx context.Context, description string) (models.NutrientProfile, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return models.NutrientProfile{}, fmt.Errorf("%w: food description is required", models.ErrInvalidInput)
	}

	foods, err := c.lookup(ctx, description)
	if err != nil {
		return models.NutrientProfile{}, err
	}
	if len(foods) == 0 {
		return models.NutrientProfile{}, fmt.Errorf("%w: %q", models.ErrNotFound, description)
	}

	return Normalize(foods[0])
}

func (c *Client) lookup(ctx context.Context, query string) ([]Food, error) {
	jsonData, err := json.Marshal(nutrientsRequest{Query: query})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to marshal request: %w", models.ErrProviderError, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+nutrientsPath, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create HTTP request: %w", models.ErrProviderError, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-app-id", c.appID)
	req.Header.Set("x-app-key", c.appKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: HTTP request failed: %w", models.ErrProviderError, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if err != nil {
			return nil, fmt.Errorf("%w: request failed with status %d and couldn't read body: %v", models.ErrProviderError, resp.StatusCode, err)
		}
		// Nutritionix answers an unmatched query with 404 and a JSON message.
		// Any other failure, a bare 404 included, is the provider's fault.
		if msg, ok := unmatchedMessage(resp.StatusCode, bodyBytes); ok {
			return nil, fmt.Errorf("%w: %s", models.ErrNotFound, msg)
		}
		return nil, fmt.Errorf("%w: request failed with status %d: %s", models.ErrProviderError, resp.StatusCode, strings.TrimSpace(string(bodyBytes)))
	}

	var payload nutrientsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %w", models.ErrProviderError, err)
	}

	return payload.Foods, nil
}

func unmatchedMessage(status int, body []byte) (string, bool) {
	if status != http.StatusNotFound {
		return "", false
	}
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Message == "" {
		return "", false
	}
	return payload.Message, true
}
