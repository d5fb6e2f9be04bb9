package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"os"
	"time"

	"reportai/internal/cache"
	"reportai/internal/model"
)

// OrderClient wraps the upstream order-management API
type OrderClient struct {
	baseURL    string
	token      string
	httpClient *http.Client
	maxRetries int
}

// NewOrderClient creates a new order-management API client
func NewOrderClient() *OrderClient {
	baseURL := os.Getenv("ORDER_API_URL")
	if baseURL == "" {
		baseURL = "https://orders.internal/api/v2"
	}
	token := os.Getenv("ORDER_API_TOKEN")
	if token == "" {
		log.Println("Warning: ORDER_API_TOKEN not set")
	}

	return &OrderClient{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		maxRetries: 5,
	}
}

// orderAPIResponse mirrors the upstream order payload
type orderAPIResponse struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Advertiser string  `json:"advertiser"`
	StartDate  string  `json:"start_date"`
	EndDate    string  `json:"end_date"`
	Budget     float64 `json:"budget"`
	LineItems  []struct {
		Platform   string  `json:"platform"`
		Product    string  `json:"product"`
		Subproduct string  `json:"subproduct"`
		TacticType string  `json:"tactic_type"`
		DataValue  string  `json:"data_value"`
		Budget     float64 `json:"budget"`
	} `json:"line_items"`
}

// doRequest performs an HTTP request with exponential backoff on
// rate limits and server errors
func (c *OrderClient) doRequest(ctx context.Context, method, path string) ([]byte, error) {
	url := c.baseURL + path
	log.Printf("[Order Client] %s %s", method, path)

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * time.Second
			log.Printf("[Order Client] Retry %d/%d for %s %s in %v", attempt, c.maxRetries, method, path, backoff)
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, method, url, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.token)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			log.Printf("[Order Client] ERROR: HTTP request failed (attempt %d): %v", attempt+1, err)
			lastErr = err
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode == 429 || resp.StatusCode >= 500 {
			log.Printf("[Order Client] Upstream returned %d, will retry", resp.StatusCode)
			lastErr = fmt.Errorf("order API error %d", resp.StatusCode)
			continue
		}
		if resp.StatusCode >= 400 {
			return nil, fmt.Errorf("order API error %d: %s", resp.StatusCode, string(respBody))
		}

		return respBody, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// GetOrder fetches one order from the upstream API
func (c *OrderClient) GetOrder(ctx context.Context, orderID string) (*model.OrderSnapshot, error) {
	respBody, err := c.doRequest(ctx, "GET", "/orders/"+orderID)
	if err != nil {
		return nil, err
	}

	var raw orderAPIResponse
	if err := json.Unmarshal(respBody, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse order response: %w", err)
	}

	snapshot := &model.OrderSnapshot{
		OrderID:      raw.ID,
		CampaignName: raw.Name,
		Advertiser:   raw.Advertiser,
		FlightStart:  raw.StartDate,
		FlightEnd:    raw.EndDate,
		BudgetTotal:  raw.Budget,
	}
	for _, li := range raw.LineItems {
		snapshot.LineItems = append(snapshot.LineItems, model.OrderLineItem{
			Platform:   li.Platform,
			Product:    li.Product,
			Subproduct: li.Subproduct,
			TacticType: li.TacticType,
			DataValue:  li.DataValue,
			Budget:     li.Budget,
		})
	}
	return snapshot, nil
}

// IsConfigured returns true if the upstream token is set
func (c *OrderClient) IsConfigured() bool {
	return c.token != ""
}

// OrderService serves order snapshots cache-first
type OrderService struct {
	client *OrderClient
	cache  cache.OrderCache
}

// NewOrderService creates a new order service
func NewOrderService(client *OrderClient, orderCache cache.OrderCache) *OrderService {
	return &OrderService{client: client, cache: orderCache}
}

// GetOrder returns the cached snapshot when fresh, otherwise fetches from
// upstream and caches the result
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (*model.OrderSnapshot, error) {
	snapshot, err := s.cache.Get(ctx, orderID)
	if err != nil {
		log.Printf("[Order] Cache read failed for order %s: %v", orderID, err)
	}
	if snapshot != nil {
		return snapshot, nil
	}

	snapshot, err = s.client.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, snapshot); err != nil {
		log.Printf("[Order] Cache write failed for order %s: %v", orderID, err)
	}
	return snapshot, nil
}
