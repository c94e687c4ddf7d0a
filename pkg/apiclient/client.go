package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client is a thin HTTP client for the foodreel API. It keeps the issued
// token pair and sends the access token as a bearer header.
type Client struct {
	baseURL    string
	httpClient *http.Client

	accessToken  string
	refreshToken string
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

type Account struct {
	ID        uint   `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	AvatarURL string `json:"avatar_url"`
	Address   string `json:"address"`
}

type CartEntry struct {
	ProductID uint    `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	ImageURL  string  `json:"image_url"`
	Type      string  `json:"type"`
	Quantity  int     `json:"quantity"`
}

type LoginResult struct {
	Account      Account `json:"account"`
	AccessToken  string  `json:"access_token"`
	RefreshToken string  `json:"refresh_token"`
}

type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
}

// IsUnauthorized reports whether err is an API 401, the signal for the UI to
// return to the login screen.
func IsUnauthorized(err error) bool {
	if e, ok := err.(*apiError); ok {
		return e.Status == http.StatusUnauthorized
	}
	return false
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.accessToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var msg struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&msg)
		return &apiError{Status: resp.StatusCode, Message: msg.Message}
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func (c *Client) Register(ctx context.Context, name, email, password string) (*Account, error) {
	var account Account
	err := c.do(ctx, http.MethodPost, "/user/register", map[string]string{
		"name":     name,
		"email":    email,
		"password": password,
	}, &account)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	var result LoginResult
	err := c.do(ctx, http.MethodPost, "/user/login", map[string]string{
		"email":    email,
		"password": password,
	}, &result)
	if err != nil {
		return nil, err
	}
	c.accessToken = result.AccessToken
	c.refreshToken = result.RefreshToken
	return &result, nil
}

func (c *Client) Logout(ctx context.Context) error {
	err := c.do(ctx, http.MethodPost, "/user/logout", nil, nil)
	c.accessToken = ""
	c.refreshToken = ""
	return err
}

type cartResponse struct {
	CartItems []CartEntry `json:"cart_items"`
}

func (c *Client) GetCart(ctx context.Context) ([]CartEntry, error) {
	var resp cartResponse
	if err := c.do(ctx, http.MethodGet, "/cart", nil, &resp); err != nil {
		return nil, err
	}
	return resp.CartItems, nil
}

// AddToCart adds or adjusts one entry; qty may be negative to decrement.
func (c *Client) AddToCart(ctx context.Context, productID uint, qty int) ([]CartEntry, error) {
	var resp cartResponse
	err := c.do(ctx, http.MethodPost, "/cart/add", map[string]interface{}{
		"product_id": productID,
		"qty":        qty,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return resp.CartItems, nil
}

func (c *Client) RemoveFromCart(ctx context.Context, productID uint) ([]CartEntry, error) {
	var resp cartResponse
	err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/cart/%d", productID), nil, &resp)
	if err != nil {
		return nil, err
	}
	return resp.CartItems, nil
}
