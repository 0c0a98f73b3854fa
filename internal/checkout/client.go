// Package checkout is the storefront's client side: it submits a cart to
// the purchase API, reads back the library, and clears the cart only
// after an explicit success signal.
package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Heetpatel219/GameLibrary/internal/cart"
	"github.com/Heetpatel219/GameLibrary/internal/catalog"
	"github.com/Heetpatel219/GameLibrary/internal/purchase"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrServerFault  = errors.New("storefront server error")
	ErrBadStatus    = errors.New("storefront bad status")
)

// DuplicateRejection is the typed form of the all-or-nothing duplicate
// refusal: nothing in the request was purchased.
type DuplicateRejection struct {
	Detail purchase.DuplicateError
}

func (e *DuplicateRejection) Error() string {
	names := make([]string, 0, len(e.Detail.Games))
	for _, g := range e.Detail.Games {
		names = append(names, g.Name)
	}
	return fmt.Sprintf("already owned: %s", strings.Join(names, ", "))
}

// Client talks to the storefront API on behalf of one user. Identity is
// attached as either a bearer token or a trusted User-Id header,
// whichever the deployment uses.
type Client struct {
	BaseURL string
	Token   string
	UserID  string
	HTTP    *http.Client
}

func NewClient(baseURL string) *Client {
	if u, err := url.Parse(baseURL); err == nil && u.Scheme != "" && u.Host != "" {
		baseURL = strings.TrimRight(baseURL, "/")
	}
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

type submitReq struct {
	Games       []purchase.GameSnapshot `json:"games"`
	TotalAmount decimal.Decimal         `json:"totalAmount"`
}

// SubmitPurchase posts the declared games and total to the purchase API.
func (c *Client) SubmitPurchase(ctx context.Context, games []purchase.GameSnapshot, total decimal.Decimal) error {
	body, err := json.Marshal(submitReq{Games: games, TotalAmount: total})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/purchases", strings.NewReader(string(body)))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.setIdentity(req)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	case http.StatusUnauthorized:
		_, _ = io.Copy(io.Discard, resp.Body)
		return ErrUnauthorized
	case http.StatusBadRequest:
		return decodeRejection(resp.Body)
	default:
		_, _ = io.Copy(io.Discard, resp.Body)
		if resp.StatusCode >= http.StatusInternalServerError {
			return ErrServerFault
		}
		return fmt.Errorf("%w: status=%d", ErrBadStatus, resp.StatusCode)
	}
}

// Library fetches the user's owned games.
func (c *Client) Library(ctx context.Context) ([]purchase.GameSnapshot, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/purchases", nil)
	if err != nil {
		return nil, err
	}
	c.setIdentity(req)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, ErrUnauthorized
	default:
		_, _ = io.Copy(io.Discard, resp.Body)
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, ErrServerFault
		}
		return nil, fmt.Errorf("%w: status=%d", ErrBadStatus, resp.StatusCode)
	}

	var lr struct {
		Success bool                    `json:"success"`
		Games   []purchase.GameSnapshot `json:"games"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return nil, err
	}
	return lr.Games, nil
}

// Games fetches the browsable catalog.
func (c *Client) Games(ctx context.Context) ([]catalog.Game, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/games", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: status=%d", ErrBadStatus, resp.StatusCode)
	}

	var lr struct {
		Success bool           `json:"success"`
		Games   []catalog.Game `json:"games"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return nil, err
	}
	return lr.Games, nil
}

func (c *Client) setIdentity(req *http.Request) {
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
		return
	}
	if c.UserID != "" {
		req.Header.Set("User-Id", c.UserID)
	}
}

func decodeRejection(body io.Reader) error {
	var fr struct {
		Success bool            `json:"success"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.NewDecoder(body).Decode(&fr); err != nil {
		return fmt.Errorf("%w: status=400", ErrBadStatus)
	}

	var dup purchase.DuplicateError
	if err := json.Unmarshal(fr.Error, &dup); err == nil && dup.Count > 0 {
		return &DuplicateRejection{Detail: dup}
	}

	var msg string
	_ = json.Unmarshal(fr.Error, &msg)
	return fmt.Errorf("%w: status=400 error=%s", ErrBadStatus, msg)
}

// Checkout snapshots the cart, submits it with the cart's exact total,
// and clears the cart only when the server reports success. On any
// failure the cart is left untouched so the user can retry.
func Checkout(ctx context.Context, c *Client, store *cart.Store) error {
	items := store.Items()
	games := make([]purchase.GameSnapshot, 0, len(items))
	for _, it := range items {
		games = append(games, purchase.GameSnapshot{
			ID:    it.ID,
			Name:  it.Name,
			Price: it.Price,
			Image: it.Image,
		})
	}

	if err := c.SubmitPurchase(ctx, games, store.Total()); err != nil {
		return err
	}

	store.Clear()
	return nil
}
