package stripe

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	checkoutdomain "github.com/cohortly/cohortly/internal/checkout/domain"
	paymentdomain "github.com/cohortly/cohortly/internal/payment/domain"
)

type checkoutSessionResponse struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

type subscriptionResponse struct {
	ID                 string            `json:"id"`
	Customer           string            `json:"customer"`
	Status             string            `json:"status"`
	CurrentPeriodStart int64             `json:"current_period_start"`
	CurrentPeriodEnd   int64             `json:"current_period_end"`
	Metadata           map[string]string `json:"metadata"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Client talks to the Stripe REST API directly with form-encoded requests.
type Client struct {
	apiKey string
	client *http.Client
}

func NewClient(apiKey string) (*Client, error) {
	key := strings.TrimSpace(apiKey)
	if key == "" {
		return nil, paymentdomain.ErrInvalidConfig
	}
	return &Client{
		apiKey: key,
		client: &http.Client{Timeout: 12 * time.Second},
	}, nil
}

func (c *Client) CreateSession(ctx context.Context, input checkoutdomain.SessionInput) (*checkoutdomain.Session, error) {
	values := url.Values{}
	values.Set("customer_email", input.CustomerEmail)
	values.Set("client_reference_id", input.ClientReferenceID)
	values.Set("success_url", input.SuccessURL)
	values.Set("cancel_url", input.CancelURL)
	for key, value := range input.Metadata {
		values.Set("metadata["+key+"]", value)
	}

	switch input.Mode {
	case checkoutdomain.PaymentSubscription:
		values.Set("mode", "subscription")
		values.Set("line_items[0][price]", input.SubscriptionPriceID)
		values.Set("line_items[0][quantity]", "1")
		// Copy metadata onto the subscription object itself so lifecycle
		// events can be mapped back to a user without a session lookup.
		for key, value := range input.Metadata {
			values.Set("subscription_data[metadata]["+key+"]", value)
		}
	default:
		values.Set("mode", "payment")
		for i, item := range input.LineItems {
			prefix := fmt.Sprintf("line_items[%d]", i)
			values.Set(prefix+"[price_data][currency]", item.Currency)
			values.Set(prefix+"[price_data][unit_amount]", strconv.FormatInt(item.Amount, 10))
			values.Set(prefix+"[price_data][product_data][name]", item.Name)
			if item.Description != "" {
				values.Set(prefix+"[price_data][product_data][description]", item.Description)
			}
			values.Set(prefix+"[quantity]", strconv.FormatInt(item.Quantity, 10))
		}
	}

	body, err := c.doRequest(ctx, http.MethodPost, "/v1/checkout/sessions", values, "checkout:"+input.ClientReferenceID)
	if err != nil {
		return nil, err
	}

	var session checkoutSessionResponse
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, err
	}
	if session.ID == "" || session.URL == "" {
		return nil, errors.New("stripe_response_invalid")
	}
	return &checkoutdomain.Session{ID: session.ID, URL: session.URL}, nil
}

func (c *Client) FetchSubscription(ctx context.Context, subscriptionID string) (*paymentdomain.ProviderSubscription, error) {
	if strings.TrimSpace(subscriptionID) == "" {
		return nil, paymentdomain.ErrInvalidEvent
	}

	body, err := c.doRequest(ctx, http.MethodGet, "/v1/subscriptions/"+subscriptionID, nil, "")
	if err != nil {
		return nil, err
	}

	var sub subscriptionResponse
	if err := json.Unmarshal(body, &sub); err != nil {
		return nil, err
	}
	if sub.ID == "" {
		return nil, errors.New("stripe_response_invalid")
	}

	return &paymentdomain.ProviderSubscription{
		ID:                 sub.ID,
		CustomerID:         sub.Customer,
		Status:             sub.Status,
		CurrentPeriodStart: unixTime(sub.CurrentPeriodStart),
		CurrentPeriodEnd:   unixTime(sub.CurrentPeriodEnd),
		Metadata:           sub.Metadata,
	}, nil
}

func (c *Client) doRequest(
	ctx context.Context,
	method string,
	path string,
	values url.Values,
	idempotencyKey string,
) ([]byte, error) {
	var bodyReader *strings.Reader
	if values != nil {
		bodyReader = strings.NewReader(values.Encode())
	} else {
		bodyReader = strings.NewReader("")
	}

	req, err := http.NewRequestWithContext(ctx, method, "https://api.stripe.com"+path, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if values != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if idempotencyKey != "" {
		req.Header.Set("Idempotency-Key", idempotencyKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		var stripeErr errorResponse
		if err := json.NewDecoder(resp.Body).Decode(&stripeErr); err != nil {
			return nil, errors.New("stripe_request_failed")
		}
		message := strings.TrimSpace(stripeErr.Error.Message)
		if message == "" {
			message = "stripe_request_failed"
		}
		return nil, errors.New(message)
	}

	var buf json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func unixTime(value int64) *time.Time {
	if value == 0 {
		return nil
	}
	t := time.Unix(value, 0).UTC()
	return &t
}
