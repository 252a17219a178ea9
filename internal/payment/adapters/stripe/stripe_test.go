package stripe

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	paymentdomain "github.com/cohortly/cohortly/internal/payment/domain"
)

func TestVerifySignature(t *testing.T) {
	secret := "whsec_test"
	payload := []byte(`{"id":"evt_123","type":"checkout.session.completed","data":{"object":{}}}`)
	timestamp := time.Now().Unix()

	header := buildSignatureHeader(secret, payload, timestamp)
	reqHeader := http.Header{}
	reqHeader.Set("Stripe-Signature", header)

	adapter := &Adapter{webhookSecret: secret}
	if err := adapter.Verify(context.Background(), payload, reqHeader); err != nil {
		t.Fatalf("expected valid signature, got error: %v", err)
	}

	reqHeader.Set("Stripe-Signature", buildSignatureHeader("wrong", payload, timestamp))
	if err := adapter.Verify(context.Background(), payload, reqHeader); err == nil {
		t.Fatalf("expected invalid signature error")
	}

	reqHeader.Del("Stripe-Signature")
	if err := adapter.Verify(context.Background(), payload, reqHeader); !errors.Is(err, paymentdomain.ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature for missing header, got %v", err)
	}
}

func TestParseEvents(t *testing.T) {
	created := time.Now().UTC().Unix()

	tests := []struct {
		name        string
		event       any
		wantType    string
		wantSession string
		wantSub     string
	}{{
		name: "checkout.session.completed",
		event: map[string]any{
			"id":      "evt_cs",
			"type":    "checkout.session.completed",
			"created": created,
			"data": map[string]any{
				"object": map[string]any{
					"id":           "cs_123",
					"customer":     "cus_1",
					"amount_total": 80000,
					"currency":     "USD",
					"created":      created,
					"metadata": map[string]any{
						"user_id":      "user_1",
						"payment_type": "one_time",
					},
				},
			},
		},
		wantType:    paymentdomain.EventTypeCheckoutCompleted,
		wantSession: "cs_123",
	}, {
		name: "customer.subscription.updated",
		event: map[string]any{
			"id":      "evt_sub",
			"type":    "customer.subscription.updated",
			"created": created,
			"data": map[string]any{
				"object": map[string]any{
					"id":       "sub_1",
					"customer": "cus_1",
					"status":   "active",
					"created":  created,
				},
			},
		},
		wantType: paymentdomain.EventTypeSubscriptionUpsert,
		wantSub:  "sub_1",
	}, {
		name: "customer.subscription.deleted",
		event: map[string]any{
			"id":      "evt_del",
			"type":    "customer.subscription.deleted",
			"created": created,
			"data": map[string]any{
				"object": map[string]any{
					"id":       "sub_1",
					"customer": "cus_1",
					"status":   "canceled",
					"created":  created,
				},
			},
		},
		wantType: paymentdomain.EventTypeSubscriptionDeleted,
		wantSub:  "sub_1",
	}, {
		name: "invoice.payment_succeeded",
		event: map[string]any{
			"id":      "evt_inv",
			"type":    "invoice.payment_succeeded",
			"created": created,
			"data": map[string]any{
				"object": map[string]any{
					"id":           "in_1",
					"customer":     "cus_1",
					"subscription": "sub_1",
					"created":      created,
				},
			},
		},
		wantType: paymentdomain.EventTypeInvoicePaid,
		wantSub:  "sub_1",
	}}

	adapter := &Adapter{webhookSecret: "whsec_test"}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := json.Marshal(tt.event)
			if err != nil {
				t.Fatalf("marshal payload: %v", err)
			}

			event, err := adapter.Parse(context.Background(), payload)
			if err != nil {
				t.Fatalf("parse: %v", err)
			}
			if event.Type != tt.wantType {
				t.Fatalf("expected type %s, got %s", tt.wantType, event.Type)
			}
			if tt.wantSession != "" && event.CheckoutSessionID != tt.wantSession {
				t.Fatalf("expected session %s, got %s", tt.wantSession, event.CheckoutSessionID)
			}
			if tt.wantSub != "" && event.SubscriptionID != tt.wantSub {
				t.Fatalf("expected subscription %s, got %s", tt.wantSub, event.SubscriptionID)
			}
		})
	}
}

func TestParseIgnoresUnknownEvents(t *testing.T) {
	adapter := &Adapter{webhookSecret: "whsec_test"}
	payload := []byte(`{"id":"evt_x","type":"account.updated","data":{"object":{}}}`)

	_, err := adapter.Parse(context.Background(), payload)
	if !errors.Is(err, paymentdomain.ErrEventIgnored) {
		t.Fatalf("expected ErrEventIgnored, got %v", err)
	}
}

func buildSignatureHeader(secret string, payload []byte, timestamp int64) string {
	signed := fmt.Sprintf("%d.%s", timestamp, string(payload))
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(signed))
	return fmt.Sprintf("t=%d,v1=%s", timestamp, hex.EncodeToString(mac.Sum(nil)))
}
