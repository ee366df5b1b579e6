package djamo_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/robertarktes/bootcamp-booking/internal/config"
	"github.com/robertarktes/bootcamp-booking/internal/djamo"
	"github.com/robertarktes/bootcamp-booking/internal/domain"
)

func newClient(url string) *djamo.Client {
	return djamo.NewClient(config.Djamo{BaseURL: url, APIKey: "key", CompanyID: "company", WebhookSecret: "whsec"})
}

func TestClient_CreateCharge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/charges" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer key" || r.Header.Get("X-Company-Id") != "company" {
			t.Errorf("missing auth headers: %v", r.Header)
		}
		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatal(err)
		}
		if body["externalId"] != "BF-1-ABCDEF" || body["amount"].(float64) != 350000 {
			t.Errorf("unexpected body %v", body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"ch_1","amount":350000,"currency":"XOF","status":"due","externalId":"BF-1-ABCDEF","paymentUrl":"https://pay.djamo.com/c/ch_1","createdAt":"2025-03-01T10:00:00Z","updatedAt":"2025-03-01T10:00:00Z"}`))
	}))
	defer srv.Close()

	ch, err := newClient(srv.URL).CreateCharge(context.Background(), djamo.CreateChargeRequest{
		Amount:     350000,
		ExternalID: "BF-1-ABCDEF",
		Metadata:   map[string]string{"sessionId": "md-avril-2025"},
	})
	if err != nil {
		t.Fatal(err)
	}
	if ch.ID != "ch_1" || ch.Status != domain.ChargeDue || ch.PaymentURL == "" {
		t.Errorf("unexpected charge %+v", ch)
	}
}

func TestClient_Errors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"charge not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newClient(srv.URL).GetCharge(context.Background(), "missing")
	var apiErr *djamo.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
		t.Fatalf("expected api error 404, got %v", err)
	}
	if !djamo.IsNotFound(err) {
		t.Error("expected IsNotFound")
	}

	unconfigured := djamo.NewClient(config.Djamo{BaseURL: srv.URL, APIKey: "key"})
	if unconfigured.Configured() {
		t.Fatal("company id is required")
	}
	_, err = unconfigured.GetCharge(context.Background(), "x")
	if !errors.Is(err, djamo.ErrNotConfigured) || !errors.Is(err, domain.ErrGatewayUnconfigured) {
		t.Errorf("expected not configured, got %v", err)
	}
}

func TestClient_RefundCharge(t *testing.T) {
	var bodies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/charges/ch_1/refund" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		raw, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(raw))
		w.Write([]byte(`{"id":"ch_1","status":"refunded"}`))
	}))
	defer srv.Close()

	c := newClient(srv.URL)
	if _, err := c.RefundCharge(context.Background(), "ch_1", nil); err != nil {
		t.Fatal(err)
	}
	partial := int64(100000)
	if _, err := c.RefundCharge(context.Background(), "ch_1", &partial); err != nil {
		t.Fatal(err)
	}
	if bodies[0] != `{}` || bodies[1] != `{"amount":100000}` {
		t.Errorf("unexpected refund bodies %q", bodies)
	}
}

func TestVerifySignature(t *testing.T) {
	body := []byte(`{"id":"evt_1","type":"charge.paid","data":{"id":"ch_1","status":"paid"}}`)
	c := newClient("http://unused")
	if !c.VerifySignature(body, djamo.Sign("whsec", body)) {
		t.Error("expected valid signature")
	}
	if c.VerifySignature(body, djamo.Sign("other", body)) {
		t.Error("expected invalid signature")
	}
	if c.VerifySignature(body, "zz") {
		t.Error("garbage signature must fail")
	}
	open := djamo.NewClient(config.Djamo{})
	if open.VerifySignature(body, "") || open.VerifySignature(body, djamo.Sign("", body)) {
		t.Error("deliveries must be refused without a secret")
	}

	ev, err := djamo.ParseEvent(body)
	if err != nil || ev.Data.ID != "ch_1" || ev.Data.Status != domain.ChargePaid {
		t.Errorf("unexpected event %+v %v", ev, err)
	}
	if _, err := djamo.ParseEvent([]byte(`{}`)); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected invalid input, got %v", err)
	}
}
