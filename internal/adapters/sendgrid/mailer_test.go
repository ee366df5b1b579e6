package sendgrid_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/robertarktes/bootcamp-booking/internal/adapters/sendgrid"
	"github.com/robertarktes/bootcamp-booking/internal/notify"
)

func TestMailer_Send(t *testing.T) {
	var (
		auth string
		body map[string]interface{}
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &body)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	m := sendgrid.NewMailer("SG.key", srv.URL, "Big Five", "no-reply@bigfive.ci")
	err := m.Send(context.Background(), notify.Message{
		Template: "order.paid",
		To:       "awa@example.com",
		ToName:   "Awa Koné",
		Subject:  "Inscription confirmée",
		Text:     "Bonjour",
		HTML:     "<p>Bonjour</p>",
	})
	if err != nil {
		t.Fatal(err)
	}
	if auth != "Bearer SG.key" {
		t.Errorf("unexpected auth header %q", auth)
	}
	from, _ := body["from"].(map[string]interface{})
	if from["email"] != "no-reply@bigfive.ci" {
		t.Errorf("unexpected sender %v", body["from"])
	}
}

func TestMailer_SendRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":[{"message":"bad key"}]}`))
	}))
	defer srv.Close()

	m := sendgrid.NewMailer("bad", srv.URL, "Big Five", "no-reply@bigfive.ci")
	if err := m.Send(context.Background(), notify.Message{To: "a@b.c", Subject: "x", Text: "x", HTML: "x"}); err == nil {
		t.Fatal("expected an error for a rejected request")
	}
}
