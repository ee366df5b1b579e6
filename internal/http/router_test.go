package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/robertarktes/bootcamp-booking/internal/accounts"
	"github.com/robertarktes/bootcamp-booking/internal/adapters/memory"
	"github.com/robertarktes/bootcamp-booking/internal/checkout"
	"github.com/robertarktes/bootcamp-booking/internal/config"
	"github.com/robertarktes/bootcamp-booking/internal/dashboard"
	"github.com/robertarktes/bootcamp-booking/internal/djamo"
	"github.com/robertarktes/bootcamp-booking/internal/domain"
	api "github.com/robertarktes/bootcamp-booking/internal/http"
	"github.com/robertarktes/bootcamp-booking/internal/idempotency"
	"github.com/robertarktes/bootcamp-booking/internal/observability"
	"github.com/robertarktes/bootcamp-booking/internal/rateLimit"
	"github.com/robertarktes/bootcamp-booking/internal/seed"
)

const staticURL = "https://pay.djamo.com/2bqug"

type server struct {
	srv    *httptest.Server
	tokens *accounts.Tokens
}

func newServer(t *testing.T) *server {
	t.Helper()
	logger := observability.NewNopLogger()
	catalog := memory.NewSeededCatalog()
	store := memory.NewSeededStore()
	tokens := accounts.NewTokens("test-secret", time.Hour)

	svc := checkout.NewService(catalog, store, djamo.NewClient(config.Djamo{}), memory.NewLocker(), memory.NewAudit(),
		checkout.Options{PublicBaseURL: "http://localhost:3000", StaticPaymentURL: staticURL}, logger)

	h := api.NewHandlers(api.Deps{
		Catalog:  catalog,
		Checkout: svc,
		Accounts: accounts.NewService(store, tokens, logger),
		Tokens:   tokens,
		Admin:    dashboard.NewAdmin(catalog, store),
		Learner:  dashboard.NewLearner(catalog, store, logger),
		Logger:   logger,
	})
	rl := rateLimit.NewRateLimiter(memory.NewCounter(), logger)
	idemp := idempotency.NewIdempotency(memory.NewIdempotency(), time.Hour, logger)
	srv := httptest.NewServer(api.SetupRouter(h, logger, rl, idemp, api.DefaultLimits()))
	t.Cleanup(srv.Close)
	return &server{srv: srv, tokens: tokens}
}

func (s *server) do(t *testing.T, method, path, token string, body interface{}) (*http.Response, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, s.srv.URL+path, &buf)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var out map[string]interface{}
	_ = json.NewDecoder(resp.Body).Decode(&out)
	return resp, out
}

func TestCatalogRoutes(t *testing.T) {
	s := newServer(t)

	resp, _ := s.do(t, http.MethodGet, "/v1/bootcamps/marketing-digital-fondamentaux", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	resp, body := s.do(t, http.MethodGet, "/v1/bootcamps/unknown", "", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if body["error"] == nil {
		t.Fatal("missing error message")
	}

	resp, body = s.do(t, http.MethodGet, "/v1/sessions/md-mars-2025", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if body["selectable"] != false {
		t.Fatalf("full session selectable = %v", body["selectable"])
	}
}

func TestCreateCharge_Static(t *testing.T) {
	s := newServer(t)
	in := map[string]interface{}{
		"bootcampSlug": "marketing-digital-fondamentaux",
		"sessionId":    "md-avril-2025",
		"participant": map[string]string{
			"civility":  "mr",
			"firstName": "Koffi",
			"lastName":  "Yao",
			"email":     "koffi.yao@example.com",
			"phone":     "+225 07 00 00 00 01",
		},
	}
	resp, body := s.do(t, http.MethodPost, "/v1/create-charge", "", in)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d body = %v", resp.StatusCode, body)
	}
	if body["mode"] != "static" || body["paymentUrl"] != staticURL {
		t.Fatalf("unexpected body %v", body)
	}
	if v, ok := body["chargeId"]; !ok || v != nil {
		t.Fatalf("chargeId = %v", v)
	}

	in["sessionId"] = "md-mars-2025"
	resp, _ = s.do(t, http.MethodPost, "/v1/create-charge", "", in)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("full session status = %d", resp.StatusCode)
	}
}

func TestCreateCharge_RejectsBadBody(t *testing.T) {
	s := newServer(t)
	resp, body := s.do(t, http.MethodPost, "/v1/create-charge", "", map[string]string{"bootcampSlug": ""})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if body["error"] == nil {
		t.Fatal("missing error message")
	}
}

func TestRegisterLoginAndProfile(t *testing.T) {
	s := newServer(t)
	creds := map[string]string{"name": "Fatou Bamba", "email": "Fatou.Bamba@example.com", "password": "secret1"}

	resp, _ := s.do(t, http.MethodPost, "/v1/register", "", map[string]string{"email": "not-an-email"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid register status = %d", resp.StatusCode)
	}
	resp, _ = s.do(t, http.MethodPost, "/v1/register", "", creds)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status = %d", resp.StatusCode)
	}
	resp, _ = s.do(t, http.MethodPost, "/v1/register", "", creds)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate register status = %d", resp.StatusCode)
	}

	resp, _ = s.do(t, http.MethodPost, "/v1/login", "", map[string]string{"email": creds["email"], "password": "wrong-pass"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad login status = %d", resp.StatusCode)
	}
	resp, body := s.do(t, http.MethodPost, "/v1/login", "", map[string]string{"email": creds["email"], "password": creds["password"]})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login status = %d", resp.StatusCode)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatal("no token issued")
	}

	resp, body = s.do(t, http.MethodGet, "/v1/me/", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me status = %d", resp.StatusCode)
	}
	if body["email"] != "fatou.bamba@example.com" {
		t.Fatalf("email = %v", body["email"])
	}

	resp, _ = s.do(t, http.MethodGet, "/v1/admin/overview", token, nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("learner on admin status = %d", resp.StatusCode)
	}
}

func TestMe_RequiresToken(t *testing.T) {
	s := newServer(t)
	resp, _ := s.do(t, http.MethodGet, "/v1/me/dashboard", "", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	resp, _ = s.do(t, http.MethodGet, "/v1/me/dashboard", "garbage", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d", resp.StatusCode)
	}
}

func TestAdminOverview(t *testing.T) {
	s := newServer(t)
	var admin = seed.Users()[0]
	token, _, err := s.tokens.Issue(admin)
	if err != nil {
		t.Fatal(err)
	}
	resp, body := s.do(t, http.MethodGet, "/v1/admin/overview", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if n, _ := body["totalEnrollments"].(float64); n != float64(len(seed.Enrollments())) {
		t.Fatalf("totalEnrollments = %v", body["totalEnrollments"])
	}
}

func TestHealthz(t *testing.T) {
	s := newServer(t)
	resp, body := s.do(t, http.MethodGet, "/v1/healthz", "", nil)
	if resp.StatusCode != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("status = %d body = %v", resp.StatusCode, body)
	}
}

func staticCheckout(t *testing.T, s *server, ref string) map[string]interface{} {
	t.Helper()
	in := map[string]interface{}{
		"bootcampSlug": "marketing-digital-fondamentaux",
		"sessionId":    "md-avril-2025",
		"externalId":   ref,
		"participant": map[string]string{
			"civility":  "mme",
			"firstName": "Adjoua",
			"lastName":  "Kouassi",
			"email":     "adjoua.kouassi@example.com",
			"phone":     "+225 07 00 00 00 02",
		},
	}
	resp, body := s.do(t, http.MethodPost, "/v1/create-charge", "", in)
	if resp.StatusCode != http.StatusOK || body["mode"] != "static" {
		t.Fatalf("status = %d body = %v", resp.StatusCode, body)
	}
	return body
}

func TestDjamoWebhook_RefusesUnsignedSettlement(t *testing.T) {
	s := newServer(t)
	const ref = "BF-WEBHOOK-STATIC-01"
	staticCheckout(t, s, ref)

	event := map[string]interface{}{
		"data": map[string]string{"id": "ch_any", "externalId": ref, "status": "paid"},
	}
	resp, _ := s.do(t, http.MethodPost, "/v1/webhooks/djamo", "", event)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("webhook status = %d", resp.StatusCode)
	}

	_, order := s.do(t, http.MethodGet, "/v1/orders/"+ref+"?email=adjoua.kouassi@example.com", "", nil)
	if order["status"] != "pending" || order["enrollmentId"] != nil {
		t.Fatalf("order settled by an unsigned event: %v", order)
	}
	_, session := s.do(t, http.MethodGet, "/v1/sessions/md-avril-2025", "", nil)
	if session["spotsRemaining"] != float64(8) {
		t.Fatalf("spotsRemaining = %v", session["spotsRemaining"])
	}
}

func TestOrderRoutes_HideParticipantFromOtherCallers(t *testing.T) {
	s := newServer(t)
	const ref = "BF-PRIVACY-ORDER-01"
	staticCheckout(t, s, ref)

	for _, path := range []string{
		"/v1/orders/" + ref,
		"/v1/orders/" + ref + "?email=someone@example.com",
	} {
		resp, body := s.do(t, http.MethodGet, path, "", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("%s status = %d", path, resp.StatusCode)
		}
		if _, ok := body["data"]; ok {
			t.Errorf("%s exposes the participant snapshot", path)
		}
		if _, ok := body["email"]; ok {
			t.Errorf("%s exposes the buyer e-mail", path)
		}
	}

	resp, body := s.do(t, http.MethodGet, "/v1/confirmation?bootcamp=marketing-digital-fondamentaux&session=md-avril-2025&ref="+ref, "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("confirmation status = %d", resp.StatusCode)
	}
	order, _ := body["order"].(map[string]interface{})
	if order == nil || order["data"] != nil || order["email"] != nil {
		t.Fatalf("confirmation exposes participant details: %v", body["order"])
	}

	_, body = s.do(t, http.MethodGet, "/v1/orders/"+ref+"?email=Adjoua.Kouassi@example.com", "", nil)
	if body["data"] == nil {
		t.Fatal("the buyer must see the snapshot")
	}
}

func TestChangePassword(t *testing.T) {
	s := newServer(t)
	creds := map[string]string{"name": "Koffi Adou", "email": "koffi.adou@example.com", "password": "secret1"}
	if resp, _ := s.do(t, http.MethodPost, "/v1/register", "", creds); resp.StatusCode != http.StatusCreated {
		t.Fatalf("register status = %d", resp.StatusCode)
	}
	_, body := s.do(t, http.MethodPost, "/v1/login", "", map[string]string{"email": creds["email"], "password": creds["password"]})
	token, _ := body["token"].(string)

	change := map[string]string{"currentPassword": "not-mine", "newPassword": "secret22", "confirmPassword": "secret22"}
	resp, body := s.do(t, http.MethodPut, "/v1/me/password", token, change)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("wrong current password status = %d body = %v", resp.StatusCode, body)
	}
	change["currentPassword"] = "secret1"
	if resp, _ := s.do(t, http.MethodPut, "/v1/me/password", token, change); resp.StatusCode != http.StatusOK {
		t.Fatalf("change status = %d", resp.StatusCode)
	}
	if resp, _ := s.do(t, http.MethodPost, "/v1/login", "", map[string]string{"email": creds["email"], "password": "secret22"}); resp.StatusCode != http.StatusOK {
		t.Fatalf("login with the new password status = %d", resp.StatusCode)
	}
	if resp, _ := s.do(t, http.MethodPut, "/v1/me/password", "", change); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous change status = %d", resp.StatusCode)
	}
}

func TestAdminSettings(t *testing.T) {
	s := newServer(t)
	token, _, err := s.tokens.Issue(seed.Users()[0])
	if err != nil {
		t.Fatal(err)
	}

	resp, body := s.do(t, http.MethodGet, "/v1/admin/settings", token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	site, _ := body["site"].(map[string]interface{})
	if site["paymentLink"] != staticURL || site["siteName"] != "Big Five Academy" {
		t.Fatalf("unexpected default site settings %v", body["site"])
	}

	bad := map[string]interface{}{
		"profile": map[string]interface{}{"name": "Renamed Admin"},
		"site":    map[string]interface{}{"siteName": "Big Five", "contactEmail": "contact@bigfive.ci", "paymentLink": "not a link"},
	}
	if resp, _ := s.do(t, http.MethodPut, "/v1/admin/settings", token, bad); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("invalid site status = %d", resp.StatusCode)
	}
	_, body = s.do(t, http.MethodGet, "/v1/admin/settings", token, nil)
	if profile, _ := body["profile"].(map[string]interface{}); profile["name"] == "Renamed Admin" {
		t.Fatal("a rejected update must not save the profile")
	}

	const link = "https://pay.djamo.com/bigfive-2026"
	update := map[string]interface{}{
		"profile": map[string]interface{}{
			"name":          "Admin Big Five",
			"phone":         "+225 01 02 03 04 05",
			"notifications": map[string]interface{}{"email": true, "admin": map[string]bool{"payments": true, "weeklyReport": true}},
		},
		"site": map[string]interface{}{
			"siteName":     "Big Five Academy",
			"contactEmail": "contact@bigfive.ci",
			"phone":        "+225 27 00 00 00 00",
			"address":      "Abidjan, Cocody - Riviera",
			"paymentLink":  link,
		},
	}
	resp, body = s.do(t, http.MethodPut, "/v1/admin/settings", token, update)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("update status = %d body = %v", resp.StatusCode, body)
	}
	profile, _ := body["profile"].(map[string]interface{})
	if profile["phone"] != "+225 01 02 03 04 05" {
		t.Errorf("profile not saved: %v", profile)
	}

	if got := staticCheckout(t, s, "BF-SETTINGS-LINK-01"); got["paymentUrl"] != link {
		t.Errorf("static checkout must use the saved link, got %v", got["paymentUrl"])
	}

	learner, _, _ := s.tokens.Issue(seed.Users()[1])
	if resp, _ := s.do(t, http.MethodPut, "/v1/admin/settings", learner, update); resp.StatusCode != http.StatusForbidden {
		t.Fatalf("learner status = %d", resp.StatusCode)
	}
}

func TestIdempotencyKeys_AreScopedPerUser(t *testing.T) {
	s := newServer(t)
	post := func(user domain.User) map[string]interface{} {
		t.Helper()
		token, _, err := s.tokens.Issue(user)
		if err != nil {
			t.Fatal(err)
		}
		req, err := http.NewRequest(http.MethodPost, s.srv.URL+"/v1/me/subscription", strings.NewReader(`{"plan":"premium"}`))
		if err != nil {
			t.Fatal(err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set(idempotency.Header, "shared-plan-change-key")
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d", resp.StatusCode)
		}
		var out map[string]interface{}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			t.Fatal(err)
		}
		return out
	}

	users := seed.Users()
	if got := post(users[1]); got["userId"] != seed.LearnerID {
		t.Fatalf("unexpected subscription %v", got)
	}
	if got := post(users[0]); got["userId"] != seed.AdminID {
		t.Errorf("a second user must not receive the first user's answer, got %v", got["userId"])
	}
}
