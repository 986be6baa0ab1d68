package router

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"concerthub-api/internal/catalog"
	"concerthub-api/internal/events"
	"concerthub-api/internal/fragment"
	"concerthub-api/internal/handler"
	"concerthub-api/internal/kvstore"
	"concerthub-api/internal/middleware"
	"concerthub-api/internal/service"
	"concerthub-api/internal/storage"
	"concerthub-api/internal/view"
	"concerthub-api/web"
)

type testApp struct {
	router  http.Handler
	state   *service.State
	broker  *events.Broker
	session string
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()

	b, err := kvstore.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { b.Close() })

	items, err := catalog.DefaultItems()
	if err != nil {
		t.Fatal(err)
	}
	cat := catalog.New(items)
	broker := events.NewBroker(16)
	st := service.NewState(cat, storage.New(b), broker, service.Options{})
	if err := st.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	loader := fragment.NewLoader(fragment.NewFSSource(web.FragmentsFS()))
	view.Register(loader, st)
	layout, err := view.LoadLayout(web.LayoutFS())
	if err != nil {
		t.Fatal(err)
	}

	r := New(Config{
		Handler:             handler.New(b, "sqlite", "test", cat.Len),
		ConcertHandler:      handler.NewConcertHandler(st),
		WishlistHandler:     handler.NewWishlistHandler(st),
		OrderHandler:        handler.NewOrderHandler(st),
		NotificationHandler: handler.NewNotificationHandler(st),
		SettingsHandler:     handler.NewSettingsHandler(st),
		CheckoutHandler:     handler.NewCheckoutHandler(st),
		EventsHandler:       handler.NewEventsHandler(broker),
		AdminHandler:        handler.NewAdminHandler(st, b, broker, "sqlite"),
		ViewHandler:         handler.NewViewHandler(loader, layout),
		SessionMiddleware:   middleware.NewSessionMiddleware(middleware.SessionConfig{}),
	})

	sid, err := service.NewSessionID()
	if err != nil {
		t.Fatal(err)
	}
	return &testApp{router: r, state: st, broker: broker, session: sid}
}

func (a *testApp) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(middleware.SessionHeader, a.session)
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testApp) form(t *testing.T, target string, values url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set(middleware.SessionHeader, a.session)
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Meta    *struct {
		Total int  `json:"total"`
		Empty bool `json:"empty"`
	} `json:"meta"`
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decoding %q: %v", rec.Body.String(), err)
	}
	if data != nil {
		if err := json.Unmarshal(env.Data, data); err != nil {
			t.Fatalf("decoding data %q: %v", env.Data, err)
		}
	}
	return env
}

func TestProbes(t *testing.T) {
	app := newTestApp(t)

	for _, path := range []string{"/api/status", "/api/v1/health", "/api/v1/ready", "/api/v1/admin/stats", "/api/v1/admin/health"} {
		if rec := app.do(t, http.MethodGet, path, ""); rec.Code != http.StatusOK {
			t.Errorf("%s: expected 200, got %d: %s", path, rec.Code, rec.Body.String())
		}
	}
}

func TestConcertsListAndGet(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/api/v1/concerts", "")
	var all []map[string]interface{}
	env := decode(t, rec, &all)
	if len(all) != app.state.Catalog.Len() || env.Meta == nil || env.Meta.Total != len(all) {
		t.Fatalf("unexpected list: %d items, meta %+v", len(all), env.Meta)
	}

	rec = app.do(t, http.MethodGet, "/api/v1/concerts?q=JAVA%20jazz", "")
	var found []map[string]interface{}
	decode(t, rec, &found)
	if len(found) != 1 || found[0]["title"] != "Java Jazz Festival" {
		t.Errorf("unexpected search result %v", found)
	}

	rec = app.do(t, http.MethodGet, "/api/v1/concerts?q=nothing-matches", "")
	env = decode(t, rec, nil)
	if env.Meta == nil || !env.Meta.Empty {
		t.Errorf("expected empty meta, got %+v", env.Meta)
	}

	if rec := app.do(t, http.MethodGet, "/api/v1/concerts/9999", ""); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
	if rec := app.do(t, http.MethodGet, "/api/v1/concerts/abc", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestWishlistToggleAndNotifications(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPost, "/api/v1/concerts/1/wishlist", "")
	var toggled struct {
		Wishlist bool `json:"wishlist"`
		Count    int  `json:"wishlist_count"`
	}
	decode(t, rec, &toggled)
	if !toggled.Wishlist || toggled.Count != 1 {
		t.Fatalf("unexpected toggle result %+v", toggled)
	}

	rec = app.do(t, http.MethodGet, "/api/v1/wishlist/count", "")
	var count struct{ Count int }
	decode(t, rec, &count)
	if count.Count != 1 {
		t.Errorf("expected count 1, got %d", count.Count)
	}

	// Adding twice is a no-op.
	if rec := app.do(t, http.MethodPut, "/api/v1/wishlist/1", ""); rec.Code != http.StatusOK {
		t.Errorf("expected 200 for existing entry, got %d", rec.Code)
	}
	if rec := app.do(t, http.MethodPut, "/api/v1/wishlist/2", ""); rec.Code != http.StatusCreated {
		t.Errorf("expected 201 for new entry, got %d", rec.Code)
	}
	if rec := app.do(t, http.MethodDelete, "/api/v1/wishlist/2", ""); rec.Code != http.StatusOK {
		t.Errorf("expected 200 on remove, got %d", rec.Code)
	}

	rec = app.do(t, http.MethodGet, "/api/v1/notifications/badge", "")
	var badge struct {
		Count   int  `json:"count"`
		Visible bool `json:"visible"`
	}
	decode(t, rec, &badge)
	if badge.Count != 3 || !badge.Visible {
		t.Errorf("unexpected badge %+v", badge)
	}

	rec = app.do(t, http.MethodGet, "/api/v1/notifications", "")
	var list []struct {
		ID      string `json:"id"`
		Message string `json:"message"`
	}
	decode(t, rec, &list)
	if len(list) != 3 || list[2].Message != "Concert added to wishlist" {
		t.Fatalf("unexpected notifications %+v", list)
	}

	if rec := app.do(t, http.MethodPost, "/api/v1/notifications/"+list[0].ID+"/read", ""); rec.Code != http.StatusOK {
		t.Errorf("mark read: %d", rec.Code)
	}
	if rec := app.do(t, http.MethodPost, "/api/v1/notifications/nope/read", ""); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown notification, got %d", rec.Code)
	}
	if rec := app.do(t, http.MethodDelete, "/api/v1/notifications/"+list[1].ID, ""); rec.Code != http.StatusNoContent {
		t.Errorf("delete: %d", rec.Code)
	}
	if rec := app.do(t, http.MethodDelete, "/api/v1/notifications", ""); rec.Code != http.StatusNoContent {
		t.Errorf("clear: %d", rec.Code)
	}
	if n := app.state.Notifications.Len(); n != 0 {
		t.Errorf("expected cleared log, got %d", n)
	}
}

func TestWishlistFormPostRedirects(t *testing.T) {
	app := newTestApp(t)

	rec := app.form(t, "/api/v1/concerts/2/wishlist", url.Values{})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/app/home" {
		t.Errorf("unexpected redirect %q", loc)
	}
	if !app.state.Wishlist.Contains(2) {
		t.Error("expected concert 2 wishlisted")
	}
}

func TestCheckoutFlow(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/api/v1/checkout?id=1", "")
	var c service.Checkout
	decode(t, rec, &c)
	if c.State != service.StatePriced || c.Quantity != 1 || c.Total.Amount != 500000 {
		t.Fatalf("unexpected checkout %+v", c)
	}

	rec = app.do(t, http.MethodPut, "/api/v1/checkout/quantity", `{"quantity":3}`)
	decode(t, rec, &c)
	if c.Quantity != 3 || c.Total.Amount != 1500000 {
		t.Fatalf("unexpected repriced checkout %+v", c)
	}

	if rec := app.do(t, http.MethodPut, "/api/v1/checkout/quantity", `{"quantity":11}`); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for quantity 11, got %d", rec.Code)
	}

	rec = app.do(t, http.MethodPost, "/api/v1/checkout/submit", `{"full_name":"Ana"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for incomplete form, got %d", rec.Code)
	}
	rec = app.do(t, http.MethodGet, "/api/v1/checkout", "")
	decode(t, rec, &c)
	if c.State != service.StateFailed {
		t.Errorf("expected failed state, got %s", c.State)
	}

	rec = app.do(t, http.MethodPost, "/api/v1/checkout/submit",
		`{"full_name":"Ana","email":"ana@example.com","card_number":"4111111111111111"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	decode(t, rec, &c)
	if c.State != service.StateSuccess || !service.IsOrderID(c.OrderID) {
		t.Fatalf("unexpected result %+v", c)
	}

	rec = app.do(t, http.MethodGet, "/api/v1/orders/"+c.OrderID, "")
	var order struct {
		Quantity int    `json:"quantity"`
		Status   string `json:"status"`
	}
	decode(t, rec, &order)
	if order.Quantity != 3 || order.Status != "Confirmed" {
		t.Errorf("unexpected order %+v", order)
	}

	// A completed checkout is closed.
	if rec := app.do(t, http.MethodPut, "/api/v1/checkout/quantity", `{"quantity":2}`); rec.Code != http.StatusConflict {
		t.Errorf("expected 409 after success, got %d", rec.Code)
	}

	if rec := app.do(t, http.MethodGet, "/api/v1/checkout?id=9999", ""); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown concert, got %d", rec.Code)
	}
}

func TestCheckoutFormSubmitShowsOrder(t *testing.T) {
	app := newTestApp(t)
	app.do(t, http.MethodPost, "/api/v1/concerts/2/select", "")

	rec := app.form(t, "/api/v1/checkout/submit", url.Values{
		"full_name":   {"Ana"},
		"email":       {"ana@example.com"},
		"card_number": {"4111"},
		"quantity":    {"2"},
	})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	loc := rec.Header().Get("Location")
	if loc != "/checkout" {
		t.Fatalf("unexpected redirect %q", loc)
	}
	orders := app.state.Orders.List()
	if len(orders) != 1 {
		t.Fatalf("expected 1 order, got %d", len(orders))
	}

	rec = app.do(t, http.MethodGet, loc, "")
	body := rec.Body.String()
	if rec.Code != http.StatusOK || !strings.Contains(body, orders[0].ID) {
		t.Errorf("order %s not shown on page (status %d)", orders[0].ID, rec.Code)
	}
	if !strings.Contains(body, `data-state="success"`) || !strings.Contains(body, " disabled>Complete Purchase") {
		t.Error("expected finished checkout with the purchase button disabled")
	}

	rec = app.do(t, http.MethodGet, "/api/v1/checkout", "")
	var c service.Checkout
	decode(t, rec, &c)
	if c.State != service.StateSuccess || c.OrderID != orders[0].ID {
		t.Errorf("unexpected checkout after redirect %+v", c)
	}

	// Resubmitting the finished checkout records nothing.
	app.form(t, "/api/v1/checkout/submit", url.Values{
		"full_name":   {"Ana"},
		"email":       {"ana@example.com"},
		"card_number": {"4111"},
	})
	if n := app.state.Orders.Count(); n != 1 {
		t.Errorf("expected 1 order after resubmit, got %d", n)
	}
}

func TestSettings(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodPut, "/api/v1/settings", `{"firstName":"Ana"}`)
	var s struct {
		FirstName          string `json:"firstName"`
		LastName           string `json:"lastName"`
		EmailNotifications bool   `json:"emailNotifications"`
	}
	decode(t, rec, &s)
	if s.FirstName != "Ana" || s.LastName != "7" || !s.EmailNotifications {
		t.Errorf("unexpected settings %+v", s)
	}

	if rec := app.do(t, http.MethodPut, "/api/v1/settings", `{"firstName":"  "}`); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for blank name, got %d", rec.Code)
	}

	rec = app.form(t, "/api/v1/settings", url.Values{"firstName": {"Budi"}, "lastName": {"S"}})
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", rec.Code)
	}
	got := app.state.Settings.Get()
	if got.FirstName != "Budi" || got.EmailNotifications {
		t.Errorf("unchecked box should clear the flag: %+v", got)
	}
}

func TestPages(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/", "")
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/app/home" {
		t.Errorf("unexpected index response %d %q", rec.Code, rec.Header().Get("Location"))
	}

	rec = app.do(t, http.MethodGet, "/app/home", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Upcoming Concerts") {
		t.Errorf("unexpected home page %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("unexpected content type %q", ct)
	}

	rec = app.do(t, http.MethodGet, "/checkout?id=1", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "Java Jazz Festival") {
		t.Errorf("unexpected checkout page %d", rec.Code)
	}

	if rec := app.do(t, http.MethodGet, "/app/unknown", ""); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown section, got %d", rec.Code)
	}
}

func TestRawFragments(t *testing.T) {
	app := newTestApp(t)

	rec := app.do(t, http.MethodGet, "/components/sidebar.html", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "wishlist-count") {
		t.Errorf("unexpected sidebar fragment %d", rec.Code)
	}
	for _, path := range []string{"/section/missing.html", "/section/home", "/components/..%2Flayout.html"} {
		if rec := app.do(t, http.MethodGet, path, ""); rec.Code != http.StatusNotFound {
			t.Errorf("%s: expected 404, got %d", path, rec.Code)
		}
	}
}

func TestEventStream(t *testing.T) {
	app := newTestApp(t)
	srv := httptest.NewServer(app.router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/v1/events", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("connecting: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("unexpected content type %q", ct)
	}

	if _, err := app.state.Wishlist.Toggle(context.Background(), 1); err != nil {
		t.Fatal(err)
	}

	sc := bufio.NewScanner(resp.Body)
	for sc.Scan() {
		if sc.Text() == "event: "+string(events.WishlistCountChanged) {
			if !sc.Scan() || !strings.HasPrefix(sc.Text(), "data: ") {
				t.Fatalf("expected data line, got %q", sc.Text())
			}
			return
		}
	}
	t.Fatalf("stream ended before wishlist event: %v", sc.Err())
}
