package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/xtding233/coinflip/internal/coin"
	"github.com/xtding233/coinflip/internal/progress"
	"github.com/xtding233/coinflip/internal/session"
	"github.com/xtding233/coinflip/internal/unlock"
)

var quiet = slog.New(slog.DiscardHandler)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	cat, err := coin.NewCatalog([]coin.Definition{
		{Path: "plain"},
		{Path: "one", Condition: &coin.Condition{Rule: coin.TotalFlips{Count: 1}}, Effect: coin.Shaved{Bias: 0.1}},
		{Path: "far", Condition: &coin.Condition{Rule: coin.TotalFlips{Count: 100}}},
	})
	if err != nil {
		t.Fatal(err)
	}
	opt := session.Options{RNG: &unlock.FixedRNG{Draws: []float64{0.1}}, Logger: quiet, HeadsPath: "plain", TailsPath: "plain"}
	tr := unlock.NewTracker(t.Context(), cat, progress.NewMemoryStore(), unlock.Options{RNG: opt.RNG, Logger: quiet})
	reg := session.NewRegistry(session.New(tr, opt), session.MemoryFactory(cat, opt))
	srv := httptest.NewServer(NewRouter(reg, quiet))
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path, body string, out any) int {
	t.Helper()
	req, err := http.NewRequestWithContext(t.Context(), method, srv.URL+path, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decode: %v", method, path, err)
		}
	}
	return resp.StatusCode
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	var body map[string]string
	if code := do(t, srv, http.MethodGet, "/healthz", "", &body); code != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("code=%d body=%v", code, body)
	}
}

func TestFlipAndStats(t *testing.T) {
	srv := newTestServer(t)

	var res session.FlipResult
	if code := do(t, srv, http.MethodPost, "/sessions/default/flip", "", &res); code != http.StatusOK {
		t.Fatalf("flip code %d", code)
	}
	if res.Side != coin.SideHeads || len(res.Unlocked) != 1 || res.Unlocked[0] != "one" {
		t.Fatalf("flip %+v", res)
	}

	var st session.Stats
	do(t, srv, http.MethodGet, "/sessions/default/stats", "", &st)
	if st.TotalFlips != 1 || st.CurrentStreak != 1 {
		t.Fatalf("stats %+v", st)
	}

	var c session.CoinStatus
	if code := do(t, srv, http.MethodGet, "/sessions/default/coin?path=far", "", &c); code != http.StatusOK || c.Progress != "Flips 1/100" {
		t.Fatalf("code=%d coin=%+v", code, c)
	}
	if code := do(t, srv, http.MethodGet, "/sessions/default/coin?path=nope", "", nil); code != http.StatusNotFound {
		t.Fatalf("unknown coin code %d", code)
	}
	var coins []session.CoinStatus
	do(t, srv, http.MethodGet, "/sessions/default/coins", "", &coins)
	if len(coins) != 3 || !coins[1].Unlocked {
		t.Fatalf("coins %+v", coins)
	}
}

func TestFaces(t *testing.T) {
	srv := newTestServer(t)
	if code := do(t, srv, http.MethodPut, "/sessions/default/faces/heads", `{"path":"one"}`, nil); code != http.StatusConflict {
		t.Fatalf("locked coin code %d", code)
	}
	if code := do(t, srv, http.MethodPut, "/sessions/default/faces/edge", `{"path":"plain"}`, nil); code != http.StatusBadRequest {
		t.Fatalf("bad side code %d", code)
	}
	if code := do(t, srv, http.MethodPut, "/sessions/default/faces/heads", `{"path":"ghost"}`, nil); code != http.StatusNotFound {
		t.Fatalf("unknown coin code %d", code)
	}
	if code := do(t, srv, http.MethodPut, "/sessions/default/faces/heads", `{"bogus":1}`, nil); code != http.StatusBadRequest {
		t.Fatalf("unknown field code %d", code)
	}

	do(t, srv, http.MethodPost, "/sessions/default/flip", "", nil)
	var faces map[coin.Side]session.Face
	if code := do(t, srv, http.MethodPut, "/sessions/default/faces/heads", `{"path":"one"}`, &faces); code != http.StatusOK {
		t.Fatalf("set face code %d", code)
	}
	if faces[coin.SideHeads].Path != "one" {
		t.Fatalf("faces %+v", faces)
	}
	do(t, srv, http.MethodPut, "/sessions/default/faces/tails", `{"random":true}`, &faces)
	if !faces[coin.SideTails].Random || faces[coin.SideTails].Path != "plain" {
		t.Fatalf("faces %+v", faces)
	}

	var one session.Face
	if code := do(t, srv, http.MethodGet, "/sessions/default/faces/heads", "", &one); code != http.StatusOK || one.Path != "one" || one.Random {
		t.Fatalf("get heads code=%d face=%+v", code, one)
	}
	if code := do(t, srv, http.MethodGet, "/sessions/default/faces/tails", "", &one); code != http.StatusOK || !one.Random {
		t.Fatalf("get tails code=%d face=%+v", code, one)
	}
	if code := do(t, srv, http.MethodGet, "/sessions/default/faces/edge", "", nil); code != http.StatusBadRequest {
		t.Fatalf("get bad side code %d", code)
	}
}

func TestEphemeralSessions(t *testing.T) {
	srv := newTestServer(t)
	var created struct {
		ID string `json:"id"`
	}
	if code := do(t, srv, http.MethodPost, "/sessions", "", &created); code != http.StatusCreated || created.ID == "" {
		t.Fatalf("create code=%d id=%q", code, created.ID)
	}
	base := "/sessions/" + created.ID
	do(t, srv, http.MethodPost, base+"/flip", "", nil)

	var st session.Stats
	do(t, srv, http.MethodGet, "/sessions/default/stats", "", &st)
	if st.TotalFlips != 0 {
		t.Fatalf("default profile saw ephemeral flip: %+v", st)
	}

	if code := do(t, srv, http.MethodDelete, "/sessions/default", "", nil); code != http.StatusBadRequest {
		t.Fatalf("delete default code %d", code)
	}
	if code := do(t, srv, http.MethodDelete, base, "", nil); code != http.StatusNoContent {
		t.Fatalf("delete code %d", code)
	}
	if code := do(t, srv, http.MethodGet, base+"/stats", "", nil); code != http.StatusNotFound {
		t.Fatalf("deleted session code %d", code)
	}
}

func TestSessionCap(t *testing.T) {
	cat, err := coin.NewCatalog([]coin.Definition{{Path: "plain"}})
	if err != nil {
		t.Fatal(err)
	}
	opt := session.Options{Logger: quiet, HeadsPath: "plain", TailsPath: "plain"}
	tr := unlock.NewTracker(t.Context(), cat, progress.NewMemoryStore(), unlock.Options{Logger: quiet})
	reg := session.NewLimitedRegistry(session.New(tr, opt), session.MemoryFactory(cat, opt), session.Limits{MaxSessions: 1})
	srv := httptest.NewServer(NewRouter(reg, quiet))
	t.Cleanup(srv.Close)

	if code := do(t, srv, http.MethodPost, "/sessions", "", nil); code != http.StatusCreated {
		t.Fatalf("first create code %d", code)
	}
	var body map[string]string
	if code := do(t, srv, http.MethodPost, "/sessions", "", &body); code != http.StatusTooManyRequests || body["error"] == "" {
		t.Fatalf("over cap code=%d body=%v", code, body)
	}
}

func TestNotificationsAndReset(t *testing.T) {
	srv := newTestServer(t)
	do(t, srv, http.MethodPost, "/sessions/default/flip", "", nil)

	var pending map[string][]string
	do(t, srv, http.MethodGet, "/sessions/default/notifications", "", &pending)
	if len(pending["pending"]) != 1 || pending["pending"][0] != "one" {
		t.Fatalf("pending %v", pending)
	}
	if code := do(t, srv, http.MethodPost, "/sessions/default/notifications/ack", `{"path":"one"}`, nil); code != http.StatusNoContent {
		t.Fatalf("ack code %d", code)
	}
	if code := do(t, srv, http.MethodPost, "/sessions/default/notifications/ack", `{}`, nil); code != http.StatusBadRequest {
		t.Fatalf("empty ack code %d", code)
	}
	do(t, srv, http.MethodGet, "/sessions/default/notifications", "", &pending)
	if len(pending["pending"]) != 0 {
		t.Fatalf("pending after ack %v", pending)
	}

	var st session.Stats
	if code := do(t, srv, http.MethodPost, "/sessions/default/reset", "", &st); code != http.StatusOK || st.TotalFlips != 0 {
		t.Fatalf("reset code=%d stats=%+v", code, st)
	}
}
