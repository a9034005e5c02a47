package frontoffice

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/scorewire/warroom/internal/domain"
)

var jets = domain.Team{Key: "nyj", Name: "New York Jets", Sport: domain.SportFootball}

func TestRoster(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/teams/nyj/roster" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.Header.Get("X-API-Key"); got != "secret" {
			t.Errorf("api key header = %q", got)
		}
		io.WriteString(w, `{"players":[{"id":"p1","name":"Aaron Quick","position":"QB"}]}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "secret")
	players, err := c.Roster(context.Background(), jets)
	if err != nil {
		t.Fatalf("roster: %v", err)
	}
	if len(players) != 1 || players[0].ID != "p1" || players[0].Position != "QB" {
		t.Fatalf("players = %+v", players)
	}
}

func TestCapSummary(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"team_key":"nyj","sport":"football","cap_total":255000000,"cap_used":240000000,"cap_space":15000000}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	summary, err := c.CapSummary(context.Background(), jets)
	if err != nil {
		t.Fatalf("cap: %v", err)
	}
	if summary.CapSpace != 15_000_000 {
		t.Fatalf("summary = %+v", summary)
	}
}

func TestValidateTrade(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/trades/validate" || r.Method != http.MethodPost {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		io.WriteString(w, `{"status":"invalid","issues":[{"code":"cap_over","severity":"error","message":"over the cap"}]}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	res, err := c.ValidateTrade(context.Background(), domain.ValidationRequest{HomeTeam: "nyj", PartnerTeam: "chi"})
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if res.Status != domain.ValidationInvalid || len(res.Issues) != 1 {
		t.Fatalf("result = %+v", res)
	}
}

func TestNotFoundMapsToSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, `{"error":"no such team"}`)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "")
	if _, err := c.Roster(context.Background(), jets); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
