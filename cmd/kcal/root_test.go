package kcal

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/mux"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	buf := &bytes.Buffer{}
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

// fakeServer is an in-memory wellness backend.
type fakeServer struct {
	mu       sync.Mutex
	created  bool
	calories float64
	entries  []map[string]any
	posted   []map[string]any
	deleted  []string
}

func (f *fakeServer) router() *mux.Router {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/daily-log/{user}/{date}/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		vars := mux.Vars(r)
		if r.Method == http.MethodPost {
			f.created = true
			w.WriteHeader(http.StatusCreated)
		} else if !f.created {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail":"Not found."}`))
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id": 42, "user": vars["user"], "date": vars["date"],
			"total_calories": f.calories, "calorie_goal": 2000,
			"total_protein": "10.0", "protein_goal": "150.0",
		})
	}).Methods(http.MethodGet, http.MethodPost)
	api.HandleFunc("/food-entries/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		_ = json.NewEncoder(w).Encode(f.entries)
	}).Methods(http.MethodGet)
	api.HandleFunc("/food-entries/", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.mu.Lock()
		f.posted = append(f.posted, body)
		f.mu.Unlock()
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id": 900}`))
	}).Methods(http.MethodPost)
	api.HandleFunc("/food-entries/{id}/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.deleted = append(f.deleted, mux.Vars(r)["id"])
		f.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodDelete)
	api.HandleFunc("/alcohol-beverages/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("category") != "beer" {
			_, _ = w.Write([]byte(`{"results": [], "next": null}`))
			return
		}
		_, _ = w.Write([]byte(`{"results": [{"id": 3, "name": "Pilsner", "brand": "Urquell", "category": "beer", "volume_ml": 500, "abv": 4.4, "calories": 200}], "next": null}`))
	}).Methods(http.MethodGet)
	api.HandleFunc("/alcohol-beverages/{id}/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}).Methods(http.MethodGet)
	api.HandleFunc("/caffeine-products/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}).Methods(http.MethodGet)
	return r
}

type cliEnv struct {
	server *fakeServer
	args   []string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	for _, k := range []string{"KCAL_SYNC_USER", "KCAL_SYNC_BASE_URL", "KCAL_SYNC_TOKEN", "KCAL_SYNC_FOOD_SOURCES", "KCAL_SYNC_LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	f := &fakeServer{}
	srv := httptest.NewServer(f.router())
	t.Cleanup(srv.Close)
	dir := t.TempDir()
	return &cliEnv{
		server: f,
		args: []string{
			"--db", filepath.Join(dir, "kcal-sync.db"),
			"--config", filepath.Join(dir, "config.yaml"),
			"--base-url", srv.URL + "/api",
			"--log-level", "error",
		},
	}
}

func (e *cliEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return runCLI(t, append(append([]string{}, e.args...), args...)...)
}

func TestRootHelp(t *testing.T) {
	out, err := runCLI(t, "--help")
	if err != nil {
		t.Fatalf("execute root help: %v", err)
	}
	if out == "" {
		t.Fatalf("expected help output")
	}
}

func TestInitCommandIdempotent(t *testing.T) {
	dir := t.TempDir()
	dbFile := filepath.Join(dir, "kcal-sync.db")
	cfgFile := filepath.Join(dir, "config.yaml")
	for i := 0; i < 2; i++ {
		if _, err := runCLI(t, "--db", dbFile, "--config", cfgFile, "--user", "alice", "init"); err != nil {
			t.Fatalf("init run %d failed: %v", i+1, err)
		}
	}
	raw, err := os.ReadFile(cfgFile)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if !strings.Contains(string(raw), "user: alice") {
		t.Fatalf("expected user in config, got:\n%s", raw)
	}
}

func TestCommandsRequireUser(t *testing.T) {
	env := newCLIEnv(t)
	_, err := env.run(t, "today")
	if err == nil || !strings.Contains(err.Error(), "user is not configured") {
		t.Fatalf("expected missing user error, got %v", err)
	}
}

func TestTodayCreatesMissingRecord(t *testing.T) {
	env := newCLIEnv(t)
	out, err := env.run(t, "--user", "alice", "today")
	if err != nil {
		t.Fatalf("today: %v\n%s", err, out)
	}
	if !env.server.created {
		t.Fatalf("expected daily log to be created")
	}
	if !strings.Contains(out, "Calories: 0 / 2000 kcal") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestLastUserIsRemembered(t *testing.T) {
	env := newCLIEnv(t)
	if _, err := env.run(t, "--user", "alice", "today"); err != nil {
		t.Fatalf("first run: %v", err)
	}
	if _, err := env.run(t, "today"); err != nil {
		t.Fatalf("second run without --user: %v", err)
	}
}

func TestGoalOverrideShowsInToday(t *testing.T) {
	env := newCLIEnv(t)
	if _, err := env.run(t, "goal", "set", "calories", "1800"); err != nil {
		t.Fatalf("goal set: %v", err)
	}
	out, err := env.run(t, "--user", "alice", "today", "--json")
	if err != nil {
		t.Fatalf("today: %v", err)
	}
	var got struct {
		Summary struct {
			CaloriesGoal int     `json:"calories_goal"`
			ProteinGoalG float64 `json:"protein_goal_g"`
		} `json:"summary"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode today json: %v\n%s", err, out)
	}
	if got.Summary.CaloriesGoal != 1800 || got.Summary.ProteinGoalG != 150 {
		t.Fatalf("unexpected goals: %+v", got.Summary)
	}

	if _, err := env.run(t, "goal", "set", "sodium", "5"); err == nil {
		t.Fatalf("expected unknown goal nutrient to fail")
	}
}

func TestLogFoodPostsEntryAndUpdatesTotals(t *testing.T) {
	env := newCLIEnv(t)
	env.server.created = true
	env.server.calories = 500

	out, err := env.run(t, "--user", "alice", "log", "food", "--name", "Toast", "--serving", "40", "--kcal", "120", "--meal", "breakfast")
	if err != nil {
		t.Fatalf("log food: %v\n%s", err, out)
	}
	if !strings.Contains(out, "Today: 620 / 2000 kcal") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if len(env.server.posted) != 1 {
		t.Fatalf("expected one POST, got %d", len(env.server.posted))
	}
	body := env.server.posted[0]
	if body["name"] != "Toast" || body["meal_type"] != "breakfast" || body["user"] != "alice" {
		t.Fatalf("unexpected entry payload: %v", body)
	}
	if body["protein"] != nil {
		t.Fatalf("untracked protein should be null, got %v", body["protein"])
	}
}

func TestLogWater(t *testing.T) {
	env := newCLIEnv(t)
	env.server.created = true
	if _, err := env.run(t, "--user", "alice", "log", "water", "330"); err != nil {
		t.Fatalf("log water: %v", err)
	}
	if got := env.server.posted[0]["water_ml"]; got != 330.0 {
		t.Fatalf("unexpected water_ml %v", got)
	}
	if _, err := env.run(t, "--user", "alice", "log", "water", "abc"); err == nil {
		t.Fatalf("expected invalid amount to fail")
	}
}

func TestLogAlcoholUnknownBeverage(t *testing.T) {
	env := newCLIEnv(t)
	env.server.created = true
	out, err := env.run(t, "--user", "alice", "log", "alcohol", "3", "--servings", "2")
	if err == nil {
		t.Fatalf("expected lookup outside the warmed catalog to fail, got:\n%s", out)
	}
	if len(env.server.posted) != 0 {
		t.Fatalf("nothing should be posted for an unknown beverage")
	}
}

func TestDeleteEntry(t *testing.T) {
	env := newCLIEnv(t)
	env.server.created = true
	env.server.calories = 400
	env.server.entries = []map[string]any{
		{"id": 7, "user": "alice", "name": "Pasta", "serving_size": "200.0", "serving_unit": "g", "calories": 300, "meal_type": "dinner"},
	}
	out, err := env.run(t, "--user", "alice", "delete", "7")
	if err != nil {
		t.Fatalf("delete: %v\n%s", err, out)
	}
	if len(env.server.deleted) != 1 || env.server.deleted[0] != "7" {
		t.Fatalf("unexpected deletes %v", env.server.deleted)
	}
	if !strings.Contains(out, "Today: 100 / 2000 kcal") {
		t.Fatalf("unexpected output:\n%s", out)
	}

	if _, err := env.run(t, "--user", "alice", "delete", "99"); err == nil {
		t.Fatalf("expected unknown entry to fail")
	}
}

func TestCatalogWarm(t *testing.T) {
	env := newCLIEnv(t)
	out, err := env.run(t, "--user", "alice", "catalog", "warm")
	if err != nil {
		t.Fatalf("catalog warm: %v", err)
	}
	if !strings.Contains(out, "Alcohol: 1 products") || !strings.Contains(out, "Caffeine: 0 products") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestConfigSetAndGet(t *testing.T) {
	env := newCLIEnv(t)
	if _, err := env.run(t, "config", "set", "--food-sources", "backend, off"); err != nil {
		t.Fatalf("config set: %v", err)
	}
	out, err := env.run(t, "config", "get")
	if err != nil {
		t.Fatalf("config get: %v", err)
	}
	if !strings.Contains(out, "food_sources\tbackend,off") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if _, err := env.run(t, "config", "set", "--food-sources", "upcitemdb"); err == nil {
		t.Fatalf("expected unsupported source to fail")
	}
	if _, err := env.run(t, "config", "set"); err == nil {
		t.Fatalf("expected error without flags")
	}
}

func TestEntriesAndMatch(t *testing.T) {
	env := newCLIEnv(t)
	env.server.created = true
	env.server.entries = []map[string]any{
		{"id": 11, "user": "alice", "name": "Latte", "serving_size": 350, "serving_unit": "ml", "calories": 190, "meal_type": "breakfast", "caffeine_category": "coffee", "caffeine_mg": 150},
	}
	out, err := env.run(t, "--user", "alice", "entries")
	if err != nil {
		t.Fatalf("entries: %v", err)
	}
	if !strings.Contains(out, "11\tbreakfast\tLatte") || !strings.Contains(out, "caffeine") {
		t.Fatalf("unexpected output:\n%s", out)
	}

	out, err = env.run(t, "--user", "alice", "match", "--name", "Pilsner", "--brand", "Urquell")
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if !strings.Contains(out, "Kind: alcohol_beverage") || !strings.Contains(out, "Product: Pilsner") {
		t.Fatalf("unexpected output:\n%s", out)
	}

	out, err = env.run(t, "--user", "alice", "match", "--name", "Kombucha")
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if !strings.Contains(out, "No catalog match") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}
