package advice

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"budgeter/internal/core"
)

func chatServer(t *testing.T, status int, reply string, seen *map[string]any) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sk-test" {
			t.Errorf("unexpected auth header %q", got)
		}
		if seen != nil {
			json.NewDecoder(r.Body).Decode(seen)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			w.Write([]byte(`{"error":{"message":"model overloaded","type":"server_error"}}`))
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1,
			"model":   "gpt-4o",
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": reply},
				"finish_reason": "stop",
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClientComplete(t *testing.T) {
	var body map[string]any
	srv := chatServer(t, http.StatusOK, "  Try saving 10% of each deposit.  ", &body)
	c := NewClient(Options{APIKey: "sk-test", BaseURL: srv.URL + "/v1/", Timeout: 5 * time.Second})

	got, err := c.Complete(context.Background(), SystemPrompt, "Latest command: hi")
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if got != "Try saving 10% of each deposit." {
		t.Fatalf("unexpected advice %q", got)
	}
	if body["model"] != "gpt-4o" || body["max_tokens"] != float64(DefaultMaxTokens) {
		t.Fatalf("unexpected request %v", body)
	}
	msgs, _ := body["messages"].([]any)
	if len(msgs) != 2 {
		t.Fatalf("expected system and user messages, got %v", body["messages"])
	}
}

func TestClientUpstreamFailure(t *testing.T) {
	srv := chatServer(t, http.StatusInternalServerError, "", nil)
	c := NewClient(Options{APIKey: "sk-test", BaseURL: srv.URL + "/v1", Model: "gpt-4o-mini"})

	_, err := c.Complete(context.Background(), SystemPrompt, "x")
	var ue *core.UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("expected UpstreamError, got %v", err)
	}
}

func TestDisabled(t *testing.T) {
	_, err := Disabled{}.Complete(context.Background(), "", "")
	var ue *core.UpstreamError
	if !errors.As(err, &ue) || !errors.Is(err, ErrDisabled) {
		t.Fatalf("unexpected error %v", err)
	}
}

type countingAdvisor struct {
	calls int
	err   error
}

func (c *countingAdvisor) Complete(_ context.Context, _, user string) (string, error) {
	c.calls++
	if c.err != nil {
		return "", c.err
	}
	return "advice for " + user, nil
}

func TestCached(t *testing.T) {
	inner := &countingAdvisor{}
	c := NewCached(inner, 8, time.Minute)
	ctx := context.Background()

	a1, _ := c.Complete(ctx, "sys", "one")
	a2, _ := c.Complete(ctx, "sys", "one")
	if a1 != a2 || inner.calls != 1 {
		t.Fatalf("second identical prompt should hit the cache, calls=%d", inner.calls)
	}
	c.Complete(ctx, "sys", "two")
	if inner.calls != 2 {
		t.Fatalf("different prompt should miss")
	}

	failing := &countingAdvisor{err: errors.New("down")}
	fc := NewCached(failing, 8, time.Minute)
	fc.Complete(ctx, "sys", "x")
	fc.Complete(ctx, "sys", "x")
	if failing.calls != 2 {
		t.Fatalf("errors must not be cached")
	}

	if NewCached(inner, 8, 0) != Advisor(inner) {
		t.Fatalf("zero ttl should disable caching")
	}
}

func TestBudgetPrompt(t *testing.T) {
	var history []core.Transaction
	at := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 15; i++ {
		history = append(history, core.NewTransaction(at.Add(time.Duration(i)*time.Minute), core.KindSpend, float64(i+1), ""))
	}
	history[14].Note = "pizza"

	c := NewBudgetContext(core.Balances{Account: 1234.5, Savings: 20}, core.Settings{AutoSavePercent: 20},
		core.Goal{Name: "Bike", Amount: 300}, history, "can I afford a bike?")
	if len(c.Recent) != RecentLimit || c.Recent[0].Amount != 6 {
		t.Fatalf("expected the last %d transactions, got %d starting at %v", RecentLimit, len(c.Recent), c.Recent[0].Amount)
	}

	p := BudgetPrompt(c)
	for _, want := range []string{
		"Account balance: $1,234.50",
		"Savings balance: $20.00",
		"Auto-save: 20%",
		"Goal: Bike ($300.00)",
		"spend $15.00 (pizza)",
		"Latest command: can I afford a bike?",
	} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q:\n%s", want, p)
		}
	}
	if strings.Contains(p, "$5.00") {
		t.Errorf("older transactions should be dropped")
	}

	empty := BudgetPrompt(NewBudgetContext(core.Balances{}, core.Settings{}, core.DefaultGoal(), nil, "hi"))
	if !strings.Contains(empty, "Goal: none set") || !strings.Contains(empty, "Transactions: none") {
		t.Fatalf("unexpected empty prompt %s", empty)
	}
}
