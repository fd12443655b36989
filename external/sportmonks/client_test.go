package sportmonks

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestClientListMatchesFlattensRelations(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/fixtures" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("api_token") != "tok" {
			t.Errorf("missing api token")
		}
		if !strings.Contains(r.URL.Query().Get("include"), "localteam") {
			t.Errorf("missing include: %s", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"data":[
			{"id":101,"note":"WI won by 8 wickets","status":"Finished",
			 "localteam":{"data":{"name":"West Indies","code":"WI"}},
			 "visitorteam":{"data":{"name":"Ireland","code":"IRE"}},
			 "venue":{"data":{"name":"Kensington Oval"}}}
		]}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL, Token: "tok"})
	summaries, payloads, err := client.ListMatches(context.Background())
	if err != nil {
		t.Fatalf("ListMatches error: %v", err)
	}

	if len(summaries) != 1 {
		t.Fatalf("summaries: %+v", summaries)
	}
	local, ok := summaries[0]["localteam"].(map[string]any)
	if !ok || local["name"] != "West Indies" {
		t.Fatalf("relation wrapper not flattened: %+v", summaries[0]["localteam"])
	}
	if len(payloads) != 1 || strings.Contains(payloads[0].EntityKey, "api_token") {
		t.Fatalf("payload must not carry the token: %+v", payloads)
	}
}

func TestClientFetchDetailFlattensLists(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/fixtures/101" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"data":{
			"id":101,
			"scoreboards":{"data":[{"scoreboard":"S1","type":"total","total":152}]},
			"batting":{"data":[{"scoreboard":"S1","player_name":"P Stirling","score":41}]}
		}}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL, Token: "tok"})
	detail, payloads, err := client.FetchDetail(context.Background(), "101", nil)
	if err != nil {
		t.Fatalf("FetchDetail error: %v", err)
	}

	scoreboards, ok := detail["scoreboards"].([]any)
	if !ok || len(scoreboards) != 1 {
		t.Fatalf("scoreboards wrapper not flattened: %+v", detail["scoreboards"])
	}
	batting, ok := detail["batting"].([]any)
	if !ok || len(batting) != 1 {
		t.Fatalf("batting wrapper not flattened: %+v", detail["batting"])
	}
	if payloads[0].MatchID != "101" {
		t.Fatalf("payload match id: %+v", payloads[0])
	}
}

func TestClientFetchDetailNotFound(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"data":null}`))
	}))
	defer server.Close()

	client := NewClient(ClientConfig{BaseURL: server.URL, Token: "tok"})
	_, _, err := client.FetchDetail(context.Background(), "999", nil)
	if err == nil {
		t.Fatalf("expected not-found error")
	}
}

func TestSanitizeSensitiveText(t *testing.T) {
	t.Parallel()

	got := sanitizeSensitiveText(`Get "https://cricket.sportmonks.com/api/v2.0/fixtures?api_token=tok123": connection refused`, "tok123")
	if strings.Contains(got, "tok123") {
		t.Fatalf("token leaked: %s", got)
	}
	if !strings.Contains(got, "api_token=REDACTED") {
		t.Fatalf("expected redaction marker: %s", got)
	}
}

func TestFlattenRelationsKeepsMixedObjects(t *testing.T) {
	t.Parallel()

	in := map[string]any{
		"id":    float64(1),
		"venue": map[string]any{"data": map[string]any{"name": "Eden Gardens"}},
		"toss":  map[string]any{"winner": "India", "data": "ignored"},
	}
	out := flattenRelations(in)

	venue, ok := out["venue"].(map[string]any)
	if !ok || venue["name"] != "Eden Gardens" {
		t.Fatalf("pure wrapper must unwrap: %+v", out["venue"])
	}
	toss, ok := out["toss"].(map[string]any)
	if !ok || toss["winner"] != "India" {
		t.Fatalf("object with extra keys must stay intact: %+v", out["toss"])
	}
}
