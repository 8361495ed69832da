package tools

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edvin/rediscloud-tools/internal/config"
)

// apiStub serves canned JSON per path and records the request order.
type apiStub struct {
	responses map[string]string // path -> JSON body; missing paths answer 404
	requests  []string
}

func (s *apiStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.requests = append(s.requests, r.URL.Path)
	body, ok := s.responses[r.URL.Path]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.Write([]byte(body))
}

func newTestProvider(t *testing.T, stub *apiStub, instance Instance) *Provider {
	t.Helper()
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)

	cfg := &config.Config{
		APIKey:       "k",
		APISecretKey: "s",
		BaseURL:      srv.URL,
		Timeout:      5 * time.Second,
	}
	p, err := New(cfg, instance, zerolog.Nop())
	require.NoError(t, err)
	return p
}

func intPtr(i int) *int { return &i }

func TestClient_Idempotent(t *testing.T) {
	p := newTestProvider(t, &apiStub{}, Instance{})

	first := p.Client()
	second := p.Client()
	assert.Same(t, first, second)
}

func TestClose_ClearsHandle(t *testing.T) {
	p := newTestProvider(t, &apiStub{}, Instance{})

	require.NotNil(t, p.Client())
	p.Close()
	assert.Nil(t, p.client)

	// A later call recreates the client.
	assert.NotNil(t, p.Client())
}

func TestGetSubscription_NotConfigured(t *testing.T) {
	p := newTestProvider(t, &apiStub{}, Instance{})

	_, err := p.GetSubscription(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "subscription ID is not configured")
}

func TestGetSubscription_FallbackMatrix(t *testing.T) {
	tests := []struct {
		name      string
		hint      string
		firstPath string // the endpoint that must be queried first
	}{
		{"pro hint", "pro", "/subscriptions/999"},
		{"pro hint uppercase", "PRO", "/subscriptions/999"},
		{"essentials hint", "essentials", "/fixed/subscriptions/999"},
		{"fixed hint", "fixed", "/fixed/subscriptions/999"},
		{"unrecognized hint", "enterprise", "/fixed/subscriptions/999"},
		{"absent hint", "", "/fixed/subscriptions/999"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Only the fallback family has the subscription, so the provider
			// must query the hinted family first and then fall back.
			fallbackPath := "/fixed/subscriptions/999"
			if tt.firstPath == fallbackPath {
				fallbackPath = "/subscriptions/999"
			}
			stub := &apiStub{responses: map[string]string{
				fallbackPath: `{"id":5,"status":"active"}`,
			}}
			p := newTestProvider(t, stub, Instance{
				SubscriptionID:   intPtr(999),
				SubscriptionType: tt.hint,
			})

			sub, err := p.GetSubscription(context.Background())
			require.NoError(t, err)
			assert.Equal(t, float64(5), sub["id"])

			require.Len(t, stub.requests, 2)
			assert.Equal(t, tt.firstPath, stub.requests[0])
			assert.Equal(t, fallbackPath, stub.requests[1])
		})
	}
}

func TestGetSubscription_FirstFamilyHit(t *testing.T) {
	stub := &apiStub{responses: map[string]string{
		"/subscriptions/999": `{"id":999,"status":"active"}`,
	}}
	p := newTestProvider(t, stub, Instance{
		SubscriptionID:   intPtr(999),
		SubscriptionType: "pro",
	})

	sub, err := p.GetSubscription(context.Background())
	require.NoError(t, err)
	assert.Equal(t, float64(999), sub["id"])

	// No fallback request when the hinted family answers.
	assert.Equal(t, []string{"/subscriptions/999"}, stub.requests)
}

func TestGetSubscription_BothFamiliesMiss(t *testing.T) {
	p := newTestProvider(t, &apiStub{}, Instance{
		SubscriptionID:   intPtr(999),
		SubscriptionType: "pro",
	})

	_, err := p.GetSubscription(context.Background())
	require.Error(t, err)

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, 999, notFound.SubscriptionID)
	assert.Contains(t, err.Error(), "999")
}

func TestListDatabases_ProInstance(t *testing.T) {
	// End-to-end shape from the Pro databases endpoint: two databases come
	// back unmodified and in order.
	stub := &apiStub{responses: map[string]string{
		"/subscriptions/999/databases": `{"subscription":[{"subscriptionId":999,"databases":[
			{"databaseId":1,"name":"db1"},{"databaseId":2,"name":"db2"}]}]}`,
	}}
	p := newTestProvider(t, stub, Instance{
		SubscriptionID:   intPtr(999),
		SubscriptionType: "pro",
	})

	databases, err := p.ListDatabases(context.Background())
	require.NoError(t, err)
	require.Len(t, databases, 2)
	assert.Equal(t, float64(1), databases[0]["databaseId"])
	assert.Equal(t, "db1", databases[0]["name"])
	assert.Equal(t, float64(2), databases[1]["databaseId"])
	assert.Equal(t, "db2", databases[1]["name"])

	assert.Equal(t, []string{"/subscriptions/999/databases"}, stub.requests)
}

func TestListDatabases_EmptyFirstFamilyFallsBack(t *testing.T) {
	stub := &apiStub{responses: map[string]string{
		"/subscriptions/7/databases":       `{"subscription":[]}`,
		"/fixed/subscriptions/7/databases": `{"subscription":{"databases":[{"databaseId":3,"name":"cache"}]}}`,
	}}
	p := newTestProvider(t, stub, Instance{
		SubscriptionID:   intPtr(7),
		SubscriptionType: "pro",
	})

	databases, err := p.ListDatabases(context.Background())
	require.NoError(t, err)
	require.Len(t, databases, 1)
	assert.Equal(t, "cache", databases[0]["name"])
}

func TestListDatabases_BothFamiliesEmpty(t *testing.T) {
	p := newTestProvider(t, &apiStub{}, Instance{SubscriptionID: intPtr(7)})

	_, err := p.ListDatabases(context.Background())
	require.Error(t, err)

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, 7, notFound.SubscriptionID)
}

func TestListDatabases_NotConfigured(t *testing.T) {
	p := newTestProvider(t, &apiStub{}, Instance{})

	_, err := p.ListDatabases(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "subscription ID is not configured")
}

func TestGetDatabase_ByIDFallsBack(t *testing.T) {
	stub := &apiStub{responses: map[string]string{
		"/fixed/subscriptions/999/databases/5": `{"databaseId":5,"name":"sessions"}`,
	}}
	p := newTestProvider(t, stub, Instance{
		SubscriptionID:   intPtr(999),
		DatabaseID:       intPtr(5),
		SubscriptionType: "pro",
	})

	db, err := p.GetDatabase(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "sessions", db["name"])

	require.Len(t, stub.requests, 2)
	assert.Equal(t, "/subscriptions/999/databases/5", stub.requests[0])
}

func TestGetDatabase_ByIDBothMiss(t *testing.T) {
	p := newTestProvider(t, &apiStub{}, Instance{
		SubscriptionID: intPtr(999),
		DatabaseID:     intPtr(5),
	})

	_, err := p.GetDatabase(context.Background())
	require.Error(t, err)

	var notFound *NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, 999, notFound.SubscriptionID)
	require.NotNil(t, notFound.DatabaseID)
	assert.Equal(t, 5, *notFound.DatabaseID)
}

func TestGetDatabase_NothingConfigured(t *testing.T) {
	p := newTestProvider(t, &apiStub{}, Instance{SubscriptionID: intPtr(999)})

	_, err := p.GetDatabase(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database ID or name is not configured")
}

func TestGetDatabase_ByName(t *testing.T) {
	listing := `{"subscription":[{"databases":[
		{"databaseId":1,"name":"db1"},
		{"databaseId":2,"name":"db2"},
		{"databaseId":3,"name":"db2"}]}]}`

	tests := []struct {
		name        string
		lookup      string
		wantID      float64
		wantErrText string
	}{
		{"unique match", "db1", 1, ""},
		{"no match", "missing", 0, "not found"},
		{"ambiguous match", "db2", 0, "ambiguous"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stub := &apiStub{responses: map[string]string{
				"/subscriptions/999/databases": listing,
			}}
			p := newTestProvider(t, stub, Instance{
				SubscriptionID:   intPtr(999),
				SubscriptionType: "pro",
				DatabaseName:     tt.lookup,
			})

			db, err := p.GetDatabase(context.Background())
			if tt.wantErrText != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErrText)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, db["databaseId"])
		})
	}
}

func TestListSubscriptions_MergesFamilies(t *testing.T) {
	stub := &apiStub{responses: map[string]string{
		"/subscriptions":       `{"subscription":[{"id":1,"name":"flexible"}]}`,
		"/fixed/subscriptions": `{"subscriptions":[{"id":2,"name":"starter"}]}`,
	}}
	p := newTestProvider(t, stub, Instance{})

	subs, err := p.ListSubscriptions(context.Background())
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, "pro", subs[0]["planFamily"])
	assert.Equal(t, "essentials", subs[1]["planFamily"])
}
