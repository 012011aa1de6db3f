package flagvault

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// MockFlagVaultServer is a mock FlagVault HTTP server for testing.
type MockFlagVaultServer struct {
	*httptest.Server
	mu sync.RWMutex

	apiKey string
	flags  map[string]mockFlag

	// failStatus, when non-zero, makes every endpoint return that status.
	failStatus int

	requests       int
	listRequests   int
	lastTargetID   string
	lastAPIKeySeen string
}

type mockFlag struct {
	enabled           bool
	perTarget         map[string]bool
	name              string
	rolloutPercentage *int
	rolloutSeed       *string
}

// NewMockFlagVaultServer creates a mock server that speaks the FlagVault
// feature-flag API and records request traffic.
func NewMockFlagVaultServer(t *testing.T, apiKey string) *MockFlagVaultServer {
	t.Helper()

	mock := &MockFlagVaultServer{
		apiKey: apiKey,
		flags:  make(map[string]mockFlag),
	}

	mux := http.NewServeMux()

	// GET /api/feature-flag - list all flags
	mux.HandleFunc("/api/feature-flag", func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		defer mock.mu.Unlock()
		mock.listRequests++
		mock.lastAPIKeySeen = r.Header.Get("X-API-Key")

		if mock.failStatus != 0 {
			writeJSONError(w, mock.failStatus)
			return
		}
		if r.Header.Get("X-API-Key") != mock.apiKey {
			writeJSONError(w, http.StatusUnauthorized)
			return
		}

		type flagPayload struct {
			Key               string  `json:"key"`
			IsEnabled         bool    `json:"isEnabled"`
			Name              string  `json:"name,omitempty"`
			RolloutPercentage *int    `json:"rolloutPercentage,omitempty"`
			RolloutSeed       *string `json:"rolloutSeed,omitempty"`
		}
		payload := struct {
			Flags []flagPayload `json:"flags"`
		}{Flags: []flagPayload{}}
		for key, f := range mock.flags {
			payload.Flags = append(payload.Flags, flagPayload{
				Key:               key,
				IsEnabled:         f.enabled,
				Name:              f.name,
				RolloutPercentage: f.rolloutPercentage,
				RolloutSeed:       f.rolloutSeed,
			})
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(payload)
	})

	// GET /api/feature-flag/{key}/enabled - single flag state
	mux.HandleFunc("/api/feature-flag/", func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		defer mock.mu.Unlock()
		mock.requests++
		mock.lastTargetID = r.URL.Query().Get("targetId")
		mock.lastAPIKeySeen = r.Header.Get("X-API-Key")

		if mock.failStatus != 0 {
			writeJSONError(w, mock.failStatus)
			return
		}
		if r.Header.Get("X-API-Key") != mock.apiKey {
			writeJSONError(w, http.StatusUnauthorized)
			return
		}

		key := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/feature-flag/"), "/enabled")
		f, ok := mock.flags[key]
		if !ok {
			writeJSONError(w, http.StatusNotFound)
			return
		}

		enabled := f.enabled
		if target := r.URL.Query().Get("targetId"); target != "" {
			if v, ok := f.perTarget[target]; ok {
				enabled = v
			}
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]bool{"enabled": enabled})
	})

	mock.Server = httptest.NewServer(mux)
	t.Cleanup(mock.Close)
	return mock
}

func writeJSONError(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"message": http.StatusText(status)})
}

// SetFlag registers a flag with a base enabled state.
func (m *MockFlagVaultServer) SetFlag(key string, enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f := m.flags[key]
	f.enabled = enabled
	m.flags[key] = f
}

// SetFlagForTarget overrides the flag state for one subject.
func (m *MockFlagVaultServer) SetFlagForTarget(key, targetID string, enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f := m.flags[key]
	if f.perTarget == nil {
		f.perTarget = make(map[string]bool)
	}
	f.perTarget[targetID] = enabled
	m.flags[key] = f
}

// SetRollout registers a flag with percentage-rollout metadata, visible
// through the bulk listing.
func (m *MockFlagVaultServer) SetRollout(key string, enabled bool, percentage int, seed string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	f := m.flags[key]
	f.enabled = enabled
	f.rolloutPercentage = &percentage
	f.rolloutSeed = &seed
	m.flags[key] = f
}

// FailWith makes every endpoint return the given HTTP status. Pass 0 to
// restore normal behavior.
func (m *MockFlagVaultServer) FailWith(status int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failStatus = status
}

// Requests returns the number of single-flag requests served.
func (m *MockFlagVaultServer) Requests() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requests
}

// ListRequests returns the number of bulk-listing requests served.
func (m *MockFlagVaultServer) ListRequests() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.listRequests
}

// LastTargetID returns the targetId query parameter of the most recent
// single-flag request.
func (m *MockFlagVaultServer) LastTargetID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastTargetID
}

// newTestClient builds a client against the mock server with caching on and
// background refresh off.
func newTestClient(t *testing.T, mock *MockFlagVaultServer, opts ...Option) *Client {
	t.Helper()

	base := []Option{
		WithBaseURL(mock.URL),
		WithRefreshInterval(0),
	}
	client, err := New("test-api-key", append(base, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(client.Destroy)
	return client
}
