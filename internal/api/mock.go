package api

import (
	"context"
	"sync"

	"github.com/flagvault/flagvault-go/internal/domain"
)

// MockClient is an in-memory Client for tests. It records call counts and
// can be programmed with per-flag states, full definitions, and errors.
type MockClient struct {
	mu sync.Mutex

	// flag states served by FetchFlag, keyed by flag key
	states map[string]bool

	// definitions served by FetchAllFlags
	definitions []domain.FlagDefinition

	// errors returned by the respective calls when set
	fetchErr    error
	fetchAllErr error

	fetchCalls    int
	fetchAllCalls int

	// last targetID passed to FetchFlag
	lastTargetID string
}

// NewMockClient creates an empty mock client.
func NewMockClient() *MockClient {
	return &MockClient{states: make(map[string]bool)}
}

// SetFlagState programs the enabled state served for a flag key.
func (m *MockClient) SetFlagState(flagKey string, enabled bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states[flagKey] = enabled
}

// SetDefinitions programs the definitions served by FetchAllFlags.
func (m *MockClient) SetDefinitions(defs []domain.FlagDefinition) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.definitions = defs
}

// SetFetchError makes FetchFlag fail with the given error (nil clears it).
func (m *MockClient) SetFetchError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchErr = err
}

// SetFetchAllError makes FetchAllFlags fail with the given error.
func (m *MockClient) SetFetchAllError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchAllErr = err
}

// FetchFlag implements Client.
func (m *MockClient) FetchFlag(ctx context.Context, flagKey, targetID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.fetchCalls++
	m.lastTargetID = targetID

	if m.fetchErr != nil {
		return false, m.fetchErr
	}
	return m.states[flagKey], nil
}

// FetchAllFlags implements Client.
func (m *MockClient) FetchAllFlags(ctx context.Context) ([]domain.FlagDefinition, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.fetchAllCalls++

	if m.fetchAllErr != nil {
		return nil, m.fetchAllErr
	}

	defs := make([]domain.FlagDefinition, len(m.definitions))
	copy(defs, m.definitions)
	return defs, nil
}

// FetchCalls returns the number of FetchFlag calls made.
func (m *MockClient) FetchCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetchCalls
}

// FetchAllCalls returns the number of FetchAllFlags calls made.
func (m *MockClient) FetchAllCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fetchAllCalls
}

// LastTargetID returns the target identifier of the most recent FetchFlag
// call.
func (m *MockClient) LastTargetID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastTargetID
}
