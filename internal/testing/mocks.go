package testing

import (
	"context"
	"fmt"
	"sync"

	"github.com/jftf/jftf-setup/internal/provisioning"
)

// MockObserver records events and log lines.
type MockObserver struct {
	mu       sync.Mutex
	events   []provisioning.Event
	messages []string
	fields   map[string]string
}

// NewMockObserver creates an empty recording observer.
func NewMockObserver() *MockObserver {
	return &MockObserver{fields: make(map[string]string)}
}

// Printf implements provisioning.Logger.
func (m *MockObserver) Printf(format string, v ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, fmt.Sprintf(format, v...))
}

// Debugf implements provisioning.Logger.
func (m *MockObserver) Debugf(format string, v ...interface{}) {
	m.Printf(format, v...)
}

// Event implements provisioning.Observer.
func (m *MockObserver) Event(event provisioning.Event) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
}

// Progress implements provisioning.Observer.
func (m *MockObserver) Progress(phase string, current, total int) {
	m.Event(provisioning.Event{
		Type:    provisioning.EventProgress,
		Phase:   phase,
		Message: fmt.Sprintf("%d/%d", current, total),
	})
}

// WithFields implements provisioning.Observer. The returned observer shares
// the recording.
func (m *MockObserver) WithFields(map[string]string) provisioning.Observer {
	return m
}

// Events returns the recorded events.
func (m *MockObserver) Events() []provisioning.Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]provisioning.Event(nil), m.events...)
}

// EventsOfType returns the recorded events of type t.
func (m *MockObserver) EventsOfType(t provisioning.EventType) []provisioning.Event {
	var out []provisioning.Event
	for _, e := range m.Events() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// Messages returns the formatted log lines.
func (m *MockObserver) Messages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.messages...)
}

// MockServices records service manager calls.
type MockServices struct {
	mu     sync.Mutex
	Calls  []string
	Errors map[string]error // keyed by "verb unit"
	State  string
}

// NewMockServices creates a manager reporting every unit active.
func NewMockServices() *MockServices {
	return &MockServices{Errors: map[string]error{}, State: "active"}
}

func (m *MockServices) call(verb, unit string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := verb + " " + unit
	m.Calls = append(m.Calls, key)
	return m.Errors[key]
}

// Enable implements systemd.Manager.
func (m *MockServices) Enable(_ context.Context, unit string) error { return m.call("enable", unit) }

// Start implements systemd.Manager.
func (m *MockServices) Start(_ context.Context, unit string) error { return m.call("start", unit) }

// Restart implements systemd.Manager.
func (m *MockServices) Restart(_ context.Context, unit string) error { return m.call("restart", unit) }

// Status implements systemd.Manager.
func (m *MockServices) Status(_ context.Context, unit string) (string, error) {
	if err := m.call("status", unit); err != nil {
		return "", err
	}
	return m.State, nil
}

// Close implements systemd.Manager.
func (m *MockServices) Close() error { return nil }

// MockAdmin records administrative statements.
type MockAdmin struct {
	mu         sync.Mutex
	Statements []string
	Errors     map[string]error // keyed by statement
	Timezone   string
	Closed     bool
}

// NewMockAdmin creates an admin that accepts everything and reports tz.
func NewMockAdmin(tz string) *MockAdmin {
	return &MockAdmin{Errors: map[string]error{}, Timezone: tz}
}

// Exec implements mariadb.Admin.
func (m *MockAdmin) Exec(_ context.Context, stmt string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Statements = append(m.Statements, stmt)
	return m.Errors[stmt]
}

// QueryValue implements mariadb.Admin.
func (m *MockAdmin) QueryValue(_ context.Context, query string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Statements = append(m.Statements, query)
	if err := m.Errors[query]; err != nil {
		return "", err
	}
	return m.Timezone, nil
}

// Close implements mariadb.Admin.
func (m *MockAdmin) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Closed = true
	return nil
}
