package remote

import (
	"context"
	"errors"
	"sync"
)

// ErrMockUnavailable is the default failure injected by Mock builders.
var ErrMockUnavailable = errors.New("mock: service unavailable")

// Call records one request made against a Mock.
type Call struct {
	Op      string
	Name    string
	Content string
	LastID  int64
}

// Mock is a scripted in-memory Service for tests.
// Responses to Messages and Users can be queued; once a queue is empty the
// mock falls back to its default values.
type Mock struct {
	mu sync.Mutex

	joinResult JoinResult
	joinErr    error
	leaveErr   error
	sendErr    error

	messages    [][]Message
	messagesErr []error
	users       [][]string
	usersErr    []error
	defaultUser []string

	// gate, when set, blocks Messages and Users until it is closed
	gate chan struct{}
	// leaveGate, when set, blocks Leave until it is closed
	leaveGate chan struct{}
	// fetchErr, when set, fails every Messages and Users call
	fetchErr error

	calls []Call
}

// NewMock creates a mock that answers join with lastID.
func NewMock(lastID int64) *Mock {
	return &Mock{
		joinResult: JoinResult{LastID: lastID},
	}
}

// WithJoinError makes Join fail.
func (m *Mock) WithJoinError(err error) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.joinErr = err
	return m
}

// WithLeaveError makes Leave fail.
func (m *Mock) WithLeaveError(err error) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.leaveErr = err
	return m
}

// WithSendError makes Send fail.
func (m *Mock) WithSendError(err error) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sendErr = err
	return m
}

// WithUsers sets the roster returned once queued rosters are exhausted.
func (m *Mock) WithUsers(users ...string) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultUser = users
	return m
}

// WithGate blocks fetches until the returned release func is called.
func (m *Mock) WithGate() (release func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	gate := make(chan struct{})
	m.gate = gate
	var once sync.Once
	return func() {
		once.Do(func() { close(gate) })
	}
}

// WithLeaveGate blocks Leave until the returned release func is called
// or the call's context ends.
func (m *Mock) WithLeaveGate() (release func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	gate := make(chan struct{})
	m.leaveGate = gate
	var once sync.Once
	return func() {
		once.Do(func() { close(gate) })
	}
}

// FailFetches makes every later Messages and Users call fail with err,
// ahead of anything queued.
func (m *Mock) FailFetches(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fetchErr = err
}

// QueueMessages queues one Messages response.
func (m *Mock) QueueMessages(msgs ...Message) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msgs)
	m.messagesErr = append(m.messagesErr, nil)
}

// QueueMessagesError queues one failing Messages response.
func (m *Mock) QueueMessagesError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, nil)
	m.messagesErr = append(m.messagesErr, err)
}

// QueueUsers queues one Users response.
func (m *Mock) QueueUsers(users ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = append(m.users, users)
	m.usersErr = append(m.usersErr, nil)
}

// QueueUsersError queues one failing Users response.
func (m *Mock) QueueUsersError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users = append(m.users, nil)
	m.usersErr = append(m.usersErr, err)
}

// Calls returns a copy of every recorded call.
func (m *Mock) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns how many calls were made for op.
func (m *Mock) CallCount(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

func (m *Mock) record(c Call) {
	m.mu.Lock()
	m.calls = append(m.calls, c)
	m.mu.Unlock()
}

func (m *Mock) wait(ctx context.Context) error {
	m.mu.Lock()
	gate := m.gate
	m.mu.Unlock()
	if gate == nil {
		return nil
	}
	select {
	case <-gate:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Join implements Service.
func (m *Mock) Join(ctx context.Context, name string) (JoinResult, error) {
	m.record(Call{Op: OpJoin, Name: name})
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.joinErr != nil {
		return JoinResult{}, &TransportError{Op: OpJoin, Err: m.joinErr}
	}
	return m.joinResult, nil
}

// Leave implements Service.
func (m *Mock) Leave(ctx context.Context, name string) error {
	m.record(Call{Op: OpLeave, Name: name})

	m.mu.Lock()
	gate := m.leaveGate
	m.mu.Unlock()
	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return &TransportError{Op: OpLeave, Err: ctx.Err()}
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.leaveErr != nil {
		return &TransportError{Op: OpLeave, Err: m.leaveErr}
	}
	return nil
}

// Messages implements Service.
func (m *Mock) Messages(ctx context.Context, lastID int64) ([]Message, error) {
	m.record(Call{Op: OpMessages, LastID: lastID})
	if err := m.wait(ctx); err != nil {
		return nil, &TransportError{Op: OpMessages, Err: err}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fetchErr != nil {
		return nil, &TransportError{Op: OpMessages, Err: m.fetchErr}
	}
	if len(m.messages) == 0 {
		return []Message{}, nil
	}
	msgs, err := m.messages[0], m.messagesErr[0]
	m.messages, m.messagesErr = m.messages[1:], m.messagesErr[1:]
	if err != nil {
		return nil, &TransportError{Op: OpMessages, Err: err}
	}

	// Honour the cursor contract like a real service would
	out := make([]Message, 0, len(msgs))
	for _, msg := range msgs {
		if msg.ID > lastID {
			out = append(out, msg)
		}
	}
	return out, nil
}

// Users implements Service.
func (m *Mock) Users(ctx context.Context) ([]string, error) {
	m.record(Call{Op: OpUsers})
	if err := m.wait(ctx); err != nil {
		return nil, &TransportError{Op: OpUsers, Err: err}
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fetchErr != nil {
		return nil, &TransportError{Op: OpUsers, Err: m.fetchErr}
	}
	if len(m.users) == 0 {
		out := make([]string, len(m.defaultUser))
		copy(out, m.defaultUser)
		return out, nil
	}
	users, err := m.users[0], m.usersErr[0]
	m.users, m.usersErr = m.users[1:], m.usersErr[1:]
	if err != nil {
		return nil, &TransportError{Op: OpUsers, Err: err}
	}
	return users, nil
}

// Send implements Service.
func (m *Mock) Send(ctx context.Context, name, content string) error {
	m.record(Call{Op: OpSend, Name: name, Content: content})
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sendErr != nil {
		return &TransportError{Op: OpSend, Err: m.sendErr}
	}
	return nil
}
