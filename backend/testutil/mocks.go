package testutil

import (
	"context"
	"errors"
	"sync"

	"dealchat/api"
)

// ErrNotFound is returned by the default GetConversation and
// DeleteConversation for ids the mock does not know.
var ErrNotFound = errors.New("conversation not found")

// MockBackend implements model.Backend for testing. Every call is recorded.
type MockBackend struct {
	// Configurable responses
	ChatFunc               func(ctx context.Context, req api.ChatRequest) (*api.ChatResponse, error)
	ConfirmFunc            func(ctx context.Context, req api.ConfirmRequest) (*api.ConfirmResponse, error)
	ListConversationsFunc  func(ctx context.Context) ([]api.ConversationSummary, error)
	GetConversationFunc    func(ctx context.Context, id string) (*api.Conversation, error)
	DeleteConversationFunc func(ctx context.Context, id string) error

	mu            sync.Mutex
	ChatCalls     []api.ChatRequest
	ConfirmCalls  []api.ConfirmRequest
	GetCalls      []string
	DeleteCalls   []string
	ListCallCount int

	// Conversations backs the default Get/Delete/List implementations
	Conversations map[string]*api.Conversation
}

// NewMockBackend creates a mock backend with default implementations
func NewMockBackend() *MockBackend {
	mock := &MockBackend{
		Conversations: make(map[string]*api.Conversation),
	}
	mock.ChatFunc = mock.defaultChat
	mock.ConfirmFunc = mock.defaultConfirm
	mock.ListConversationsFunc = mock.defaultListConversations
	mock.GetConversationFunc = mock.defaultGetConversation
	mock.DeleteConversationFunc = mock.defaultDeleteConversation
	return mock
}

func (m *MockBackend) defaultChat(ctx context.Context, req api.ChatRequest) (*api.ChatResponse, error) {
	return PlainReply("Mock reply", "conv-1"), nil
}

func (m *MockBackend) defaultConfirm(ctx context.Context, req api.ConfirmRequest) (*api.ConfirmResponse, error) {
	if !req.Confirmed {
		return &api.ConfirmResponse{Reply: "Okay, I won't make that change."}, nil
	}
	return &api.ConfirmResponse{Reply: "Done."}, nil
}

func (m *MockBackend) defaultListConversations(ctx context.Context) ([]api.ConversationSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	list := make([]api.ConversationSummary, 0, len(m.Conversations))
	for id, conv := range m.Conversations {
		list = append(list, api.ConversationSummary{ID: id, Title: id, MessageCount: len(conv.Messages)})
	}
	return list, nil
}

func (m *MockBackend) defaultGetConversation(ctx context.Context, id string) (*api.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	conv, ok := m.Conversations[id]
	if !ok {
		return nil, ErrNotFound
	}
	return conv, nil
}

func (m *MockBackend) defaultDeleteConversation(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.Conversations[id]; !ok {
		return ErrNotFound
	}
	delete(m.Conversations, id)
	return nil
}

func (m *MockBackend) Chat(ctx context.Context, req api.ChatRequest) (*api.ChatResponse, error) {
	m.mu.Lock()
	m.ChatCalls = append(m.ChatCalls, req)
	m.mu.Unlock()
	return m.ChatFunc(ctx, req)
}

func (m *MockBackend) Confirm(ctx context.Context, req api.ConfirmRequest) (*api.ConfirmResponse, error) {
	m.mu.Lock()
	m.ConfirmCalls = append(m.ConfirmCalls, req)
	m.mu.Unlock()
	return m.ConfirmFunc(ctx, req)
}

func (m *MockBackend) ListConversations(ctx context.Context) ([]api.ConversationSummary, error) {
	m.mu.Lock()
	m.ListCallCount++
	m.mu.Unlock()
	return m.ListConversationsFunc(ctx)
}

func (m *MockBackend) GetConversation(ctx context.Context, id string) (*api.Conversation, error) {
	m.mu.Lock()
	m.GetCalls = append(m.GetCalls, id)
	m.mu.Unlock()
	return m.GetConversationFunc(ctx, id)
}

func (m *MockBackend) DeleteConversation(ctx context.Context, id string) error {
	m.mu.Lock()
	m.DeleteCalls = append(m.DeleteCalls, id)
	m.mu.Unlock()
	return m.DeleteConversationFunc(ctx, id)
}

// MemoryCache implements model.ListingCache in memory
type MemoryCache struct {
	Conversations []api.ConversationSummary
	Removed       []string
	Err           error
}

func (c *MemoryCache) Replace(conversations []api.ConversationSummary) error {
	if c.Err != nil {
		return c.Err
	}
	c.Conversations = append([]api.ConversationSummary(nil), conversations...)
	return nil
}

func (c *MemoryCache) List() ([]api.ConversationSummary, error) {
	if c.Err != nil {
		return nil, c.Err
	}
	return append([]api.ConversationSummary(nil), c.Conversations...), nil
}

func (c *MemoryCache) Remove(id string) error {
	c.Removed = append(c.Removed, id)
	kept := c.Conversations[:0]
	for _, conv := range c.Conversations {
		if conv.ID != id {
			kept = append(kept, conv)
		}
	}
	c.Conversations = kept
	return c.Err
}
