package platform

import (
	"context"
	"fmt"
	"sync"
)

// In-memory Client for tests and local development. Populate with Insert /
// AddMember, then inspect the recorded side effects (Removed, Restricted,
// DirectMessages, ChannelMessages) after exercising the engine.
type MockClient struct {
	mu       sync.Mutex
	profiles map[string]Profile
	members  map[string]map[string]Member // guildID -> userID -> member
	downed   map[string]bool              // guilds marked unavailable

	Removed         []string // "guildID/userID" in removal order
	Restricted      []string
	Unrestricted    []string
	DirectMessages  map[string][]string // userID -> sent texts
	ChannelMessages map[string][]string // channelID -> sent texts
}

var _ Client = (*MockClient)(nil)

func NewMockClient() *MockClient {
	return &MockClient{
		profiles:        make(map[string]Profile),
		members:         make(map[string]map[string]Member),
		downed:          make(map[string]bool),
		DirectMessages:  make(map[string][]string),
		ChannelMessages: make(map[string][]string),
	}
}

func (m *MockClient) Insert(p Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.UserID] = p
}

func (m *MockClient) AddMember(guildID string, p Profile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.profiles[p.UserID] = p
	g, ok := m.members[guildID]
	if !ok {
		g = make(map[string]Member)
		m.members[guildID] = g
	}
	g[p.UserID] = Member{
		UserID:   p.UserID,
		GuildID:  guildID,
		Username: p.Username,
		Tag:      p.Tag(),
	}
}

// SetGuildUnavailable simulates losing access to a guild.
func (m *MockClient) SetGuildUnavailable(guildID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.downed[guildID] = true
}

func (m *MockClient) FetchProfile(ctx context.Context, userID string) (*Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.profiles[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &p, nil
}

func (m *MockClient) ListMembers(ctx context.Context, guildID string) ([]Member, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.downed[guildID] {
		return nil, ErrNotFound
	}
	out := make([]Member, 0, len(m.members[guildID]))
	for _, mem := range m.members[guildID] {
		out = append(out, mem)
	}
	return out, nil
}

func (m *MockClient) IsMember(ctx context.Context, guildID, userID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.members[guildID]
	if !ok {
		return false, nil
	}
	_, ok = g[userID]
	return ok, nil
}

func (m *MockClient) GuildAvailable(ctx context.Context, guildID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.downed[guildID] {
		return false
	}
	_, ok := m.members[guildID]
	return ok
}

func (m *MockClient) RemoveMember(ctx context.Context, guildID, userID, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.members[guildID]
	if !ok {
		return ErrNotFound
	}
	if _, ok := g[userID]; !ok {
		return ErrNotFound
	}
	delete(g, userID)
	m.Removed = append(m.Removed, fmt.Sprintf("%s/%s", guildID, userID))
	return nil
}

func (m *MockClient) Restrict(ctx context.Context, guildID, userID, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Restricted = append(m.Restricted, fmt.Sprintf("%s/%s", guildID, userID))
	return nil
}

func (m *MockClient) Unrestrict(ctx context.Context, guildID, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Unrestricted = append(m.Unrestricted, fmt.Sprintf("%s/%s", guildID, userID))
	return nil
}

func (m *MockClient) SendDirectMessage(ctx context.Context, userID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DirectMessages[userID] = append(m.DirectMessages[userID], text)
	return nil
}

func (m *MockClient) SendChannelMessage(ctx context.Context, channelID, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ChannelMessages[channelID] = append(m.ChannelMessages[channelID], text)
	return nil
}
