package hub

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/mc-hub/config"
	"github.com/mc-hub/database"
	"github.com/mc-hub/platform"
	"github.com/mc-hub/wire"
)

// fakePlatform records every platform call and can be told to fail.
type fakePlatform struct {
	mu sync.Mutex

	messages  []fakeMessage
	dms       []string
	rolesAdd  []string
	rolesDel  []string
	nicknames []string
	reactions []string
	deletions []string

	failAll bool
}

type fakeMessage struct {
	channelID string
	text      string
	embed     json.RawMessage
}

func (f *fakePlatform) SendMessage(channelID, text string, embed json.RawMessage) (*platform.SentMessage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return nil, fmt.Errorf("platform down")
	}
	f.messages = append(f.messages, fakeMessage{channelID, text, embed})
	return &platform.SentMessage{ID: "m1", ChannelID: channelID}, nil
}

func (f *fakePlatform) CreateDMChannel(userID string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return "", fmt.Errorf("platform down")
	}
	f.dms = append(f.dms, userID)
	return "dm-" + userID, nil
}

func (f *fakePlatform) AddRole(guildID, userID, roleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return fmt.Errorf("platform down")
	}
	f.rolesAdd = append(f.rolesAdd, userID+":"+roleID)
	return nil
}

func (f *fakePlatform) RemoveRole(guildID, userID, roleID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return fmt.Errorf("platform down")
	}
	f.rolesDel = append(f.rolesDel, userID+":"+roleID)
	return nil
}

func (f *fakePlatform) SetNickname(guildID, userID, nick string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nicknames = append(f.nicknames, userID+":"+nick)
	return nil
}

func (f *fakePlatform) AddReaction(channelID, messageID, emoji string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return fmt.Errorf("platform down")
	}
	f.reactions = append(f.reactions, messageID+":"+emoji)
	return nil
}

func (f *fakePlatform) DeleteMessage(channelID, messageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failAll {
		return fmt.Errorf("platform down")
	}
	f.deletions = append(f.deletions, channelID+":"+messageID)
	return nil
}

func (f *fakePlatform) lastMessage() *fakeMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.messages) == 0 {
		return nil
	}
	m := f.messages[len(f.messages)-1]
	return &m
}

// fakeWebhooks records relayed webhook deliveries.
type fakeWebhooks struct {
	mu    sync.Mutex
	sends []fakeWebhookSend
}

type fakeWebhookSend struct {
	webhookID string
	username  string
	content   string
}

func (f *fakeWebhooks) Send(webhookID, webhookToken, username, avatarURL, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sends = append(f.sends, fakeWebhookSend{webhookID, username, content})
	return nil
}

// recordEmitter captures events that would go out to the game server.
type recordEmitter struct {
	mu     sync.Mutex
	events []recordedEvent
}

type recordedEvent struct {
	event string
	body  interface{}
}

func (r *recordEmitter) Emit(event string, body interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{event, body})
	return nil
}

func (r *recordEmitter) byEvent(event string) []recordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]recordedEvent, 0)
	for _, e := range r.events {
		if e.event == event {
			out = append(out, e)
		}
	}
	return out
}

func newTestHub() (*Hub, *database.MemStore, *fakePlatform, *fakeWebhooks) {
	store := database.NewMemStore()
	client := &fakePlatform{}
	webhooks := &fakeWebhooks{}
	cfg := &config.Config{}
	cfg.Server.Secret = "test-secret"
	h := NewHub(cfg, store, nil, client, webhooks, zerolog.Nop())
	return h, store, client, webhooks
}

func newTestPeer(h *Hub, serverID string, channels []wire.ChannelOption) (*ServerPeer, *recordEmitter) {
	rec := &recordEmitter{}
	sp := &ServerPeer{
		hub:         h,
		serverID:    serverID,
		defaultRole: "role-default",
		channels:    newChannels(channels),
		emit:        rec,
		log:         zerolog.Nop(),
	}
	return sp, rec
}

func linkUser(store *database.MemStore, serverID, userID, username, uuid string) *database.User {
	u := &database.User{
		User:     username + "#0001",
		UserID:   userID,
		RoleID:   "role-default",
		ServerID: serverID,
		Username: username,
		UUID:     uuid,
	}
	if err := store.InsertUser(u); err != nil {
		panic(err)
	}
	return u
}
