package hub

import "github.com/mc-hub/wire"

const (
	consoleUsername = "Console"
	consoleAvatar   = "https://icons-for-free.com/iconfiles/png/128/command+line+console+icon-1320183824883548925.png"
	avatarPattern   = "https://minotar.net/cube/%s/128.png"
)

// Channel is one relayed channel's policy, owned by the session that
// declared it. Replaced wholesale on reconnect, never patched.
type Channel struct {
	ChannelID    string
	WebhookID    string
	WebhookToken string

	Chat bool
	Info bool
	// DeathMessages and JoinQuitMessages are declared by peers for
	// forward compatibility; no dispatch class reads them yet.
	DeathMessages       bool
	JoinQuitMessages    bool
	RequireVerification bool
	AdminCommands       bool
}

func newChannels(opts []wire.ChannelOption) map[string]*Channel {
	channels := make(map[string]*Channel, len(opts))
	for _, opt := range opts {
		channels[opt.ChannelID] = &Channel{
			ChannelID:           opt.ChannelID,
			WebhookID:           opt.WebhookID,
			WebhookToken:        opt.WebhookToken,
			Chat:                opt.Chat,
			Info:                opt.Info,
			DeathMessages:       opt.DeathMessages,
			JoinQuitMessages:    opt.JoinQuitMessages,
			RequireVerification: opt.RequireVerification,
			AdminCommands:       opt.AdminCommands,
		}
	}
	return channels
}
