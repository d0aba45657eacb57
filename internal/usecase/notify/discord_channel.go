package notify

import "healthquiz/internal/infra/notifier"

// NewDiscordChannel creates the Discord report channel.
func NewDiscordChannel(config notifier.DiscordConfig) Channel {
	var n notifier.Notifier = notifier.NewNoOpNotifier()
	if config.Enabled {
		n = notifier.NewDiscordNotifier(config)
	}
	return &webhookChannel{name: "discord", notifier: n, enabled: config.Enabled}
}
