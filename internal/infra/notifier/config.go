package notifier

import (
	"time"

	"healthquiz/pkg/config"
)

const defaultTimeout = 10 * time.Second

// LoadSlackConfig reads SLACK_ENABLED and SLACK_WEBHOOK_URL.
// A channel without a webhook URL stays disabled.
func LoadSlackConfig() SlackConfig {
	url := config.GetEnvString("SLACK_WEBHOOK_URL", "")
	return SlackConfig{
		Enabled:    config.GetEnvBool("SLACK_ENABLED", false) && url != "",
		WebhookURL: url,
		Timeout:    config.GetEnvDuration("SLACK_TIMEOUT", defaultTimeout),
	}
}

// LoadDiscordConfig reads DISCORD_ENABLED and DISCORD_WEBHOOK_URL.
func LoadDiscordConfig() DiscordConfig {
	url := config.GetEnvString("DISCORD_WEBHOOK_URL", "")
	return DiscordConfig{
		Enabled:    config.GetEnvBool("DISCORD_ENABLED", false) && url != "",
		WebhookURL: url,
		Timeout:    config.GetEnvDuration("DISCORD_TIMEOUT", defaultTimeout),
	}
}

// LoadEmailConfig reads EMAIL_ENABLED, RESEND_API_KEY, EMAIL_FROM and
// EMAIL_RATE_LIMIT (emails per second).
func LoadEmailConfig() EmailConfig {
	key := config.GetEnvString("RESEND_API_KEY", "")
	return EmailConfig{
		Enabled:       config.GetEnvBool("EMAIL_ENABLED", false) && key != "",
		APIKey:        key,
		From:          config.GetEnvString("EMAIL_FROM", "C.R.A.P. Healthcare Quiz <quiz@healthquiz.local>"),
		BaseURL:       config.GetEnvString("RESEND_BASE_URL", DefaultResendBaseURL),
		Timeout:       config.GetEnvDuration("EMAIL_TIMEOUT", defaultTimeout),
		RatePerSecond: float64(config.GetEnvInt("EMAIL_RATE_LIMIT", 2)),
		Burst:         1,
	}
}
