package elks

import "time"

type Config struct {
	BaseURL    string        `mapstructure:"base_url"`
	Username   string        `mapstructure:"username"`
	Password   string        `mapstructure:"password"`
	WebhookURL string        `mapstructure:"webhook_url"`
	DryRun     bool          `mapstructure:"dry_run"`
	Timeout    time.Duration `mapstructure:"timeout"`
}
