package config

func Defaults() *Config {
	return &Config{
		General: GeneralConfig{
			LogLevel: "info",
		},
		HTTP: HTTPConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Slack: SlackConfig{
			VerificationToken: "${SLACK_VERIFICATION_TOKEN}",
			DefaultBotToken:   "${SLACK_BOT_TOKEN}",
			WelcomeText:       "",
		},
		Store: StoreConfig{
			DBPath:    "~/.deskbot/deskbot.db",
			TopicsDir: "~/.deskbot/topics",
		},
		Reminders: RemindersConfig{
			Timezone: "UTC",
		},
		Checkins: CheckinsConfig{
			Enabled: false,
		},
		Metrics: MetricsConfig{
			Enabled: false,
		},
	}
}
