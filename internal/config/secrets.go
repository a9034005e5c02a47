package config

// RedactedConfig returns a copy of cfg safe for logging: every secret-bearing
// field is replaced with a placeholder and slice fields are copied so the
// caller cannot mutate the original through the copy.
func RedactedConfig(cfg *Config) Config {
	out := *cfg

	out.FrontOffice.APIKey = redact(cfg.FrontOffice.APIKey)
	out.Grading.APIKey = redact(cfg.Grading.APIKey)
	out.Postgres.DSN = redact(cfg.Postgres.DSN)
	out.Postgres.Password = redact(cfg.Postgres.Password)
	out.Redis.Password = redact(cfg.Redis.Password)
	out.S3.AccessKey = redact(cfg.S3.AccessKey)
	out.S3.SecretKey = redact(cfg.S3.SecretKey)
	out.Server.APIKey = redact(cfg.Server.APIKey)
	out.Notify.TelegramToken = redact(cfg.Notify.TelegramToken)
	out.Notify.DiscordWebhookURL = redact(cfg.Notify.DiscordWebhookURL)

	out.Server.CORSOrigins = append([]string(nil), cfg.Server.CORSOrigins...)
	out.Notify.Events = append([]string(nil), cfg.Notify.Events...)

	return out
}

func redact(s string) string {
	if s == "" {
		return ""
	}
	return "***"
}
