package config

func ValidateForRun(cfg *Config) error {
	if err := cfg.Postgres.Validate(); err != nil {
		return err
	}
	if err := cfg.Redis.Validate(); err != nil {
		return err
	}
	return nil
}
