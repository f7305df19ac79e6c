package config

import (
	"errors"
	"testing"
)

func TestLoadRedisConfig(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		expected RedisConfig
		wantErr  error
	}{
		{
			name:     "defaults when unset",
			env:      map[string]string{},
			expected: RedisConfig{Addr: "localhost:6379", DB: 0},
		},
		{
			name: "explicit values",
			env: map[string]string{
				"REDIS_ADDR":     "redis.internal:6380",
				"REDIS_PASSWORD": "secret",
				"REDIS_DB":       "3",
			},
			expected: RedisConfig{Addr: "redis.internal:6380", Password: "secret", DB: 3},
		},
		{
			name:     "tls flag enabled",
			env:      map[string]string{"REDIS_TLS": "true"},
			expected: RedisConfig{Addr: "localhost:6379", TLS: true},
		},
		{
			name:    "invalid db rejected",
			env:     map[string]string{"REDIS_DB": "not-a-number"},
			wantErr: ErrInvalidRedisDB,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range []string{"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "REDIS_TLS"} {
				t.Setenv(key, "")
			}
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			cfg, err := LoadRedisConfig()
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected error %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if *cfg != tt.expected {
				t.Errorf("expected config %+v, got %+v", tt.expected, *cfg)
			}
		})
	}
}

func TestRedisConfigOptions(t *testing.T) {
	plain := &RedisConfig{Addr: "localhost:6379", Password: "pw", DB: 2}
	opts := plain.Options()
	if opts.Addr != "localhost:6379" || opts.Password != "pw" || opts.DB != 2 {
		t.Errorf("unexpected options: %+v", opts)
	}
	if opts.TLSConfig != nil {
		t.Error("expected no TLS config when TLS is disabled")
	}

	secured := &RedisConfig{Addr: "redis.internal:6380", TLS: true}
	opts = secured.Options()
	if opts.TLSConfig == nil {
		t.Fatal("expected TLS config when TLS is enabled")
	}
}
