package config

import "testing"

func TestSessionSecret(t *testing.T) {
	if got, err := sessionSecret("s3cret", "production"); err != nil || got != "s3cret" {
		t.Fatalf("expected the configured secret, got %q %v", got, err)
	}
	for _, env := range []string{"production", "staging", ""} {
		if _, err := sessionSecret("", env); err == nil {
			t.Fatalf("%q: expected a missing secret to be refused", env)
		}
	}
	if got, err := sessionSecret("", "Development"); err != nil || got != devSessionSecret {
		t.Fatalf("expected the development key, got %q %v", got, err)
	}
}

func TestLoad(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "")
	t.Setenv("EMPLOYEE_JWT_SECRET", "")
	t.Setenv("CORS_ORIGINS", " https://a.example.com, ,https://b.example.com ")

	cfg := Load()
	if cfg.JWTSecret != devSessionSecret || cfg.EmployeeJWTSecret != devSessionSecret {
		t.Fatalf("expected both schemes on the development key, got %q %q", cfg.JWTSecret, cfg.EmployeeJWTSecret)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://b.example.com" {
		t.Fatalf("unexpected origins %v", cfg.CORSOrigins)
	}

	t.Setenv("JWT_SECRET", "main")
	t.Setenv("EMPLOYEE_JWT_SECRET", "clock")
	cfg = Load()
	if cfg.JWTSecret != "main" || cfg.EmployeeJWTSecret != "clock" {
		t.Fatalf("expected separate secrets, got %q %q", cfg.JWTSecret, cfg.EmployeeJWTSecret)
	}
}
