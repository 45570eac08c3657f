package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("Port = %q, want 8080", cfg.Port)
	}
	if cfg.BookingFee != 10 {
		t.Errorf("BookingFee = %d, want 10", cfg.BookingFee)
	}
	if cfg.SlotMinutes != 60 {
		t.Errorf("SlotMinutes = %d, want 60", cfg.SlotMinutes)
	}
	if cfg.ClinicOpensAt != "09:00" || cfg.ClinicClosesAt != "17:00" {
		t.Errorf("working hours = %s-%s, want 09:00-17:00", cfg.ClinicOpensAt, cfg.ClinicClosesAt)
	}
	if got := cfg.PaymentProviders; len(got) != 3 || got[0] != "jeeb" || got[1] != "evc" || got[2] != "edahab" {
		t.Errorf("PaymentProviders = %v", got)
	}
	if cfg.SlotCacheTTL != 30*time.Second {
		t.Errorf("SlotCacheTTL = %v", cfg.SlotCacheTTL)
	}
	if !cfg.UseMemoryQueue {
		t.Error("UseMemoryQueue should default to true")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("BOOKING_FEE", "25")
	t.Setenv("SLOT_MINUTES", "30")
	t.Setenv("PAYMENT_PROVIDERS", "evc, edahab")
	t.Setenv("SLOT_CACHE_TTL", "2m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://caafimaad.so,https://admin.caafimaad.so")

	cfg := Load()
	if cfg.BookingFee != 25 {
		t.Errorf("BookingFee = %d, want 25", cfg.BookingFee)
	}
	if cfg.SlotMinutes != 30 {
		t.Errorf("SlotMinutes = %d, want 30", cfg.SlotMinutes)
	}
	if len(cfg.PaymentProviders) != 2 || cfg.PaymentProviders[1] != "edahab" {
		t.Errorf("PaymentProviders = %v", cfg.PaymentProviders)
	}
	if cfg.SlotCacheTTL != 2*time.Minute {
		t.Errorf("SlotCacheTTL = %v", cfg.SlotCacheTTL)
	}
	if len(cfg.CORSAllowedOrigins) != 2 {
		t.Errorf("CORSAllowedOrigins = %v", cfg.CORSAllowedOrigins)
	}
}

func TestInvalidIntFallsBack(t *testing.T) {
	t.Setenv("BOOKING_FEE", "not-a-number")
	cfg := Load()
	if cfg.BookingFee != 10 {
		t.Errorf("BookingFee = %d, want default 10", cfg.BookingFee)
	}
}
