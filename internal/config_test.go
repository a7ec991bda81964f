package internal

import (
	"strings"
	"testing"
	"time"

	_ "time/tzdata"
)

func TestAuthConfig_DisabledMode(t *testing.T) {
	cfg := AuthConfig{Mode: "disabled", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("disabled mode should pass: %v", err)
	}
	if cfg.AuthEnabled() {
		t.Error("disabled mode should not be enabled")
	}
}

func TestAuthConfig_EmptyModeDefaultsDisabled(t *testing.T) {
	cfg := AuthConfig{Mode: "", Token: ""}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty mode should default to disabled: %v", err)
	}
	if cfg.Mode != AuthModeDisabled {
		t.Errorf("mode = %q, want %q", cfg.Mode, AuthModeDisabled)
	}
}

func TestAuthConfig_TokenModeValid(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: "mysecret"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("token mode with token should pass: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("token mode should be enabled")
	}
}

func TestAuthConfig_TokenModeEmptyToken(t *testing.T) {
	cfg := AuthConfig{Mode: "token", Token: ""}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("token mode with empty token should fail")
	}
	if !strings.Contains(err.Error(), "token is empty") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAuthConfig_InvalidMode(t *testing.T) {
	cfg := AuthConfig{Mode: "magic", Token: "x"}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("invalid mode should fail validation")
	}
}

func TestFullConfig_AuthValidationCalled(t *testing.T) {
	cfg := NewDefaultConfig()
	cfg.Auth.Mode = "token"
	cfg.Auth.Token = ""
	err := cfg.Validate()
	if err == nil {
		t.Fatal("full config validate should catch auth error")
	}
}

func TestAuthConfig_PasswordMode(t *testing.T) {
	cfg := AuthConfig{Mode: "password"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("password mode needs no token: %v", err)
	}
	if !cfg.AuthEnabled() {
		t.Error("password mode should be enabled")
	}
	if got := cfg.API(); got.Mode != AuthModePassword {
		t.Errorf("API mode = %q", got.Mode)
	}
}

func TestCalendarConfig_Build(t *testing.T) {
	cfg := CalendarConfig{Timezone: "Europe/Berlin", FirstWeekday: "Monday"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	cal, err := cfg.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if cal.Location().String() != "Europe/Berlin" {
		t.Errorf("location = %s", cal.Location())
	}
	if cal.FirstWeekday() != time.Monday {
		t.Errorf("first weekday = %s", cal.FirstWeekday())
	}
}

func TestCalendarConfig_Invalid(t *testing.T) {
	for name, cfg := range map[string]CalendarConfig{
		"timezone": {Timezone: "Mars/Olympus_Mons"},
		"weekday":  {FirstWeekday: "someday"},
	} {
		t.Run(name, func(t *testing.T) {
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestCalendarConfig_Defaults(t *testing.T) {
	cfg := CalendarConfig{}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("empty calendar config should pass: %v", err)
	}
	if cfg.FirstWeekday != "sunday" {
		t.Errorf("first weekday = %q", cfg.FirstWeekday)
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	if err := NewDefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestEventsConfig_NegativeThrottle(t *testing.T) {
	cfg := EventsConfig{CalendarThrottle: -time.Second}
	if err := cfg.Validate(); err == nil {
		t.Fatal("negative throttle should fail")
	}
}
