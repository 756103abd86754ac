package startup

import (
	"os"
	"testing"
	"time"
)

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()

	if info.Version == "" {
		t.Error("Expected Version to be set")
	}
	if info.GoVersion == "" {
		t.Error("Expected GoVersion to be set")
	}
	if info.OS == "" {
		t.Error("Expected OS to be set")
	}
	if info.Arch == "" {
		t.Error("Expected Arch to be set")
	}

	if info.GoVersion != GoVersion {
		t.Errorf("Expected GoVersion=%s, got %s", GoVersion, info.GoVersion)
	}
}

func TestGetEnv(t *testing.T) {
	tests := []struct {
		name         string
		key          string
		defaultValue string
		envValue     string
		want         string
		setEnv       bool
	}{
		{
			name:         "Returns default when env var not set",
			key:          "TEST_UNSET_VAR",
			defaultValue: "default",
			want:         "default",
			setEnv:       false,
		},
		{
			name:         "Returns env value when set",
			key:          "TEST_SET_VAR",
			defaultValue: "default",
			envValue:     "custom",
			want:         "custom",
			setEnv:       true,
		},
		{
			name:         "Returns default when env var is empty",
			key:          "TEST_EMPTY_VAR",
			defaultValue: "default",
			envValue:     "",
			want:         "default",
			setEnv:       true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.setEnv {
				t.Setenv(tt.key, tt.envValue)
			} else {
				os.Unsetenv(tt.key)
			}

			got := getEnv(tt.key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnv(%q, %q) = %q, want %q", tt.key, tt.defaultValue, got, tt.want)
			}
		})
	}
}

func TestGetEnvBool(t *testing.T) {
	tests := []struct {
		name         string
		envValue     string
		defaultValue bool
		want         bool
		setEnv       bool
	}{
		{name: "Unset uses default", defaultValue: true, want: true},
		{name: "True string", envValue: "true", setEnv: true, want: true},
		{name: "Numeric one", envValue: "1", setEnv: true, want: true},
		{name: "False string", envValue: "false", defaultValue: true, setEnv: true, want: false},
		{name: "Garbage uses default", envValue: "banana", defaultValue: true, setEnv: true, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			const key = "TEST_BOOL_VAR"
			if tt.setEnv {
				t.Setenv(key, tt.envValue)
			} else {
				os.Unsetenv(key)
			}

			got := getEnvBool(key, tt.defaultValue)
			if got != tt.want {
				t.Errorf("getEnvBool(%q, %v) = %v, want %v", key, tt.defaultValue, got, tt.want)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("THUMBNAIL_CACHE_DIR", dir)
	t.Setenv("THUMBNAIL_APP_ID", "test-app")
	t.Setenv("BACKEND_TIMEOUT", "5s")
	t.Setenv("PORT", "8181")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if config.CacheRoot != dir {
		t.Errorf("Expected CacheRoot=%s, got %s", dir, config.CacheRoot)
	}
	if config.AppID != "test-app" {
		t.Errorf("Expected AppID=test-app, got %s", config.AppID)
	}
	if config.BackendTimeout != 5*time.Second {
		t.Errorf("Expected BackendTimeout=5s, got %v", config.BackendTimeout)
	}
	if config.Port != "8181" {
		t.Errorf("Expected Port=8181, got %s", config.Port)
	}
}

func TestLoadConfigInvalidTimeout(t *testing.T) {
	t.Setenv("THUMBNAIL_CACHE_DIR", t.TempDir())
	t.Setenv("BACKEND_TIMEOUT", "not-a-duration")

	config, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if config.BackendTimeout != 30*time.Second {
		t.Errorf("Expected fallback timeout 30s, got %v", config.BackendTimeout)
	}
}
