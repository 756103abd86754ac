package workers

import (
	"runtime"
	"testing"
)

func TestPoolSizeDefault(t *testing.T) {
	t.Setenv("THUMBNAIL_WORKERS", "")

	got := PoolSize(0)
	max := int(float64(runtime.GOMAXPROCS(0)) * mixedLoadFactor)

	if got < 1 {
		t.Errorf("PoolSize(0) = %d, want >= 1", got)
	}
	if got > max {
		t.Errorf("PoolSize(0) = %d, want <= %d", got, max)
	}
}

func TestPoolSizeCappedByJobs(t *testing.T) {
	t.Setenv("THUMBNAIL_WORKERS", "")

	tests := []struct {
		name string
		jobs int
	}{
		{name: "Single job", jobs: 1},
		{name: "Two jobs", jobs: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PoolSize(tt.jobs); got > tt.jobs {
				t.Errorf("PoolSize(%d) = %d, should not exceed the job count", tt.jobs, got)
			}
		})
	}
}

func TestPoolSizeEnvOverride(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		jobs     int
		want     int
	}{
		{name: "Override honored", envValue: "7", jobs: 0, want: 7},
		{name: "Override capped by jobs", envValue: "16", jobs: 3, want: 3},
		{name: "Override below jobs", envValue: "2", jobs: 100, want: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("THUMBNAIL_WORKERS", tt.envValue)

			if got := PoolSize(tt.jobs); got != tt.want {
				t.Errorf("PoolSize(%d) with THUMBNAIL_WORKERS=%s = %d, want %d",
					tt.jobs, tt.envValue, got, tt.want)
			}
		})
	}
}

func TestPoolSizeIgnoresBadOverride(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
	}{
		{name: "Non-numeric", envValue: "lots"},
		{name: "Zero", envValue: "0"},
		{name: "Negative", envValue: "-4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("THUMBNAIL_WORKERS", tt.envValue)

			if got := PoolSize(0); got < 1 {
				t.Errorf("PoolSize(0) with THUMBNAIL_WORKERS=%s = %d, want >= 1", tt.envValue, got)
			}
		})
	}
}
