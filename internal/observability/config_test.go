package observability

import (
	"testing"
)

func TestSamplerConstants(t *testing.T) {
	tests := []struct {
		name     string
		constant string
		expected string
	}{
		{"AlwaysOn", SamplerAlwaysOn, "always_on"},
		{"AlwaysOff", SamplerAlwaysOff, "always_off"},
		{"TraceIDRatio", SamplerTraceIDRatio, "traceidratio"},
		{"ParentBasedAlwaysOn", SamplerParentBasedAlwaysOn, "parentbased_always_on"},
		{"ParentBasedAlwaysOff", SamplerParentBasedAlwaysOff, "parentbased_always_off"},
		{"ParentBasedTraceIDRatio", SamplerParentBasedTraceIDRatio, "parentbased_traceidratio"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.constant != tt.expected {
				t.Errorf("sampler constant %s = %s, want %s", tt.name, tt.constant, tt.expected)
			}
		})
	}
}

func TestValidateSampler(t *testing.T) {
	tests := []struct {
		name        string
		samplerType string
		samplerArg  string
		wantErr     bool
	}{
		{"valid always_on", SamplerAlwaysOn, "1.0", false},
		{"valid parentbased_traceidratio", SamplerParentBasedTraceIDRatio, "0.1", false},
		{"valid traceidratio with 0.5", SamplerTraceIDRatio, "0.5", false},
		{"invalid sampler type", "invalid_sampler", "0.1", true},
		{"invalid ratio - too high", SamplerTraceIDRatio, "1.5", true},
		{"invalid ratio - negative", SamplerTraceIDRatio, "-0.1", true},
		{"invalid ratio - not a number", SamplerTraceIDRatio, "invalid", true},
		{"valid always_off doesn't need ratio", SamplerAlwaysOff, "ignored", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateSampler(tt.samplerType, tt.samplerArg)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateSampler() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name: "valid config with always_on",
			config: Config{
				ServiceName:      "photobooth-display",
				TracesEnabled:    true,
				TracesEndpoint:   "http://localhost:4318",
				TracesSampler:    SamplerAlwaysOn,
				TracesSamplerArg: "1.0",
				MetricsEnabled:   true,
				MetricsEndpoint:  "http://localhost:4318",
			},
			wantErr: false,
		},
		{
			name: "telemetry disabled needs no endpoints",
			config: Config{
				ServiceName: "photobooth-display",
			},
			wantErr: false,
		},
		{
			name: "missing service name",
			config: Config{
				TracesEnabled:  true,
				TracesEndpoint: "http://localhost:4318",
				TracesSampler:  SamplerAlwaysOn,
			},
			wantErr: true,
		},
		{
			name: "traces enabled but no endpoint",
			config: Config{
				ServiceName:   "photobooth-display",
				TracesEnabled: true,
				TracesSampler: SamplerAlwaysOn,
			},
			wantErr: true,
		},
		{
			name: "metrics enabled but no endpoint",
			config: Config{
				ServiceName:    "photobooth-display",
				MetricsEnabled: true,
			},
			wantErr: true,
		},
		{
			name: "invalid sampler configuration",
			config: Config{
				ServiceName:      "photobooth-display",
				TracesEnabled:    true,
				TracesEndpoint:   "http://localhost:4318",
				TracesSampler:    "invalid",
				TracesSamplerArg: "0.1",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Config.Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("default configuration", func(t *testing.T) {
		config := LoadConfig()

		if config.ServiceName != "photobooth-display" {
			t.Errorf("Expected default service name 'photobooth-display', got %s", config.ServiceName)
		}
		if config.TracesSampler != SamplerAlwaysOn {
			t.Errorf("Expected default sampler 'always_on', got %s", config.TracesSampler)
		}
		if config.TracesSamplerArg != "1.0" {
			t.Errorf("Expected default sampler arg '1.0', got %s", config.TracesSamplerArg)
		}
		if config.LogOutput != "stdout" {
			t.Errorf("Expected default log output 'stdout', got %s", config.LogOutput)
		}
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("OTEL_SERVICE_NAME", "booth-lobby")
		t.Setenv("OTEL_TRACES_ENABLED", "yes")
		t.Setenv("OTEL_TRACES_SAMPLER", SamplerTraceIDRatio)
		t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.25")
		t.Setenv("LOG_MAX_BACKUPS", "7")

		config := LoadConfig()

		if config.ServiceName != "booth-lobby" {
			t.Errorf("Expected service name 'booth-lobby', got %s", config.ServiceName)
		}
		if !config.TracesEnabled {
			t.Error("Expected traces to be enabled")
		}
		if config.TracesSampler != SamplerTraceIDRatio || config.TracesSamplerArg != "0.25" {
			t.Errorf("Unexpected sampler %s/%s", config.TracesSampler, config.TracesSamplerArg)
		}
		if config.LogMaxBackups != 7 {
			t.Errorf("Expected 7 log backups, got %d", config.LogMaxBackups)
		}
	})
}
