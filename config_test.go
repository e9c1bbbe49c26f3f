package main

import (
	"flag"
	"os"
	"strings"
	"testing"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr []string
	}{
		{
			name: "valid config",
			cfg: Config{
				PolygonAPIKey:     "apikey",
				BasicAuthUsername: "admin",
				BasicAuthPassword: "hunter2",
				ListenAddress:     ":8080",
				ChartStyle:        "labeled",
			},
			wantErr: nil,
		},
		{
			name: "minimal chart style",
			cfg: Config{
				PolygonAPIKey:     "apikey",
				BasicAuthPassword: "hunter2",
				ListenAddress:     ":8080",
				ChartStyle:        "minimal",
			},
			wantErr: nil,
		},
		{
			name: "missing api key",
			cfg: Config{
				BasicAuthPassword: "hunter2",
				ListenAddress:     ":8080",
				ChartStyle:        "labeled",
			},
			wantErr: []string{"polygon api key cannot be an empty string"},
		},
		{
			name: "missing password",
			cfg: Config{
				PolygonAPIKey: "apikey",
				ListenAddress: ":8080",
				ChartStyle:    "labeled",
			},
			wantErr: []string{"basic auth password cannot be an empty string"},
		},
		{
			name: "unknown chart style",
			cfg: Config{
				PolygonAPIKey:     "apikey",
				BasicAuthPassword: "hunter2",
				ListenAddress:     ":8080",
				ChartStyle:        "fancy",
			},
			wantErr: []string{"invalid chart style: fancy"},
		},
		{
			name: "everything missing",
			cfg:  Config{},
			wantErr: []string{
				"polygon api key cannot be an empty string",
				"basic auth password cannot be an empty string",
				"listen address cannot be an empty string",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if len(tt.wantErr) == 0 {
				if err != nil {
					t.Errorf("expected no error, got: %v", err)
				}
			} else {
				if err == nil {
					t.Errorf("expected error(s) %v, got none", tt.wantErr)
					return
				}
				for _, want := range tt.wantErr {
					if !strings.Contains(err.Error(), want) {
						t.Errorf("expected error to contain %q, got %v", want, err)
					}
				}
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	// Save and restore original os.Args and environment
	origArgs := os.Args
	origEnv := os.Environ()
	defer func() {
		os.Args = origArgs
		for _, kv := range origEnv {
			parts := strings.SplitN(kv, "=", 2)
			if len(parts) == 2 {
				os.Setenv(parts[0], parts[1])
			}
		}
	}()

	envKeys := []string{"POLYGON_API_KEY", "BASIC_AUTH_USERNAME", "BASIC_AUTH_PASSWORD", "LISTEN_ADDRESS", "CHART_STYLE"}

	tests := []struct {
		name        string
		env         map[string]string
		args        []string
		expectErr   bool
		expectInErr []string
		expectCfg   Config
	}{
		{
			name: "all from env",
			env: map[string]string{
				"POLYGON_API_KEY":     "apikey",
				"BASIC_AUTH_USERNAME": "operator",
				"BASIC_AUTH_PASSWORD": "hunter2",
				"LISTEN_ADDRESS":      ":9090",
				"CHART_STYLE":         "minimal",
			},
			args:      []string{"cmd"},
			expectErr: false,
			expectCfg: Config{
				PolygonAPIKey:     "apikey",
				BasicAuthUsername: "operator",
				BasicAuthPassword: "hunter2",
				ListenAddress:     ":9090",
				ChartStyle:        "minimal",
			},
		},
		{
			name:      "all from flags",
			env:       map[string]string{},
			args:      []string{"cmd", "-polygonapikey=apikey", "-basicauthpass=hunter2"},
			expectErr: false,
			expectCfg: Config{
				PolygonAPIKey:     "apikey",
				BasicAuthUsername: "admin",
				BasicAuthPassword: "hunter2",
				ListenAddress:     ":8080",
				ChartStyle:        "labeled",
			},
		},
		{
			name: "defaults applied",
			env: map[string]string{
				"POLYGON_API_KEY":     "apikey",
				"BASIC_AUTH_PASSWORD": "hunter2",
			},
			args:      []string{"cmd"},
			expectErr: false,
			expectCfg: Config{
				PolygonAPIKey:     "apikey",
				BasicAuthUsername: "admin",
				BasicAuthPassword: "hunter2",
				ListenAddress:     ":8080",
				ChartStyle:        "labeled",
			},
		},
		{
			name:        "missing api key and password",
			env:         map[string]string{},
			args:        []string{"cmd"},
			expectErr:   true,
			expectInErr: []string{"polygon api key cannot be an empty string", "basic auth password cannot be an empty string"},
		},
		{
			name: "invalid chart style",
			env: map[string]string{
				"POLYGON_API_KEY":     "apikey",
				"BASIC_AUTH_PASSWORD": "hunter2",
				"CHART_STYLE":         "fancy",
			},
			args:        []string{"cmd"},
			expectErr:   true,
			expectInErr: []string{"invalid chart style: fancy"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Reset flags for each test
			flag.CommandLine = flag.NewFlagSet(os.Args[0], flag.ExitOnError)

			// Start from a clean environment for the config keys.
			for _, key := range envKeys {
				os.Unsetenv(key)
			}
			for k, v := range tt.env {
				os.Setenv(k, v)
			}

			// Set command-line arguments
			os.Args = tt.args

			var cfg Config
			err := loadConfig(&cfg, "testdata/absent.env") // don't load .env file

			if tt.expectErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				for _, want := range tt.expectInErr {
					if !strings.Contains(err.Error(), want) {
						t.Errorf("expected error to contain %q, got %v", want, err)
					}
				}
			} else {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}
				if cfg.PolygonAPIKey != tt.expectCfg.PolygonAPIKey {
					t.Errorf("PolygonAPIKey: got %v, want %v", cfg.PolygonAPIKey, tt.expectCfg.PolygonAPIKey)
				}
				if cfg.BasicAuthUsername != tt.expectCfg.BasicAuthUsername {
					t.Errorf("BasicAuthUsername: got %v, want %v", cfg.BasicAuthUsername, tt.expectCfg.BasicAuthUsername)
				}
				if cfg.BasicAuthPassword != tt.expectCfg.BasicAuthPassword {
					t.Errorf("BasicAuthPassword: got %v, want %v", cfg.BasicAuthPassword, tt.expectCfg.BasicAuthPassword)
				}
				if cfg.ListenAddress != tt.expectCfg.ListenAddress {
					t.Errorf("ListenAddress: got %v, want %v", cfg.ListenAddress, tt.expectCfg.ListenAddress)
				}
				if cfg.ChartStyle != tt.expectCfg.ChartStyle {
					t.Errorf("ChartStyle: got %v, want %v", cfg.ChartStyle, tt.expectCfg.ChartStyle)
				}
			}

			// Clean up env
			for k := range tt.env {
				os.Unsetenv(k)
			}
		})
	}
}
