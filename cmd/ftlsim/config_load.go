package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/sarchlab/ftlsim/ftlsim"
)

// loadConfig builds a default Config and applies any key=value overrides
// found in a .env-style file at path. An empty path is not an error — it
// just means "run with documented defaults".
func loadConfig(path string) (*ftlsim.Config, error) {
	cfg := ftlsim.NewConfig()

	if path == "" {
		return cfg, nil
	}

	overrides, err := godotenv.Read(path)
	if err != nil {
		return nil, fmt.Errorf("ftlsim: reading config overrides from %s: %w", path, err)
	}

	for key, value := range overrides {
		recognized, err := cfg.SetFromString(key, value)
		if err != nil {
			return nil, fmt.Errorf("ftlsim: config override %s=%s: %w", key, value, err)
		}
		if !recognized {
			fmt.Fprintf(os.Stderr, "ftlsim: warning: unrecognized config key %q ignored\n", key)
		}
	}

	return cfg, nil
}
