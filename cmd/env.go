package cmd

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
)

// configDir returns $XDG_CONFIG_HOME/arcard, falling back to ~/.config/arcard.
func configDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "arcard"), nil
	}
	home, err := homedir.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "arcard"), nil
}

// loadEnv loads .env from the config directory, then from the working
// directory. Variables already set in the environment win.
func loadEnv() {
	if dir, err := configDir(); err == nil {
		_ = godotenv.Load(filepath.Join(dir, ".env"))
	}
	_ = godotenv.Load()
}
