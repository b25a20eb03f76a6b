package cmd

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"makidex-cli/config"
)

const defaultSettingsFile = "client_config.ini"

var envLoaded = false

// settingsPath loads environment variables once and returns the settings-file
// path, honoring the MAKIDEX_CONFIG override.
func settingsPath() string {
	loadEnv()
	if path := os.Getenv("MAKIDEX_CONFIG"); path != "" {
		return path
	}
	return defaultSettingsFile
}

// rpcEndpoint returns the RPC endpoint to use, with MAKIDEX_RPC_URL taking
// precedence over the settings file.
func rpcEndpoint(cfg *config.ClientConfig) string {
	loadEnv()
	if url := os.Getenv("MAKIDEX_RPC_URL"); url != "" {
		log.Println("Info: Using RPC endpoint from MAKIDEX_RPC_URL.")
		return url
	}
	return cfg.HTTPURL
}

func loadEnv() {
	if envLoaded {
		return
	}
	if err := godotenv.Load(); err == nil {
		log.Println("Info: loaded settings overrides from .env file.")
	}
	envLoaded = true
}
