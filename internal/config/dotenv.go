package config

import (
	"os"

	"github.com/joho/godotenv"
)

// dotEnvCandidates lists env files for appEnv, highest priority first
func dotEnvCandidates(appEnv string) []string {
	files := make([]string, 0, 4)
	if appEnv != "" {
		files = append(files, ".env."+appEnv+".local", ".env."+appEnv)
	}
	return append(files, ".env.local", ".env")
}

// LoadDotEnv loads the existing env files for APP_ENV and returns their names.
// godotenv never overrides a variable that is already set, so process env wins
// and earlier files win over later ones.
func LoadDotEnv() []string {
	var loaded []string
	for _, f := range dotEnvCandidates(os.Getenv("APP_ENV")) {
		if _, err := os.Stat(f); err == nil {
			loaded = append(loaded, f)
		}
	}
	if len(loaded) == 0 {
		return nil
	}
	if err := godotenv.Load(loaded...); err != nil {
		return nil
	}
	return loaded
}
