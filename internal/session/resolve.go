package session

import "github.com/matheus3301/wppbridge/internal/config"

const DefaultSessionName = "main"

// Resolve determines the active session name using precedence:
// 1. override (--session flag or SESSION env)
// 2. config.toml default_session
// 3. "main"
func Resolve(override string) string {
	if override != "" {
		return override
	}
	f, err := config.LoadFile(ConfigPath())
	if err == nil && f.DefaultSession != "" {
		return f.DefaultSession
	}
	return DefaultSessionName
}
