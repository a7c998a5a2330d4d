package cli

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Config holds CLI configuration
type Config struct {
	ServerURL   string
	Session     string
	SessionFile string
	AdminToken  string
	Output      string
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL:   getEnvOrDefault("ARCADECTL_SERVER", "http://localhost:8080"),
		Session:     os.Getenv("ARCADECTL_SESSION"),
		SessionFile: getEnvOrDefault("ARCADECTL_SESSION_FILE", defaultSessionFile()),
		AdminToken:  os.Getenv("ARCADECTL_ADMIN_TOKEN"),
		Output:      "text",
	}
}

// LoadSession loads the session id from file if not already set
func (c *Config) LoadSession() error {
	if c.Session != "" {
		return nil
	}

	data, err := os.ReadFile(c.SessionFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // No session file is fine
		}
		return err
	}

	c.Session = strings.TrimSpace(string(data))
	return nil
}

// SaveSession saves the session id to the session file
func (c *Config) SaveSession(session string) error {
	c.Session = session

	dir := filepath.Dir(c.SessionFile)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	return os.WriteFile(c.SessionFile, []byte(session), 0600)
}

// RequireSession returns the session id or an error telling the user how to get one
func (c *Config) RequireSession() (string, error) {
	if c.Session == "" {
		return "", errors.New("no session: run 'arcadectl auth verify <token>' or pass --session")
	}
	return c.Session, nil
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".arcadectl/session"
	}
	return filepath.Join(home, ".arcadectl", "session")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
