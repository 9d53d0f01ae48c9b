package bot

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/goccy/go-yaml"
)

const envToken = "TELEGRAM_BOT_TOKEN"

type Config struct {
	Token        string `yaml:"-"`
	TelegramURL  string `yaml:"telegram_url"`
	Admin        int64  `yaml:"admin"`
	Data         string `yaml:"data"`
	Workers      int    `yaml:"workers"`
	QueueSize    int    `yaml:"queue_size"`
	AllowedUsers string `yaml:"allowed_users"`
	Preferences  string `yaml:"preferences"`
	Errors       string `yaml:"errors"`
}

// LoadConfig reads the YAML config and fills defaults. The bot credential
// comes from the environment only, never from the file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.Token = os.Getenv(envToken)
	if cfg.Token == "" {
		return nil, fmt.Errorf("config: %s is not set", envToken)
	}
	if cfg.Admin == 0 {
		return nil, fmt.Errorf("config: admin id is required")
	}
	if cfg.Data == "" {
		cfg.Data = "data"
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 5
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.AllowedUsers == "" {
		cfg.AllowedUsers = "allowed_users.json"
	}
	if cfg.Preferences == "" {
		cfg.Preferences = "user_preferences.json"
	}
	if cfg.Errors == "" {
		cfg.Errors = "errors.yaml"
	}
	return &cfg, nil
}

func (cfg *Config) ScratchDir() string {
	return filepath.Join(cfg.Data, "downloads")
}

// checkBinaries fails startup when the external tools are missing, so a
// running session never discovers it mid-download.
func checkBinaries() error {
	for _, bin := range []string{"ffmpeg", "yt-dlp"} {
		if _, err := exec.LookPath(bin); err != nil {
			return fmt.Errorf("%s is not installed: %w", bin, err)
		}
	}
	return nil
}
