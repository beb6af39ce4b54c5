package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"dataroom-cli/cmd/utils"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
	yaml "gopkg.in/yaml.v2"
)

const DefaultServerURL = "http://localhost:5000"

// Environment variables read after the config file.
const (
	EnvAPIURL  = "DATAROOM_API_URL"
	EnvDebug   = "DATAROOM_DEBUG"
	EnvLogFile = "DATAROOM_LOG_FILE"

	// legacyEnvAPIURL is what the web front-end's .env files use.
	legacyEnvAPIURL = "REACT_APP_API_URL"
)

// Config file names, searched in this order.
var SupportedConfigFiles = []string{
	"dataroom.yaml",
	"dataroom.yml",
	"dataroom.toml",
	"dataroom.json",
}

var DefaultSamplePrompts = []string{
	"Show me the top 5 customers by sales",
	"Create a bar chart of sales by category",
	"What is the average profit by region?",
	"Which products have negative profit?",
	"Show the sales trend over time",
}

var ErrNoConfigFile = errors.New("no dataroom config file (yaml/toml/json) found")

// LoadConfigFile parses a config file, picking the format from its extension.
func LoadConfigFile(filePath string) (*DataRoomConfig, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", filePath, err)
	}

	var cfg DataRoomConfig
	switch ext := strings.ToLower(filepath.Ext(filePath)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config file %s: %w", filePath, err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse TOML config file %s: %w", filePath, err)
		}
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config file %s: %w", filePath, err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file extension: %s", ext)
	}
	return &cfg, nil
}

// FindConfigFile returns the first supported config file in searchPath.
func FindConfigFile(searchPath string) (string, error) {
	if searchPath == "" {
		return "", fmt.Errorf("search path is required")
	}
	for _, name := range SupportedConfigFiles {
		fullPath := filepath.Join(searchPath, name)
		if _, err := os.Stat(fullPath); err == nil {
			return fullPath, nil
		}
	}
	return "", fmt.Errorf("%w in %s", ErrNoConfigFile, searchPath)
}

// SaveConfig writes cfg as YAML, defaulting to dataroom.yaml.
func SaveConfig(cfg *DataRoomConfig, configPath string) error {
	if configPath == "" {
		configPath = "dataroom.yaml"
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if dir := filepath.Dir(configPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// FromSettings converts effective settings back into a file layout. Values
// equal to the defaults are left out.
func FromSettings(s *Settings) *DataRoomConfig {
	cfg := &DataRoomConfig{Version: "v1"}
	if s.ServerURL != DefaultServerURL {
		cfg.Server.URL = s.ServerURL
	}
	cfg.Logging = LoggingConfig{Debug: s.Debug, File: s.LogFile}
	cfg.UI = UIConfig{ShowPlans: s.ShowPlans, ChartsDir: s.ChartsDir, NoEmoji: !s.Emoji}
	if !slices.Equal(s.SamplePrompts, DefaultSamplePrompts) {
		cfg.UI.SamplePrompts = s.SamplePrompts
	}
	return cfg
}

// Resolve builds the effective settings. Later sources win: defaults, the
// config file (explicit, working directory, then ~/.dataroom), .env in the
// working directory, the environment, and finally command-line overrides.
func Resolve(o Overrides) (*Settings, error) {
	s := &Settings{
		ServerURL:     DefaultServerURL,
		SamplePrompts: DefaultSamplePrompts,
		Emoji:         true,
	}

	cwd := o.Cwd
	if cwd == "" {
		cwd = utils.GetEffectiveCWD()
	}

	cfg, path, err := locateConfig(o.ConfigFile, cwd)
	if err != nil {
		return nil, err
	}
	if cfg != nil {
		s.ConfigFile = path
		applyFile(s, cfg)
	}

	envFile := filepath.Join(cwd, ".env")
	if _, err := os.Stat(envFile); err == nil {
		// existing environment variables take precedence over .env entries
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", envFile, err)
		}
		utils.LogDebug(fmt.Sprintf("config: loaded %s", envFile))
	}
	if err := applyEnv(s); err != nil {
		return nil, err
	}

	if o.ServerURL != "" {
		s.ServerURL = o.ServerURL
	}
	if o.Debug {
		s.Debug = true
	}
	if o.LogFile != "" {
		s.LogFile = o.LogFile
	}
	s.ServerURL = strings.TrimRight(strings.TrimSpace(s.ServerURL), "/")
	if s.ServerURL == "" {
		s.ServerURL = DefaultServerURL
	}
	return s, nil
}

func locateConfig(explicit, cwd string) (*DataRoomConfig, string, error) {
	if explicit != "" {
		cfg, err := LoadConfigFile(utils.ResolvePath(explicit))
		if err != nil {
			return nil, "", err
		}
		return cfg, explicit, nil
	}

	dirs := []string{cwd}
	if home, err := utils.GetDataRoomDir(); err == nil {
		dirs = append(dirs, home)
	}
	for _, dir := range dirs {
		path, err := FindConfigFile(dir)
		if err != nil {
			continue
		}
		cfg, err := LoadConfigFile(path)
		if err != nil {
			return nil, "", err
		}
		return cfg, path, nil
	}
	return nil, "", nil
}

func applyFile(s *Settings, cfg *DataRoomConfig) {
	if cfg.Server.URL != "" {
		s.ServerURL = cfg.Server.URL
	}
	s.Debug = cfg.Logging.Debug
	if cfg.Logging.File != "" {
		s.LogFile = cfg.Logging.File
	}
	s.ShowPlans = cfg.UI.ShowPlans
	if cfg.UI.ChartsDir != "" {
		s.ChartsDir = cfg.UI.ChartsDir
	}
	if len(cfg.UI.SamplePrompts) > 0 {
		s.SamplePrompts = cfg.UI.SamplePrompts
	}
	s.Emoji = !cfg.UI.NoEmoji
}

func applyEnv(s *Settings) error {
	if v := os.Getenv(legacyEnvAPIURL); v != "" {
		s.ServerURL = v
	}
	if v := os.Getenv(EnvAPIURL); v != "" {
		s.ServerURL = v
	}
	if v := os.Getenv(EnvDebug); v != "" {
		debug, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid %s value %q: %w", EnvDebug, v, err)
		}
		s.Debug = debug
	}
	if v := os.Getenv(EnvLogFile); v != "" {
		s.LogFile = v
	}
	return nil
}
