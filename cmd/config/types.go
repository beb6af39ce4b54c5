package config

// DataRoomConfig is the on-disk client configuration (dataroom.yaml and
// friends).
type DataRoomConfig struct {
	Version string        `yaml:"version" toml:"version" json:"version"`
	Server  ServerConfig  `yaml:"server,omitempty" toml:"server,omitempty" json:"server,omitempty"`
	Logging LoggingConfig `yaml:"logging,omitempty" toml:"logging,omitempty" json:"logging,omitempty"`
	UI      UIConfig      `yaml:"ui,omitempty" toml:"ui,omitempty" json:"ui,omitempty"`
}

// ServerConfig points the client at the analysis backend.
type ServerConfig struct {
	URL string `yaml:"url,omitempty" toml:"url,omitempty" json:"url,omitempty"`
}

type LoggingConfig struct {
	Debug bool   `yaml:"debug,omitempty" toml:"debug,omitempty" json:"debug,omitempty"`
	File  string `yaml:"file,omitempty" toml:"file,omitempty" json:"file,omitempty"`
}

// UIConfig tunes the interactive view.
type UIConfig struct {
	ShowPlans     bool     `yaml:"show_plans,omitempty" toml:"show_plans,omitempty" json:"show_plans,omitempty"`
	ChartsDir     string   `yaml:"charts_dir,omitempty" toml:"charts_dir,omitempty" json:"charts_dir,omitempty"`
	SamplePrompts []string `yaml:"sample_prompts,omitempty" toml:"sample_prompts,omitempty" json:"sample_prompts,omitempty"`
	NoEmoji       bool     `yaml:"no_emoji,omitempty" toml:"no_emoji,omitempty" json:"no_emoji,omitempty"`
}

// Settings is the effective configuration after every source was applied.
type Settings struct {
	ServerURL     string
	Debug         bool
	LogFile       string
	ShowPlans     bool
	ChartsDir     string
	SamplePrompts []string
	Emoji         bool

	// ConfigFile is the file that was loaded, empty when none was found.
	ConfigFile string
}

// Overrides carries values given on the command line. Empty fields do not
// override anything.
type Overrides struct {
	ConfigFile string
	Cwd        string
	ServerURL  string
	Debug      bool
	LogFile    string
}
