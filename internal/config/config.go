package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"crewtrack/internal/domain"
)

// Config models crewtrack.yml.
type Config struct {
	Admins  []int64 `yaml:"admins"`
	Gateway struct {
		Addr      string `yaml:"addr"`
		JWTSecret string `yaml:"jwt_secret"`
	} `yaml:"gateway"`
	Seed struct {
		Tasks []SeedTask `yaml:"tasks"`
	} `yaml:"seed"`
}

// SeedTask is a catalog entry loaded into an empty task table on bootstrap.
type SeedTask struct {
	Name     string `yaml:"name"`
	Points   int    `yaml:"points"`
	Category string `yaml:"category"`
}

// Load reads and validates config from workspace.
func Load(workspace string) (*Config, error) {
	path := Path(workspace)
	cfg, err := FromFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config %s not found; run crew config init first", path)
		}
		return nil, err
	}
	return cfg, nil
}

// LoadOptional returns nil,nil if the config file does not exist.
func LoadOptional(workspace string) (*Config, error) {
	cfg, err := FromFile(Path(workspace))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	return cfg, nil
}

// Validate ensures the config meets required structure.
func (c *Config) Validate() error {
	for i, id := range c.Admins {
		if id == 0 {
			return fmt.Errorf("config.admins[%d] is zero", i)
		}
	}
	for i, t := range c.Seed.Tasks {
		if t.Name == "" {
			return fmt.Errorf("config.seed.tasks[%d].name is required", i)
		}
		if t.Points <= 0 {
			return fmt.Errorf("seed task %s: points must be positive", t.Name)
		}
		if !domain.Category(t.Category).Valid() {
			return fmt.Errorf("seed task %s: unknown category %q", t.Name, t.Category)
		}
	}
	return nil
}

func Path(workspace string) string {
	if workspace == "" {
		workspace = "."
	}
	return filepath.Join(workspace, "crewtrack.yml")
}

// GenerateDefault returns default config YAML.
func GenerateDefault() string {
	return defaultTemplate
}

// Default returns the built-in default Config.
func Default() *Config {
	var cfg Config
	_ = yaml.NewDecoder(bytes.NewBufferString(defaultTemplate)).Decode(&cfg)
	return &cfg
}

// FromYAML parses and validates config from raw YAML bytes.
func FromYAML(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid config yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// FromFile reads YAML config from the given path.
func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return FromYAML(data)
}

const defaultTemplate = `# crewtrack configuration

# Chat IDs with administrator privileges.
admins: []

gateway:
  addr: ":8080"
  # HS256 secret for gateway JWT auth. API keys work regardless.
  jwt_secret: ""

# Catalog loaded into an empty task table on first run.
seed:
  tasks:
    - {name: "Unpack new delivery", points: 10, category: "Unpacking"}
    - {name: "Arrange stock on display", points: 5, category: "Unpacking"}
    - {name: "Warehouse inventory", points: 15, category: "Logistics"}
    - {name: "Order next stock batch", points: 10, category: "Procurement"}
    - {name: "Process a return", points: 5, category: "Logistics"}
    - {name: "Customer consultation", points: 3, category: "Sales"}
    - {name: "Ring up a sale", points: 5, category: "Sales"}
    - {name: "Social media post", points: 8, category: "Marketing"}
    - {name: "Design a promo banner", points: 12, category: "Marketing"}
    - {name: "Clean the sales floor", points: 7, category: "Other"}
`
