package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DefaultSource is the tips dataset analyzed when no source is given.
const DefaultSource = "https://raw.githubusercontent.com/mwaskom/seaborn-data/master/tips.csv"

// DotEnvPath is read into the process environment before config is resolved.
var DotEnvPath = ".env"

// Global configuration structure.
type Global struct {
	DefaultSource string `mapstructure:"default_source" yaml:"default_source"`
	// OutputDir receives PNG figures; empty keeps figures in memory.
	OutputDir      string `mapstructure:"output_dir" yaml:"output_dir"`
	HTTPTimeoutSec int    `mapstructure:"http_timeout_sec" yaml:"http_timeout_sec"`
	CSVDelimiter   string `mapstructure:"csv_delimiter" yaml:"csv_delimiter"`

	// Report
	SampleRows       int     `mapstructure:"sample_rows" yaml:"sample_rows"`
	TopPairs         int     `mapstructure:"top_pairs" yaml:"top_pairs"`
	Outliers         bool    `mapstructure:"outliers" yaml:"outliers"`
	OutlierThreshold float64 `mapstructure:"outlier_threshold" yaml:"outlier_threshold"`

	// Figures
	FigureWidthIn  float64 `mapstructure:"figure_width_in" yaml:"figure_width_in"`
	FigureHeightIn float64 `mapstructure:"figure_height_in" yaml:"figure_height_in"`
	// KeyColumns entries use the form column=title:label:color.
	KeyColumns []string `mapstructure:"key_columns" yaml:"key_columns"`
}

// Keys lists the settable keys in display order.
var Keys = []string{
	"default_source", "output_dir", "http_timeout_sec", "csv_delimiter",
	"sample_rows", "top_pairs", "outliers", "outlier_threshold",
	"figure_width_in", "figure_height_in", "key_columns",
}

func configDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".tablelens"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.tablelens/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := configDir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. Flags are applied by the caller.
func Load(cfgFile string) (*Global, error) {
	if err := loadDotEnv(DotEnvPath); err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetEnvPrefix("TABLELENS")
	v.AutomaticEnv()

	setDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := configDir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var nf viper.ConfigFileNotFoundError
		if !errors.As(err, &nf) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("default_source", DefaultSource)
	v.SetDefault("output_dir", "")
	v.SetDefault("http_timeout_sec", 60)
	v.SetDefault("csv_delimiter", "")
	v.SetDefault("sample_rows", 0)
	v.SetDefault("top_pairs", 10)
	v.SetDefault("outliers", true)
	v.SetDefault("outlier_threshold", 3.5)
	v.SetDefault("figure_width_in", 0.0)
	v.SetDefault("figure_height_in", 0.0)
	v.SetDefault("key_columns", []string{})
}

// Defaults returns the configuration with only defaults applied.
func Defaults() *Global {
	v := viper.New()
	setDefaults(v)
	var c Global
	_ = v.Unmarshal(&c)
	return &c
}

func loadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Get returns the display value of key.
func (c *Global) Get(key string) (string, error) {
	switch key {
	case "default_source":
		return c.DefaultSource, nil
	case "output_dir":
		return c.OutputDir, nil
	case "http_timeout_sec":
		return strconv.Itoa(c.HTTPTimeoutSec), nil
	case "csv_delimiter":
		return c.CSVDelimiter, nil
	case "sample_rows":
		return strconv.Itoa(c.SampleRows), nil
	case "top_pairs":
		return strconv.Itoa(c.TopPairs), nil
	case "outliers":
		return strconv.FormatBool(c.Outliers), nil
	case "outlier_threshold":
		return strconv.FormatFloat(c.OutlierThreshold, 'g', -1, 64), nil
	case "figure_width_in":
		return strconv.FormatFloat(c.FigureWidthIn, 'g', -1, 64), nil
	case "figure_height_in":
		return strconv.FormatFloat(c.FigureHeightIn, 'g', -1, 64), nil
	case "key_columns":
		return strings.Join(c.KeyColumns, ","), nil
	}
	return "", fmt.Errorf("unknown key: %s", key)
}

// Set parses val and assigns it to key.
func (c *Global) Set(key, val string) error {
	switch key {
	case "default_source":
		c.DefaultSource = val
	case "output_dir":
		c.OutputDir = val
	case "http_timeout_sec":
		i, err := strconv.Atoi(val)
		if err != nil || i <= 0 {
			return fmt.Errorf("invalid int for http_timeout_sec: %v", val)
		}
		c.HTTPTimeoutSec = i
	case "csv_delimiter":
		if _, err := ParseDelimiter(val); err != nil {
			return err
		}
		c.CSVDelimiter = val
	case "sample_rows", "top_pairs":
		i, err := strconv.Atoi(val)
		if err != nil || i < 0 {
			return fmt.Errorf("invalid int for %s: %v", key, val)
		}
		if key == "sample_rows" {
			c.SampleRows = i
		} else {
			c.TopPairs = i
		}
	case "outliers":
		b, err := strconv.ParseBool(val)
		if err != nil {
			return fmt.Errorf("invalid bool for outliers: %w", err)
		}
		c.Outliers = b
	case "outlier_threshold", "figure_width_in", "figure_height_in":
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || f < 0 {
			return fmt.Errorf("invalid float for %s: %v", key, val)
		}
		switch key {
		case "outlier_threshold":
			c.OutlierThreshold = f
		case "figure_width_in":
			c.FigureWidthIn = f
		default:
			c.FigureHeightIn = f
		}
	case "key_columns":
		c.KeyColumns = nil
		for _, part := range strings.Split(val, ",") {
			if part = strings.TrimSpace(part); part != "" {
				c.KeyColumns = append(c.KeyColumns, part)
			}
		}
	default:
		return fmt.Errorf("unknown key: %s", key)
	}
	return nil
}

// ParseDelimiter maps a delimiter name to its rune. Empty means auto.
func ParseDelimiter(s string) (rune, error) {
	switch s {
	case "":
		return 0, nil
	case ",", "comma":
		return ',', nil
	case "\t", "tab":
		return '\t', nil
	case ";", "semicolon":
		return ';', nil
	case "|", "pipe":
		return '|', nil
	}
	return 0, fmt.Errorf("unsupported delimiter: %q (use ',' | ';' | '|' | 'tab')", s)
}
