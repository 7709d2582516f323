package config

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Page struct {
		Size         string  `mapstructure:"size"`
		MarginTop    float64 `mapstructure:"margin_top"`
		MarginRight  float64 `mapstructure:"margin_right"`
		MarginBottom float64 `mapstructure:"margin_bottom"`
		MarginLeft   float64 `mapstructure:"margin_left"`
	} `mapstructure:"page"`

	Layout struct {
		ModuleLength    float64 `mapstructure:"module_length"`
		MinRows         int     `mapstructure:"min_rows"`
		ErrorCorrection string  `mapstructure:"error_correction"`
	} `mapstructure:"layout"`

	Recovery struct {
		Factor string `mapstructure:"factor"`
	} `mapstructure:"recovery"`

	Render struct {
		DPI int `mapstructure:"dpi"`
	} `mapstructure:"render"`

	Log struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"log"`
}

func Load(path string) (*Config, error) {
	v := viper.New()

	// ➊ YAML file (optional)
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	// ➋ ENV overrides — e.g. PBAK_LAYOUT_MODULE_LENGTH=0.5
	v.SetEnvPrefix("PBAK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// ➌ Hard defaults
	v.SetDefault("page.size", "a4")
	v.SetDefault("page.margin_top", 4.32)
	v.SetDefault("page.margin_right", 4.32)
	v.SetDefault("page.margin_bottom", 4.32)
	v.SetDefault("page.margin_left", 4.32)
	v.SetDefault("layout.module_length", 1.0)
	v.SetDefault("layout.min_rows", 3)
	v.SetDefault("layout.error_correction", "q")
	v.SetDefault("recovery.factor", "25%")
	v.SetDefault("render.dpi", 300)
	v.SetDefault("log.level", "info")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
