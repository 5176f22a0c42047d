package main

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"

	"github.com/eringen/spacetraveling"
)

// loadConfig reads spacetraveling.yaml (or cfgFile) and the environment.
// Keys are the lowercased environment variable names, so SITE_URL and
// site_url in the file configure the same setting; the environment wins.
func loadConfig(cfgFile string) (spacetraveling.SiteConfig, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("spacetraveling")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return spacetraveling.SiteConfig{}, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := spacetraveling.SiteConfig{
		Name:             v.GetString("site_name"),
		URL:              v.GetString("site_url"),
		Description:      v.GetString("site_description"),
		Author:           v.GetString("site_author"),
		Addr:             v.GetString("addr"),
		DatabasePath:     v.GetString("database_path"),
		ContentEndpoint:  v.GetString("prismic_endpoint"),
		ContentToken:     v.GetString("prismic_access_token"),
		ContentTimeout:   v.GetDuration("content_timeout"),
		ContentRateLimit: v.GetFloat64("content_rate_limit"),
		PageSize:         v.GetInt("page_size"),
		BuildConcurrency: v.GetInt("build_concurrency"),
		FetchLimit:       v.GetInt("fetch_limit"),
		TrustedRichText:  v.GetBool("richtext_trusted"),
		Timezone:         v.GetString("site_timezone"),
		LogLevel:         v.GetString("log_level"),
	}
	if cfg.ContentEndpoint == "" {
		return cfg, errors.New("PRISMIC_ENDPOINT is required")
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("site_name", "spacetraveling")
	v.SetDefault("site_url", "http://localhost:3000")
	v.SetDefault("addr", ":3000")
	v.SetDefault("database_path", "data/pages.db")
	v.SetDefault("content_timeout", "30s")
	v.SetDefault("content_rate_limit", 10)
	v.SetDefault("page_size", 1)
	v.SetDefault("build_concurrency", 4)
	v.SetDefault("fetch_limit", 30)
	v.SetDefault("site_timezone", "UTC")
	v.SetDefault("log_level", "info")
}
