package config

import (
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// BroadcastConfig tunes the phase broadcast job without a redeploy.
type BroadcastConfig struct {
	RunInterval    time.Duration `mapstructure:"runInterval"`
	RecipientBatch int           `mapstructure:"recipientBatch"`
	SendTimeout    time.Duration `mapstructure:"sendTimeout"`
	EnabledJobs    []string      `mapstructure:"enabledJobs"`
}

func DefaultBroadcastConfig() BroadcastConfig {
	return BroadcastConfig{
		RunInterval:    time.Minute,
		RecipientBatch: 200,
		SendTimeout:    20 * time.Second,
	}
}

// BroadcastConfigHolder serves the current broadcast config and hot-reloads
// it when the backing file changes.
type BroadcastConfigHolder struct {
	current atomic.Value // holds BroadcastConfig
}

func NewBroadcastConfigHolder() (*BroadcastConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("cohortly")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/cohortly/config")
	v.AddConfigPath("/etc/cohortly")
	v.AddConfigPath(".")

	v.SetEnvPrefix("COHORTLY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		defaults := DefaultBroadcastConfig()
		v.SetDefault("broadcast.runInterval", defaults.RunInterval)
		v.SetDefault("broadcast.recipientBatch", defaults.RecipientBatch)
		v.SetDefault("broadcast.sendTimeout", defaults.SendTimeout)
	}

	holder := &BroadcastConfigHolder{}
	holder.store(readBroadcast(v))

	v.OnConfigChange(func(_ fsnotify.Event) {
		holder.store(readBroadcast(v))
		log.Println("broadcast config reloaded")
	})
	v.WatchConfig()

	return holder, nil
}

func (h *BroadcastConfigHolder) Current() BroadcastConfig {
	if v, ok := h.current.Load().(BroadcastConfig); ok {
		return v
	}
	return DefaultBroadcastConfig()
}

func (h *BroadcastConfigHolder) store(cfg BroadcastConfig) {
	h.current.Store(cfg.withDefaults())
}

func readBroadcast(v *viper.Viper) BroadcastConfig {
	var cfg BroadcastConfig
	if err := v.UnmarshalKey("broadcast", &cfg); err != nil {
		log.Printf("broadcast config unmarshal failed, using defaults: %v", err)
		return DefaultBroadcastConfig()
	}
	return cfg
}

func (c BroadcastConfig) withDefaults() BroadcastConfig {
	defaults := DefaultBroadcastConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.RecipientBatch <= 0 {
		c.RecipientBatch = defaults.RecipientBatch
	}
	if c.SendTimeout <= 0 {
		c.SendTimeout = defaults.SendTimeout
	}
	return c
}
