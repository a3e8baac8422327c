package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// NotificationConfig controls when billing reminders fire and how often
// the cash-flow sync may run. It is hot-reloadable from notification.yml.
type NotificationConfig struct {
	// SendTime is the wall-clock time of day ("15:04") at which the
	// notification job is allowed to execute.
	SendTime string `mapstructure:"sendTime"`
	// ToleranceMinutes widens SendTime into a window, because the
	// scheduler polls on an interval rather than firing exactly on time.
	ToleranceMinutes int `mapstructure:"toleranceMinutes"`
	// SyncCooldownSeconds is the minimum gap between cash-flow sync runs.
	SyncCooldownSeconds int `mapstructure:"syncCooldownSeconds"`
}

func DefaultNotificationConfig() NotificationConfig {
	return NotificationConfig{
		SendTime:            "08:00",
		ToleranceMinutes:    5,
		SyncCooldownSeconds: 30,
	}
}

func (c NotificationConfig) SyncCooldown() time.Duration {
	return time.Duration(c.SyncCooldownSeconds) * time.Second
}

func (c NotificationConfig) Tolerance() time.Duration {
	return time.Duration(c.ToleranceMinutes) * time.Minute
}

type NotificationConfigHolder struct {
	current atomic.Value // holds NotificationConfig
}

func NewNotificationConfigHolder() (*NotificationConfigHolder, error) {
	v := viper.New()

	v.SetConfigName("notification")
	v.SetConfigType("yml")
	v.AddConfigPath("/var/lib/gestor/config") // Volume-mounted config
	v.AddConfigPath("/etc/gestor")            // System config
	v.AddConfigPath(".")                      // Current directory (dev mode)

	v.SetEnvPrefix("GESTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults := DefaultNotificationConfig()
	v.SetDefault("notification.sendTime", defaults.SendTime)
	v.SetDefault("notification.toleranceMinutes", defaults.ToleranceMinutes)
	v.SetDefault("notification.syncCooldownSeconds", defaults.SyncCooldownSeconds)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg NotificationConfig
	if err := v.UnmarshalKey("notification", &cfg); err != nil {
		return nil, err
	}
	if err := validateNotificationConfig(cfg); err != nil {
		return nil, err
	}

	holder := &NotificationConfigHolder{}
	holder.current.Store(cfg)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		var updated NotificationConfig
		if err := v.UnmarshalKey("notification", &updated); err != nil {
			log.Printf("[notification-config] reload failed: %v", err)
			return
		}
		if err := validateNotificationConfig(updated); err != nil {
			log.Printf("[notification-config] invalid config ignored: %v", err)
			return
		}
		holder.current.Store(updated)
		log.Printf("[notification-config] reloaded from %s", e.Name)
	})

	return holder, nil
}

// NewStaticNotificationConfigHolder wraps a fixed config with no file
// watching. Useful in tests and one-shot tooling.
func NewStaticNotificationConfigHolder(cfg NotificationConfig) *NotificationConfigHolder {
	holder := &NotificationConfigHolder{}
	holder.current.Store(cfg)
	return holder
}

func (h *NotificationConfigHolder) Get() NotificationConfig {
	return h.current.Load().(NotificationConfig)
}

func validateNotificationConfig(cfg NotificationConfig) error {
	if _, err := time.Parse("15:04", strings.TrimSpace(cfg.SendTime)); err != nil {
		return fmt.Errorf("notification.sendTime must be HH:MM: %w", err)
	}
	if cfg.ToleranceMinutes < 0 {
		return errors.New("notification.toleranceMinutes cannot be negative")
	}
	if cfg.SyncCooldownSeconds < 0 {
		return errors.New("notification.syncCooldownSeconds cannot be negative")
	}
	return nil
}
