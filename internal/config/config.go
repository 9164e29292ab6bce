package config

import (
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/mrlokans/frenchmaster/internal/entities"
)

type (
	Config struct {
		HTTP
		Global
		Database
		KVStore
		Content
		Refresh
		Session
		Tasks
	}

	HTTP struct {
		Port int32
		Host string
	}
	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Path string
	}
	KVStore struct {
		Path string // Empty keeps auxiliary state in memory
	}
	Content struct {
		Dir           string // Dataset directory; empty uses the embedded datasets
		Retired       []entities.Category // Retired in addition to verbs
		DefaultUserID string
	}
	Refresh struct {
		Enabled  bool
		Schedule string // Cron format: "0 */6 * * *" = every 6 hours
	}
	Session struct {
		Lifetime      time.Duration
		SecureCookies bool // Set to false for local dev without HTTPS
	}
	Tasks struct {
		Enabled           bool
		Workers           int
		MaxRetries        int
		RetryDelay        time.Duration
		TaskTimeout       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration
	}
)

// parseRetired turns a comma separated category list into categories.
// "none" or an empty value adds nothing; unknown names are skipped.
func parseRetired(raw string) []entities.Category {
	var out []entities.Category
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" || strings.EqualFold(part, "none") {
			continue
		}
		category, err := entities.ParseCategory(part)
		if err != nil {
			log.Printf("WARNING: RETIRED_PREDEFINED: %v", err)
			continue
		}
		out = append(out, category)
	}
	return out
}

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8190)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("shutdown_timeout_in_seconds", 2)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("kv_store_path", DefaultKVStorePath)

	// Content defaults
	v.SetDefault("content_dir", "")
	v.SetDefault("retired_predefined", "")
	v.SetDefault("default_user_id", "default")
	v.SetDefault("refresh_enabled", false)
	v.SetDefault("refresh_schedule", DefaultRefreshSchedule)

	// Session defaults
	v.SetDefault("session_lifetime", "720h") // 30 days
	v.SetDefault("secure_cookies", false)

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 1)
	v.SetDefault("task_max_retries", 3)
	v.SetDefault("task_retry_delay", "1m")
	v.SetDefault("task_timeout", "5m")
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")

	return &Config{
		HTTP: HTTP{
			Port: v.GetInt32("PORT"),
			Host: v.GetString("HOST"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Path: v.GetString("DATABASE_PATH"),
		},
		KVStore: KVStore{
			Path: v.GetString("KV_STORE_PATH"),
		},
		Content: Content{
			Dir:           v.GetString("CONTENT_DIR"),
			Retired:       parseRetired(v.GetString("RETIRED_PREDEFINED")),
			DefaultUserID: v.GetString("DEFAULT_USER_ID"),
		},
		Refresh: Refresh{
			Enabled:  v.GetBool("REFRESH_ENABLED"),
			Schedule: v.GetString("REFRESH_SCHEDULE"),
		},
		Session: Session{
			Lifetime:      v.GetDuration("SESSION_LIFETIME"),
			SecureCookies: v.GetBool("SECURE_COOKIES"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			MaxRetries:        v.GetInt("TASK_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("TASK_RETRY_DELAY"),
			TaskTimeout:       v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),
		},
	}
}
