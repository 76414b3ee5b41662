package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config 从环境变量读取
type Config struct {
	Port string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	RedisAddr string
	RedisPwd  string

	WebOrigin  string
	StaffToken string

	StatsCacheTTL time.Duration
	SnapshotCron  string

	// 旧版兼容：多件借出逐条提交（默认整批事务）
	LegacyPartialBorrow bool
}

// LoadEnv loads a .env file if present; configuration from the
// environment directly is fine too.
func LoadEnv() { _ = godotenv.Load() }

func Load() Config {
	get := func(k, def string) string {
		v := os.Getenv(k)
		if v == "" {
			return def
		}
		return v
	}

	ttl := 5 * time.Minute
	if sec, err := strconv.Atoi(get("STATS_CACHE_TTL_SECONDS", "300")); err == nil && sec > 0 {
		ttl = time.Duration(sec) * time.Second
	}

	legacy, _ := strconv.ParseBool(get("LEDGER_LEGACY_PARTIAL_BORROW", "false"))

	return Config{
		Port:       get("PORT", "3001"),
		DBHost:     get("DB_HOST", "127.0.0.1"),
		DBUser:     get("DB_USER", "postgres"),
		DBPassword: os.Getenv("DB_PASSWORD"),
		DBName:     get("DB_NAME", "equipment_ledger"),
		DBPort:     get("DB_PORT", "5432"),

		RedisAddr: get("REDIS_ADDR", "127.0.0.1:6379"),
		RedisPwd:  os.Getenv("REDIS_PASSWORD"),

		WebOrigin:  get("WEB_ORIGIN", "http://localhost:3000"),
		StaffToken: os.Getenv("STAFF_TOKEN"),

		StatsCacheTTL: ttl,
		SnapshotCron:  get("SNAPSHOT_CRON", "10 0 * * *"),

		LegacyPartialBorrow: legacy,
	}
}
