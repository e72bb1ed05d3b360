package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

// LoadEnv 加载环境变量
// APP_ENV=local 时读取 .env.local，其余环境依赖系统环境变量
func LoadEnv() {
	appEnv := os.Getenv("APP_ENV")
	if appEnv == "" {
		appEnv = "development"
		os.Setenv("APP_ENV", appEnv)
	}

	if appEnv == "local" {
		if err := godotenv.Load(".env.local"); err != nil {
			log.Printf("[Config] 未找到 .env.local，使用系统环境变量: %v", err)
		} else {
			log.Println("[Config] 已加载 .env.local")
		}
	}
}

// Getenv 读取环境变量，缺失时回退默认值
func Getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// DatabaseDSN 数据库连接串
func DatabaseDSN() string {
	return Getenv("DATABASE_DSN",
		"host=localhost user=depot_admin password=1234 dbname=depot_gas port=5432 sslmode=disable")
}

// RedisAddr Redis 地址，空串表示禁用目录缓存
func RedisAddr() string {
	return os.Getenv("REDIS_ADDR")
}

// RemoteSettingsURL 远端配置端点，空串表示仅用数据库配置
func RemoteSettingsURL() string {
	return os.Getenv("REMOTE_SETTINGS_URL")
}

// JWTSecret 会话令牌签名密钥
func JWTSecret() string {
	return Getenv("JWT_SECRET", "depot-gas-secret-key-change-in-production")
}
