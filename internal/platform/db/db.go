package db

import (
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	driverName = "mysql"

	// スナップショット保存先の種別
	StorageDriverFile  = "file"
	StorageDriverMySQL = "mysql"
)

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type StorageConfig struct {
	Driver string `yaml:"driver"` // "file" | "mysql"
	Path   string `yaml:"path"`   // driver=file のときのみ使用
}

type Config struct {
	Version string         `yaml:"version"`
	Mode    string         `yaml:"mode"`
	Server  ServerConfig   `yaml:"server"`
	Storage StorageConfig  `yaml:"storage"`
	DB      DatabaseConfig `yaml:"database"`
}

// LoadConfig はYAML設定を読み込み、環境変数で上書きする。
// .env は任意（Docker/CI では環境変数で直接渡される想定）。
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("設定ファイルの読み込み失敗: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return nil, fmt.Errorf("設定ファイルのパース失敗: %w", err)
	}

	applyEnvOverrides(&cfg)

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Storage.Driver == "" {
		cfg.Storage.Driver = StorageDriverFile
	}
	if cfg.Storage.Driver == StorageDriverFile && cfg.Storage.Path == "" {
		cfg.Storage.Path = "data/events.json"
	}
	return &cfg, nil
}

// パスワード等の秘匿値はYAMLに直書きさせない運用もできるようにする
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("EMARGEMENT_MODE"); v != "" {
		cfg.Mode = v
	}
	if v := os.Getenv("EMARGEMENT_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("EMARGEMENT_STORAGE_DRIVER"); v != "" {
		cfg.Storage.Driver = v
	}
	if v := os.Getenv("EMARGEMENT_STORAGE_PATH"); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv("EMARGEMENT_DB_HOST"); v != "" {
		cfg.DB.Host = v
	}
	if v := os.Getenv("EMARGEMENT_DB_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.DB.Port = p
		}
	}
	if v := os.Getenv("EMARGEMENT_DB_USER"); v != "" {
		cfg.DB.Username = v
	}
	if v := os.Getenv("EMARGEMENT_DB_PASSWORD"); v != "" {
		cfg.DB.Password = v
	}
	if v := os.Getenv("EMARGEMENT_DB_NAME"); v != "" {
		cfg.DB.DBName = v
	}
}

func Connect(c DatabaseConfig) (*sql.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&tls=false&timeout=3s&readTimeout=5s&writeTimeout=5s&loc=UTC",
		c.Username, c.Password, c.Host, c.Port, c.DBName)

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("接続準備に失敗: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("DB接続に失敗: %w", err)
	}

	// スナップショット1枠のみの読み書きなのでプールは小さめで足りる
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return db, nil
}
