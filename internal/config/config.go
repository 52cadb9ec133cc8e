package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// EnvConfigPath 指定配置文件路径的环境变量。
const EnvConfigPath = "MONORACLE_CONFIG"

// DefaultPath 是未设置环境变量时使用的配置文件路径。
var DefaultPath = filepath.Join("configs", "monoracle.json")

// Config 描述了 monoracle 在启动阶段需要加载的核心配置。
type Config struct {
	Web3      Web3Config      `json:"web3"`
	Log       LogConfig       `json:"log"`
	Publisher PublisherConfig `json:"publisher"`
	Fetch     FetchConfig     `json:"fetch"`
}

// Web3Config 包含访问区块链节点所需的 RPC 地址。
type Web3Config struct {
	RPCURL       string `json:"rpc_url"`
	ChainConfig  string `json:"chain_config"`
	DefaultChain string `json:"default_chain"`
}

// LogConfig 控制日志级别、格式与输出位置。
type LogConfig struct {
	Level       string   `json:"level"`
	Format      string   `json:"format"`
	OutputPaths []string `json:"output_paths"`
	MaxSizeMB   int      `json:"max_size_mb"`
	MaxBackups  int      `json:"max_backups"`
	MaxAgeDays  int      `json:"max_age_days"`
}

// PublisherConfig 决定读取结果的输出方式。
type PublisherConfig struct {
	Driver   string         `json:"driver"`
	RabbitMQ RabbitMQConfig `json:"rabbitmq"`
}

// RabbitMQConfig 描述 RabbitMQ 投递参数。
type RabbitMQConfig struct {
	URL        string `json:"url"`
	Exchange   string `json:"exchange"`
	RoutingKey string `json:"routing_key"`
	Durable    bool   `json:"durable"`
}

// FetchConfig 控制单次读取的可选超时。
type FetchConfig struct {
	TimeoutSeconds int `json:"timeout_seconds"`
}

// Timeout 返回读取超时，0 表示不设置。
func (f FetchConfig) Timeout() time.Duration {
	if f.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(f.TimeoutSeconds) * time.Second
}

// Default 返回所有字段均为默认值的配置。
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults(".")
	return cfg
}

// Load 负责解析指定路径的 JSON 配置文件。
func Load(path string) (*Config, error) {
	if path == "" {
		return nil, errors.New("配置文件路径为空")
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(content, &cfg); err != nil {
		return nil, fmt.Errorf("解析配置失败: %w", err)
	}

	cfg.applyDefaults(filepath.Dir(path))
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadFromEnv 读取 MONORACLE_CONFIG 指定的配置。未显式指定且默认文件不存在时
// 返回默认配置。
func LoadFromEnv() (*Config, error) {
	path := strings.TrimSpace(os.Getenv(EnvConfigPath))
	if path != "" {
		return Load(path)
	}
	cfg, err := Load(DefaultPath)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// applyDefaults 在用户未填写部分字段时设置合理的默认值。
func (c *Config) applyDefaults(baseDir string) {
	if c.Web3.ChainConfig != "" && !filepath.IsAbs(c.Web3.ChainConfig) {
		c.Web3.ChainConfig = filepath.Join(baseDir, c.Web3.ChainConfig)
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if len(c.Log.OutputPaths) == 0 {
		c.Log.OutputPaths = []string{"stderr"}
	}
	for i, out := range c.Log.OutputPaths {
		switch strings.ToLower(out) {
		case "stdout", "stderr":
		default:
			if !filepath.IsAbs(out) {
				c.Log.OutputPaths[i] = filepath.Join(baseDir, out)
			}
		}
	}

	if c.Publisher.Driver == "" {
		c.Publisher.Driver = "stdout"
	}
	if c.Publisher.RabbitMQ.RoutingKey == "" {
		c.Publisher.RabbitMQ.RoutingKey = "monoracle.records"
	}
}

func (c *Config) validate() error {
	switch c.Publisher.Driver {
	case "stdout":
	case "rabbitmq":
		if strings.TrimSpace(c.Publisher.RabbitMQ.URL) == "" {
			return errors.New("rabbitmq 输出需要配置 publisher.rabbitmq.url")
		}
	default:
		return fmt.Errorf("未知的输出驱动: %s", c.Publisher.Driver)
	}
	if c.Fetch.TimeoutSeconds < 0 {
		return errors.New("fetch.timeout_seconds 不能为负数")
	}
	return nil
}
