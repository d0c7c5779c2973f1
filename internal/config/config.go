package config

import (
	"fmt"
	"os"

	"github.com/initmaster/USBPlugEvent/internal/model"
	"github.com/initmaster/USBPlugEvent/internal/sysutil"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Config 运行参数，设备 ID 与命令只来自命令行
type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Launcher LauncherConfig `yaml:"launcher"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
	Path    string `yaml:"path"`
}

type LauncherConfig struct {
	// 为空时使用 /bin/sh 或 cmd.exe
	Shell string `yaml:"shell"`
}

func DefaultConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    "127.0.0.1:9477",
			Path:    "/metrics",
		},
	}
}

// LoadConfigFromFile 文件不存在时返回默认配置
func LoadConfigFromFile(filePath string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			sysutil.Log.Warn("Configuration file not found, using defaults", zap.String("file", filePath))
			return config, nil
		}
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}
	return config, nil
}

// LoadConfig 优先级: 默认值 < 文件 < 环境变量 < 命令行
func LoadConfig(configFile, logLevel, metricsAddr string) (*Config, error) {
	config := DefaultConfig()
	if configFile != "" {
		var err error
		config, err = LoadConfigFromFile(configFile)
		if err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(config)

	if logLevel != "" {
		config.Logging.Level = logLevel
	}
	if metricsAddr != "" {
		config.Metrics.Enabled = true
		config.Metrics.Addr = metricsAddr
	}
	return config, nil
}

func applyEnvOverrides(config *Config) {
	if level := os.Getenv("USBPLUG_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}
	if format := os.Getenv("USBPLUG_LOG_FORMAT"); format != "" {
		config.Logging.Format = format
	}
	if addr := os.Getenv("USBPLUG_METRICS_ADDR"); addr != "" {
		config.Metrics.Enabled = true
		config.Metrics.Addr = addr
	}
	if shell := os.Getenv("USBPLUG_SHELL"); shell != "" {
		config.Launcher.Shell = shell
	}
}

// NewListenerConfig 既没有 -i 也没有 -r 时两个方向都监听
func NewListenerConfig(deviceID, command string, onInsert, onRemove bool) model.ListenerConfig {
	if !onInsert && !onRemove {
		onInsert, onRemove = true, true
	}
	return model.ListenerConfig{
		TargetDeviceID: deviceID,
		WatchInsert:    onInsert,
		WatchRemove:    onRemove,
		Command:        command,
	}
}
