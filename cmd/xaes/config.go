package main

import (
	"os"

	"gopkg.in/ini.v1"
)

// LogConf holds the [log] section.
type LogConf struct {
	Level string `ini:"level"`
}

// CryptConf holds the [crypt] section.
type CryptConf struct {
	KeyFile string `ini:"key_file"`
	AAD     string `ini:"aad"`
}

// Config is the xaes configuration file.
type Config struct {
	LogConf   `ini:"log"`
	CryptConf `ini:"crypt"`
}

func defaultConfig() *Config {
	return &Config{
		LogConf: LogConf{Level: "info"},
	}
}

// LoadConfig reads fileName into a Config.  An empty fileName yields the
// defaults.  XAES_KEY_FILE, when set, overrides the key file.
func LoadConfig(fileName string) (*Config, error) {
	cfg := defaultConfig()

	if fileName != "" {
		iniFile, err := ini.Load(fileName)
		if err != nil {
			return nil, err
		}
		if err := iniFile.MapTo(cfg); err != nil {
			return nil, err
		}
	}

	overrideFromEnv(&cfg.KeyFile, "XAES_KEY_FILE")
	return cfg, nil
}

func overrideFromEnv(target *string, envName string) {
	if v := os.Getenv(envName); v != "" {
		*target = v
	}
}
