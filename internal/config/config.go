package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/hbjs97/qaenv/internal/shell"
	"github.com/hbjs97/qaenv/internal/workenv"
)

// ErrConfig는 설정 파일 오류를 나타내는 sentinel error다.
var ErrConfig = errors.New("설정 파일 오류")

// Config는 qaenv 설정 파일의 최상위 구조체다.
type Config struct {
	Version int    `toml:"version"`
	DirName string `toml:"dir_name"`
	Backend string `toml:"backend"`
	Shell   string `toml:"shell"`
}

// Default는 설정 파일이 없을 때 사용하는 기본 설정을 반환한다.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load는 config.toml을 파싱하여 Config를 반환한다.
// 파일이 없으면 기본 설정을 반환한다.
func Load(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("config.Load: %w: %w", ErrConfig, err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save는 설정을 TOML로 저장한다 (0600 권한).
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("config.Save: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("config.Save: %w", err)
	}
	defer f.Close()
	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("config.Save: %w", err)
	}
	return nil
}

// Options는 workenv 초기화 옵션으로 변환한다.
func (c *Config) Options() workenv.Options {
	return workenv.Options{DirName: c.DirName, Backend: c.Backend}
}

func (c *Config) applyDefaults() {
	if c.Version == 0 {
		c.Version = 1
	}
	if c.DirName == "" {
		c.DirName = workenv.DefaultDirName
	}
	if c.Backend == "" {
		c.Backend = workenv.DefaultBackend
	}
	if c.Shell == "" {
		c.Shell = "bash"
	}
}

func (c *Config) validate() error {
	if c.DirName == "." || c.DirName == ".." || strings.ContainsRune(c.DirName, '/') || strings.ContainsRune(c.DirName, filepath.Separator) {
		return fmt.Errorf("config.Load: %w: dir_name은 단일 경로 요소여야 합니다: %q", ErrConfig, c.DirName)
	}
	if strings.ContainsAny(c.Backend, "\n\r") {
		return fmt.Errorf("config.Load: %w: backend에 개행 문자를 사용할 수 없습니다", ErrConfig)
	}
	if !shell.Supported(c.Shell) {
		return fmt.Errorf("config.Load: %w: 지원하지 않는 shell: %s", ErrConfig, c.Shell)
	}
	return nil
}
