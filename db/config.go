package db

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// ErrConfig is returned by Open when the configuration cannot describe a pool.
var ErrConfig = errors.New("db config")

// Config describes the pool and the relational store it connects to.
type Config struct {
	Driver   string `yaml:"driver"`
	DSN      string `yaml:"dsn"` // used verbatim when set
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	Charset  string `yaml:"charset"`

	// Autocommit is nil when unset so that an explicit false survives merging.
	Autocommit *bool `yaml:"autocommit"`

	MinSize int `yaml:"minsize"`
	MaxSize int `yaml:"maxsize"`
}

// Merge returns c with every field set in override applied on top.
func (c Config) Merge(override Config) Config {
	result := c
	if s := strings.TrimSpace(override.Driver); s != "" {
		result.Driver = s
	}
	if s := strings.TrimSpace(override.DSN); s != "" {
		result.DSN = s
	}
	if s := strings.TrimSpace(override.Host); s != "" {
		result.Host = s
	}
	if override.Port > 0 {
		result.Port = override.Port
	}
	if override.User != "" {
		result.User = override.User
	}
	if override.Password != "" {
		result.Password = override.Password
	}
	if s := strings.TrimSpace(override.Database); s != "" {
		result.Database = s
	}
	if s := strings.TrimSpace(override.Charset); s != "" {
		result.Charset = s
	}
	if override.Autocommit != nil {
		v := *override.Autocommit
		result.Autocommit = &v
	}
	if override.MinSize > 0 {
		result.MinSize = override.MinSize
	}
	if override.MaxSize > 0 {
		result.MaxSize = override.MaxSize
	}
	return result
}

func (c *Config) applyDefaults() {
	if c.Driver == "" {
		c.Driver = "mysql"
	}
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port <= 0 {
		c.Port = 3306
	}
	if c.Charset == "" {
		c.Charset = "utf8"
	}
	if c.Autocommit == nil {
		v := true
		c.Autocommit = &v
	}
	if c.MaxSize <= 0 {
		c.MaxSize = 10
	}
	if c.MinSize <= 0 {
		c.MinSize = 1
	}
	if c.MinSize > c.MaxSize {
		c.MinSize = c.MaxSize
	}
}

func (c Config) validate() error {
	if c.DSN != "" {
		return nil
	}
	if c.Database == "" {
		return fmt.Errorf("%w: database required", ErrConfig)
	}
	if c.Driver == "mysql" && c.User == "" {
		return fmt.Errorf("%w: user required", ErrConfig)
	}
	return nil
}

// DataSourceName renders the driver DSN. For MySQL it is built from the
// connection fields; other drivers receive Database unchanged.
func (c Config) DataSourceName() string {
	if c.DSN != "" {
		return c.DSN
	}
	if c.Driver != "mysql" {
		return c.Database
	}

	mc := mysql.NewConfig()
	mc.User = c.User
	mc.Passwd = c.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
	mc.DBName = c.Database
	mc.Params = map[string]string{
		"charset": c.Charset,
	}
	if c.Autocommit != nil {
		mc.Params["autocommit"] = strconv.FormatBool(*c.Autocommit)
	}
	return mc.FormatDSN()
}
