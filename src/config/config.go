package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/cnaize/blgen/src/core/output"
	"github.com/cnaize/blgen/src/types"
)

type Config struct {
	LogLevel     string
	LogFile      string
	LoggersCount uint
	// sources
	Sources         StringList
	WhitelistSource string
	FetchTimeout    time.Duration
	FetchWorkers    uint
	// output
	OutputMode string
	OutputPath string
	SetName    string
	HostSuffix bool
	// api server
	Username       string
	Password       string
	ApiServerAddr  string
	UpdateInterval time.Duration
}

func (c *Config) Validate() error {
	if len(c.Sources) < 1 {
		return fmt.Errorf("no sources configured: %w", types.ErrInvalidConfiguration)
	}
	if _, err := output.ParseMode(c.OutputMode); err != nil {
		return fmt.Errorf("%w: %w", types.ErrInvalidConfiguration, err)
	}
	if c.FetchTimeout <= 0 {
		return fmt.Errorf("fetch timeout must be positive: %w", types.ErrInvalidConfiguration)
	}
	if c.ApiServerAddr != "" && c.UpdateInterval <= 0 {
		return fmt.Errorf("update interval must be positive: %w", types.ErrInvalidConfiguration)
	}
	if (c.Username == "") != (c.Password == "") {
		return fmt.Errorf("username and password must be set together: %w", types.ErrInvalidConfiguration)
	}

	return nil
}

// StringList is a repeatable flag; a single value may also hold a comma separated list.
type StringList []string

func (l *StringList) String() string {
	return strings.Join(*l, ",")
}

func (l *StringList) Set(value string) error {
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			*l = append(*l, item)
		}
	}

	return nil
}
