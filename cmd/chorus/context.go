package main

import (
	"fmt"
	"strings"

	"chorus/internal/config"
)

// commandContext carries lazily-loaded configuration shared across commands.
type commandContext struct {
	apiFlag    *string
	configFlag *string

	cfg     *config.Config
	cfgPath string
}

func newCommandContext(apiFlag, configFlag *string) *commandContext {
	return &commandContext{apiFlag: apiFlag, configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	if c.cfg != nil {
		return c.cfg, nil
	}
	path := ""
	if c.configFlag != nil {
		path = *c.configFlag
	}
	cfg, resolved, _, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	c.cfg = cfg
	c.cfgPath = resolved
	return cfg, nil
}

// client builds an API client against the --api override or the configured
// bind address.
func (c *commandContext) client() (*Client, error) {
	if c.apiFlag != nil && strings.TrimSpace(*c.apiFlag) != "" {
		return NewClient(strings.TrimSpace(*c.apiFlag), ""), nil
	}
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, fmt.Errorf("no api address configured; set paths.api_bind or pass --api")
	}
	if strings.HasPrefix(bind, ":") {
		bind = "127.0.0.1" + bind
	}
	return NewClient("http://"+bind, cfg.Paths.APIToken), nil
}
