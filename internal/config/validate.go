package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/tollgate/internal/domain"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database.path must be set (or set " + EnvDB + ")")
	}
	if err := c.validateRoles(); err != nil {
		return err
	}
	if err := c.validateNotifications(); err != nil {
		return err
	}
	if c.SLA.SweepInterval <= 0 {
		return errors.New("sla.sweep_interval must be positive")
	}
	if err := c.validateAPI(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateRoles() error {
	for user, role := range c.Roles {
		if strings.TrimSpace(user) == "" {
			return errors.New("roles: user id must not be empty")
		}
		if strings.TrimSpace(role) == "" {
			return fmt.Errorf("roles.%s: role must not be empty", user)
		}
	}
	return nil
}

func (c *Config) validateNotifications() error {
	if c.Notifications.RequestTimeout < 0 {
		return errors.New("notifications.request_timeout must be >= 0")
	}
	topic := c.Notifications.NtfyTopic
	if topic != "" && !strings.HasPrefix(topic, "http://") && !strings.HasPrefix(topic, "https://") {
		return fmt.Errorf("notifications.ntfy_topic must be a full URL, got %q", topic)
	}
	return nil
}

func (c *Config) validateAPI() error {
	if strings.TrimSpace(c.API.Bind) == "" {
		return errors.New("api.bind must be set")
	}
	if c.API.ReadTimeout <= 0 || c.API.WriteTimeout <= 0 {
		return errors.New("api.read_timeout and api.write_timeout must be positive")
	}
	if c.API.ShutdownTimeout < 0 {
		return errors.New("api.shutdown_timeout must be >= 0")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	return nil
}

// RoleAssignments converts the roles table into domain roles.
func (c *Config) RoleAssignments() map[string]domain.Role {
	out := make(map[string]domain.Role, len(c.Roles))
	for user, role := range c.Roles {
		out[strings.TrimSpace(user)] = domain.Role(strings.ToLower(strings.TrimSpace(role)))
	}
	return out
}
