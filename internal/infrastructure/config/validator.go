package configinfra

import (
	"fmt"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"time"

	configdomain "ideadist.dev/cli/internal/core/domain/config"
	configports "ideadist.dev/cli/internal/core/ports/config"
)

// ConfigValidator validates merged configuration values
type ConfigValidator struct {
	consumerPattern *regexp.Regexp
}

// NewConfigValidator creates a new configuration validator
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{
		// The consumer name becomes part of a file name
		consumerPattern: regexp.MustCompile(`^[A-Za-z0-9._-]+$`),
	}
}

// ValidateRepositoryURL validates the base repository URL
func (v *ConfigValidator) ValidateRepositoryURL(raw string) error {
	if raw == "" {
		return fmt.Errorf("repository URL cannot be empty")
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}

	switch u.Scheme {
	case "http", "https":
		if u.Host == "" {
			return fmt.Errorf("URL must include host")
		}
	case "file":
		if u.Path == "" {
			return fmt.Errorf("file URL must include a path")
		}
	default:
		return fmt.Errorf("unsupported URL scheme: %s (must be http, https or file)", u.Scheme)
	}
	return nil
}

// ValidateConsumerName validates the descriptor consumer name
func (v *ConfigValidator) ValidateConsumerName(name string) error {
	if name == "" {
		return fmt.Errorf("consumer name cannot be empty")
	}
	if name == "." || name == ".." || !v.consumerPattern.MatchString(name) {
		return fmt.Errorf("invalid consumer name: %s (letters, digits, '.', '_' and '-' only)", name)
	}
	return nil
}

// ValidateLogLevel validates log level value
func (v *ConfigValidator) ValidateLogLevel(level string) error {
	validLevels := []string{"debug", "info", "warn", "error"}

	normalizedLevel := strings.ToLower(strings.TrimSpace(level))
	for _, valid := range validLevels {
		if normalizedLevel == valid {
			return nil
		}
	}
	return fmt.Errorf("invalid log level: %s (valid levels: %s)", level, strings.Join(validLevels, ", "))
}

// ValidateTimeout validates the overall operation timeout
func (v *ConfigValidator) ValidateTimeout(timeout time.Duration) error {
	if timeout < time.Second {
		return fmt.Errorf("timeout too short (minimum 1s)")
	}
	if timeout > 24*time.Hour {
		return fmt.Errorf("timeout too long (maximum 24h)")
	}
	return nil
}

// ValidateAll validates every field present in the snapshot
func (v *ConfigValidator) ValidateAll(snap configdomain.Snapshot) map[string]error {
	errors := make(map[string]error)

	if _, ok := snap["repository_url"]; ok {
		if err := v.ValidateRepositoryURL(snap.String("repository_url")); err != nil {
			errors["repository_url"] = err
		}
	}

	if _, ok := snap["consumer_name"]; ok {
		if err := v.ValidateConsumerName(snap.String("consumer_name")); err != nil {
			errors["consumer_name"] = err
		}
	}

	if _, ok := snap["log_level"]; ok {
		if err := v.ValidateLogLevel(snap.String("log_level")); err != nil {
			errors["log_level"] = err
		}
	}

	if _, ok := snap["timeout"]; ok {
		timeout, err := snap.Duration("timeout")
		if err == nil {
			err = v.ValidateTimeout(timeout)
		}
		if err != nil {
			errors["timeout"] = err
		}
	}

	for _, field := range []string{"download_sources", "log_json", "debug"} {
		if _, ok := snap[field]; ok {
			if _, err := snap.Bool(field); err != nil {
				errors[field] = err
			}
		}
	}

	return errors
}

// Validate implements configports.Validator. All field errors are reported
// together, sorted by field, each with the source that supplied the value.
func (v *ConfigValidator) Validate(snap configdomain.Snapshot) error {
	errs := v.ValidateAll(snap)
	if len(errs) == 0 {
		return nil
	}

	fields := make([]string, 0, len(errs))
	for field := range errs {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	msgs := make([]string, 0, len(fields))
	for _, field := range fields {
		msgs = append(msgs, fmt.Sprintf("%s (from %s): %v", field, snap[field].Source, errs[field]))
	}
	return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
}

var _ configports.Validator = (*ConfigValidator)(nil)
