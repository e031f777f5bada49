package logging

import (
	"io"
	"os"
	"sort"

	"github.com/hashicorp/go-hclog"

	"ideadist.dev/cli/internal/application/ports"
)

// Options configures the hclog backed gateway
type Options struct {
	Name   string
	Level  ports.LogLevel
	JSON   bool
	Output io.Writer
}

// HCLogGateway implements ports.LoggingGateway on top of go-hclog
type HCLogGateway struct {
	logger hclog.Logger
	level  ports.LogLevel
}

// NewHCLogGateway creates a gateway writing to opts.Output (stderr by default)
func NewHCLogGateway(opts Options) *HCLogGateway {
	output := opts.Output
	if output == nil {
		output = os.Stderr
	}
	name := opts.Name
	if name == "" {
		name = "ideadist"
	}
	level := opts.Level
	if level == "" {
		level = ports.LogLevelInfo
	}

	logger := hclog.New(&hclog.LoggerOptions{
		Name:       name,
		Level:      toHCLevel(level),
		Output:     output,
		JSONFormat: opts.JSON,
	})
	return &HCLogGateway{logger: logger, level: level}
}

// NewNullGateway returns a gateway that discards everything
func NewNullGateway() *HCLogGateway {
	return &HCLogGateway{logger: hclog.NewNullLogger(), level: ports.LogLevelError}
}

// Logger exposes the underlying hclog logger
func (g *HCLogGateway) Logger() hclog.Logger {
	return g.logger
}

func (g *HCLogGateway) Log(level ports.LogLevel, message string, fields map[string]interface{}) {
	g.logger.Log(toHCLevel(level), message, flatten(fields)...)
}

func (g *HCLogGateway) LogError(err error, message string, fields map[string]interface{}) {
	args := flatten(fields)
	if err != nil {
		args = append(args, "error", err)
	}
	g.logger.Error(message, args...)
}

func (g *HCLogGateway) LogInfo(message string, fields map[string]interface{}) {
	g.logger.Info(message, flatten(fields)...)
}

func (g *HCLogGateway) LogDebug(message string, fields map[string]interface{}) {
	g.logger.Debug(message, flatten(fields)...)
}

func (g *HCLogGateway) LogWarning(message string, fields map[string]interface{}) {
	g.logger.Warn(message, flatten(fields)...)
}

// SetLogLevel sets the logging level
func (g *HCLogGateway) SetLogLevel(level ports.LogLevel) {
	g.level = level
	g.logger.SetLevel(toHCLevel(level))
}

// GetLogLevel returns the current logging level
func (g *HCLogGateway) GetLogLevel() ports.LogLevel {
	return g.level
}

func toHCLevel(level ports.LogLevel) hclog.Level {
	switch level {
	case ports.LogLevelDebug:
		return hclog.Debug
	case ports.LogLevelWarn:
		return hclog.Warn
	case ports.LogLevelError:
		return hclog.Error
	default:
		return hclog.Info
	}
}

// flatten turns a field map into hclog key/value pairs with stable ordering
func flatten(fields map[string]interface{}) []interface{} {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := make([]interface{}, 0, len(fields)*2)
	for _, k := range keys {
		args = append(args, k, fields[k])
	}
	return args
}

var _ ports.LoggingGateway = (*HCLogGateway)(nil)
