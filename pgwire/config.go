package pgwire

import (
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/jackc/pgcodec"
	"github.com/jackc/pgcodec/pgtype"
	"github.com/pkg/errors"
)

// Config is the configuration of a Conn. Use DefaultConfig, ParseConfig or LoadConfigFile to create one; a
// zero-value Config requests text results with UTF8 client encoding.
type Config struct {
	// ResultFormat is the format code requested for every result column.
	ResultFormat int16

	// ClientEncoding is the encoding the server uses for text values. It must be one pgtype.ClientEncoding knows.
	ClientEncoding string

	// ServerVersion selects the builtin types of the connection registry. Empty means the latest server.
	ServerVersion string

	// Logger and LogLevel are used to build a tracelog.TraceLog when Tracer is nil.
	Logger   pgcodec.Logger
	LogLevel pgcodec.LogLevel

	// Tracer is notified of every query sent on the connection. If it also implements pgcodec.RecordTracer it is
	// notified of missing columns.
	Tracer pgcodec.QueryTracer

	// OnNotice is a callback function called when a notice response is received.
	OnNotice func(*Conn, *Notice)
}

// DefaultConfig returns a config requesting binary results with UTF8 client encoding.
func DefaultConfig() *Config {
	return &Config{
		ResultFormat:   pgtype.BinaryFormatCode,
		ClientEncoding: "UTF8",
		LogLevel:       pgcodec.LogLevelInfo,
	}
}

type parseConfigError struct {
	connString string
	msg        string
	err        error
}

func (e *parseConfigError) Error() string {
	if e.err == nil {
		return "cannot parse `" + e.connString + "`: " + e.msg
	}
	return "cannot parse `" + e.connString + "`: " + e.msg + " (" + e.err.Error() + ")"
}

func (e *parseConfigError) Unwrap() error {
	return e.err
}

var settingRegexp = regexp.MustCompile(`([a-zA-Z_]+)=((?:"[^"]+")|(?:[^ ]+))`)

// ParseConfig parses a keyword/value string such as
//
//	result_format=text client_encoding=LATIN1 server_version=13.4 log_level=debug
//
// into a Config. Keys that are not given keep their DefaultConfig values.
func ParseConfig(connString string) (*Config, error) {
	settings := make(map[string]string)
	for _, m := range settingRegexp.FindAllStringSubmatch(connString, -1) {
		settings[m[1]] = strings.Trim(m[2], `"`)
	}

	config := DefaultConfig()
	if err := config.apply(settings); err != nil {
		return nil, &parseConfigError{connString: connString, msg: "invalid setting", err: err}
	}
	return config, nil
}

type fileConfig struct {
	ResultFormat   string `toml:"result_format"`
	ClientEncoding string `toml:"client_encoding"`
	ServerVersion  string `toml:"server_version"`
	LogLevel       string `toml:"log_level"`
}

// LoadConfigFile reads a Config from the TOML file at path. It recognizes the same keys as ParseConfig.
func LoadConfigFile(path string) (*Config, error) {
	var fc fileConfig
	md, err := toml.DecodeFile(path, &fc)
	if err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, errors.Errorf("read config %s: unknown key %s", path, undecoded[0].String())
	}

	settings := make(map[string]string)
	for key, value := range map[string]string{
		"result_format":   fc.ResultFormat,
		"client_encoding": fc.ClientEncoding,
		"server_version":  fc.ServerVersion,
		"log_level":       fc.LogLevel,
	} {
		if value != "" {
			settings[key] = value
		}
	}

	config := DefaultConfig()
	if err := config.apply(settings); err != nil {
		return nil, errors.Wrapf(err, "read config %s", path)
	}
	return config, nil
}

func (c *Config) apply(settings map[string]string) error {
	for key, value := range settings {
		switch key {
		case "result_format":
			format, err := parseFormat(value)
			if err != nil {
				return err
			}
			c.ResultFormat = format
		case "client_encoding":
			if _, err := pgtype.ClientEncoding(value); err != nil {
				return err
			}
			c.ClientEncoding = value
		case "server_version":
			c.ServerVersion = value
		case "log_level":
			level, err := pgcodec.LogLevelFromString(value)
			if err != nil {
				return err
			}
			c.LogLevel = level
		default:
			return errors.Errorf("unknown setting %s", key)
		}
	}
	return nil
}

func parseFormat(s string) (int16, error) {
	switch strings.ToLower(s) {
	case "text", "0":
		return pgtype.TextFormatCode, nil
	case "binary", "1":
		return pgtype.BinaryFormatCode, nil
	default:
		return 0, errors.Errorf("invalid result format %q", s)
	}
}
