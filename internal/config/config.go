// Package config binds the controller's command-line flags (cobra) to
// a config file and environment (viper): symbol path, transport kind,
// serial device or TCP address, and poll interval.
package config

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Config is the controller's resolved startup configuration: symbol
// search path, transport carrier selection, and polling cadence.
type Config struct {
	SymbolPath      string
	TransportKind   string // "serial" or "tcp"
	SerialDevice    string
	TCPAddress      string
	PollIntervalMs  int
	LogLevel        string
	LogJSON         bool
}

const (
	keySymbolPath     = "symbol-path"
	keyTransportKind  = "transport"
	keySerialDevice   = "serial-device"
	keyTCPAddress     = "tcp-address"
	keyPollIntervalMs = "poll-interval-ms"
	keyLogLevel       = "log-level"
	keyLogJSON        = "log-json"
)

// BindFlags registers every config-backed flag on cmd and binds them
// into v, so viper.Unmarshal-equivalent reads (here, Load) see either
// the flag value, a bound environment variable, or the config file,
// in cobra/viper's usual precedence order.
func BindFlags(cmd *cobra.Command, v *viper.Viper) {
	flags := cmd.PersistentFlags()
	flags.String(keySymbolPath, "", "directory to search for PDB/symbol files")
	flags.String(keyTransportKind, "serial", "host<->debuggee transport: serial or tcp")
	flags.String(keySerialDevice, "/dev/ttyUSB0", "serial device path when transport=serial")
	flags.String(keyTCPAddress, "127.0.0.1:5555", "host:port to dial when transport=tcp")
	flags.Int(keyPollIntervalMs, 50, "debuggee-message poll interval in milliseconds")
	flags.String(keyLogLevel, "info", "log level: trace/debug/info/warn/error")
	flags.Bool(keyLogJSON, false, "emit logs as JSON instead of text")

	_ = v.BindPFlags(flags)
	v.SetEnvPrefix("hyperdbg")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
}

// Load reads whatever BindFlags bound (flags, env, and any config file
// previously merged via v.ReadInConfig) into a Config value.
func Load(v *viper.Viper) Config {
	return Config{
		SymbolPath:     v.GetString(keySymbolPath),
		TransportKind:  v.GetString(keyTransportKind),
		SerialDevice:   v.GetString(keySerialDevice),
		TCPAddress:     v.GetString(keyTCPAddress),
		PollIntervalMs: v.GetInt(keyPollIntervalMs),
		LogLevel:       v.GetString(keyLogLevel),
		LogJSON:        v.GetBool(keyLogJSON),
	}
}
