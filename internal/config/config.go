// Package config loads the gateway's process-wide configuration from the
// environment (spec §6.5) — no config file, no flags. Extending the closed
// set of recognized keys is a code change, never a runtime discovery.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// SiblingShortNames are the three sibling-family networks whose RPC
// endpoint, bearer token, and signer mnemonic can be overridden by env.
var SiblingShortNames = []string{"s1", "s2", "s3"}

// TLSOptions carries optional mTLS material for upstream RPC connections.
// It is threaded into the RPC client factory as a startup-time option
// struct rather than read again at call time (spec §9 "Global SSL config").
type TLSOptions struct {
	CertPath string
	KeyPath  string
	CAPath   string
}

// Enabled reports whether any TLS material was configured.
func (t TLSOptions) Enabled() bool {
	return t.CertPath != "" || t.KeyPath != "" || t.CAPath != ""
}

// SiblingOverride carries the per-sibling-network env overrides.
type SiblingOverride struct {
	NodeURL  string
	JWT      string
	Mnemonic string
}

// Server holds process-wide server configuration.
type Server struct {
	Port            string
	Host            string
	DefaultChainID  int64
	BindAddress     string
}

// Log holds logging configuration.
type Log struct {
	Level string
}

// Config is the root configuration object threaded through the gateway.
type Config struct {
	Server    Server
	Log       Log
	TLS       TLSOptions
	Siblings  map[string]SiblingOverride
}

// Load reads configuration exclusively from environment variables.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("HOST", "0.0.0.0")
	v.SetDefault("DEFAULT_CHAIN_ID", 0)
	v.SetDefault("LOG_LEVEL", "info")

	mustBind(v, "PORT", "HOST", "DEFAULT_CHAIN_ID", "LOG_LEVEL",
		"SSL_CERT_PATH", "SSL_KEY_PATH", "SSL_CA_PATH")

	cfg := &Config{
		Server: Server{
			Port:           v.GetString("PORT"),
			Host:           v.GetString("HOST"),
			DefaultChainID: v.GetInt64("DEFAULT_CHAIN_ID"),
		},
		Log: Log{Level: v.GetString("LOG_LEVEL")},
		TLS: TLSOptions{
			CertPath: v.GetString("SSL_CERT_PATH"),
			KeyPath:  v.GetString("SSL_KEY_PATH"),
			CAPath:   v.GetString("SSL_CA_PATH"),
		},
		Siblings: make(map[string]SiblingOverride, len(SiblingShortNames)),
	}
	cfg.Server.BindAddress = fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)

	for _, short := range SiblingShortNames {
		prefix := strings.ToUpper(short)
		for _, suffix := range []string{"NODE_URL", "JWT_TOKEN", "MNEMONIC"} {
			mustBind(v, prefix+"_"+suffix)
		}
		cfg.Siblings[short] = SiblingOverride{
			NodeURL:  v.GetString(prefix + "_NODE_URL"),
			JWT:      v.GetString(prefix + "_JWT_TOKEN"),
			Mnemonic: v.GetString(prefix + "_MNEMONIC"),
		}
	}

	return cfg, nil
}

func mustBind(v *viper.Viper, keys ...string) {
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			// a BindEnv failure here means a programming error (bad key),
			// not a runtime condition; surfacing it as a panic keeps Load
			// simple for the common case.
			panic(fmt.Sprintf("config: can not bind env key %s: %s", k, err))
		}
	}
}
