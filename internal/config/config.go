package config

import "time"

// Config holds the full configuration surface. Everything is optional and
// carries a default; credentials default to empty and must be provided for
// a working deployment.
type Config struct {
	// Web endpoint. The listen scheme and port derive from the base URL.
	BaseURL     string `mapstructure:"base_url" yaml:"base_url"`
	TLSCAFile   string `mapstructure:"tls_ca_file" yaml:"tls_ca_file"`
	TLSCertFile string `mapstructure:"tls_cert_file" yaml:"tls_cert_file"`
	TLSKeyFile  string `mapstructure:"tls_key_file" yaml:"tls_key_file"`

	// Battle.net application.
	Region       string `mapstructure:"battlenet_region" yaml:"battlenet_region"`
	ClientID     string `mapstructure:"battlenet_client_id" yaml:"battlenet_client_id"`
	ClientSecret string `mapstructure:"battlenet_client_secret" yaml:"battlenet_client_secret"`

	// TeamSpeak ServerQuery link.
	TSHost        string `mapstructure:"teamspeak_host" yaml:"teamspeak_host"`
	TSQueryPort   int    `mapstructure:"teamspeak_query_port" yaml:"teamspeak_query_port"`
	TSUsername    string `mapstructure:"teamspeak_username" yaml:"teamspeak_username"`
	TSPassword    string `mapstructure:"teamspeak_password" yaml:"teamspeak_password"`
	BotNickname   string `mapstructure:"bot_nickname" yaml:"bot_nickname"`
	VirtualServer int    `mapstructure:"virtual_server" yaml:"virtual_server"`

	// Allow-list and privilege synchronization.
	Realms         []string `mapstructure:"realms" yaml:"realms"`
	GuildName      string   `mapstructure:"guild_name" yaml:"guild_name"`
	PrivilegeGroup string   `mapstructure:"privilege_group" yaml:"privilege_group"`

	// Behavior knobs.
	EvictOnDisconnect bool          `mapstructure:"evict_on_disconnect" yaml:"evict_on_disconnect"`
	KeepAliveInterval time.Duration `mapstructure:"keep_alive_interval" yaml:"keep_alive_interval"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`

	DatabasePath string `mapstructure:"database_path" yaml:"database_path"`
	LogLevel     string `mapstructure:"log_level" yaml:"log_level"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		BaseURL:           "http://localhost:3000",
		Region:            "us",
		TSQueryPort:       10011,
		TSUsername:        "serveradmin",
		BotNickname:       "GuildGate",
		VirtualServer:     1,
		KeepAliveInterval: 5 * time.Minute,
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   5 * time.Second,
		DatabasePath:      "guildgate.db",
		LogLevel:          "info",
	}
}
