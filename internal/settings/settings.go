// Package settings reads process settings for the server and client binaries.
// Enforcement parameters are not here; they live in the JSON config files.
package settings

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const envVarPrefix = "SKATERSLIMIT"

// BuildVersion is the build id announced to clients and compared against the
// server's. Overridden at link time with -ldflags "-X ...settings.BuildVersion=".
var BuildVersion = "1.0.3"

type Settings struct {
	// Environment name, "production" switches to JSON logs.
	AppEnv string `mapstructure:"app_env"`
	// Address the HTTP server listens on.
	ListenAddr string `mapstructure:"listen_addr"`
	// Directory holding the JSON config files.
	ConfigDir string `mapstructure:"config_dir"`
	// Build id announced to or expected from the other side.
	BuildID string `mapstructure:"build_id"`
	// Identities allowed to bypass the skater cap (server only).
	AdminIDs []string `mapstructure:"admin_ids"`
	// Websocket URL of the server room (client only).
	ServerURL string `mapstructure:"server_url"`
	// Local identity compared against the admin list (client only).
	Identity string `mapstructure:"identity"`
	// Roster snapshot file read on every claim (client only).
	RosterFile string `mapstructure:"roster_file"`
	// "first" or "latest" (client only).
	Adoption string `mapstructure:"adoption"`
}

// Flags registers the command line flags Load understands.
func Flags(name string) *pflag.FlagSet {
	set := pflag.NewFlagSet(name, pflag.ContinueOnError)
	set.String("listen-addr", ":8080", "address the HTTP server listens on")
	set.String("config-dir", ".", "directory holding the JSON config files")
	set.String("build-id", BuildVersion, "build id announced to or expected from the other side")
	set.StringSlice("admin-ids", nil, "identities allowed to bypass the skater cap")
	set.String("server-url", "ws://localhost:8080/ws", "websocket URL of the server room")
	set.String("identity", "", "local player identity")
	set.String("roster-file", "roster.json", "roster snapshot file")
	set.String("adoption", "first", "config adoption policy: first or latest")
	set.String("app-env", "development", "environment name")
	return set
}

// Load reads .env (when present), then SKATERSLIMIT_* environment variables,
// then flags. Later sources win.
func Load(flags *pflag.FlagSet, envFiles ...string) (Settings, error) {
	if err := godotenv.Load(envFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Settings{}, fmt.Errorf("loading env file: %w", err)
	}

	v := viper.New()
	v.SetEnvPrefix(envVarPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		flags.VisitAll(func(f *pflag.Flag) {
			key := strings.ReplaceAll(f.Name, "-", "_")
			v.SetDefault(key, f.DefValue)
			if f.Changed {
				v.Set(key, f.Value.String())
			}
			_ = v.BindEnv(key)
		})
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decoding settings: %w", err)
	}
	s.AdminIDs = splitList(v.GetString("admin_ids"))
	if s.BuildID == "" {
		s.BuildID = BuildVersion
	}
	return s, nil
}

// splitList accepts "a,b", "[a,b]" (pflag slice rendering) and blanks.
func splitList(raw string) []string {
	raw = strings.Trim(strings.TrimSpace(raw), "[]")
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
