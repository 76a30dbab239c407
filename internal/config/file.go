package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

const (
	ServerConfigFile = "skaterslimit_serverconfig.json"
	ClientConfigFile = "skaterslimit_clientconfig.json"
)

// serverFile is the on-disk shape of the server configuration. SentByServer
// and the admin list are runtime values and never persisted.
type serverFile struct {
	MaxNumberOfSkaters  int  `json:"MaxNumberOfSkaters"`
	TeamBalancing       bool `json:"TeamBalancing"`
	TeamBalanceOffset   int  `json:"TeamBalanceOffset"`
	TeamBalancingGoalie bool `json:"TeamBalancingGoalie"`
	LogInfo             bool `json:"LogInfo"`
	AdminBypass         bool `json:"AdminBypass"`
}

// ClientConfig holds settings that only affect the local client.
type ClientConfig struct {
	LogInfo bool `json:"LogInfo"`
}

func DefaultClient() ClientConfig {
	return ClientConfig{LogInfo: true}
}

// ReadServerConfig loads the server configuration from dir, creating the file
// with defaults when it does not exist. The file is rewritten after every load
// so new fields show up with their defaults. The returned value is marked as
// sent by the server and carries adminIDs.
func ReadServerConfig(dir string, adminIDs []string, logger *zap.Logger) (Configuration, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	path := filepath.Join(dir, ServerConfigFile)

	d := Default()
	f := serverFile{
		MaxNumberOfSkaters:  d.MaxSkatersPerTeam,
		TeamBalancing:       d.TeamBalancing,
		TeamBalanceOffset:   d.TeamBalanceOffset,
		TeamBalancingGoalie: d.TeamBalancingGoalie,
		LogInfo:             d.LogInfo,
		AdminBypass:         d.AdminBypass,
	}
	if err := loadOrCreate(path, &f); err != nil {
		return Configuration{}, err
	}

	c := Configuration{
		MaxSkatersPerTeam:   f.MaxNumberOfSkaters,
		TeamBalancing:       f.TeamBalancing,
		TeamBalanceOffset:   f.TeamBalanceOffset,
		TeamBalancingGoalie: f.TeamBalancingGoalie,
		LogInfo:             f.LogInfo,
		AdminBypass:         f.AdminBypass,
		SentByServer:        true,
		AdminIDs:            append([]string{}, adminIDs...),
	}
	if err := c.Validate(); err != nil {
		return Configuration{}, fmt.Errorf("%s: %w", path, err)
	}

	logger.Info("Loaded server config", zap.String("path", path), zap.Any("config", f))
	return c, nil
}

// ReadClientConfig is ReadServerConfig for the client-only settings file.
func ReadClientConfig(dir string) (ClientConfig, error) {
	c := DefaultClient()
	if err := loadOrCreate(filepath.Join(dir, ClientConfigFile), &c); err != nil {
		return ClientConfig{}, err
	}
	return c, nil
}

// loadOrCreate decodes path into v when the file exists and then writes v
// back in normalized form.
func loadOrCreate(path string, v any) error {
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, v); err != nil {
			return fmt.Errorf("parsing %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return fmt.Errorf("reading %s: %w", path, err)
	}

	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
