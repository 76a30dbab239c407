package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"go.uber.org/multierr"
)

var ErrNegativeMaxSkaters = errors.New("MaxNumberOfSkaters must be >= 0")

// Configuration holds the enforcement parameters. The server builds one at
// startup and never changes it; clients receive a copy over the wire.
type Configuration struct {
	// Skaters allowed on the ice at once per team.
	MaxSkatersPerTeam int `json:"MaxNumberOfSkaters"`
	// Cap each team relative to the other team's skater count.
	TeamBalancing bool `json:"TeamBalancing"`
	// Extra skaters a team may have over the other when balancing is active.
	TeamBalanceOffset int `json:"TeamBalanceOffset"`
	// Balance teams only while exactly one team has a goalie.
	TeamBalancingGoalie bool `json:"TeamBalancingGoalie"`
	LogInfo             bool `json:"LogInfo"`
	// True once this value came from the server. False means no enforcement.
	SentByServer bool `json:"SentByServer"`
	// Admins skip the skater cap.
	AdminBypass bool     `json:"AdminBypass"`
	AdminIDs    []string `json:"AdminSteamIds"`
}

// Default is the un-delivered configuration a client starts with.
func Default() Configuration {
	return Configuration{
		MaxSkatersPerTeam:   5,
		TeamBalancing:       false,
		TeamBalanceOffset:   0,
		TeamBalancingGoalie: false,
		LogInfo:             true,
		SentByServer:        false,
		AdminBypass:         true,
	}
}

func (c Configuration) IsAdmin(id string) bool {
	return slices.Contains(c.AdminIDs, id)
}

func (c Configuration) Validate() error {
	var err error
	if c.MaxSkatersPerTeam < 0 {
		err = multierr.Append(err, ErrNegativeMaxSkaters)
	}
	for i, id := range c.AdminIDs {
		if id == "" {
			err = multierr.Append(err, fmt.Errorf("AdminSteamIds[%d] is empty", i))
		}
	}
	return err
}

// Clone returns a copy that shares no memory with c.
func (c Configuration) Clone() Configuration {
	c.AdminIDs = slices.Clone(c.AdminIDs)
	return c
}

type DeserializationError struct {
	Err error
}

func (e *DeserializationError) Error() string {
	return fmt.Sprintf("invalid configuration: %v", e.Err)
}

func (e *DeserializationError) Unwrap() error { return e.Err }

func (c Configuration) Serialize() (string, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("serializing configuration: %w", err)
	}
	return string(b), nil
}

// Deserialize parses a serialized Configuration. Fields absent from the JSON
// keep their Default values.
func Deserialize(data string) (Configuration, error) {
	c := Default()
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return Configuration{}, &DeserializationError{Err: err}
	}
	if err := c.Validate(); err != nil {
		return Configuration{}, &DeserializationError{Err: err}
	}
	return c, nil
}
