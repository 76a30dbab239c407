package client

import (
	"errors"
	"fmt"

	"github.com/DoyleJ11/skaters-limit/internal/engine"
	"go.uber.org/zap"
)

const goaliePositionName = "G"

// DenialMessage is the chat text for a denied claim.
func DenialMessage(v engine.Verdict) string {
	if v.BalanceModeActive {
		if v.OwnTeamGoalieAvailable {
			return fmt.Sprintf("Teams are unbalanced (%d). Go goalie or switch teams.", v.EffectiveCap)
		}
		return fmt.Sprintf("Teams are unbalanced (%d). Switch teams.", v.EffectiveCap)
	}
	if v.OwnTeamGoalieAvailable {
		return fmt.Sprintf("Team is full (%d). Only %s position is available.", v.EffectiveCap, goaliePositionName)
	}
	return fmt.Sprintf("Team is full (%d). Switch teams.", v.EffectiveCap)
}

// AuthorizeClaim must be called by the host before it commits a position
// claim; the claim goes through only when it returns true. A denial is
// reported to the player through the Notifier.
func (c *Client) AuthorizeClaim(pos engine.Position) bool {
	cfg := c.Config()
	if !cfg.SentByServer {
		return true
	}

	roster, err := c.opts.Roster.Snapshot()
	if err != nil {
		c.log.Error("Failed to read roster, allowing claim", zap.Error(err))
		return true
	}

	var identity string
	if c.opts.Identity != nil {
		identity = c.opts.Identity.LocalIdentity()
	}

	v, err := engine.Decide(engine.Request{Team: pos.Team, Role: pos.Role, RequesterID: identity}, roster, cfg)
	if errors.Is(err, engine.ErrUnknownTeam) {
		c.log.Warn("No team assigned to the requested position", zap.String("team", string(pos.Team)))
	}

	c.log.Info("Position claim",
		zap.String("team", string(pos.Team)),
		zap.String("role", string(pos.Role)),
		zap.String("reason", string(v.Reason)),
		zap.Bool("allowed", v.Allowed),
		zap.Bool("teamBalancing", v.BalanceModeActive),
		zap.Int("skaters", v.OwnCount),
		zap.Int("opponentSkaters", v.OpponentCount),
		zap.Int("cap", v.EffectiveCap))

	if !v.Allowed && c.opts.Notifier != nil {
		c.opts.Notifier.Notify(DenialMessage(v))
	}
	return v.Allowed
}
