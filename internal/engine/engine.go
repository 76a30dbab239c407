package engine

import (
	"errors"

	"github.com/DoyleJ11/skaters-limit/internal/config"
)

var ErrUnknownTeam = errors.New("unknown team")

type Team string

const (
	TeamBlue Team = "blue"
	TeamRed  Team = "red"
)

type Role string

const (
	RoleAttacker Role = "attacker"
	RoleGoalie   Role = "goalie"
)

// Position is one claimable slot on a team.
type Position struct {
	Team    Team   `json:"team"`
	Role    Role   `json:"role"`
	Claimed bool   `json:"claimed"`
	OwnerID string `json:"owner_id,omitempty"`
}

// Roster lists the positions of each team, in host order.
type Roster map[Team][]Position

type Request struct {
	Team        Team
	Role        Role
	RequesterID string
}

type Reason string

const (
	ReasonNotEnforced Reason = "not_enforced"
	ReasonGoalie      Reason = "goalie"
	ReasonAdminBypass Reason = "admin_bypass"
	ReasonUnknownTeam Reason = "unknown_team"
	ReasonUnderCap    Reason = "under_cap"
	ReasonTeamFull    Reason = "team_full"
	ReasonUnbalanced  Reason = "unbalanced"
)

type Verdict struct {
	Allowed bool
	Reason  Reason
	// Set when the cap was computed from the other team's count.
	BalanceModeActive bool
	// Set on denial when the requester's team has no claimed goalie.
	OwnTeamGoalieAvailable bool
	EffectiveCap           int
	OwnCount               int
	OpponentCount          int
}

func allow(reason Reason) Verdict {
	return Verdict{Allowed: true, Reason: reason}
}

// Decide tells whether req may claim its position. It never blocks a player
// on missing or malformed input: an unknown team is allowed and reported
// through ErrUnknownTeam so the caller can log it.
func Decide(req Request, roster Roster, cfg config.Configuration) (Verdict, error) {
	// No config from the server (mod missing there?), nothing to enforce.
	if !cfg.SentByServer {
		return allow(ReasonNotEnforced), nil
	}

	if req.Role == RoleGoalie {
		return allow(ReasonGoalie), nil
	}

	if cfg.AdminBypass && cfg.IsAdmin(req.RequesterID) {
		return allow(ReasonAdminBypass), nil
	}

	balancing := BalanceModeActive(roster, cfg)

	opponent, ok := Opponent(req.Team)
	if !ok {
		return allow(ReasonUnknownTeam), ErrUnknownTeam
	}

	own := roster.SkaterCount(req.Team)
	other := roster.SkaterCount(opponent)
	limit := effectiveCap(other, balancing, cfg)

	v := Verdict{
		Allowed:           true,
		Reason:            ReasonUnderCap,
		BalanceModeActive: balancing,
		EffectiveCap:      limit,
		OwnCount:          own,
		OpponentCount:     other,
	}

	if own >= limit {
		v.Allowed = false
		v.Reason = ReasonTeamFull
		if balancing {
			v.Reason = ReasonUnbalanced
		}
		v.OwnTeamGoalieAvailable = !roster.HasGoalie(req.Team)
	}
	return v, nil
}

// BalanceModeActive reports whether caps follow the other team's count.
// Goalie-triggered balancing only applies when exactly one team has a goalie.
func BalanceModeActive(roster Roster, cfg config.Configuration) bool {
	if cfg.TeamBalancing {
		return true
	}
	if !cfg.TeamBalancingGoalie {
		return false
	}
	return roster.HasGoalie(TeamBlue) != roster.HasGoalie(TeamRed)
}

// EffectiveCap is the skater cap that applies to team for this roster.
func EffectiveCap(team Team, roster Roster, cfg config.Configuration) (int, error) {
	opponent, ok := Opponent(team)
	if !ok {
		return cfg.MaxSkatersPerTeam, ErrUnknownTeam
	}
	return effectiveCap(roster.SkaterCount(opponent), BalanceModeActive(roster, cfg), cfg), nil
}

// Balancing can only tighten the cap.
func effectiveCap(opponentCount int, balancing bool, cfg config.Configuration) int {
	limit := cfg.MaxSkatersPerTeam
	if balancing {
		candidate := opponentCount + cfg.TeamBalanceOffset + 1
		if candidate < limit {
			limit = candidate
		}
	}
	return limit
}
