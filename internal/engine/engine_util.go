package engine

func NewEmptyRoster() Roster {
	return Roster{TeamBlue: {}, TeamRed: {}}
}

// Opponent returns the other team, false for anything but blue or red.
func Opponent(team Team) (Team, bool) {
	switch team {
	case TeamBlue:
		return TeamRed, true
	case TeamRed:
		return TeamBlue, true
	default:
		return "", false
	}
}

func ParseTeam(team string) (Team, bool) {
	switch team {
	case "blue":
		return TeamBlue, true
	case "red":
		return TeamRed, true
	default:
		return "", false
	}
}

func (p Position) isClaimed(role Role) bool {
	return p.Role == role && p.Claimed
}

// SkaterCount is the number of claimed attacker positions on team.
func (r Roster) SkaterCount(team Team) int {
	n := 0
	for _, p := range r[team] {
		if p.isClaimed(RoleAttacker) {
			n++
		}
	}
	return n
}

func (r Roster) HasGoalie(team Team) bool {
	for _, p := range r[team] {
		if p.isClaimed(RoleGoalie) {
			return true
		}
	}
	return false
}
