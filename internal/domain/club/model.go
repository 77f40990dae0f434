package club

import "fmt"

// LegacySlot declares a club's equivalence to a historical team identifier,
// e.g. the "first" or "second" team it absorbed during the migration.
type LegacySlot struct {
	TeamID string `json:"team_id"`
	Slot   string `json:"slot"`
}

// Club is a standings subject in the club-centric representation.
type Club struct {
	ID          string
	Name        string
	ShortName   string
	LegacySlots []LegacySlot
}

func (c Club) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("club id is required")
	}
	if c.Name == "" {
		return fmt.Errorf("club name is required")
	}

	return nil
}

// SupersedesTeam reports whether this club declares a legacy slot for teamID.
func (c Club) SupersedesTeam(teamID string) bool {
	if teamID == "" {
		return false
	}
	for _, slot := range c.LegacySlots {
		if slot.TeamID == teamID {
			return true
		}
	}
	return false
}
