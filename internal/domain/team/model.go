package team

import "fmt"

// Team is a legacy, team-centric standings subject. It survives only until a
// club declares a legacy slot for it.
type Team struct {
	ID   string
	Name string
	Slot string
}

func (t Team) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("team id is required")
	}
	if t.Name == "" {
		return fmt.Errorf("team name is required")
	}

	return nil
}
