package memory

import (
	"context"
	"testing"

	"github.com/clubcms/standings-engine/internal/domain/standings"
)

func entry(kind standings.SubjectKind, id string, points int) standings.TableEntry {
	return standings.TableEntry{
		LeagueID: "liga-1",
		Season:   "2025-26",
		Subject:  standings.SubjectRef{Kind: kind, ID: id, Name: id},
		Points:   points,
	}
}

func TestStandingsRepository_ReplaceIsScopedToLeagueSeason(t *testing.T) {
	t.Parallel()

	repo := NewStandingsRepository()
	ctx := context.Background()

	repo.Seed("liga-1", "2025-26", []standings.TableEntry{entry(standings.SubjectClub, "club-a", 3)})
	repo.Seed("liga-2", "2025-26", []standings.TableEntry{entry(standings.SubjectClub, "club-x", 6)})

	if err := repo.ReplaceByLeagueSeason(ctx, "liga-1", "2025-26", []standings.TableEntry{
		entry(standings.SubjectClub, "club-b", 9),
	}); err != nil {
		t.Fatalf("replace: %v", err)
	}

	replaced, _ := repo.ListByLeagueSeason(ctx, "liga-1", "2025-26")
	if len(replaced) != 1 || replaced[0].Subject.ID != "club-b" {
		t.Fatalf("unexpected entries after replace: %v", replaced)
	}

	untouched, _ := repo.ListByLeagueSeason(ctx, "liga-2", "2025-26")
	if len(untouched) != 1 || untouched[0].Subject.ID != "club-x" {
		t.Fatalf("other league was modified: %v", untouched)
	}
}

func TestStandingsRepository_ListCopiesEntries(t *testing.T) {
	t.Parallel()

	repo := NewStandingsRepository()
	ctx := context.Background()
	repo.Seed("liga-1", "2025-26", []standings.TableEntry{entry(standings.SubjectClub, "club-a", 3)})

	first, _ := repo.ListByLeagueSeason(ctx, "liga-1", "2025-26")
	first[0].Points = 99

	second, _ := repo.ListByLeagueSeason(ctx, "liga-1", "2025-26")
	if second[0].Points != 3 {
		t.Fatalf("caller mutation leaked into the store: %+v", second[0])
	}
}

func TestStandingsRepository_ReassignSubject(t *testing.T) {
	t.Parallel()

	repo := NewStandingsRepository()
	ctx := context.Background()
	repo.Seed("liga-1", "2025-26", []standings.TableEntry{
		entry(standings.SubjectTeam, "team-a-legacy", 12),
		entry(standings.SubjectClub, "club-b", 7),
	})

	from := standings.SubjectRef{Kind: standings.SubjectTeam, ID: "team-a-legacy", Name: "team-a-legacy"}
	to := standings.SubjectRef{Kind: standings.SubjectClub, ID: "club-a", Name: "FC Adler"}
	if err := repo.ReassignSubject(ctx, "liga-1", "2025-26", from, to); err != nil {
		t.Fatalf("reassign: %v", err)
	}

	entries, _ := repo.ListByLeagueSeason(ctx, "liga-1", "2025-26")
	var found bool
	for _, e := range entries {
		if e.Subject.Key() == "club:club-a" {
			found = true
			if e.Points != 12 {
				t.Fatalf("stats must move with the subject: %+v", e)
			}
			if e.DisplayName != "FC Adler" {
				t.Fatalf("display name must follow the new subject: %+v", e)
			}
		}
		if e.Subject.Key() == "team:team-a-legacy" {
			t.Fatalf("old subject still present: %+v", e)
		}
	}
	if !found {
		t.Fatalf("reassigned entry missing: %v", entries)
	}
}
