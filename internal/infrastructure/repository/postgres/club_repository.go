package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/clubcms/standings-engine/internal/domain/club"
	qb "github.com/clubcms/standings-engine/internal/platform/querybuilder"
)

type clubTableModel struct {
	ID          string         `db:"id"`
	Name        string         `db:"name"`
	ShortName   sql.NullString `db:"short_name"`
	LegacySlots []byte         `db:"legacy_slots"`
	CreatedAt   time.Time      `db:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at"`
	DeletedAt   *time.Time     `db:"deleted_at"`
}

type ClubRepository struct {
	db *sqlx.DB
}

func NewClubRepository(db *sqlx.DB) *ClubRepository {
	return &ClubRepository{db: db}
}

func (r *ClubRepository) List(ctx context.Context) ([]club.Club, error) {
	query, args, err := qb.Select("*").From("clubs").
		Where(qb.IsNull("deleted_at")).
		OrderBy("name", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list clubs query: %w", err)
	}

	var rows []clubTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list clubs: %w", err)
	}

	out := make([]club.Club, 0, len(rows))
	for _, row := range rows {
		item, err := clubFromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, nil
}

func (r *ClubRepository) GetByID(ctx context.Context, clubID string) (club.Club, bool, error) {
	query, args, err := qb.Select("*").From("clubs").
		Where(
			qb.Eq("id", clubID),
			qb.IsNull("deleted_at"),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return club.Club{}, false, fmt.Errorf("build get club query: %w", err)
	}

	var row clubTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return club.Club{}, false, nil
		}
		return club.Club{}, false, fmt.Errorf("get club %s: %w", clubID, err)
	}

	item, err := clubFromRow(row)
	if err != nil {
		return club.Club{}, false, err
	}
	return item, true, nil
}

func clubFromRow(row clubTableModel) (club.Club, error) {
	var slots []club.LegacySlot
	if err := decodePayload(row.LegacySlots, &slots); err != nil {
		return club.Club{}, fmt.Errorf("decode legacy slots for club %s: %w", row.ID, err)
	}

	return club.Club{
		ID:          row.ID,
		Name:        row.Name,
		ShortName:   row.ShortName.String,
		LegacySlots: slots,
	}, nil
}
