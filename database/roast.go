package database

import (
	"context"

	"github.com/charmbracelet/log"
	"gorm.io/gorm/clause"
)

// GetRoastMessages returns the pre-generated messages for the given day,
// keyed by intensity. An empty map means no set was generated yet.
func (c *Client) GetRoastMessages(ctx context.Context, date string) (map[string]RoastMessage, error) {
	var rows []RoastMessage
	if err := c.db.WithContext(ctx).Where("date = ?", date).Find(&rows).Error; err != nil {
		log.Error("failed to get roast messages", "error", err)
		return nil, err
	}

	messages := make(map[string]RoastMessage, len(rows))
	for _, row := range rows {
		messages[string(row.Intensity)] = row
	}
	return messages, nil
}

// SaveRoastMessages upserts a day's message set. Re-running generation for
// the same day replaces the texts instead of duplicating rows.
func (c *Client) SaveRoastMessages(ctx context.Context, messages []RoastMessage) error {
	if len(messages) == 0 {
		return nil
	}
	err := c.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "date"}, {Name: "intensity"}},
			DoUpdates: clause.AssignmentColumns([]string{"full_message", "updated_at"}),
		}).
		Create(&messages).Error
	if err != nil {
		log.Error("failed to save roast messages", "error", err)
	}
	return err
}
