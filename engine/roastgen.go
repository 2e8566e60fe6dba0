package engine

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/dsagrinders/dsagrinders/database"
	"github.com/dsagrinders/dsagrinders/roast"
)

// GenerateRoasts returns the day's roast message per intensity, generating
// and persisting any that do not exist yet. Messages keep the name
// placeholder, personalization happens at send time.
func (e *Engine) GenerateRoasts(ctx context.Context, date string) (map[string]database.RoastMessage, error) {
	existing, err := e.db.GetRoastMessages(ctx, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load roast messages: %w", err)
	}

	missing := make([]database.RoastMessage, 0)
	for _, intensity := range roast.Intensities {
		if _, ok := existing[string(intensity)]; ok {
			continue
		}
		msg := database.RoastMessage{
			Date:        date,
			Intensity:   intensity,
			FullMessage: roast.Pick(intensity),
		}
		existing[string(intensity)] = msg
		missing = append(missing, msg)
	}

	if len(missing) > 0 {
		if err := e.db.SaveRoastMessages(ctx, missing); err != nil {
			return nil, fmt.Errorf("failed to save roast messages: %w", err)
		}
		log.Info("Generated roast messages", "date", date, "count", len(missing))
	}

	return existing, nil
}
