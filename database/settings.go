package database

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"
)

// ErrNoSettings is returned when the automation settings row doesn't exist.
var ErrNoSettings = errors.New("automation settings not found")

// GetSettings returns the singleton automation settings row.
func (c *Client) GetSettings(ctx context.Context) (*Settings, error) {
	var s Settings
	if err := c.db.WithContext(ctx).First(&s).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoSettings
		}
		log.Error("failed to get settings", "error", err)
		return nil, err
	}
	return &s, nil
}

// SaveSettings persists the settings row, creating it if necessary.
func (c *Client) SaveSettings(ctx context.Context, s *Settings) error {
	if err := c.db.WithContext(ctx).Save(s).Error; err != nil {
		log.Error("failed to save settings", "error", err)
		return err
	}
	return nil
}

// AddSentCounters folds a dispatch run's delivery tally into the settings
// row. The read-modify-write happens in a single transaction so concurrent
// runs never lose counts.
func (c *Client) AddSentCounters(ctx context.Context, counters SentCounters) error {
	return c.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var s Settings
		if err := tx.First(&s).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNoSettings
			}
			return err
		}

		now := time.Now()
		s.EmailsSentToday += counters.Emails
		s.WhatsappSentToday += counters.Whatsapp
		if counters.Emails > 0 {
			s.LastEmailSent = &now
		}
		if counters.Whatsapp > 0 {
			s.LastWhatsappSent = &now
		}

		return tx.Save(&s).Error
	})
}

// ResetSentCounters zeroes the sent-today counters at the day boundary.
func (c *Client) ResetSentCounters(ctx context.Context) error {
	err := c.db.WithContext(ctx).
		Model(&Settings{}).
		Where("1 = 1").
		Updates(map[string]any{"emails_sent_today": 0, "whatsapp_sent_today": 0}).Error
	if err != nil {
		log.Error("failed to reset sent counters", "error", err)
	}
	return err
}
