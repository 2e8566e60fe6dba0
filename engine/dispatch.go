package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"github.com/dsagrinders/dsagrinders/database"
	"github.com/dsagrinders/dsagrinders/notify/email"
	"github.com/dsagrinders/dsagrinders/roast"
	"github.com/dsagrinders/dsagrinders/timeslot"
)

// DispatchResult summarizes one dispatcher run.
type DispatchResult struct {
	RunID        string         `json:"runId"`
	Slot         string         `json:"slot"`
	Skipped      string         `json:"skipped,omitempty"`
	Matched      int            `json:"matched"`
	ByIntensity  map[string]int `json:"byIntensity,omitempty"`
	EmailsSent   int            `json:"emailsSent"`
	WhatsappSent int            `json:"whatsappSent"`
	Errors       []string       `json:"errors,omitempty"`
	StartedAt    time.Time      `json:"startedAt"`
	Duration     string         `json:"duration"`
}

// Dispatch runs one roast dispatch pass. With an empty forceSlot the
// current half-hour slot in the active zone is used, otherwise the given
// "HH:MM-HH:MM" window. Users whose daily grind time falls inside the slot
// get their stats refreshed and a roast on each of their enabled channels.
func (e *Engine) Dispatch(ctx context.Context, forceSlot string) (*DispatchResult, error) {
	started := e.now()
	result := &DispatchResult{
		RunID:     uuid.NewString(),
		StartedAt: started.UTC(),
	}
	defer func() {
		result.Duration = time.Since(started).Round(time.Millisecond).String()
	}()

	settings, err := e.db.GetSettings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}

	loc := e.dispatchLocation(settings)
	slot, err := e.resolveSlot(forceSlot, loc)
	if err != nil {
		return nil, err
	}
	result.Slot = slot.String()

	if !settings.AutomationEnabled {
		result.Skipped = "automation disabled"
		log.Info("Roast dispatch skipped, automation disabled", "run_id", result.RunID)
		return result, nil
	}

	// Messages are pre-generated by the roast-pregen job. A set from
	// another day means the job did not run, which is a no-op, not an
	// error.
	today := started.In(loc).Format("2006-01-02")
	roasts, err := e.db.GetRoastMessages(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("failed to load roast messages: %w", err)
	}
	if len(roasts) == 0 {
		result.Skipped = fmt.Sprintf("no roast messages generated for %s", today)
		log.Info("Roast dispatch skipped, no messages for today",
			"run_id", result.RunID, "date", today)
		return result, nil
	}

	users, err := e.db.ListEligibleUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	matched := e.usersInSlot(users, slot)
	result.Matched = len(matched)
	if len(matched) == 0 {
		log.Debug("No users in slot", "run_id", result.RunID, "slot", result.Slot)
		return result, nil
	}

	counters := e.sendBatches(ctx, matched, roasts, settings, result)

	if counters.Emails > 0 || counters.Whatsapp > 0 {
		if err := e.db.AddSentCounters(ctx, counters); err != nil {
			log.Error("Failed to update sent counters", "run_id", result.RunID, "error", err)
			result.Errors = appendError(result.Errors, e.cfg.Dispatch.MaxErrors,
				fmt.Sprintf("counters: %v", err))
		}
	}

	result.EmailsSent = counters.Emails
	result.WhatsappSent = counters.Whatsapp
	return result, nil
}

// SlotPreview is the dry-run view of a dispatch slot.
type SlotPreview struct {
	Slot  string   `json:"slot"`
	Users []string `json:"users"`
}

// PreviewSlot reports which users the given (or current) slot would roast,
// without sending anything.
func (e *Engine) PreviewSlot(ctx context.Context, forceSlot string) (*SlotPreview, error) {
	loc := e.loc
	if settings, err := e.db.GetSettings(ctx); err == nil {
		loc = e.dispatchLocation(settings)
	}

	slot, err := e.resolveSlot(forceSlot, loc)
	if err != nil {
		return nil, err
	}

	users, err := e.db.ListEligibleUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	preview := &SlotPreview{Slot: slot.String(), Users: make([]string, 0)}
	for _, user := range e.usersInSlot(users, slot) {
		preview.Users = append(preview.Users, user.LeetcodeUsername)
	}
	return preview, nil
}

// dispatchLocation resolves the zone slots are computed in. The settings
// row may override the configured zone.
func (e *Engine) dispatchLocation(settings *database.Settings) *time.Location {
	if settings.Timezone == "" {
		return e.loc
	}
	loc, err := time.LoadLocation(settings.Timezone)
	if err != nil {
		log.Warn("Invalid settings timezone, using configured zone",
			"timezone", settings.Timezone)
		return e.loc
	}
	return loc
}

func (e *Engine) resolveSlot(forceSlot string, loc *time.Location) (timeslot.Slot, error) {
	if forceSlot == "" {
		return timeslot.Current(e.now().In(loc)), nil
	}
	slot, err := timeslot.Parse(forceSlot)
	if err != nil {
		return timeslot.Slot{}, fmt.Errorf("invalid slot override: %w", err)
	}
	return slot, nil
}

// usersInSlot filters users whose grind time falls inside the slot. Users
// without a parseable grind time are skipped.
func (e *Engine) usersInSlot(users []database.User, slot timeslot.Slot) []database.User {
	matched := make([]database.User, 0)
	for _, user := range users {
		if user.DailyGrindTime == "" {
			continue
		}
		minutes, err := timeslot.ParseClock(user.DailyGrindTime)
		if err != nil {
			log.Warn("Skipping user with invalid grind time",
				"user", user.LeetcodeUsername, "grind_time", user.DailyGrindTime)
			continue
		}
		if slot.Contains(minutes) {
			matched = append(matched, user)
		}
	}
	return matched
}

// sendBatches delivers roasts in fixed-size batches with a pause between
// them so the SMTP server and gateway are not hammered. Failures never
// abort the run.
func (e *Engine) sendBatches(
	ctx context.Context,
	users []database.User,
	roasts map[string]database.RoastMessage,
	settings *database.Settings,
	result *DispatchResult,
) database.SentCounters {
	var (
		counters database.SentCounters
		mu       sync.Mutex
	)

	byIntensity := lo.GroupBy(users, func(u database.User) roast.Intensity {
		return u.Intensity()
	})
	result.ByIntensity = make(map[string]int, len(byIntensity))
	for intensity, group := range byIntensity {
		result.ByIntensity[string(intensity)] = len(group)
		log.Debug("Dispatching intensity group",
			"run_id", result.RunID, "intensity", intensity, "users", len(group))
	}

	batches := lo.Chunk(users, e.cfg.Dispatch.BatchSize)
	for i, batch := range batches {
		var wg sync.WaitGroup
		for _, user := range batch {
			template, ok := roasts[string(user.Intensity())]
			if !ok {
				mu.Lock()
				result.Errors = appendError(result.Errors, e.cfg.Dispatch.MaxErrors,
					fmt.Sprintf("%s: no roast for intensity %s", user.LeetcodeUsername, user.Intensity()))
				mu.Unlock()
				continue
			}

			wg.Add(1)
			go func(user database.User) {
				defer wg.Done()
				sent, errs := e.sendToUser(ctx, user, template.FullMessage, settings)
				mu.Lock()
				counters.Emails += sent.Emails
				counters.Whatsapp += sent.Whatsapp
				for _, err := range errs {
					result.Errors = appendError(result.Errors, e.cfg.Dispatch.MaxErrors, err)
				}
				mu.Unlock()
			}(user)
		}
		wg.Wait()

		if i < len(batches)-1 {
			select {
			case <-time.After(e.cfg.Dispatch.BatchDelayDuration()):
			case <-ctx.Done():
				return counters
			}
		}
	}

	return counters
}

// sendToUser refreshes the user's daily stat and then delivers the
// personalized roast on every channel enabled both globally and for the
// user. A failed refresh is captured but never blocks the sends.
func (e *Engine) sendToUser(
	ctx context.Context,
	user database.User,
	template string,
	settings *database.Settings,
) (database.SentCounters, []string) {
	var (
		counters database.SentCounters
		errs     []string
	)

	stat, err := e.UpdateDailyStats(ctx, &user)
	if err != nil {
		log.Warn("Stats refresh failed before roast",
			"user", user.LeetcodeUsername, "error", err)
		errs = append(errs, fmt.Sprintf("stats %s: %v", user.LeetcodeUsername, err))
		if stored, statErr := e.stats.GetLatest(ctx, user.ID); statErr == nil {
			stat = stored
		}
	}

	message := roast.Personalize(template, user.Name)

	if e.email.Enabled() && settings.EmailAutomationEnabled && user.EmailEnabled && user.Email != "" {
		notification := email.RoastNotification{
			UserEmail: user.Email,
			UserName:  roast.FirstName(user.Name),
			Message:   message,
			ServerURL: e.cfg.ServerURL,
		}
		if stat != nil {
			notification.TotalSolved = stat.Total
			notification.TodayPoints = stat.TodayPoints
			notification.Ranking = stat.Ranking
		}

		if err := e.email.SendRoast(notification); err != nil {
			errs = append(errs, fmt.Sprintf("email %s: %v", user.Email, err))
		} else {
			counters.Emails++
		}
	}

	if e.whatsapp.Enabled() && settings.WhatsappAutomationEnabled && user.WhatsappEnabled && user.PhoneNumber != "" {
		if err := e.whatsapp.SendRoast(ctx, user.PhoneNumber, message); err != nil {
			errs = append(errs, fmt.Sprintf("whatsapp %s: %v", user.LeetcodeUsername, err))
		} else {
			counters.Whatsapp++
		}
	}

	return counters, errs
}

// appendError adds an error string unless the cap is reached.
func appendError(errs []string, maxErrors int, msg string) []string {
	if len(errs) >= maxErrors {
		return errs
	}
	return append(errs, msg)
}
