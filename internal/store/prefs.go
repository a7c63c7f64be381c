package store

import (
	"database/sql"
	"fmt"
)

// GetEnergyProfile returns the user's energy profile, or the default
// profile if the user never configured one.
func (s *queries) GetEnergyProfile(userID int64) (*EnergyProfile, error) {
	p := &EnergyProfile{UserID: userID}
	err := s.q.QueryRow(
		`SELECT early_morning, mid_morning, late_morning, early_afternoon, late_afternoon,
			evening, night, monday_mod, tuesday_mod, wednesday_mod, thursday_mod,
			friday_mod, saturday_mod, sunday_mod
		 FROM energy_profiles WHERE user_id = ?`, userID,
	).Scan(&p.EarlyMorning, &p.MidMorning, &p.LateMorning, &p.EarlyAfternoon,
		&p.LateAfternoon, &p.Evening, &p.Night, &p.MondayMod, &p.TuesdayMod,
		&p.WednesdayMod, &p.ThursdayMod, &p.FridayMod, &p.SaturdayMod, &p.SundayMod)
	if err == sql.ErrNoRows {
		return DefaultEnergyProfile(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("get energy profile for user %d: %w", userID, err)
	}
	return p, nil
}

func (s *queries) UpsertEnergyProfile(p *EnergyProfile) error {
	_, err := s.q.Exec(
		`INSERT INTO energy_profiles (user_id, early_morning, mid_morning, late_morning,
			early_afternoon, late_afternoon, evening, night, monday_mod, tuesday_mod,
			wednesday_mod, thursday_mod, friday_mod, saturday_mod, sunday_mod)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
			early_morning = excluded.early_morning,
			mid_morning = excluded.mid_morning,
			late_morning = excluded.late_morning,
			early_afternoon = excluded.early_afternoon,
			late_afternoon = excluded.late_afternoon,
			evening = excluded.evening,
			night = excluded.night,
			monday_mod = excluded.monday_mod,
			tuesday_mod = excluded.tuesday_mod,
			wednesday_mod = excluded.wednesday_mod,
			thursday_mod = excluded.thursday_mod,
			friday_mod = excluded.friday_mod,
			saturday_mod = excluded.saturday_mod,
			sunday_mod = excluded.sunday_mod`,
		p.UserID, p.EarlyMorning, p.MidMorning, p.LateMorning, p.EarlyAfternoon,
		p.LateAfternoon, p.Evening, p.Night, p.MondayMod, p.TuesdayMod,
		p.WednesdayMod, p.ThursdayMod, p.FridayMod, p.SaturdayMod, p.SundayMod,
	)
	if err != nil {
		return fmt.Errorf("upsert energy profile for user %d: %w", p.UserID, err)
	}
	return nil
}

// GetPreferences returns the user's preferences, or defaults if unset.
func (s *queries) GetPreferences(userID int64) (*UserPreference, error) {
	p := &UserPreference{UserID: userID}
	err := s.q.QueryRow(
		`SELECT default_view, week_start, wake_up_time, sleep_time, work_start_time,
			work_end_time, break_start_time, break_end_time, theme, reminder_before_minutes
		 FROM user_preferences WHERE user_id = ?`, userID,
	).Scan(&p.DefaultView, &p.WeekStart, &p.WakeUpTime, &p.SleepTime, &p.WorkStartTime,
		&p.WorkEndTime, &p.BreakStartTime, &p.BreakEndTime, &p.Theme, &p.ReminderBeforeMinutes)
	if err == sql.ErrNoRows {
		return DefaultPreferences(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("get preferences for user %d: %w", userID, err)
	}
	return p, nil
}

func (s *queries) UpsertPreferences(p *UserPreference) error {
	_, err := s.q.Exec(
		`INSERT INTO user_preferences (user_id, default_view, week_start, wake_up_time,
			sleep_time, work_start_time, work_end_time, break_start_time, break_end_time,
			theme, reminder_before_minutes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id) DO UPDATE SET
			default_view = excluded.default_view,
			week_start = excluded.week_start,
			wake_up_time = excluded.wake_up_time,
			sleep_time = excluded.sleep_time,
			work_start_time = excluded.work_start_time,
			work_end_time = excluded.work_end_time,
			break_start_time = excluded.break_start_time,
			break_end_time = excluded.break_end_time,
			theme = excluded.theme,
			reminder_before_minutes = excluded.reminder_before_minutes`,
		p.UserID, p.DefaultView, p.WeekStart, p.WakeUpTime, p.SleepTime, p.WorkStartTime,
		p.WorkEndTime, p.BreakStartTime, p.BreakEndTime, p.Theme, p.ReminderBeforeMinutes,
	)
	if err != nil {
		return fmt.Errorf("upsert preferences for user %d: %w", p.UserID, err)
	}
	return nil
}
