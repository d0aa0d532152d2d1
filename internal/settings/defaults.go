package settings

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Categories a division manager may read and write. Everything else is
// admin territory.
var divisionManagerCategories = []string{"general", "notifications"}

// defaultSettings is the factory configuration, keyed category -> key.
var defaultSettings = map[string]map[string]interface{}{
	"general": {
		"company_name":        "FactoryShift Pro",
		"timezone":            "UTC+05:30",
		"date_format":         "DD/MM/YYYY",
		"time_format":         "24-hour",
		"week_start":          "Monday",
		"allow_auto_schedule": true,
		"enable_notifications": true,
		"min_shift_hours":     8,
		"max_shift_hours":     12,
	},
	"security": {
		"password_min_length":   8,
		"require_special_chars": true,
		"require_numbers":       true,
		"require_uppercase":     true,
		"session_timeout":       30,
		"max_login_attempts":    5,
		"enable_2fa":            false,
		"ip_whitelist":          []string{},
	},
	"notifications": {
		"email_notifications": true,
		"push_notifications":  true,
		"shift_change_alerts": true,
		"attendance_alerts":   true,
		"overtime_alerts":     true,
		"schedule_reminders":  true,
		"daily_reports":       false,
		"weekly_reports":      true,
	},
	"users": {
		"allow_self_registration": false,
		"require_approval":        true,
		"default_role":            "employee",
		"auto_assign_division":    false,
		"max_employees_per_dept":  50,
		"allow_profile_updates":   true,
	},
	"system": {
		"backup_frequency": "daily",
		"backup_time":      "02:00",
		"keep_backups_for": 30,
		"log_retention":    90,
		"maintenance_mode": false,
		"api_rate_limit":   100,
		"enable_audit_log": true,
	},
}

func validCategory(category string) bool {
	_, ok := defaultSettings[category]
	return ok
}

func categoryNames() []string {
	names := make([]string, 0, len(defaultSettings))
	for name := range defaultSettings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func categoryAllowed(category string, allowed []string) bool {
	for _, c := range allowed {
		if c == category {
			return true
		}
	}
	return false
}

// defaultsFor materializes the default rows for one category.
func defaultsFor(category string, updatedBy *int64) ([]*Setting, error) {
	values, ok := defaultSettings[category]
	if !ok {
		return nil, fmt.Errorf("unknown settings category %q", category)
	}

	rows := make([]*Setting, 0, len(values))
	for key, value := range values {
		raw, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		desc := fmt.Sprintf("Default setting for %s", strings.ReplaceAll(key, "_", " "))
		rows = append(rows, &Setting{
			Key:         key,
			Value:       raw,
			Category:    category,
			Description: &desc,
			UpdatedBy:   updatedBy,
		})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Key < rows[j].Key })
	return rows, nil
}

func allDefaults(updatedBy *int64) ([]*Setting, error) {
	var rows []*Setting
	for _, category := range categoryNames() {
		categoryRows, err := defaultsFor(category, updatedBy)
		if err != nil {
			return nil, err
		}
		rows = append(rows, categoryRows...)
	}
	return rows, nil
}
