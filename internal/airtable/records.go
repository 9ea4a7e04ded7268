package airtable

import (
	"time"

	"cloudlead/internal/models"
)

func projectFromRecord(rec record) models.Project {
	return models.Project{
		ID:            rec.ID,
		Name:          stringField(rec.Fields, "Project Name"),
		Industry:      stringField(rec.Fields, "Industry"),
		Region:        stringField(rec.Fields, "Region"),
		LeadCount:     intField(rec.Fields, "Lead Count"),
		Status:        stringField(rec.Fields, "Status"),
		DateCreated:   timeField(rec.Fields, "Date Created"),
		DateCompleted: timeField(rec.Fields, "Date Completed"),
	}
}

func leadRecord(projectID string, lead models.Lead, verified string) record {
	return record{Fields: map[string]any{
		"Company":          lead.Company,
		"Website":          lead.Website,
		"Name":             lead.Name,
		"Title":            lead.Title,
		"Email":            lead.Email,
		"Phone":            lead.Phone,
		"Status":           models.LeadStatusVerified,
		"Validation Score": lead.Score,
		"Last Verified":    verified,
		"Project":          []string{projectID},
		"Notes":            lead.Analysis,
	}}
}

func stringField(fields map[string]any, key string) string {
	if v, ok := fields[key].(string); ok {
		return v
	}
	return ""
}

// intField reads numeric cells, which decode as float64.
func intField(fields map[string]any, key string) int {
	switch v := fields[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return 0
	}
}

func timeField(fields map[string]any, key string) *time.Time {
	raw, ok := fields[key].(string)
	if !ok || raw == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05.999999", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t
		}
	}
	return nil
}
