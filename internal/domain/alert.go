package domain

import "fmt"

// Alert is the compact notification sent for high-Torino assessments.
type Alert struct {
	ID                string      `json:"id"`
	Name              string      `json:"name"`
	TorinoScale       int         `json:"torinoScale"`
	HazardLevel       HazardLevel `json:"hazardLevel"`
	Risk              *float64    `json:"risk"`
	MissDistance      *float64    `json:"missDistance"`
	CloseApproachDate string      `json:"closeApproachDate,omitempty"`
	MoonProbability   *float64    `json:"moonProbability"`
	Message           string      `json:"message"`
}

// ShouldAlert reports whether an assessment meets the Torino threshold.
func ShouldAlert(a EnhancedAsteroid, minTorino int) bool {
	return a.Hazard.TorinoScale >= minTorino
}

// BuildAlert summarizes an assessment for notification.
func BuildAlert(a EnhancedAsteroid) Alert {
	var date string
	if ca := a.FirstApproach(); ca != nil {
		date = ca.Date
	}

	msg := fmt.Sprintf("%s rated Torino %d (%s): risk %.3f, miss distance %.4f AU",
		a.Record.Name, a.Hazard.TorinoScale, a.Hazard.Level, a.Risk.Risk, a.Features.MissDistance)
	if date != "" {
		msg += " on " + date
	}

	return Alert{
		ID:                a.Record.ID,
		Name:              a.Record.Name,
		TorinoScale:       a.Hazard.TorinoScale,
		HazardLevel:       a.Hazard.Level,
		Risk:              finite(a.Risk.Risk),
		MissDistance:      finite(a.Features.MissDistance),
		CloseApproachDate: date,
		MoonProbability:   finite(a.Moon.Probability),
		Message:           msg,
	}
}
