package models

// DayVolume is one bucket of the trailing-week call volume series.
type DayVolume struct {
	Day   string `json:"day" example:"Mon"`
	Calls int    `json:"calls" example:"23"`
}

// WeeklyStats is the derived analytics summary for one user's trailing 7-day
// call window. Computed on demand, never persisted.
type WeeklyStats struct {
	TotalCalls            int         `json:"totalCalls" example:"143"`
	AppointmentsBooked    int         `json:"appointmentsBooked" example:"57"`
	AvgDuration           string      `json:"avgDuration" example:"3:05"`
	AvgRating             float64     `json:"avgRating" example:"4.2"`
	CallToAppointmentRate float64     `json:"callToAppointmentRate" example:"39.9"`
	MissedCallsPercentage float64     `json:"missedCallsPercentage" example:"8.2"`
	WeeklyCallVolume      []DayVolume `json:"weeklyCallVolume"`
	TopPerformingDay      string      `json:"topPerformingDay" example:"Wed"`
	PeakCallHours         string      `json:"peakCallHours" example:"14:00"`
}
