package model

// DashboardStats is the fixed-shape summary shown on the front page
type DashboardStats struct {
	TotalPatients        int64 `json:"total_patients" db:"total_patients"`
	TodayAppointments    int64 `json:"today_appointments" db:"today_appointments"`
	PendingPrescriptions int64 `json:"pending_prescriptions" db:"pending_prescriptions"`
	LabResultsReady      int64 `json:"lab_results_ready" db:"lab_results_ready"`
}

// LabResultWindowDays is how far back a treated visit still counts as a
// ready lab result.
const LabResultWindowDays = 7
