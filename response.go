package stove_automation

import "stove_automation/internal/models"

// SchedulerResponse is the body returned by the scheduler check endpoint.
type SchedulerResponse struct {
	Status         string           `json:"status"`
	Message        string           `json:"message,omitempty"`
	ActiveSchedule *models.Interval `json:"activeSchedule,omitempty"`
	Giorno         string           `json:"giorno"`
	Ora            string           `json:"ora"`
	ReturnToAutoAt string           `json:"returnToAutoAt,omitempty"`
}

// Terminal statuses of a scheduler check.
const (
	StatusManual             = "MODALITA_MANUALE"
	StatusSemiManual         = "MODALITA_SEMI_MANUALE"
	StatusNoSchedule         = "NO_SCHEDULE"
	StatusUnavailable        = "STATUS_UNAVAILABLE"
	StatusMaintenance        = "MANUTENZIONE_RICHIESTA"
	StatusIgnited            = "ACCESA"
	StatusShutdown           = "SPENTA"
	StatusAlreadyOn          = "ALREADY_ON"
	StatusConfirmationFailed = "CONFIRMATION_FAILED"
	StatusNoChange           = "NESSUNA_AZIONE"
	StatusError              = "ERRORE"
)
