package doctor

import (
	"time"

	"github.com/google/uuid"
)

// Specialties is the set the directory UI filters by. A doctor whose
// specialty falls outside this list still appears in the unfiltered
// listing.
var Specialties = []string{
	"General physician",
	"Gynecologist",
	"Dermatologist",
	"Pediatricians",
	"Neurologist",
	"Gastroenterologist",
}

type Doctor struct {
	ID                 uuid.UUID `json:"id"`
	Name               string    `json:"name"`
	Specialty          string    `json:"specialty"`
	ImageURL           string    `json:"image_url"`
	Available          bool      `json:"available"`
	Experience         string    `json:"experience"`
	AppointmentReasons []string  `json:"appointment_reasons"`
	Featured           bool      `json:"featured"`
	About              string    `json:"about"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}
