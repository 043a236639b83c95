package appointment

import (
	"fmt"
	"time"
)

// Slot is one bookable half-hour label. Available is a static flag on the
// catalogue entry; it is never toggled by bookings.
type Slot struct {
	ID        int    `json:"id"`
	Time      string `json:"time"`
	Available bool   `json:"available"`
}

// Slots is the fixed half-hour catalogue from 09:00 AM to 05:00 PM,
// inclusive, shared by every doctor.
var Slots = []Slot{
	{ID: 1, Time: "09:00 AM", Available: true},
	{ID: 2, Time: "09:30 AM", Available: true},
	{ID: 3, Time: "10:00 AM", Available: true},
	{ID: 4, Time: "10:30 AM", Available: true},
	{ID: 5, Time: "11:00 AM", Available: true},
	{ID: 6, Time: "11:30 AM", Available: true},
	{ID: 7, Time: "12:00 PM", Available: true},
	{ID: 8, Time: "12:30 PM", Available: true},
	{ID: 9, Time: "01:00 PM", Available: true},
	{ID: 10, Time: "01:30 PM", Available: true},
	{ID: 11, Time: "02:00 PM", Available: true},
	{ID: 12, Time: "02:30 PM", Available: true},
	{ID: 13, Time: "03:00 PM", Available: true},
	{ID: 14, Time: "03:30 PM", Available: true},
	{ID: 15, Time: "04:00 PM", Available: true},
	{ID: 16, Time: "04:30 PM", Available: true},
	{ID: 17, Time: "05:00 PM", Available: true},
}

// ValidSlotLabel reports whether the label is one of the catalogue entries.
func ValidSlotLabel(label string) bool {
	for _, s := range Slots {
		if s.Time == label {
			return true
		}
	}
	return false
}

// BookingWindowMonths bounds how far ahead the manual date picker allows.
const BookingWindowMonths = 3

// carouselScanDays is how far forward the carousel resolver searches for a
// matching weekday/day-of-month pair.
const carouselScanDays = 14

// ValidateBookingDate accepts dates in [today, today+3 months], comparing
// calendar days on the local clock.
func ValidateBookingDate(date, today time.Time) error {
	day := truncateToDay(date)
	start := truncateToDay(today)
	end := start.AddDate(0, BookingWindowMonths, 0)

	if day.Before(start) {
		return fmt.Errorf("date cannot be in the past")
	}
	if day.After(end) {
		return fmt.Errorf("date must be within %d months", BookingWindowMonths)
	}
	return nil
}

// ResolveCarouselDate resolves a (weekday name, day of month) pair from the
// 7-day carousel into the next matching calendar date, scanning forward up
// to 14 days from today. Carousel dates skip the booking-window check since
// the carousel can only show near dates.
func ResolveCarouselDate(weekday string, dayOfMonth int, today time.Time) (time.Time, error) {
	start := truncateToDay(today)
	for i := 0; i < carouselScanDays; i++ {
		candidate := start.AddDate(0, 0, i)
		if candidate.Weekday().String() == weekday && candidate.Day() == dayOfMonth {
			return candidate, nil
		}
	}
	return time.Time{}, fmt.Errorf("no upcoming date matches %s %d", weekday, dayOfMonth)
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
