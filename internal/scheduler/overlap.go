package scheduler

import "time"

// Booking is the projection of a reservation the overlap detector operates
// on: a room and the interval its slot occupies.
type Booking struct {
	ReservationID string
	RoomID        string
	Start         time.Time
	End           time.Time
}

// Conflict identifies an existing booking that intersects a candidate
// interval on the same room.
type Conflict struct {
	WithReservationID string
	RoomID            string
	Start             time.Time
	End               time.Time
}

// Overlaps reports whether [aStart, aEnd] intersects [bStart, bEnd] under the
// inclusive boundary rule: either endpoint of one interval falling within the
// other counts, and an interval ending exactly when the other begins is still
// a conflict. This mirrors the availability query the stores run and must not
// diverge from it.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return within(aStart, bStart, bEnd) ||
		within(aEnd, bStart, bEnd) ||
		within(bStart, aStart, aEnd)
}

// within reports whether t lies in [start, end], boundaries included.
func within(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

// FindConflicts identifies every existing booking whose interval intersects
// the candidate on the same room. The candidate itself is skipped when it
// appears among the existing bookings, which lets callers re-validate an
// updated reservation against the rest of the calendar.
func FindConflicts(existing []Booking, candidate Booking) []Conflict {
	var conflicts []Conflict
	for _, booking := range existing {
		if booking.ReservationID != "" && booking.ReservationID == candidate.ReservationID {
			continue
		}
		if booking.RoomID != candidate.RoomID {
			continue
		}
		if !Overlaps(candidate.Start, candidate.End, booking.Start, booking.End) {
			continue
		}
		conflicts = append(conflicts, Conflict{
			WithReservationID: booking.ReservationID,
			RoomID:            booking.RoomID,
			Start:             booking.Start,
			End:               booking.End,
		})
	}
	return conflicts
}
