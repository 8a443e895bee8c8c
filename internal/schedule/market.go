package schedule

import "time"

// Session is the exchange's regular trading window, local time
type Session struct {
	OpenHour  int
	OpenMin   int
	CloseHour int
	CloseMin  int
}

// DefaultSession is the HOSE/HNX continuous session, 09:00 to 15:00
func DefaultSession() Session {
	return Session{OpenHour: 9, OpenMin: 0, CloseHour: 15, CloseMin: 0}
}

// Location returns Vietnam time
func Location() *time.Location {
	loc, err := time.LoadLocation("Asia/Ho_Chi_Minh")
	if err != nil {
		loc = time.FixedZone("ICT", 7*60*60)
	}
	return loc
}

// IsWeekend reports whether t falls on Saturday or Sunday
func IsWeekend(t time.Time) bool {
	wd := t.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// IsOpen reports whether the session is live at now
func (s Session) IsOpen(now time.Time) bool {
	now = now.In(Location())
	if IsWeekend(now) {
		return false
	}
	minutes := now.Hour()*60 + now.Minute()
	return minutes >= s.OpenHour*60+s.OpenMin && minutes < s.CloseHour*60+s.CloseMin
}

// LastTradingDate returns the calendar date (midnight UTC) of the most
// recent weekday in Vietnam time at now. Saturday and Sunday roll back
// to Friday. Holidays are not known; a holiday date simply resolves to
// the latest bar on or before it.
func LastTradingDate(now time.Time) time.Time {
	local := now.In(Location())
	switch local.Weekday() {
	case time.Saturday:
		local = local.AddDate(0, 0, -1)
	case time.Sunday:
		local = local.AddDate(0, 0, -2)
	}
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}
