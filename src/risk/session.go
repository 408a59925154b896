package risk

import (
	"time"
	_ "time/tzdata"

	"signaltracker/src/model"

	logger "github.com/sirupsen/logrus"
)

const (
	DaysPerWeek          = 7
	OffsetDaysForNewYear = 1
	NewYearDay           = 1
	ThirdMondayOffset    = 2
	FourthThursdayOffset = 3

	premarketOpenMinute = 4 * 60
	regularOpenMinute   = 9*60 + 30
	regularCloseMinute  = 16 * 60
	afterhoursEndMinute = 20 * 60
)

// SessionClock decides which US equity session a moment belongs to.
type SessionClock struct {
	loc *time.Location
}

const marketZone = "America/New_York"

// NewSessionClock loads America/New_York. The zone database is embedded, so
// the UTC fallback only triggers on a broken build.
func NewSessionClock() *SessionClock {
	return newSessionClock(marketZone)
}

func newSessionClock(zone string) *SessionClock {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"component": "session_clock",
			"zone":      zone,
		}).WithError(err).Error("Time zone unavailable, stock sessions computed in UTC")
		loc = time.UTC
	}
	return &SessionClock{loc: loc}
}

// Session returns the session for asset at now. Crypto trades around the
// clock and is always regular.
func (c *SessionClock) Session(asset model.AssetClass, now time.Time) model.Session {
	if asset == model.AssetCrypto {
		return model.SessionRegular
	}
	return c.stockSession(now)
}

// IsMarketOpen reports whether US equities are in the regular session.
func (c *SessionClock) IsMarketOpen(now time.Time) bool {
	return c.stockSession(now) == model.SessionRegular
}

func (c *SessionClock) stockSession(now time.Time) model.Session {
	et := now.In(c.loc)

	if et.Weekday() == time.Saturday || et.Weekday() == time.Sunday || isHoliday(et) {
		return model.SessionClosed
	}

	m := et.Hour()*60 + et.Minute()
	switch {
	case m >= regularOpenMinute && m < regularCloseMinute:
		return model.SessionRegular
	case m >= premarketOpenMinute && m < regularOpenMinute:
		return model.SessionPremarket
	case m >= regularCloseMinute && m < afterhoursEndMinute:
		return model.SessionAfterhours
	default:
		return model.SessionClosed
	}
}

// FixedSession always answers with the same session. Useful for replaying a
// pass under a known market state.
type FixedSession model.Session

func (f FixedSession) Session(asset model.AssetClass, _ time.Time) model.Session {
	if asset == model.AssetCrypto {
		return model.SessionRegular
	}
	return model.Session(f)
}

// isHoliday covers the NYSE full-day closures that fall on fixed rules.
func isHoliday(t time.Time) bool {
	year := t.Year()

	// New Year's Day, moved to Monday when on a Sunday
	newYearsDay := time.Date(year, time.January, NewYearDay, 0, 0, 0, 0, time.UTC)
	if newYearsDay.Weekday() == time.Sunday {
		newYearsDay = newYearsDay.AddDate(0, 0, OffsetDaysForNewYear)
	}

	mlkDay := calculateSpecificMonday(year, time.January, ThirdMondayOffset)
	presidentsDay := calculateSpecificMonday(year, time.February, ThirdMondayOffset)

	memorialDay := time.Date(year, time.May, 31, 0, 0, 0, 0, time.UTC)
	for memorialDay.Weekday() != time.Monday {
		memorialDay = memorialDay.AddDate(0, 0, -1)
	}

	juneteenth := observed(time.Date(year, time.June, 19, 0, 0, 0, 0, time.UTC))
	independenceDay := observed(time.Date(year, time.July, 4, 0, 0, 0, 0, time.UTC))

	laborDay := calculateSpecificMonday(year, time.September, 0)
	thanksgivingDay := calculateSpecificThursday(year, time.November, FourthThursdayOffset)
	christmasDay := observed(time.Date(year, time.December, 25, 0, 0, 0, 0, time.UTC))

	holidays := []time.Time{
		newYearsDay,
		mlkDay,
		presidentsDay,
		goodFriday(year),
		memorialDay,
		juneteenth,
		independenceDay,
		laborDay,
		thanksgivingDay,
		christmasDay,
	}
	return isDateAmong(t, holidays)
}

// observed shifts a Saturday holiday to Friday and a Sunday holiday to Monday.
func observed(d time.Time) time.Time {
	switch d.Weekday() {
	case time.Saturday:
		return d.AddDate(0, 0, -1)
	case time.Sunday:
		return d.AddDate(0, 0, OffsetDaysForNewYear)
	}
	return d
}

// goodFriday is two days before Easter Sunday (anonymous Gregorian algorithm).
func goodFriday(year int) time.Time {
	a := year % 19
	b := year / 100
	c := year % 100
	d := b / 4
	e := b % 4
	f := (b + 8) / 25
	g := (b - f + 1) / 3
	h := (19*a + b - d - g + 15) % 30
	i := c / 4
	k := c % 4
	l := (32 + 2*e + 2*i - h - k) % 7
	m := (a + 11*h + 22*l) / 451
	month := (h + l - 7*m + 114) / 31
	day := ((h + l - 7*m + 114) % 31) + 1
	easter := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return easter.AddDate(0, 0, -2)
}

// calculateSpecificMonday calculates the specific Monday of a month (like the third Monday).
func calculateSpecificMonday(year int, month time.Month, mondayOffset int) time.Time {
	firstOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := int(time.Monday-firstOfMonth.Weekday()+DaysPerWeek) % DaysPerWeek
	return firstOfMonth.AddDate(0, 0, offset+mondayOffset*DaysPerWeek)
}

// calculateSpecificThursday calculates the specific Thursday of a month (like the fourth Thursday).
func calculateSpecificThursday(year int, month time.Month, thursdayOffset int) time.Time {
	firstOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	offset := int(time.Thursday-firstOfMonth.Weekday()+DaysPerWeek) % DaysPerWeek
	return firstOfMonth.AddDate(0, 0, offset+thursdayOffset*DaysPerWeek)
}

func isDateAmong(t time.Time, dates []time.Time) bool {
	for _, d := range dates {
		if t.Format("2006-01-02") == d.Format("2006-01-02") {
			return true
		}
	}
	return false
}
