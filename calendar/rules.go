package calendar

import "time"

func isHoliday(id CalendarID, t time.Time) bool {
	switch id {
	case TARGET:
		return isTargetHoliday(t)
	case FD:
		return isFedHoliday(t)
	case CL:
		return isChileHoliday(t)
	default:
		return isRegisteredHoliday(id, t)
	}
}

// easterSunday uses the anonymous Gregorian computus.
func easterSunday(year int) time.Time {
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
	day := (h+l-7*m+114)%31 + 1
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
}

// daysFromEaster is negative before Easter Sunday.
func daysFromEaster(t time.Time) int {
	e := easterSunday(t.Year())
	return int(t.Sub(e).Hours() / 24)
}

func isTargetHoliday(t time.Time) bool {
	y, m, d := t.Date()
	em := daysFromEaster(t)
	switch {
	case m == time.January && d == 1:
		return true
	case y >= 2000 && (em == -2 || em == 1):
		return true
	case y >= 2000 && m == time.May && d == 1:
		return true
	case m == time.December && d == 25:
		return true
	case y >= 2000 && m == time.December && d == 26:
		return true
	case m == time.December && d == 31 && (y == 1998 || y == 1999 || y == 2001):
		return true
	}
	return false
}

// isFedHoliday follows the Federal Reserve schedule: fixed-date holidays that fall on a
// Sunday are observed the following Monday, Saturday holidays are not moved.
func isFedHoliday(t time.Time) bool {
	y, m, d := t.Date()
	w := t.Weekday()
	monday := w == time.Monday
	switch m {
	case time.January:
		// New Year, Martin Luther King Jr.
		return d == 1 || (d == 2 && monday) || (y >= 1983 && d >= 15 && d <= 21 && monday)
	case time.February:
		// Washington's Birthday
		return y >= 1971 && d >= 15 && d <= 21 && monday
	case time.May:
		// Memorial Day
		return y >= 1971 && d >= 25 && monday
	case time.June:
		// Juneteenth
		return y >= 2022 && (d == 19 || (d == 20 && monday))
	case time.July:
		return d == 4 || (d == 5 && monday)
	case time.September:
		// Labor Day
		return d <= 7 && monday
	case time.October:
		// Columbus Day
		return y >= 1971 && d >= 8 && d <= 14 && monday
	case time.November:
		// Veterans Day, Thanksgiving
		return d == 11 || (d == 12 && monday) || (d >= 22 && d <= 28 && w == time.Thursday)
	case time.December:
		return d == 25 || (d == 26 && monday)
	}
	return false
}

// isChileHoliday covers the Santiago exchange holidays, including the Monday transfers
// of St. Peter and St. Paul and of the Discovery of Two Worlds.
func isChileHoliday(t time.Time) bool {
	y, m, d := t.Date()
	w := t.Weekday()
	monday := w == time.Monday
	em := daysFromEaster(t)
	if em == -2 || em == -1 {
		// Good Friday, Holy Saturday
		return true
	}
	switch m {
	case time.January:
		return d == 1 || (d == 2 && monday && y > 2016) || (d == 16 && y == 2018)
	case time.May:
		// Labour Day, Navy Day
		return d == 1 || d == 21
	case time.June:
		// National Day of Indigenous Peoples, St. Peter and St. Paul
		if y >= 2021 && d == indigenousPeoplesDay(y) {
			return true
		}
		return d >= 26 && d <= 29 && monday
	case time.July:
		// St. Peter and St. Paul moved to Monday July 2, Our Lady of Mount Carmel
		return (d == 2 && monday) || d == 16
	case time.August:
		return d == 15
	case time.September:
		// Independence days and their bridges
		return d == 18 || d == 19 ||
			(d == 17 && ((monday && y >= 2007) || (w == time.Friday && y > 2016))) ||
			(d == 20 && w == time.Friday && y >= 2007)
	case time.October:
		// Discovery of Two Worlds, Reformation Day
		return (d >= 9 && d <= 12 && monday) || (d == 15 && monday) ||
			(y >= 2008 && ((d == 27 && w == time.Friday) ||
				(d == 31 && w != time.Tuesday && w != time.Wednesday)))
	case time.November:
		// Reformation Day bridge, All Saints
		return (y >= 2008 && d == 2 && w == time.Friday) || d == 1
	case time.December:
		// Immaculate Conception, Christmas, New Year's Eve bank holiday
		return d == 8 || d == 25 || d == 31
	}
	return false
}

// indigenousPeoplesDay is the June solstice holiday; the day depends on the year.
func indigenousPeoplesDay(year int) int {
	switch {
	case year <= 2023:
		return 21
	default:
		return 20
	}
}
