package clubdata

import "time"

const dateLayout = "2006-01-02"

// ageOn returns the age in whole years on the given day of someone born on
// birth.  A birthday that hasn't been reached yet this year doesn't count.
// Someone born on the 29th of February has their birthday on the 1st of
// March in other years.
func ageOn(birth, day time.Time) int {

	by, bm, bd := birth.Date()
	dy, dm, dd := day.Date()

	age := dy - by
	if dm < bm || (dm == bm && dd < bd) {
		age--
	}

	if age < 0 {
		return 0
	}

	return age
}

// todayDate returns the current date in the club's time zone, as midnight
// UTC so that it compares cleanly with parsed dates.
func (c *Club) todayDate() time.Time {
	y, m, d := c.clock.Now().In(c.loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// fee returns the membership fee for someone of the given age.  If the
// birth date is not known the adult fee applies.
func (c *Club) fee(age int, knownBirthDate bool) float64 {
	if !knownBirthDate || age >= c.fees.AdultAge {
		return c.fees.Adult
	}
	return c.fees.Junior
}
