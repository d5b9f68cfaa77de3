package piltc

/*------------------------------------------------------------------
 *
 * Purpose:   	SMPTE timecode value and calendar arithmetic.
 *
 * Description:	One value per LTC frame: wall-clock date and time plus
 *		the frame number within the second.  Seeded from the
 *		real-time clock at second boundaries and advanced by
 *		one frame after each encode.
 *
 *---------------------------------------------------------------*/

import (
	"fmt"
	"time"
)

type smpte_timecode_t struct {
	years  int /* Four digit year. */
	months int /* 1 - 12 */
	days   int /* 1 - 31 */

	hours int /* 0 - 23 */
	mins  int /* 0 - 59 */
	secs  int /* 0 - 59 */
	frame int /* 0 - fps-1 */

	timezone string /* "+HHMM" or "-HHMM" */
}

/*
 * Local-time decomposition of a second boundary instant.
 * Frame is always zero because seeding only happens on the boundary.
 */
func timecode_for_second(sec int64) smpte_timecode_t {
	var t = time.Unix(sec, 0)
	var _, offset = t.Zone()

	return smpte_timecode_t{
		years:    t.Year(),
		months:   int(t.Month()),
		days:     t.Day(),
		hours:    t.Hour(),
		mins:     t.Minute(),
		secs:     t.Second(),
		frame:    0,
		timezone: tz_string(offset),
	}
}

func tz_string(offsetSeconds int) string {
	var sign = "+"
	if offsetSeconds < 0 {
		sign = "-"
		offsetSeconds = -offsetSeconds
	}

	return fmt.Sprintf("%s%02d%02d", sign, offsetSeconds/3600, (offsetSeconds%3600)/60)
}

func days_in_month(year int, month int) int {
	switch month {
	case 4, 6, 9, 11:
		return 30
	case 2:
		if year%4 == 0 && (year%100 != 0 || year%400 == 0) {
			return 29
		}
		return 28
	default:
		return 31
	}
}

/*
 * Advance by one frame, rolling seconds, minutes, hours and the
 * calendar date as needed.
 */
func (tc *smpte_timecode_t) inc_frame(fps int) {
	tc.frame++
	if tc.frame < fps {
		return
	}
	tc.frame = 0

	tc.secs++
	if tc.secs < 60 {
		return
	}
	tc.secs = 0

	tc.mins++
	if tc.mins < 60 {
		return
	}
	tc.mins = 0

	tc.hours++
	if tc.hours < 24 {
		return
	}
	tc.hours = 0

	tc.days++
	if tc.days <= days_in_month(tc.years, tc.months) {
		return
	}
	tc.days = 1

	tc.months++
	if tc.months <= 12 {
		return
	}
	tc.months = 1
	tc.years++
}

func (tc smpte_timecode_t) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d:%02d %s",
		tc.years, tc.months, tc.days, tc.hours, tc.mins, tc.secs, tc.frame, tc.timezone)
}
