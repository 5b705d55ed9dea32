// Package calendar exports alarms as an iCalendar feed: one VEVENT with a
// display VALARM per alarm, recurring daily for daily alarms.
package calendar
