// Package alarm contains the core alarm domain types.
//
// It defines Alarm (a wall-clock wake-up with a repeat mode and the challenge
// difficulty that dismisses it), Draft (editor input validated before it
// becomes an Alarm) and NextTrigger, which computes the next occurrence of an
// alarm after a given instant.
package alarm
