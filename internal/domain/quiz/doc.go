// Package quiz holds the programming questions and the challenge session that
// gates alarm dismissal.
//
// A Session draws a queue of questions of one difficulty from a catalog and
// advances only on correct answers. Wrong answers never end a session; the
// same question stays current until it is solved.
package quiz
