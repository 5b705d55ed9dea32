// Package view holds the read model handed to presentation: the alarm list,
// the active alarm and the challenge progress, without quiz answers.
package view
