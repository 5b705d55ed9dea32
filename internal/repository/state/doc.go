// Package state persists the alarm collection and the active alarm pointer.
//
// Both values are stored independently in a blob.Store: the collection as a
// protojson array under "alarms" and the pointer as a UUID string under
// "active_alarm_id".
package state
