// Package scheduler arranges wake-up triggers for alarms on top of robfig/cron.
//
// Daily alarms become standard cron specs; one-shot alarms use a schedule that
// yields a single instant. When a trigger fires the scheduler shows a desktop
// alert, persists the alarm id as active and broadcasts a fired Event to every
// subscriber. Subscribers that fall behind are dropped and their channel closed.
package scheduler
