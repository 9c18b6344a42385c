// Package reminder delivers due task reminders by email.
//
// A Dispatcher claims one due task at a time inside its own transaction,
// sends the message and marks the task as sent before committing, so a
// reminder is delivered at most once per remind_at value even with several
// dispatchers running. A Scheduler runs the Dispatcher on a fixed interval.
package reminder
