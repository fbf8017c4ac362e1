package models

// EventSink receives progress and log events from the task runner and
// the site adapters. It is a one-directional side channel: components
// must behave identically with NopSink.
type EventSink interface {
	Progress(current, total int)
	Log(message string)
	TaskCompleted(task Task, success bool)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) Progress(current, total int)      {}
func (NopSink) Log(message string)               {}
func (NopSink) TaskCompleted(task Task, ok bool) {}
