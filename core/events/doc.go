// Package events defines the events emitted on the event bus.
//
// Available event types:
//   - GenerationEvent: a timetable generation finished, successfully or not
package events
