// Package events defines the events published on the event bus.
//
// Available event types:
//   - RunCompleted: a conversion run finished, successfully or not
package events
