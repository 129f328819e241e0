// Package infra contains technical adapters: CSV source discovery, the
// directory watcher, MQTT notifications, metrics sinks and the Sentry
// monitor. These packages depend only on the interfaces defined in the
// core packages.
package infra
