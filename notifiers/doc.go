// Package notifiers has implementations of footlib.Notifier.
//
// Notifiers are sinks: they get a rendered message and deliver it
// somewhere. They do not retry, a caller decides what to do with
// errors (footlib just logs them).
package notifiers
