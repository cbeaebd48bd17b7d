// Footprint is a small service which tracks visitors of a website.
//
// A page sends a beacon with whatever it knows about a browser: screen
// size, if cookies are enabled and so on. Footprint adds geolocation
// of the visitor IP address, renders a short report and sends it to
// you, usually by email.
//
// Tool itself is organized into 3 logical parts:
//
// Footlib
//
// footlib is a main package of the application which contains
// Footprint struct and main logic: geolocation cache and resolver,
// admission control, enrichment of visitor data and notification
// dispatching. Footprint acts as http.Handler.
//
// Providers and notifiers
//
// These packages have implementations of geolocation providers
// (ip-api.com, ipinfo.io, MaxMind databases) and notification sinks
// (SMTP and log).
//
// Footprint
//
// A main package wires footlib, providers and notifiers into a
// binary which starts http server. Configuration is an optional HJSON
// file and a couple of environment variables, which could be placed
// into .env file.
package main
