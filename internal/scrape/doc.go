// Package scrape implements the acquisition and pagination core: obtaining a
// readable document for a URL despite anti-bot defenses, deciding when a
// multi-page listing has been consumed, and deciding when returned items have
// fallen outside the requested date window.
package scrape
