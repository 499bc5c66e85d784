// Package scraper refreshes the event dataset from upstream sources.
//
// NoticeScraper reads the Japanese in-app information feed and the linked notice
// pages to add new events with their japan release window, type and attribute.
// WikiScraper reads fan wiki pages to fill in global release windows and to
// discover wiki page ids by following "Next Event" links. Both share a Client
// that sets the user agent and paces requests with a rate limiter.
package scraper
