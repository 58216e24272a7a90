// Package middleware provides the HTTP middleware used by the catalog
// server: request logging in W3C Extended Log Format and Prometheus request
// metrics labelled by route template.
package middleware
