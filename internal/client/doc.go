// Package client is the todo API client and its session manager.
//
// A Session is an explicit value: it is loaded from a TokenStore, passed to
// every call that needs authentication, and cleared when the server answers
// 401. Callers must then send the user back through Login; nothing is
// refreshed behind their back.
package client
