// Package server implements the HTTP and WebSocket front of the room chat
// service.
//
// A Server upgrades each request on /ws into a Client (the connection handle)
// and a session worker. The session joins the client to its room through the
// chat.Registry, then reads events until the connection ends and always leaves
// the room on the way out. Configuration, origin checks, rate limiting and the
// diagnostics and collaborator endpoints live in their own files.
package server
