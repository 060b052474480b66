// Package chat holds the in-memory room model of the broadcast server: the
// Registry that maps room identifiers to live rooms, the Room that owns its
// member set and bounded history, and the JSON events exchanged with clients.
//
// Every mutation of a room (join, leave, publish) runs under that room's own
// mutex. Outbound delivery is a non-blocking enqueue on each Member, so a room
// lock is never held across network I/O and rooms never contend with each other.
package chat
