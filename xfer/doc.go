// Package xfer sends a file's raw bytes over a single TCP connection and
// receives them on a server that runs one worker per connection.
//
// There is no framing: the sender closes the connection when the file is
// done. The server lets any number of connections in at once but shows
// their data one connection at a time, gated by a binary admission
// semaphore shared by the workers. Finished workers are reclaimed by a
// Reaper so the listener never waits on a connection itself.
package xfer
