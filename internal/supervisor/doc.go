// Package supervisor runs the long-lived parts of the server under a
// suture supervision tree. A crashed service is restarted with backoff
// without taking its siblings down.
package supervisor
