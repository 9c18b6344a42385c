// Package api handles incoming HTTP requests for the task manager: request
// decoding and validation, response formatting and the mapping of service
// errors to status codes. Handlers are thin adapters over internal/service.
package api
