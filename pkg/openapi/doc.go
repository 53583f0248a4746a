// Package openapi describes the configuration resource a schema drives as an
// OpenAPI 3 document: the shape of the collected configuration, GET and POST
// on the configuration path, and the relative endpoints custom buttons call.
package openapi
