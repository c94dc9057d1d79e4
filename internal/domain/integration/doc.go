// Package integration contains the ports to external systems the stockroom
// depends on: the commerce platform that owns the storefront and the carrier
// that issues shipping labels.
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces and value objects) are defined here in the domain layer
//   - Adapters (HTTP clients and stubs) are in the infrastructure layer
package integration
