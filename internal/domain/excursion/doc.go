// Package excursion contains the Excursion bounded context.
// This context covers the third-party travel-inventory supply API: product search,
// availability and pricing, cart booking, reviews and destinations.
//
// Key concepts:
//   - ProductSummary: normalized, request-scoped view of an upstream product
//   - AvailabilityRequest / AvailabilityResult: priced availability for a passenger mix
//   - CartBookingRequest / CartBookingResult: multi-item booking with per-item outcomes
//   - SupplyTransport: port for sending authenticated requests to the supply API
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces) are defined here in the domain layer
//   - Adapters (implementations) are in the infrastructure layer
package excursion
