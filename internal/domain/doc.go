// Package domain contains the core domain entities and value objects for the
// around sensing core.
//
// This package represents the innermost layer of the architecture. It has no
// dependencies on infrastructure concerns (serial ports, messaging, logging)
// and contains only pure data types and admission rules.
//
// # Entities
//
//   - [Frame]: A single decoded wire frame (control codes + payload)
//   - [VitalSignSample]: Typed radar vital-sign measurement from one TLV packet
//   - [WearableSample]: One decoded wristband notification frame
//   - [HRVResult]: Time/frequency-domain heart-rate-variability metrics
//
// # Design Principles
//
// Domain entities are:
//   - Immutable after construction (where practical)
//   - Free of infrastructure dependencies
//   - Focused on admission rules and invariants
//   - Testable without mocks or external systems
package domain
