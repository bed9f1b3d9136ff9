// Package ports defines the interfaces (ports) that connect the sensing core
// to infrastructure adapters.
//
// Ports are the boundaries between the application core and the outside
// world: they define what the core needs from external systems without
// specifying how those needs are fulfilled.
//
// # Port Interfaces
//
//   - [ByteSource]: Raw byte link to a sensor (serial port, BLE bridge)
//   - [Actuator]: Fire-and-forget ambient output commands (light, vibration)
//   - [BaseStation]: Command channel to the levitation base controller
//   - [EmotionClassifier]: Pre-trained arousal/valence predictor
//   - [TelemetrySink]: Best-effort push of the latest fused sample
//   - [Logger]: Structured logging abstraction
//
// The application core depends only on these interfaces; adapters in
// internal/adapters provide concrete implementations. Tests substitute mocks.
package ports
