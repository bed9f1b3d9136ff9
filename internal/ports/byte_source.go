package ports

// ByteSource is a raw byte link to a sensor: a serial port, or a bridge that
// relays BLE notification payloads. Reads are expected to block with a short
// driver timeout and return (0, nil) when nothing arrived; the reader loop
// owns the polling cadence. Writes carry protocol control commands sent at
// connect time (acquisition enables and the like).
type ByteSource interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
}
