package sink

// Formatter renders one Result to bytes, appending to buf and returning the
// grown slice so callers can reuse the underlying array across calls.
type Formatter interface {
	Format(buf []byte, result Result, separator byte) []byte
}
