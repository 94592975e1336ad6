package audio

// Drain reads from ch until it is closed, discarding every value. Use it to
// release a streaming producer whose output is no longer wanted.
func Drain[T any](ch <-chan T) {
	for range ch {
	}
}
