package dedupe

// Option configures a window.
type Option func(*window)

// WithMaxSize sets the maximum number of keys kept in memory.
// If maxSize <= 0 the window is unbounded.
func WithMaxSize(maxSize int) Option {
	return func(w *window) {
		w.maxSize = maxSize
	}
}
