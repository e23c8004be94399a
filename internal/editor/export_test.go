package editor

// SetIDSource replaces the id generator so tests get stable ids.
func SetIDSource(s *Session, next func() string) { s.newID = next }
