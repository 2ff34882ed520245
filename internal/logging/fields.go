package logging

import (
	"time"

	"github.com/felixgeelhaar/bolt/v3"
)

// Field is a function that applies structured data to a log event.
type Field func(*bolt.Event) *bolt.Event

// Component adds a component field for categorization.
func Component(name string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("component", name)
	}
}

// Operation adds an operation field.
func Operation(op string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("operation", op)
	}
}

// Theme adds the resolved theme key.
func Theme(key string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("theme", key)
	}
}

// ChartType adds the rendering mode.
func ChartType(t string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("chart_type", t)
	}
}

// BarCount adds the number of configured and drawn bars.
func BarCount(configured, drawn int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int("bars", configured).Int("drawn", drawn)
	}
}

// ProjectID adds a stored project id.
func ProjectID(id string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("project_id", id)
	}
}

// Path adds a file path.
func Path(p string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str("path", p)
	}
}

// Bytes adds an output size.
func Bytes(n int) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int("bytes", n)
	}
}

// Duration adds a duration field in milliseconds.
func Duration(d time.Duration) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Int64("duration_ms", d.Milliseconds())
	}
}

// ErrorField adds an error field.
func ErrorField(err error) Field {
	return func(e *bolt.Event) *bolt.Event {
		if err == nil {
			return e
		}
		return e.Err(err)
	}
}

// Str adds a string field with custom key.
func Str(key, value string) Field {
	return func(e *bolt.Event) *bolt.Event {
		return e.Str(key, value)
	}
}
