package checkpointer

import (
	"fmt"
	"time"
)

// Enumerated returns a function which returns consecutively numbered
// filenames prefix_0001.ext, prefix_0002.ext, ... starting after start.
// The extension should include its leading dot.
func Enumerated(start int, prefix, extension string) func() string {
	i := start
	return func() string {
		i++
		return fmt.Sprintf("%v_%04d%v", prefix, i, extension)
	}
}

// Timestamped returns a function which returns filenames stamped with
// the number of nanoseconds since January 1, 1970
func Timestamped(prefix, extension string) func() string {
	return func() string {
		return fmt.Sprintf("%v_%v%v", prefix, time.Now().UnixNano(),
			extension)
	}
}
