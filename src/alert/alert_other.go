//go:build !windows

package alert

import (
	"fmt"
	"os"
)

func show(title, message string) {
	fmt.Fprintf(os.Stderr, "%s: %s\n", title, message)
}
