package render

import (
	"errors"
	"fmt"
	"runtime"
	"strings"

	"github.com/vulkan-go/vulkan"
)

var (
	// ErrNoSuitableDevice is returned when the driver enumerates no adapters.
	ErrNoSuitableDevice = errors.New("no suitable graphics adapter")
	// ErrAdapterEnumeration is the taxonomy name for ErrNoSuitableDevice.
	ErrAdapterEnumeration = ErrNoSuitableDevice

	ErrUnsupportedPresentMode = errors.New("immediate present mode not supported")
	ErrMemoryTypeNotFound     = errors.New("no memory type satisfies the requested properties")
	ErrShaderLoad             = errors.New("shader load failed")
	ErrWindowCreation         = errors.New("window creation failed")
	ErrDriverCallFailed       = errors.New("driver call failed")

	// ErrSurfaceOutOfDate is the one steady-state frame error the loop
	// recovers from: the frame is dropped and the next paint tries again.
	ErrSurfaceOutOfDate = errors.New("surface out of date")
)

// DriverCallError records a non-success result from a single driver call.
// It matches ErrDriverCallFailed and, when the result says so,
// ErrSurfaceOutOfDate.
type DriverCallError struct {
	Call   string
	Result vulkan.Result
	Frame  string
}

func (e *DriverCallError) Error() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "vulkan error: %s returned %d", e.Call, e.Result)
	if cause := vulkan.Error(e.Result); cause != nil {
		fmt.Fprintf(&sb, " (%v)", cause)
	}
	if e.Frame != "" {
		fmt.Fprintf(&sb, " on %s", e.Frame)
	}
	return sb.String()
}

func (e *DriverCallError) Unwrap() []error {
	errs := []error{ErrDriverCallFailed}
	if e.Result == vulkan.ErrorOutOfDate {
		errs = append(errs, ErrSurfaceOutOfDate)
	}
	if cause := vulkan.Error(e.Result); cause != nil {
		errs = append(errs, cause)
	}
	return errs
}

// NewError wraps a driver result for the named call. It returns nil for
// vulkan.Success.
func NewError(call string, retVal vulkan.Result) error {
	if !IsError(retVal) {
		return nil
	}
	err := &DriverCallError{Call: call, Result: retVal}
	if pc, _, _, ok := runtime.Caller(1); ok {
		err.Frame = newStackFrame(pc).String()
	}
	return err
}

func IsError(retVal vulkan.Result) bool {
	return retVal != vulkan.Success
}

type stackFrame struct {
	function string
	file     string
	line     int
}

func newStackFrame(pc uintptr) stackFrame {
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return stackFrame{function: "unknown"}
	}
	file, line := fn.FileLine(pc)
	return stackFrame{function: fn.Name(), file: file, line: line}
}

func (f stackFrame) String() string {
	if f.file == "" {
		return f.function
	}
	return fmt.Sprintf("%s (%s:%d)", f.function, f.file, f.line)
}

// OrPanic runs the finalizers and panics when err is non-nil.
func OrPanic(err error, finalizers ...func()) {
	if err == nil {
		return
	}
	for _, fn := range finalizers {
		fn()
	}
	panic(err)
}

// CheckError turns a panic raised by OrPanic back into an error. Use it
// deferred with a named error result.
func CheckError(err *error) {
	if v := recover(); v != nil {
		if e, ok := v.(error); ok {
			*err = e
			return
		}
		*err = fmt.Errorf("%+v", v)
	}
}
