package broadcast

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// RequestKind names what a request asked the presenter for
type RequestKind string

const (
	RequestConfig RequestKind = "config"
	RequestPDF    RequestKind = "pdf"
)

var (
	ErrConfigTimeout = errors.New("TIMEOUT_LOADING_PDFPC_CONFIG")
	ErrPDFTimeout    = errors.New("TIMEOUT_LOADING_PDF_DATA")
	ErrPermission    = errors.New("permission denied")
	ErrChannelClosed = errors.New("broadcast channel closed")
	ErrSendQueueFull = errors.New("broadcast send queue full")
	ErrFrameTooLarge = errors.New("message exceeds relay frame limit")
)

// FrameTooLargeError reports a message whose encoded frame the relay would
// reject. It matches ErrFrameTooLarge.
type FrameTooLargeError struct {
	Command Command
	Size    int64
	Limit   int64
}

func (e *FrameTooLargeError) Error() string {
	return fmt.Sprintf("%s: %s frame is %d bytes, limit %d", ErrFrameTooLarge, e.Command, e.Size, e.Limit)
}

func (e *FrameTooLargeError) Is(target error) bool {
	return target == ErrFrameTooLarge
}

// TimeoutError reports a request nobody answered in time. It matches the
// kind's sentinel and context.DeadlineExceeded.
type TimeoutError struct {
	Kind  RequestKind
	After time.Duration
}

func (e *TimeoutError) Error() string {
	return e.sentinel().Error()
}

func (e *TimeoutError) Is(target error) bool {
	return target == e.sentinel() || target == context.DeadlineExceeded
}

func (e *TimeoutError) sentinel() error {
	if e.Kind == RequestPDF {
		return ErrPDFTimeout
	}
	return ErrConfigTimeout
}

// PermissionError reports a PDF source the process is not allowed to read
type PermissionError struct {
	Path string
	Err  error
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("read %s: %v", e.Path, ErrPermission)
}

func (e *PermissionError) Is(target error) bool {
	return target == ErrPermission
}

func (e *PermissionError) Unwrap() error { return e.Err }
