package afs

import "io"

// ProgressFunc is invoked with the number of unbuffered bytes transferred by
// a streaming operation since the previous invocation. It is called
// frequently enough to keep progress reporting responsive without imposing
// meaningful overhead on throughput.
type ProgressFunc func(delta int64)

// InputStream is a readable handle returned by Device.OpenInput.
type InputStream interface {
	io.Reader
	io.Closer
}

// OutputStream is a writable handle returned by Device.OpenOutput.
type OutputStream interface {
	io.Writer
	io.Closer

	// Finalize verifies that the total byte count written matches the
	// declared expected size (if any) and persists the expected modification
	// time (if any). It must be called after the last Write and before
	// Close, or the underlying data should be considered unverified.
	Finalize() error
}

// countingReader wraps an io.Reader, invoking progress with the number of
// bytes read on every successful Read call.
type countingReader struct {
	r        io.Reader
	progress ProgressFunc
}

// NewCountingReader wraps r so that progress is invoked with the number of
// bytes read on every successful Read call. A nil progress function is
// permitted and results in a plain pass-through reader.
func NewCountingReader(r io.Reader, progress ProgressFunc) io.Reader {
	if progress == nil {
		return r
	}
	return &countingReader{r: r, progress: progress}
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.progress(int64(n))
	}
	return n, err
}

// countingWriter wraps an io.Writer, invoking progress with the number of
// bytes written on every successful Write call.
type countingWriter struct {
	w        io.Writer
	progress ProgressFunc
}

// NewCountingWriter wraps w so that progress is invoked with the number of
// bytes written on every successful Write call. A nil progress function is
// permitted and results in a plain pass-through writer.
func NewCountingWriter(w io.Writer, progress ProgressFunc) io.Writer {
	if progress == nil {
		return w
	}
	return &countingWriter{w: w, progress: progress}
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	if n > 0 {
		c.progress(int64(n))
	}
	return n, err
}

// StreamCopy copies all data from src to dst using a read/write lockstep
// loop, returning the total number of bytes copied. Unlike io.Copy it is
// written explicitly here so that both sides can be wrapped in counting
// readers/writers wired to independent progress callbacks, matching AFS's
// requirement that progress be reported in terms of unbuffered I/O.
func StreamCopy(dst io.Writer, src io.Reader, bufferSize int) (int64, error) {
	if bufferSize <= 0 {
		bufferSize = 128 * 1024
	}
	buffer := make([]byte, bufferSize)
	var total int64
	for {
		n, readErr := src.Read(buffer)
		if n > 0 {
			written, writeErr := dst.Write(buffer[:n])
			total += int64(written)
			if writeErr != nil {
				return total, writeErr
			}
			if written < n {
				return total, io.ErrShortWrite
			}
		}
		if readErr == io.EOF {
			return total, nil
		} else if readErr != nil {
			return total, readErr
		}
	}
}
