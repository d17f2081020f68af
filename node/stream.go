package node

import (
	"io"
	"os"
	"sync"

	"github.com/mwantia/mediarepo/data/errors"
)

// ChunkSize is the largest chunk Stream.Next yields.
const ChunkSize = 1024

// Stream is a single-consumer, pull-based reader over a file handle taken
// from a File. It cannot be restarted.
type Stream struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	done   bool
	closed bool
}

var _ io.ReadCloser = (*Stream)(nil)

func newStream(path string, file *os.File) *Stream {
	return &Stream{path: path, file: file}
}

// Next returns the next chunk of at most ChunkSize bytes. After the first
// zero-byte read it returns io.EOF on every call; a failed read returns a
// NoSuchFile error.
func (s *Stream) Next() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done || s.closed {
		return nil, io.EOF
	}

	buffer := make([]byte, ChunkSize)
	n, err := s.file.Read(buffer)
	if n == 0 {
		if err == nil || err == io.EOF {
			s.done = true
			return nil, io.EOF
		}
		return nil, errors.NoSuchFile(err, s.path)
	}

	return buffer[:n], nil
}

// Read implements io.Reader on top of the same handle.
func (s *Stream) Read(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.done || s.closed {
		return 0, io.EOF
	}

	n, err := s.file.Read(p)
	if err == io.EOF {
		s.done = true
	} else if err != nil {
		return n, errors.NoSuchFile(err, s.path)
	}

	return n, err
}

// WriteTo drains the stream chunk by chunk into w.
func (s *Stream) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for {
		chunk, err := s.Next()
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}

		n, err := w.Write(chunk)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
}

func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	if err := s.file.Close(); err != nil {
		return errors.Directory(err, s.path)
	}

	return nil
}
