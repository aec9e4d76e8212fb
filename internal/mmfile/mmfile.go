// Package mmfile maps data files read-only for layout and printing.
package mmfile

import "sync"

// File is a read-only view of a file's contents.
type File struct {
	data      []byte
	release   func() error
	closeOnce sync.Once
	closeErr  error
}

// Bytes returns the contents. The slice must not be used after Close.
func (f *File) Bytes() []byte { return f.data }

// Len returns the file size in bytes.
func (f *File) Len() int { return len(f.data) }

// Close releases the mapping. Calling Close more than once is a no-op.
func (f *File) Close() error {
	f.closeOnce.Do(func() {
		if f.release != nil {
			f.closeErr = f.release()
		}
		f.data = nil
	})
	return f.closeErr
}
