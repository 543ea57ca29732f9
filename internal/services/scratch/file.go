package scratch

import (
	"context"
	"os"
	"sync"
)

// File wraps a downloaded file and cleans up its request directory when closed
type File struct {
	file      *os.File
	size      int64
	dir       string
	workspace *Workspace
	ctx       context.Context
	closeOnce sync.Once
	closeErr  error
}

func (f *File) Read(p []byte) (n int, err error) {
	return f.file.Read(p)
}

func (f *File) Size() int64 {
	return f.size
}

func (f *File) Name() string {
	return f.file.Name()
}

func (f *File) Close() error {
	f.closeOnce.Do(func() {
		f.closeErr = f.file.Close()
		f.workspace.Release(f.ctx, f.dir)
	})
	return f.closeErr
}
