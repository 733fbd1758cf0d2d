package logging

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"
)

// FileWriter appends log lines to dir/filename and rotates by size and age.
// Rotated files are gzipped and only the newest maxFiles are kept.
type FileWriter struct {
	mu       sync.Mutex
	dir      string
	filename string
	maxSize  int64
	maxFiles int
	maxAge   time.Duration
	now      func() time.Time

	file     *os.File
	size     int64
	openedAt time.Time
}

// NewFileWriter opens (or creates) the active log file.
func NewFileWriter(dir, filename string, maxSizeMB, maxFiles int) (*FileWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	if maxSizeMB <= 0 {
		maxSizeMB = 10
	}
	if maxFiles <= 0 {
		maxFiles = 5
	}
	fw := &FileWriter{
		dir:      dir,
		filename: filename,
		maxSize:  int64(maxSizeMB) * 1024 * 1024,
		maxFiles: maxFiles,
		maxAge:   24 * time.Hour,
		now:      time.Now,
	}
	if err := fw.open(); err != nil {
		return nil, err
	}
	return fw, nil
}

func (fw *FileWriter) path() string {
	return filepath.Join(fw.dir, fw.filename)
}

func (fw *FileWriter) open() error {
	f, err := os.OpenFile(fw.path(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("stat log file: %w", err)
	}
	fw.file = f
	fw.size = info.Size()
	fw.openedAt = fw.now()
	return nil
}

func (fw *FileWriter) Write(p []byte) (int, error) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fw.file == nil {
		return 0, os.ErrClosed
	}
	if fw.size > 0 && (fw.size+int64(len(p)) > fw.maxSize || fw.now().Sub(fw.openedAt) > fw.maxAge) {
		if err := fw.rotate(); err != nil {
			return 0, err
		}
	}
	n, err := fw.file.Write(p)
	fw.size += int64(n)
	return n, err
}

// rotate must be called with mu held.
func (fw *FileWriter) rotate() error {
	if err := fw.file.Close(); err != nil {
		return fmt.Errorf("close log file: %w", err)
	}
	rotated := fmt.Sprintf("%s.%s", fw.path(), fw.now().Format("20060102-150405.000"))
	if err := os.Rename(fw.path(), rotated); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("rename log file: %w", err)
	}
	if err := gzipFile(rotated); err != nil {
		return fmt.Errorf("compress log file: %w", err)
	}
	fw.prune()
	return fw.open()
}

func gzipFile(path string) error {
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(path + ".gz")
	if err != nil {
		return err
	}
	zw := gzip.NewWriter(out)
	_, copyErr := io.Copy(zw, in)
	closeErr := zw.Close()
	fileErr := out.Close()
	for _, err := range []error{copyErr, closeErr, fileErr} {
		if err != nil {
			os.Remove(path + ".gz")
			return err
		}
	}
	return os.Remove(path)
}

func (fw *FileWriter) prune() {
	matches, err := filepath.Glob(fw.path() + ".*")
	if err != nil || len(matches) <= fw.maxFiles {
		return
	}
	// Rotated names embed a sortable timestamp.
	sort.Strings(matches)
	for _, old := range matches[:len(matches)-fw.maxFiles] {
		os.Remove(old)
	}
}

// Close closes the active file.
func (fw *FileWriter) Close() error {
	fw.mu.Lock()
	defer fw.mu.Unlock()
	if fw.file == nil {
		return nil
	}
	err := fw.file.Close()
	fw.file = nil
	return err
}
