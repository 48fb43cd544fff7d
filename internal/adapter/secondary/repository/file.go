package repository

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"admute/internal/domain"
)

// FileRepository implements domain.PatternSource over plain-text files,
// one pattern per line. This is a secondary adapter.
type FileRepository struct {
	mu sync.Mutex
}

// NewFileRepository creates a new file-based pattern repository.
func NewFileRepository() *FileRepository {
	return &FileRepository{}
}

// ReadLines returns the trimmed, non-empty lines of path in file order.
func (f *FileRepository) ReadLines(path string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return readLines(path)
}

// Append adds pattern as a new last line of path, creating the file if needed.
func (f *FileRepository) Append(path, pattern string) error {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return errors.New("pattern is empty")
	}
	if strings.ContainsAny(pattern, "\r\n") {
		return errors.New("pattern must be a single line")
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	lines, err := readLines(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return writeLines(path, append(lines, pattern))
}

// Remove deletes every line equal to pattern and reports how many were dropped.
func (f *FileRepository) Remove(path, pattern string) (int, error) {
	pattern = strings.TrimSpace(pattern)

	f.mu.Lock()
	defer f.mu.Unlock()

	lines, err := readLines(path)
	if err != nil {
		return 0, err
	}
	kept := lines[:0]
	removed := 0
	for _, line := range lines {
		if line == pattern {
			removed++
			continue
		}
		kept = append(kept, line)
	}
	if removed == 0 {
		return 0, nil
	}
	return removed, writeLines(path, kept)
}

func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read patterns: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	// Split in memory; a line scanner would reject overlong lines.
	var lines []string
	for _, raw := range bytes.Split(data, []byte("\n")) {
		line := strings.TrimSpace(string(raw))
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines, nil
}

func writeLines(path string, lines []string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create pattern dir: %w", err)
		}
	}
	var buf bytes.Buffer
	for _, line := range lines {
		buf.WriteString(line)
		buf.WriteByte('\n')
	}

	// Atomic write
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write tmp: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("rename tmp: %w", err)
	}
	return nil
}

// DefaultPath returns the default pattern file path.
func DefaultPath() string {
	return domain.DefaultConfigFile
}
