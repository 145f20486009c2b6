// Package ingest turns documentation files into chunks and feeds them
// through LLM-based entity extraction into the knowledge graph.
package ingest

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	"github.com/sirupsen/logrus"
)

// FileInfo holds the name and content of one documentation file.
type FileInfo struct {
	Name    string
	Content string
}

// Files yields every regular file in dir over a channel. Unreadable
// files are logged and skipped so one bad file does not stop a run.
func Files(dir string, log *logrus.Logger) <-chan FileInfo {
	if log == nil {
		log = logrus.StandardLogger()
	}
	ch := make(chan FileInfo)

	go func() {
		defer close(ch)

		entries, err := os.ReadDir(dir)
		if err != nil {
			log.Errorf("reading directory %q: %v", dir, err)
			return
		}

		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}
			path := filepath.Join(dir, entry.Name())
			content, err := os.ReadFile(path)
			if err != nil {
				log.Errorf("reading file %q: %v", entry.Name(), err)
				continue
			}
			ch <- FileInfo{Name: entry.Name(), Content: string(content)}
		}
	}()

	return ch
}

// Chunk is one regex-delimited slice of a file.
type Chunk struct {
	Index int
	Text  string
}

// Chunks splits content on every match of pattern and yields the
// segments in order. The text after the final delimiter is always
// emitted, so a document with no matches arrives as a single chunk.
func Chunks(content, pattern string) (<-chan Chunk, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("compiling chunk pattern %q: %w", pattern, err)
	}

	ch := make(chan Chunk)
	go func() {
		defer close(ch)

		indexes := re.FindAllStringIndex(content, -1)
		start := 0
		for i, idx := range indexes {
			ch <- Chunk{Index: i, Text: content[start:idx[0]]}
			start = idx[1]
		}
		ch <- Chunk{Index: len(indexes), Text: content[start:]}
	}()

	return ch, nil
}
