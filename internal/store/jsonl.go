package store

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
)

// appendLine writes one JSON line to the file at path, creating it if
// needed, and fsyncs before returning. A line is durable once appendLine
// returns nil.
func appendLine(path string, line []byte) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("append line: %w", err)
	}

	buf := make([]byte, 0, len(line)+1)
	buf = append(buf, line...)
	buf = append(buf, '\n')

	if _, err := f.Write(buf); err != nil {
		f.Close()
		return fmt.Errorf("append line: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("append line: sync: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("append line: close: %w", err)
	}
	return nil
}

// readLines returns every non-empty line of the file at path. A missing
// file reads as empty, so a fresh data directory needs no initialization
// step.
func readLines(path string) ([][]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read lines: %w", err)
	}
	defer f.Close()

	var lines [][]byte
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		lines = append(lines, append([]byte(nil), line...))
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read lines: %w", err)
	}
	return lines, nil
}
