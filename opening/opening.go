// Package opening implements the file-backed opening-book source of
// spec.md §4.4: index a text file's lines by byte offset once, then hand
// them out either in file order or via a seeded shuffle, so repeat
// tournaments over the same seed reproduce the same opening sequence.
// Grounded on original_source/src/openings.cpp's Openings class.
package opening

import (
	"bufio"
	"os"
	"sync"
	"time"
)

// Source hands out opening strings by round-robin index into a
// (possibly shuffled) permutation of a file's lines.
type Source struct {
	mu    sync.Mutex
	file  *os.File
	index []int64 // byte offset of each line
}

// Open indexes fileName's lines by byte offset. If random is true, the
// index is Fisher-Yates shuffled using a SplitMix64 stream seeded by seed,
// or by the current time if seed is zero. An empty fileName yields a
// Source with no openings (Next always returns "", 0).
func Open(fileName string, random bool, seed uint64) (*Source, error) {
	if fileName == "" {
		return &Source{}, nil
	}

	f, err := os.Open(fileName)
	if err != nil {
		return nil, err
	}

	var offsets []int64
	var pos int64
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)
	for scanner.Scan() {
		offsets = append(offsets, pos)
		pos += int64(len(scanner.Bytes())) + 1 // +1 for the newline
	}
	if err := scanner.Err(); err != nil {
		f.Close()
		return nil, err
	}

	if random {
		state := seed
		if state == 0 {
			state = uint64(time.Now().UnixNano())
		}
		for i := len(offsets) - 1; i > 0; i-- {
			j := int(splitMix64(&state) % uint64(i+1))
			offsets[i], offsets[j] = offsets[j], offsets[i]
		}
	}

	return &Source{file: f, index: offsets}, nil
}

// Close releases the underlying file, if any.
func (s *Source) Close() error {
	if s.file == nil {
		return nil
	}
	return s.file.Close()
}

// Next returns the opening string at position idx (wrapping modulo the
// number of indexed lines) and the repeat count — idx/len(index) — so
// callers can alternate colors on repeated openings. An empty Source
// (no opening file configured) always returns ("", 0).
func (s *Source) Next(idx int) (opening string, round int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.file == nil || len(s.index) == 0 {
		return "", 0, nil
	}

	n := len(s.index)
	if _, err := s.file.Seek(s.index[idx%n], 0); err != nil {
		return "", 0, err
	}

	scanner := bufio.NewScanner(s.file)
	scanner.Buffer(make([]byte, 64*1024), 1<<20)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", 0, err
		}
		return "", idx / n, nil
	}
	return scanner.Text(), idx / n, nil
}

// Len returns the number of indexed opening lines.
func (s *Source) Len() int {
	return len(s.index)
}

// splitMix64 advances state and returns the next pseudo-random value,
// matching original_source/src/util.cpp's prng().
func splitMix64(state *uint64) uint64 {
	*state += 0x9E3779B97F4A7C15
	z := *state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	z ^= z >> 31
	return z
}
