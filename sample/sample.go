// Package sample implements the training-data sample sink of spec.md
// §4.8: positions sampled during play are exported either as CSV text or
// as a compact binary record stream, optionally zstd-compressed.
// Grounded on original_source/src/game.cpp's Sample/export_samples_bin/
// export_samples_csv.
package sample

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/nkg114mc/c-gomoku-cli"
)

// Sample is one recorded (position, move) pair with its eventual game
// result, from the mover-to-move's own point of view at the time of
// recording — result is filled in once the game concludes.
type Sample struct {
	BoardSize int
	History   []gomoku.Cell // move sequence leading to this position
	Move      gomoku.Cell   // the move actually played from this position
	Result    gomoku.Outcome
}

// Format selects the on-disk sample encoding.
type Format int

const (
	FormatCSV Format = iota
	FormatBinary
)

// Sink writes a stream of samples to an underlying file, optionally
// wrapped in zstd compression.
type Sink struct {
	format Format
	w      *bufio.Writer
	zw     *zstd.Encoder // non-nil when compression is enabled
	closer io.Closer
}

// Open wraps dst for writing samples in the given format. When compress is
// true, all sample bytes are streamed through a zstd encoder before
// reaching dst.
func Open(dst io.WriteCloser, format Format, compress bool) (*Sink, error) {
	s := &Sink{format: format, closer: dst}

	if compress {
		zw, err := zstd.NewWriter(dst)
		if err != nil {
			return nil, err
		}
		s.zw = zw
		s.w = bufio.NewWriter(zw)
	} else {
		s.w = bufio.NewWriter(dst)
	}
	return s, nil
}

// Write encodes one sample in the sink's configured format.
func (s *Sink) Write(sample Sample) error {
	switch s.format {
	case FormatCSV:
		return s.writeCSV(sample)
	case FormatBinary:
		return s.writeBinary(sample)
	default:
		return fmt.Errorf("sample: unknown format %d", s.format)
	}
}

func (s *Sink) writeCSV(sample Sample) error {
	pos, err := formatOpeningPosition(sample.History, sample.BoardSize)
	if err != nil {
		return err
	}
	move, err := formatOpeningPosition([]gomoku.Cell{sample.Move}, sample.BoardSize)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(s.w, "%s,%s,%d\n", pos, move, sample.Result)
	return err
}

// maxHistory matches the original's fixed-size stack buffer bound and
// guards against writing a corrupt over-long record.
const maxHistory = 1024

// writeBinary encodes a 4-byte bitpacked header {boardsize:5, ply:9,
// result:2, move:16} followed by ply little-endian uint16 move cells,
// matching original_source's Entry{EntryHead, position[]} layout. The
// result field carries gomoku.Outcome's own encoding (Win=0/Loss=1/
// Draw=2), not original_source's (Loss=0/Draw=1/Win=2) — this sink has
// no external reader to stay wire-compatible with.
func (s *Sink) writeBinary(sample Sample) error {
	ply := len(sample.History)
	if ply >= maxHistory {
		return fmt.Errorf("sample: history of %d moves exceeds %d-move limit", ply, maxHistory)
	}

	var packed uint16
	packed |= uint16(sample.BoardSize) & 0x1F
	packed |= (uint16(ply) & 0x1FF) << 5
	packed |= (uint16(sample.Result) & 0x3) << 14

	header := make([]byte, 4)
	binary.LittleEndian.PutUint16(header[0:2], packed)
	binary.LittleEndian.PutUint16(header[2:4], uint16(sample.Move))
	if _, err := s.w.Write(header); err != nil {
		return err
	}

	body := make([]byte, ply*2)
	for i, cell := range sample.History {
		binary.LittleEndian.PutUint16(body[i*2:i*2+2], uint16(cell))
	}
	_, err := s.w.Write(body)
	return err
}

// Close flushes buffered output, finalizes the zstd frame if compression
// is enabled, and closes the underlying destination.
func (s *Sink) Close() error {
	if err := s.w.Flush(); err != nil {
		return err
	}
	if s.zw != nil {
		if err := s.zw.Close(); err != nil {
			return err
		}
	}
	return s.closer.Close()
}

func formatOpeningPosition(cells []gomoku.Cell, boardSize int) (string, error) {
	out := make([]byte, 0, len(cells)*3)
	for _, c := range cells {
		x, y := gomoku.XY(c, boardSize)
		if x < 0 || x >= 26 {
			return "", fmt.Errorf("sample: x coordinate %d out of letter range", x)
		}
		out = append(out, byte('a'+x))
		out = append(out, []byte(fmt.Sprintf("%d", y+1))...)
	}
	return string(out), nil
}
