package sample

import (
	"bytes"
	"encoding/binary"
	"io"
	"strings"
	"testing"

	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkg114mc/c-gomoku-cli"
)

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

func TestCSVFormatMatchesLetterNumberNotation(t *testing.T) {
	var buf bytes.Buffer
	sink, err := Open(nopWriteCloser{&buf}, FormatCSV, false)
	require.NoError(t, err)

	err = sink.Write(Sample{
		BoardSize: 15,
		History:   []gomoku.Cell{gomoku.CellFromXY(7, 7, 15)},
		Move:      gomoku.CellFromXY(8, 8, 15),
		Result:    gomoku.Win,
	})
	require.NoError(t, err)
	require.NoError(t, sink.Close())

	assert.Equal(t, "h8,i9,0\n", buf.String())
}

func TestBinaryHeaderBitPacking(t *testing.T) {
	var buf bytes.Buffer
	sink, err := Open(nopWriteCloser{&buf}, FormatBinary, false)
	require.NoError(t, err)

	history := []gomoku.Cell{gomoku.CellFromXY(0, 0, 15), gomoku.CellFromXY(1, 1, 15)}
	err = sink.Write(Sample{
		BoardSize: 15,
		History:   history,
		Move:      gomoku.CellFromXY(2, 2, 15),
		Result:    gomoku.Draw,
	})
	require.NoError(t, err)
	require.NoError(t, sink.Close())

	raw := buf.Bytes()
	require.Len(t, raw, 4+len(history)*2)

	packed := binary.LittleEndian.Uint16(raw[0:2])
	boardSize := packed & 0x1F
	ply := (packed >> 5) & 0x1FF
	result := (packed >> 14) & 0x3
	move := binary.LittleEndian.Uint16(raw[2:4])

	assert.Equal(t, uint16(15), boardSize)
	assert.Equal(t, uint16(2), ply)
	assert.Equal(t, uint16(gomoku.Draw), result)
	assert.Equal(t, uint16(gomoku.CellFromXY(2, 2, 15)), move)

	for i, cell := range history {
		got := binary.LittleEndian.Uint16(raw[4+i*2 : 6+i*2])
		assert.Equal(t, uint16(cell), got)
	}
}

func TestBinaryRejectsOverlongHistory(t *testing.T) {
	var buf bytes.Buffer
	sink, err := Open(nopWriteCloser{&buf}, FormatBinary, false)
	require.NoError(t, err)

	history := make([]gomoku.Cell, maxHistory)
	err = sink.Write(Sample{BoardSize: 15, History: history})
	assert.Error(t, err)
}

func TestCompressedStreamDecompressesBack(t *testing.T) {
	var buf bytes.Buffer
	sink, err := Open(nopWriteCloser{&buf}, FormatCSV, true)
	require.NoError(t, err)

	require.NoError(t, sink.Write(Sample{
		BoardSize: 15,
		History:   nil,
		Move:      gomoku.CellFromXY(7, 7, 15),
		Result:    gomoku.Loss,
	}))
	require.NoError(t, sink.Close())

	dec, err := zstd.NewReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer dec.Close()

	out, err := io.ReadAll(dec)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(out), ",h8,"))
}
