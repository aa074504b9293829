package source

import (
	"bufio"
	"errors"
	"io"
)

const readerBufSize = 64 * 1024

// LineReader reads an input one line at a time so that a trace of any size is
// parsed with bounded memory. Line terminators (\n, \r\n) and a leading BOM are
// stripped; the final line does not need a terminator.
type LineReader struct {
	r     *bufio.Reader
	num   int
	flags Flags
	err   error
	done  bool
}

func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{r: bufio.NewReaderSize(r, readerBufSize)}
}

// Next returns the next line. It returns false at end of input or after a read
// error; Err tells the two apart.
func (lr *LineReader) Next() (Line, bool) {
	if lr.done {
		return Line{}, false
	}
	text, err := lr.r.ReadString('\n')
	if err != nil {
		lr.done = true
		if !errors.Is(err, io.EOF) {
			lr.err = err
			return Line{}, false
		}
		if text == "" {
			return Line{}, false
		}
	}

	lr.num++
	if lr.num == 1 {
		var bom bool
		if text, bom = removeBOM(text); bom {
			lr.flags |= HadBOM
		}
	}
	text, crlf := trimEOL(text)
	if crlf {
		lr.flags |= NormalizedCRLF
	}
	return Line{Num: lr.num, Text: text}, true
}

// Err returns the first read error other than io.EOF.
func (lr *LineReader) Err() error {
	return lr.err
}

// Lines reports how many lines were returned so far.
func (lr *LineReader) Lines() int {
	return lr.num
}

func (lr *LineReader) Flags() Flags {
	return lr.flags
}
