package train

import (
	"encoding/csv"
	"os"
	"strconv"
	"time"

	"github.com/pkg/errors"

	"github.com/FlavioCFOliveira/nntrain/internal/data"
	"github.com/FlavioCFOliveira/nntrain/internal/net"
)

// CSVLogger writes the evaluation error of every round to a CSV file.
type CSVLogger struct {
	Filename string
	Append   bool
	Network  *net.Network
	Data     data.Dataset

	file   *os.File
	writer *csv.Writer
	start  time.Time
	err    error
}

// NewCSVLogger creates a new CSVLogger.
func NewCSVLogger(filename string, append bool, n *net.Network, d data.Dataset) *CSVLogger {
	return &CSVLogger{
		Filename: filename,
		Append:   append,
		Network:  n,
		Data:     d,
	}
}

// Open creates or opens the file and writes the header when it is empty.
func (c *CSVLogger) Open() error {
	mode := os.O_CREATE | os.O_WRONLY
	if c.Append {
		mode |= os.O_APPEND
	} else {
		mode |= os.O_TRUNC
	}

	file, err := os.OpenFile(c.Filename, mode, 0644)
	if err != nil {
		return errors.Wrapf(err, "csv logger: open %s", c.Filename)
	}
	c.file = file
	c.writer = csv.NewWriter(file)
	c.start = time.Now()

	info, err := file.Stat()
	if err == nil && (info.Size() == 0 || !c.Append) {
		c.writer.Write([]string{"round", "error", "time_seconds"})
		c.writer.Flush()
	}
	return c.writer.Error()
}

// Round is a RoundFunc. Write failures are kept and reported by Close.
func (c *CSVLogger) Round(round int) {
	if c.writer == nil || c.err != nil {
		return
	}

	e, err := Evaluate(c.Network, c.Data)
	if err != nil {
		c.err = errors.Wrapf(err, "round %d", round)
		return
	}

	record := []string{
		strconv.Itoa(round),
		strconv.FormatFloat(e, 'f', 6, 64),
		strconv.FormatFloat(time.Since(c.start).Seconds(), 'f', 2, 64),
	}
	if err := c.writer.Write(record); err != nil {
		c.err = errors.Wrap(err, "csv logger: write")
		return
	}
	c.writer.Flush()
}

// Close flushes and closes the file, returning the first error seen since Open.
func (c *CSVLogger) Close() error {
	if c.file == nil {
		return c.err
	}
	c.writer.Flush()
	if c.err == nil {
		c.err = c.writer.Error()
	}
	if err := c.file.Close(); err != nil && c.err == nil {
		c.err = err
	}
	c.file = nil
	c.writer = nil
	return c.err
}
