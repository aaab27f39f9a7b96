// Package wavio reads and writes RIFF/WAVE PCM files.
package wavio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/cwbudde/algo-pitch/dsp/core"
)

var (
	// ErrFormat is returned for files that are not PCM WAVE.
	ErrFormat = errors.New("wavio: invalid WAV file")
	// ErrSeek is returned when seeking outside the data chunk.
	ErrSeek = errors.New("wavio: seek out of range")
)

const formatPCM = 1

// Format describes the sample layout of a PCM stream.
type Format struct {
	Channels    int
	SampleWidth int // bytes per sample
	SampleRate  int
}

func (f Format) blockAlign() int { return f.Channels * f.SampleWidth }

// header is the canonical 44-byte PCM header.
type header struct {
	ChunkID       [4]byte
	ChunkSize     uint32
	Format        [4]byte
	Subchunk1ID   [4]byte
	Subchunk1Size uint32
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
	Subchunk2ID   [4]byte
	Subchunk2Size uint32
}

// Reader streams frames from the data chunk of a WAVE file.
type Reader struct {
	rs     io.ReadSeeker
	closer io.Closer

	format  Format
	frames  int
	dataOff int64
	pos     int
	buf     []byte
}

// Open opens the WAVE file at path.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("wavio: %w", err)
	}
	r, err := NewReader(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	r.closer = f
	return r, nil
}

// NewReader parses the header of rs and positions it at the first frame.
func NewReader(rs io.ReadSeeker) (*Reader, error) {
	end, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("wavio: %w", err)
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("wavio: %w", err)
	}

	var riff [12]byte
	if _, err := io.ReadFull(rs, riff[:]); err != nil {
		return nil, fmt.Errorf("%w: short header", ErrFormat)
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return nil, fmt.Errorf("%w: missing RIFF/WAVE signature", ErrFormat)
	}

	r := &Reader{rs: rs}
	haveFmt := false
	off := int64(12)
	for {
		var ch [8]byte
		if _, err := io.ReadFull(rs, ch[:]); err != nil {
			return nil, fmt.Errorf("%w: missing data chunk", ErrFormat)
		}
		off += 8
		id := string(ch[0:4])
		size := int64(binary.LittleEndian.Uint32(ch[4:8]))

		switch id {
		case "fmt ":
			if size < 16 {
				return nil, fmt.Errorf("%w: fmt chunk too short", ErrFormat)
			}
			var fmtChunk [16]byte
			if _, err := io.ReadFull(rs, fmtChunk[:]); err != nil {
				return nil, fmt.Errorf("%w: fmt chunk: %w", ErrFormat, err)
			}
			if tag := binary.LittleEndian.Uint16(fmtChunk[0:2]); tag != formatPCM {
				return nil, fmt.Errorf("%w: unsupported audio format %d (only PCM is supported)", ErrFormat, tag)
			}
			r.format = Format{
				Channels:    int(binary.LittleEndian.Uint16(fmtChunk[2:4])),
				SampleRate:  int(binary.LittleEndian.Uint32(fmtChunk[4:8])),
				SampleWidth: int(binary.LittleEndian.Uint16(fmtChunk[14:16])+7) / 8,
			}
			if r.format.Channels < 1 || r.format.SampleRate < 1 || r.format.SampleWidth < 1 {
				return nil, fmt.Errorf("%w: bad fmt chunk %+v", ErrFormat, r.format)
			}
			haveFmt = true
		case "data":
			if !haveFmt {
				return nil, fmt.Errorf("%w: data chunk before fmt chunk", ErrFormat)
			}
			// Streaming writers leave the size unset; trust the file length.
			size = min(size, end-off)
			r.dataOff = off
			r.frames = int(size) / r.format.blockAlign()
			if _, err := rs.Seek(off, io.SeekStart); err != nil {
				return nil, fmt.Errorf("wavio: %w", err)
			}
			return r, nil
		}

		// Chunks are word aligned.
		off += size + size&1
		if _, err := rs.Seek(off, io.SeekStart); err != nil {
			return nil, fmt.Errorf("wavio: %w", err)
		}
	}
}

// Format returns the stream layout.
func (r *Reader) Format() Format { return r.format }

// Channels returns the number of interleaved channels.
func (r *Reader) Channels() int { return r.format.Channels }

// SampleWidth returns the sample size in bytes.
func (r *Reader) SampleWidth() int { return r.format.SampleWidth }

// SampleRate returns the frame rate in Hz.
func (r *Reader) SampleRate() int { return r.format.SampleRate }

// Frames returns the total number of frames.
func (r *Reader) Frames() int { return r.frames }

// Position returns the index of the next frame to be read.
func (r *Reader) Position() int { return r.pos }

// ReadFrames reads up to limit frames and returns the count and the raw
// interleaved bytes. At the end of the data it returns 0 frames and a nil
// error. The byte slice is reused by the next call.
func (r *Reader) ReadFrames(limit int) (int, []byte, error) {
	n := min(limit, r.frames-r.pos)
	if n <= 0 {
		return 0, nil, nil
	}
	size := n * r.format.blockAlign()
	if cap(r.buf) < size {
		r.buf = make([]byte, size)
	}
	buf := r.buf[:size]
	if _, err := io.ReadFull(r.rs, buf); err != nil {
		return 0, nil, fmt.Errorf("wavio: read frames: %w", err)
	}
	r.pos += n
	return n, buf, nil
}

// ReadPCM16 reads up to limit frames of 16-bit samples.
func (r *Reader) ReadPCM16(limit int) ([]int16, error) {
	if r.format.SampleWidth != 2 {
		return nil, fmt.Errorf("%w: sample width %d is not 16-bit", ErrFormat, r.format.SampleWidth)
	}
	_, raw, err := r.ReadFrames(limit)
	if err != nil {
		return nil, err
	}
	return core.DecodePCM16LE(raw), nil
}

// Seek positions the reader at frame.
func (r *Reader) Seek(frame int) error {
	if frame < 0 || frame > r.frames {
		return fmt.Errorf("%w: %d not in [0, %d]", ErrSeek, frame, r.frames)
	}
	if _, err := r.rs.Seek(r.dataOff+int64(frame*r.format.blockAlign()), io.SeekStart); err != nil {
		return fmt.Errorf("wavio: %w", err)
	}
	r.pos = frame
	return nil
}

// Close closes the underlying file when the reader was opened by Open.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	err := r.closer.Close()
	r.closer = nil
	return err
}

// Encode writes raw interleaved PCM data with a canonical 44-byte header.
func Encode(w io.Writer, f Format, raw []byte) error {
	if f.Channels < 1 || f.SampleWidth < 1 || f.SampleRate < 1 {
		return fmt.Errorf("%w: bad format %+v", ErrFormat, f)
	}
	if len(raw)%f.blockAlign() != 0 {
		return fmt.Errorf("%w: %d bytes is not a whole number of frames", ErrFormat, len(raw))
	}

	dataSize := uint32(len(raw))
	h := header{
		ChunkID:       [4]byte{'R', 'I', 'F', 'F'},
		ChunkSize:     36 + dataSize,
		Format:        [4]byte{'W', 'A', 'V', 'E'},
		Subchunk1ID:   [4]byte{'f', 'm', 't', ' '},
		Subchunk1Size: 16,
		AudioFormat:   formatPCM,
		NumChannels:   uint16(f.Channels),
		SampleRate:    uint32(f.SampleRate),
		ByteRate:      uint32(f.SampleRate * f.blockAlign()),
		BlockAlign:    uint16(f.blockAlign()),
		BitsPerSample: uint16(8 * f.SampleWidth),
		Subchunk2ID:   [4]byte{'d', 'a', 't', 'a'},
		Subchunk2Size: dataSize,
	}

	buf := bytes.NewBuffer(make([]byte, 0, 44+len(raw)))
	if err := binary.Write(buf, binary.LittleEndian, h); err != nil {
		return fmt.Errorf("wavio: write header: %w", err)
	}
	buf.Write(raw)
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("wavio: %w", err)
	}
	return nil
}

// WriteFile encodes raw data into a new file at path.
func WriteFile(path string, f Format, raw []byte) (err error) {
	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("wavio: %w", err)
	}
	defer func() {
		if cerr := out.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("wavio: %w", cerr)
		}
	}()
	return Encode(out, f, raw)
}
