package scm

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
)

const (
	sizeUint32  = 4
	sizeFloat64 = 8
)

func readLittleByte(rd io.Reader, v interface{}) error {
	return binary.Read(rd, binary.LittleEndian, v)
}

// recordReader 读取定长记录，并在分配前校验剩余字节数
type recordReader struct {
	rd *bytes.Reader
}

func newRecordReader(data []byte) *recordReader {
	return &recordReader{rd: bytes.NewReader(data)}
}

func (r *recordReader) remaining() int64 {
	return int64(r.rd.Len())
}

// need fails unless count elements of size bytes are still available.
func (r *recordReader) need(section string, count uint64, size uint64) error {
	avail := uint64(r.remaining())
	if count > 0 && size > 0 && count > avail/size {
		return malformed(section, "declares %d elements of %d bytes, only %d bytes left", count, size, avail)
	}
	return nil
}

func (r *recordReader) readUint32(section string) (uint32, error) {
	if err := r.need(section, 1, sizeUint32); err != nil {
		return 0, err
	}
	var v uint32
	if err := readLittleByte(r.rd, &v); err != nil {
		return 0, ioFailure(section, err)
	}
	return v, nil
}

func (r *recordReader) readUint32s(section string, n int) ([]uint32, error) {
	if err := r.need(section, uint64(n), sizeUint32); err != nil {
		return nil, err
	}
	vs := make([]uint32, n)
	if err := readLittleByte(r.rd, vs); err != nil {
		return nil, ioFailure(section, err)
	}
	return vs, nil
}

func (r *recordReader) readFloat64s(section string, n int) ([]float64, error) {
	if err := r.need(section, uint64(n), sizeFloat64); err != nil {
		return nil, err
	}
	vs := make([]float64, n)
	if err := readLittleByte(r.rd, vs); err != nil {
		return nil, ioFailure(section, err)
	}
	return vs, nil
}

func (r *recordReader) readBytes(section string, n int) ([]byte, error) {
	if err := r.need(section, uint64(n), 1); err != nil {
		return nil, err
	}
	bt := make([]byte, n)
	if _, err := io.ReadFull(r.rd, bt); err != nil {
		return nil, ioFailure(section, err)
	}
	return bt, nil
}

// peek returns up to n leading bytes without consuming them.
func (r *recordReader) peek(n int) []byte {
	pos, _ := r.rd.Seek(0, io.SeekCurrent)
	bt := make([]byte, n)
	m, _ := r.rd.ReadAt(bt, pos)
	return bt[:m]
}

func (r *recordReader) expectEnd() error {
	if left := r.remaining(); left != 0 {
		return malformed(SECTION_TRAILER, "%d unexpected trailing bytes", left)
	}
	return nil
}

// readAll slurps rd so that declared section sizes can be checked against
// the real input length.
func readAll(rd io.Reader) ([]byte, error) {
	data, err := io.ReadAll(rd)
	if err != nil {
		return nil, ioFailure("", err)
	}
	return data, nil
}

// readFile opens path, reads it completely and closes it again.
func readFile(path string) ([]byte, error) {
	f, e := os.Open(path)
	if e != nil {
		return nil, notFound(path, e)
	}
	defer f.Close()
	data, err := readAll(f)
	if err != nil {
		return nil, withPath(err, path)
	}
	return data, nil
}
