package settings

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
)

// ErrAddressOutOfRange indicates an access beyond the storage size.
var ErrAddressOutOfRange = errors.New("address out of range")

// Storage is a byte addressable persistent memory.
type Storage interface {
	Size() int
	ByteAt(addr int) (byte, error)
	SetByte(addr int, b byte) error
}

// MemEEPROM is an in-memory Storage.
type MemEEPROM struct {
	Data []byte
	// Stuck lists addresses that silently ignore writes.
	Stuck map[int]bool
	// Writes counts the bytes written.
	Writes int

	lock sync.Mutex
}

// NewMemEEPROM creates an erased MemEEPROM.
func NewMemEEPROM(size int) *MemEEPROM {
	data := make([]byte, size)
	for i := range data {
		data[i] = 0xff
	}
	return &MemEEPROM{Data: data}
}

// Size implements Storage.
func (m *MemEEPROM) Size() int {
	return len(m.Data)
}

// ByteAt implements Storage.
func (m *MemEEPROM) ByteAt(addr int) (byte, error) {
	m.lock.Lock()
	defer m.lock.Unlock()
	if addr < 0 || addr >= len(m.Data) {
		return 0, ErrAddressOutOfRange
	}
	return m.Data[addr], nil
}

// SetByte implements Storage.
func (m *MemEEPROM) SetByte(addr int, b byte) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	if addr < 0 || addr >= len(m.Data) {
		return ErrAddressOutOfRange
	}
	m.Writes++
	if !m.Stuck[addr] {
		m.Data[addr] = b
	}
	return nil
}

// FileEEPROM is a Storage backed by a file of fixed size.
type FileEEPROM struct {
	file *os.File
	data []byte
	lock sync.Mutex
}

// OpenFileEEPROM opens or creates the file, extending it to size
// with erased (0xff) bytes.
func OpenFileEEPROM(fn string, size int) (*FileEEPROM, error) {
	f, err := os.OpenFile(fn, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, err
	}
	data := make([]byte, size)
	n, err := io.ReadFull(f, data)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		f.Close()
		return nil, fmt.Errorf("read %s error: %w", fn, err)
	}
	if n < size {
		for i := n; i < size; i++ {
			data[i] = 0xff
		}
		if _, err = f.WriteAt(data[n:], int64(n)); err != nil {
			f.Close()
			return nil, fmt.Errorf("extend %s error: %w", fn, err)
		}
	}
	return &FileEEPROM{file: f, data: data}, nil
}

// Size implements Storage.
func (e *FileEEPROM) Size() int {
	return len(e.data)
}

// ByteAt implements Storage.
func (e *FileEEPROM) ByteAt(addr int) (byte, error) {
	e.lock.Lock()
	defer e.lock.Unlock()
	if addr < 0 || addr >= len(e.data) {
		return 0, ErrAddressOutOfRange
	}
	return e.data[addr], nil
}

// SetByte implements Storage.
func (e *FileEEPROM) SetByte(addr int, b byte) error {
	e.lock.Lock()
	defer e.lock.Unlock()
	if addr < 0 || addr >= len(e.data) {
		return ErrAddressOutOfRange
	}
	if _, err := e.file.WriteAt([]byte{b}, int64(addr)); err != nil {
		return err
	}
	e.data[addr] = b
	return nil
}

// Close implements io.Closer.
func (e *FileEEPROM) Close() error {
	return e.file.Close()
}
