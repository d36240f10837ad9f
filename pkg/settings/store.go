// Package settings persists controller settings in an EEPROM image.
//
// The image starts at Offset with a header of a 4-byte version, the
// CRC-16 of the body and the body length, followed by the body
// encoded in CBOR. Save first invalidates the version so an
// interrupted save never leaves a valid looking image behind.
package settings

import (
	"encoding/binary"
	"io"
	"strconv"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"github.com/golang/glog"

	"github.com/robotalks/telecortex.go/pkg/gcode"
)

const (
	// Version identifies the layout of the stored body.
	Version = "V01"
	// DefaultOffset is where the image starts.
	DefaultOffset = 100
	// DefaultSize is the size of a storage created without hints.
	DefaultSize = 1024

	headerSize = 8
)

// Settings are the values persisted by M500.
type Settings struct {
	ControllerID string `cbor:"1,keyasint"`
	Brightness   byte   `cbor:"2,keyasint"`
}

// Store keeps the settings in RAM and saves/loads them to Storage.
type Store struct {
	Storage  Storage
	Offset   int
	Defaults Settings
	// Apply is called after settings are loaded or reset.
	Apply func(Settings)

	current Settings
	latched bool
	lock    sync.RWMutex
}

// NewStore creates a Store with settings reset to defaults.
func NewStore(storage Storage, defaults Settings) *Store {
	s := &Store{Storage: storage, Offset: DefaultOffset, Defaults: defaults}
	s.current = defaults
	return s
}

// Current returns the settings in RAM.
func (s *Store) Current() Settings {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.current
}

// Update modifies the settings in RAM and applies them.
func (s *Store) Update(fn func(*Settings)) {
	s.lock.Lock()
	fn(&s.current)
	cur := s.current
	s.lock.Unlock()
	s.apply(cur)
}

// Latched tells if a storage error happened since the last save.
func (s *Store) Latched() bool {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.latched
}

// Reset restores the defaults.
func (s *Store) Reset() {
	s.lock.Lock()
	s.current = s.Defaults
	s.lock.Unlock()
	s.apply(s.Defaults)
}

// Save writes the settings to Storage. Only changed bytes are written
// and every write is verified. A failed write latches the error and
// stops further writes until the next Save.
func (s *Store) Save() error {
	if s.Storage == nil {
		return gcode.NewError(gcode.CodeStorage, "Writing to Disabled EEPROM")
	}
	s.lock.Lock()
	defer s.lock.Unlock()
	body, err := cbor.Marshal(&s.current)
	if err != nil {
		return gcode.NewError(gcode.CodeStorage, "Encoding settings: %v", err)
	}
	if s.Offset+headerSize+len(body) > s.Storage.Size() {
		return gcode.NewError(gcode.CodeStorage, "Settings exceed EEPROM size")
	}

	s.latched = false
	w := &imageWriter{store: s, pos: s.Offset}
	w.write([]byte("V00\x00"))
	w.pos += headerSize - len(Version) - 1
	w.crc = 0
	w.write(body)
	if s.latched {
		return gcode.NewError(gcode.CodeStorage, "Error writing to EEPROM!")
	}
	crc := w.crc

	var header [headerSize]byte
	copy(header[:], Version)
	binary.LittleEndian.PutUint16(header[4:], crc)
	binary.LittleEndian.PutUint16(header[6:], uint16(len(body)))
	w.pos = s.Offset
	w.write(header[:])
	if s.latched {
		return gcode.NewError(gcode.CodeStorage, "Error writing to EEPROM!")
	}
	glog.V(2).Infof("settings stored (%d bytes; crc %d)", headerSize+len(body), crc)
	return nil
}

// Load reads the settings from Storage. On a version or CRC mismatch
// the defaults are restored and an error is returned.
func (s *Store) Load() error {
	if s.Storage == nil {
		return gcode.NewError(gcode.CodeStorage, "Reading from Disabled EEPROM")
	}
	if s.Latched() {
		return gcode.NewError(gcode.CodeStorage, "EEPROM error latched")
	}
	r := &imageReader{storage: s.Storage, pos: s.Offset}
	header, err := r.read(headerSize)
	if err != nil {
		return gcode.NewError(gcode.CodeStorage, "Reading EEPROM: %v", err)
	}
	if string(header[:len(Version)]) != Version {
		ver := string(header[:len(Version)])
		if header[0] != 'V' {
			ver = "?"
		}
		s.Reset()
		return gcode.NewError(gcode.CodeStorage, "EEPROM version mismatch! EEPROM=%s, Firmware=%s", ver, Version)
	}
	storedCRC := binary.LittleEndian.Uint16(header[4:])
	size := int(binary.LittleEndian.Uint16(header[6:]))
	r.crc = 0
	body, err := r.read(size)
	if err != nil {
		s.Reset()
		return gcode.NewError(gcode.CodeStorage, "Reading EEPROM: %v", err)
	}
	if r.crc != storedCRC {
		s.Reset()
		return gcode.NewError(gcode.CodeStorage, "EEPROM CRC mismatch! stored %d, calculated %d", storedCRC, r.crc)
	}
	loaded := s.Defaults
	if err := cbor.Unmarshal(body, &loaded); err != nil {
		s.Reset()
		return gcode.NewError(gcode.CodeStorage, "Decoding settings: %v", err)
	}
	s.lock.Lock()
	s.current = loaded
	s.lock.Unlock()
	s.apply(loaded)
	glog.V(2).Infof("settings loaded (%d bytes; crc %d)", headerSize+size, storedCRC)
	return nil
}

// Report writes the settings in RAM as comment lines.
func (s *Store) Report(w io.Writer) error {
	cur := s.Current()
	lines := []string{
		"SET: Controller ID: " + cur.ControllerID,
		"SET: Brightness: " + strconv.Itoa(int(cur.Brightness)),
	}
	var buf []byte
	for _, line := range lines {
		buf = gcode.AppendComment(buf, line)
		buf = append(buf, '\n')
	}
	_, err := w.Write(buf)
	return err
}

func (s *Store) apply(cur Settings) {
	if s.Apply != nil {
		s.Apply(cur)
	}
}

type imageWriter struct {
	store *Store
	pos   int
	crc   uint16
}

func (w *imageWriter) write(data []byte) {
	storage := w.store.Storage
	for _, b := range data {
		if w.store.latched {
			return
		}
		if cur, err := storage.ByteAt(w.pos); err != nil || cur != b {
			err = storage.SetByte(w.pos, b)
			if err == nil {
				cur, err = storage.ByteAt(w.pos)
			}
			if err != nil || cur != b {
				glog.Errorf("EEPROM write at %d failed: %v", w.pos, err)
				w.store.latched = true
				return
			}
		}
		w.crc = UpdateCRC(w.crc, b)
		w.pos++
	}
}

type imageReader struct {
	storage Storage
	pos     int
	crc     uint16
}

func (r *imageReader) read(n int) ([]byte, error) {
	data := make([]byte, n)
	for i := range data {
		b, err := r.storage.ByteAt(r.pos)
		if err != nil {
			return nil, err
		}
		data[i] = b
		r.crc = UpdateCRC(r.crc, b)
		r.pos++
	}
	return data, nil
}
