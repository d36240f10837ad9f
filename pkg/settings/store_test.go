package settings

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/robotalks/telecortex.go/pkg/gcode"
)

var testDefaults = Settings{ControllerID: "default", Brightness: 255}

func requireStorageError(t *testing.T, err error) *gcode.Error {
	require.Error(t, err)
	perr := gcode.AsError(err, 0)
	require.Equal(t, gcode.CodeStorage, perr.Code)
	return perr
}

func TestCRC(t *testing.T) {
	require.Equal(t, uint16(0), CRC(nil))
	require.Equal(t, uint16(0x31C3), CRC([]byte("123456789")))
	require.Equal(t, CRC([]byte("123456789")), UpdateCRC(CRC([]byte("1234")), []byte("56789")...))
}

func TestSaveLoad(t *testing.T) {
	mem := NewMemEEPROM(DefaultSize)
	var applied []Settings
	s := NewStore(mem, testDefaults)
	s.Apply = func(cur Settings) { applied = append(applied, cur) }

	s.Update(func(cur *Settings) {
		cur.ControllerID = "cortex-1"
		cur.Brightness = 64
	})
	require.NoError(t, s.Save())
	require.Equal(t, "V01", string(mem.Data[DefaultOffset:DefaultOffset+3]))

	s.Reset()
	require.Equal(t, testDefaults, s.Current())
	require.NoError(t, s.Load())
	require.Equal(t, Settings{ControllerID: "cortex-1", Brightness: 64}, s.Current())
	require.Equal(t, s.Current(), applied[len(applied)-1])

	writes := mem.Writes
	require.NoError(t, s.Save())
	require.Equal(t, writes+2, mem.Writes)
}

func TestLoadErased(t *testing.T) {
	s := NewStore(NewMemEEPROM(DefaultSize), testDefaults)
	s.Update(func(cur *Settings) { cur.Brightness = 1 })
	err := requireStorageError(t, s.Load())
	require.Equal(t, "E003: EEPROM version mismatch! EEPROM=?, Firmware=V01", err.Error())
	require.Equal(t, testDefaults, s.Current())
}

func TestLoadCorrupted(t *testing.T) {
	mem := NewMemEEPROM(DefaultSize)
	s := NewStore(mem, testDefaults)
	require.NoError(t, s.Save())
	mem.Data[DefaultOffset+headerSize] ^= 0x55
	s.Update(func(cur *Settings) { cur.Brightness = 1 })
	requireStorageError(t, s.Load())
	require.Equal(t, testDefaults, s.Current())
}

func TestSaveWriteFailureLatches(t *testing.T) {
	mem := NewMemEEPROM(DefaultSize)
	mem.Stuck = map[int]bool{DefaultOffset + headerSize: true}
	s := NewStore(mem, testDefaults)
	requireStorageError(t, s.Save())
	require.True(t, s.Latched())
	requireStorageError(t, s.Load())

	mem.Stuck = nil
	require.NoError(t, s.Save())
	require.False(t, s.Latched())
	require.NoError(t, s.Load())
}

func TestDisabledStorage(t *testing.T) {
	s := NewStore(nil, testDefaults)
	requireStorageError(t, s.Save())
	requireStorageError(t, s.Load())
}

func TestSaveTooLarge(t *testing.T) {
	s := NewStore(NewMemEEPROM(DefaultOffset+4), testDefaults)
	requireStorageError(t, s.Save())
	require.False(t, s.Latched())
}

func TestReport(t *testing.T) {
	s := NewStore(nil, Settings{ControllerID: "abc", Brightness: 7})
	var out bytes.Buffer
	require.NoError(t, s.Report(&out))
	require.Equal(t, ";SET: Controller ID: abc\n;SET: Brightness: 7\n", out.String())
}

func TestFileEEPROM(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "eeprom.bin")
	f, err := OpenFileEEPROM(fn, DefaultSize)
	require.NoError(t, err)
	b, err := f.ByteAt(0)
	require.NoError(t, err)
	require.Equal(t, byte(0xff), b)
	_, err = f.ByteAt(DefaultSize)
	require.Equal(t, ErrAddressOutOfRange, err)

	s := NewStore(f, testDefaults)
	s.Update(func(cur *Settings) { cur.ControllerID = "persisted" })
	require.NoError(t, s.Save())
	require.NoError(t, f.Close())

	f, err = OpenFileEEPROM(fn, DefaultSize)
	require.NoError(t, err)
	defer f.Close()
	s = NewStore(f, testDefaults)
	require.NoError(t, s.Load())
	require.Equal(t, "persisted", s.Current().ControllerID)
}
