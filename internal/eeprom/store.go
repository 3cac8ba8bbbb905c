// Package eeprom persists device state in a fixed-layout, byte-addressed
// image, mirroring the EEPROM of the bell hardware. Each field lives in a
// fixed slot (offset + width); never-written regions read back as 0xFF, the
// erased-flash sentinel, and typed loaders return documented defaults for
// them instead of garbage.
package eeprom

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"sync"
)

// Erased is the byte value of never-written storage.
const Erased = 0xFF

// ErrCommit reports that flushing the image to the backing file failed. The
// caller's in-memory state remains authoritative; the write is not retried
// here because silent retries would mask a failing storage device.
var ErrCommit = errors.New("eeprom: commit failed")

// Store is a byte-addressed non-volatile image backed by a file. Writes land
// in memory and are committed (flushed to the file) before the save call
// returns. There is no atomicity across a power loss mid-commit; that is an
// accepted limitation of the hardware this models.
type Store struct {
	path string

	mu   sync.Mutex
	data []byte
}

// Open loads the image at path, creating an all-0xFF image of size bytes if
// the file does not exist. An existing shorter image is padded with 0xFF so
// layout growth keeps old fields readable.
func Open(path string, size int) (*Store, error) {
	if size < MinSize {
		return nil, fmt.Errorf("eeprom: size %d smaller than layout minimum %d", size, MinSize)
	}
	data := make([]byte, size)
	for i := range data {
		data[i] = Erased
	}
	existing, err := os.ReadFile(path)
	switch {
	case err == nil:
		copy(data, existing)
	case os.IsNotExist(err):
		// fresh device, image stays erased
	default:
		return nil, fmt.Errorf("eeprom: read %s: %w", path, err)
	}
	return &Store{path: path, data: data}, nil
}

// Size returns the image size in bytes.
func (s *Store) Size() int {
	return len(s.data)
}

// SaveString writes value's bytes followed by a NUL terminator at addr and
// commits.
func (s *Store) SaveString(addr int, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(addr, len(value)+1); err != nil {
		return err
	}
	copy(s.data[addr:], value)
	s.data[addr+len(value)] = 0
	return s.commit()
}

// LoadString reads from addr until a NUL terminator or maxLen bytes,
// whichever comes first.
func (s *Store) LoadString(addr, maxLen int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(addr, maxLen); err != nil {
		return "", err
	}
	b := s.data[addr : addr+maxLen]
	for i, ch := range b {
		if ch == 0 {
			return string(b[:i]), nil
		}
	}
	return string(b), nil
}

// SaveInt writes value as a little-endian int32 at addr and commits.
func (s *Store) SaveInt(addr int, value int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(addr, 4); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(s.data[addr:], uint32(int32(value)))
	return s.commit()
}

// LoadInt reads a little-endian int32 at addr. An erased slot reads as -1.
func (s *Store) LoadInt(addr int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.check(addr, 4); err != nil {
		return 0, err
	}
	return int(int32(binary.LittleEndian.Uint32(s.data[addr:]))), nil
}

// IsErased reports whether the slot at addr has never been written.
func (s *Store) IsErased(addr int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return addr >= 0 && addr < len(s.data) && s.data[addr] == Erased
}

func (s *Store) check(addr, width int) error {
	if addr < 0 || width < 0 || addr+width > len(s.data) {
		return fmt.Errorf("eeprom: slot [%d,%d) outside image of %d bytes", addr, addr+width, len(s.data))
	}
	return nil
}

func (s *Store) commit() error {
	if err := os.WriteFile(s.path, s.data, 0o600); err != nil {
		return fmt.Errorf("%w: %v", ErrCommit, err)
	}
	return nil
}
