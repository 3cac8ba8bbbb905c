package eeprom

import "fmt"

// Slot layout. Offsets are a static contract: slots never overlap, and the
// schedule slot is the largest because it holds the serialized weekly
// schedule (worst case 7 days of times plus JSON overhead).
const (
	addrRingDuration = 0
	addrDeviceName   = 100
	addrUniqueURL    = 200
	addrPasswordHash = 300
	addrSalt         = 400
	addrInitialized  = 500
	addrSchedule     = 600

	widthName     = 100
	widthSchedule = 2400

	// MinSize is the smallest image that fits the layout.
	MinSize = addrSchedule + widthSchedule
)

// Defaults returned when a slot reads as erased or invalid.
const (
	DefaultDeviceName   = "bellsystem"
	DefaultUniqueURL    = "bellsystem"
	DefaultRingDuration = 2
)

// SaveRingDuration persists the relay hold time in seconds.
func (s *Store) SaveRingDuration(seconds int) error {
	return s.SaveInt(addrRingDuration, seconds)
}

// LoadRingDuration returns the relay hold time in seconds, defaulting and
// clamping to [1,10].
func (s *Store) LoadRingDuration() int {
	v, err := s.LoadInt(addrRingDuration)
	if err != nil || v < 1 || v > 10 {
		return DefaultRingDuration
	}
	return v
}

func (s *Store) SaveDeviceName(name string) error {
	return s.SaveString(addrDeviceName, name)
}

func (s *Store) LoadDeviceName() string {
	return s.loadStringDefault(addrDeviceName, widthName, DefaultDeviceName)
}

func (s *Store) SaveUniqueURL(url string) error {
	return s.SaveString(addrUniqueURL, url)
}

func (s *Store) LoadUniqueURL() string {
	return s.loadStringDefault(addrUniqueURL, widthName, DefaultUniqueURL)
}

func (s *Store) SavePasswordHash(hash string) error {
	return s.SaveString(addrPasswordHash, hash)
}

func (s *Store) LoadPasswordHash() string {
	return s.loadStringDefault(addrPasswordHash, widthName, "")
}

func (s *Store) SaveSalt(salt string) error {
	return s.SaveString(addrSalt, salt)
}

func (s *Store) LoadSalt() string {
	return s.loadStringDefault(addrSalt, widthName, "")
}

// SaveInitialized records whether the credential bootstrap has run.
func (s *Store) SaveInitialized(initialized bool) error {
	v := 0
	if initialized {
		v = 1
	}
	return s.SaveInt(addrInitialized, v)
}

func (s *Store) LoadInitialized() bool {
	v, err := s.LoadInt(addrInitialized)
	return err == nil && v == 1
}

// SaveRingSchedule persists the serialized weekly schedule.
func (s *Store) SaveRingSchedule(serialized string) error {
	if len(serialized)+1 > widthSchedule {
		return fmt.Errorf("eeprom: schedule of %d bytes exceeds %d byte slot", len(serialized), widthSchedule)
	}
	return s.SaveString(addrSchedule, serialized)
}

// LoadRingSchedule returns the serialized weekly schedule, or "" when the
// slot has never been written.
func (s *Store) LoadRingSchedule() string {
	return s.loadStringDefault(addrSchedule, widthSchedule, "")
}

func (s *Store) loadStringDefault(addr, maxLen int, def string) string {
	if s.IsErased(addr) {
		return def
	}
	v, err := s.LoadString(addr, maxLen)
	if err != nil {
		return def
	}
	return v
}
