package distance

import (
	"bytes"
	"encoding/gob"
)

// Compile time checks to ensure FlatStorage satisfies the gob interfaces.
var (
	_ gob.GobEncoder = (*FlatStorage)(nil)
	_ gob.GobDecoder = (*FlatStorage)(nil)
)

// GobEncode method for FlatStorage, grounded on the teacher's
// index/flat/gob.go: encode the plain fields under the storage's own lock
// rather than leaning on gob to walk the unexported mutex-guarded struct.
func (s *FlatStorage) GobEncode() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var buf bytes.Buffer
	encoder := gob.NewEncoder(&buf)

	if err := encoder.Encode(s.dim); err != nil {
		return nil, err
	}

	if err := encoder.Encode(s.metric); err != nil {
		return nil, err
	}

	if err := encoder.Encode(s.vectors); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// GobDecode method for FlatStorage.
func (s *FlatStorage) GobDecode(data []byte) error {
	decoder := gob.NewDecoder(bytes.NewBuffer(data))

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := decoder.Decode(&s.dim); err != nil {
		return err
	}

	if err := decoder.Decode(&s.metric); err != nil {
		return err
	}

	if err := decoder.Decode(&s.vectors); err != nil {
		return err
	}

	return nil
}
