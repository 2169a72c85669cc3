package mojo

import (
	"encoding/json"
	"errors"
	"fmt"
)

// StateVersion is written into every serialized state document.
const StateVersion = 1

// ErrStateVersion indicates a state document from a newer format.
var ErrStateVersion = errors.New("mojo: unsupported state version")

type stateDoc struct {
	Version    int          `json:"version"`
	Drive      *float32     `json:"drive,omitempty"`
	Character  *float32     `json:"character,omitempty"`
	Saturation *float32     `json:"saturation,omitempty"`
	Presence   *float32     `json:"presence,omitempty"`
	Mix        *float32     `json:"mix,omitempty"`
	OutputDB   *float32     `json:"outputDb,omitempty"`
	Quality    *QualityMode `json:"quality,omitempty"`
}

// MarshalState serializes p as a versioned JSON document.
func MarshalState(p Params) ([]byte, error) {
	p = p.Clamp()

	return json.Marshal(stateDoc{
		Version:    StateVersion,
		Drive:      &p.Drive,
		Character:  &p.Character,
		Saturation: &p.Saturation,
		Presence:   &p.Presence,
		Mix:        &p.Mix,
		OutputDB:   &p.OutputDB,
		Quality:    &p.Quality,
	})
}

// UnmarshalState decodes a document written by MarshalState. Missing fields
// keep their default value, unknown keys are ignored and values are clamped
// to their ranges.
func UnmarshalState(data []byte) (Params, error) {
	var doc stateDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return Params{}, fmt.Errorf("mojo: decode state: %w", err)
	}
	if doc.Version > StateVersion {
		return Params{}, fmt.Errorf("%w: %d", ErrStateVersion, doc.Version)
	}

	p := DefaultParams()
	setIf(&p.Drive, doc.Drive)
	setIf(&p.Character, doc.Character)
	setIf(&p.Saturation, doc.Saturation)
	setIf(&p.Presence, doc.Presence)
	setIf(&p.Mix, doc.Mix)
	setIf(&p.OutputDB, doc.OutputDB)
	if doc.Quality != nil {
		p.Quality = *doc.Quality
	}

	return p.Clamp(), nil
}

func setIf(dst, src *float32) {
	if src != nil {
		*dst = *src
	}
}

// SaveState serializes the current contents of s.
func (s *ParamStore) SaveState() ([]byte, error) {
	return MarshalState(s.Snapshot())
}

// LoadState replaces the contents of s with a decoded state document. On
// error s is left unchanged.
func (s *ParamStore) LoadState(data []byte) error {
	p, err := UnmarshalState(data)
	if err != nil {
		return err
	}

	s.Set(p)

	return nil
}
