package metadata

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/spaghettifunk/assetforge/engine/assets"
	"github.com/spaghettifunk/assetforge/engine/assets/compiled"
)

// Sound is decoded PCM audio.
type Sound struct {
	Channels      int
	SampleRate    int
	BitsPerSample int
	Samples       []byte
}

// Duration in seconds.
func (s *Sound) Duration() float64 {
	frame := s.Channels * s.BitsPerSample / 8
	if frame == 0 || s.SampleRate == 0 {
		return 0
	}
	return float64(len(s.Samples)/frame) / float64(s.SampleRate)
}

// ParseWAV reads a canonical RIFF/WAVE PCM file.
func ParseWAV(b []byte) (*Sound, error) {
	if len(b) < 12 || string(b[0:4]) != "RIFF" || string(b[8:12]) != "WAVE" {
		return nil, errors.New("not a RIFF/WAVE file")
	}
	s := &Sound{}
	haveFormat := false
	rest := b[12:]
	for len(rest) >= 8 {
		id := string(rest[0:4])
		size := int(binary.LittleEndian.Uint32(rest[4:8]))
		rest = rest[8:]
		if size > len(rest) {
			return nil, fmt.Errorf("chunk '%s' overruns file", id)
		}
		chunk := rest[:size]
		switch id {
		case "fmt ":
			if size < 16 {
				return nil, errors.New("short fmt chunk")
			}
			if tag := binary.LittleEndian.Uint16(chunk[0:2]); tag != 1 {
				return nil, fmt.Errorf("unsupported wave format %d", tag)
			}
			s.Channels = int(binary.LittleEndian.Uint16(chunk[2:4]))
			s.SampleRate = int(binary.LittleEndian.Uint32(chunk[4:8]))
			s.BitsPerSample = int(binary.LittleEndian.Uint16(chunk[14:16]))
			haveFormat = true
		case "data":
			s.Samples = append([]byte{}, chunk...)
		}
		// chunks are word aligned
		if size%2 == 1 && size < len(rest) {
			size++
		}
		rest = rest[size:]
	}
	if !haveFormat {
		return nil, errors.New("missing fmt chunk")
	}
	if s.Samples == nil {
		return nil, errors.New("missing data chunk")
	}
	return s, nil
}

// EncodeWAV writes s as a canonical PCM wave file.
func EncodeWAV(s *Sound) []byte {
	blockAlign := s.Channels * s.BitsPerSample / 8
	b := make([]byte, 44, 44+len(s.Samples))
	copy(b[0:4], "RIFF")
	binary.LittleEndian.PutUint32(b[4:8], uint32(36+len(s.Samples)))
	copy(b[8:12], "WAVE")
	copy(b[12:16], "fmt ")
	binary.LittleEndian.PutUint32(b[16:20], 16)
	binary.LittleEndian.PutUint16(b[20:22], 1)
	binary.LittleEndian.PutUint16(b[22:24], uint16(s.Channels))
	binary.LittleEndian.PutUint32(b[24:28], uint32(s.SampleRate))
	binary.LittleEndian.PutUint32(b[28:32], uint32(s.SampleRate*blockAlign))
	binary.LittleEndian.PutUint16(b[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(b[34:36], uint16(s.BitsPerSample))
	copy(b[36:40], "data")
	binary.LittleEndian.PutUint32(b[40:44], uint32(len(s.Samples)))
	return append(b, s.Samples...)
}

type AudioAsset struct {
	name string

	RawData        []byte
	Compiled       *compiled.PlatformData
	SourcedFromRaw bool

	Sound *Sound
}

func NewAudioAsset(name string, rawData []byte, pd *compiled.PlatformData, sourcedFromRaw bool) (*AudioAsset, error) {
	a := &AudioAsset{
		name:           name,
		RawData:        rawData,
		SourcedFromRaw: sourcedFromRaw,
	}
	if err := a.SetPlatformData(pd); err != nil {
		return nil, err
	}
	return a, nil
}

func (a *AudioAsset) Name() string { return a.name }
func (a *AudioAsset) Kind() assets.Kind { return assets.KindAudio }
func (a *AudioAsset) SourceOnly() bool { return a.Compiled == nil }
func (a *AudioAsset) CompiledOnly() bool { return a.RawData == nil }

func (a *AudioAsset) PlatformData() *compiled.PlatformData {
	return a.Compiled
}

func (a *AudioAsset) SetPlatformData(pd *compiled.PlatformData) error {
	a.Release()
	a.Compiled = pd
	if pd == nil {
		return nil
	}
	s, err := ParseWAV(pd.Data)
	if err != nil {
		return fmt.Errorf("audio '%s': %w", a.name, corrupt(err))
	}
	a.Sound = s
	return nil
}

func (a *AudioAsset) Release() {
	a.Sound = nil
}
