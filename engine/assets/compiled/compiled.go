package compiled

import (
	"bytes"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/spaghettifunk/assetforge/engine/core"
	"github.com/spaghettifunk/assetforge/engine/platform"
)

// Field numbers are part of the on-disk format.
const (
	fieldCompiledLoader       protowire.Number = 1
	fieldCompiledPlatformData protowire.Number = 3

	fieldPlatformDataPlatform protowire.Number = 1
	fieldPlatformDataData     protowire.Number = 2
)

// PlatformData pairs a compiled payload with the platform it targets.
type PlatformData struct {
	Platform platform.TargetPlatform
	Data     []byte
}

// CompiledAsset is the root message of every compiled file.
type CompiledAsset struct {
	Loader       string
	PlatformData *PlatformData
}

func (pd *PlatformData) Equal(other *PlatformData) bool {
	if pd == nil || other == nil {
		return pd == other
	}
	return pd.Platform == other.Platform && bytes.Equal(pd.Data, other.Data)
}

func (pd *PlatformData) appendTo(b []byte) []byte {
	// the default platform is left off the wire
	if pd.Platform != platform.Windows {
		b = protowire.AppendTag(b, fieldPlatformDataPlatform, protowire.VarintType)
		b = protowire.AppendVarint(b, uint64(int64(pd.Platform)))
	}
	if pd.Data != nil {
		b = protowire.AppendTag(b, fieldPlatformDataData, protowire.BytesType)
		b = protowire.AppendBytes(b, pd.Data)
	}
	return b
}

// Marshal encodes the message without the file envelope.
func (c *CompiledAsset) Marshal() []byte {
	var b []byte
	if c.Loader != "" {
		b = protowire.AppendTag(b, fieldCompiledLoader, protowire.BytesType)
		b = protowire.AppendString(b, c.Loader)
	}
	if c.PlatformData != nil {
		b = protowire.AppendTag(b, fieldCompiledPlatformData, protowire.BytesType)
		b = protowire.AppendBytes(b, c.PlatformData.appendTo(nil))
	}
	return b
}

// Unmarshal decodes a message produced by Marshal. Unknown fields are skipped;
// malformed input and out-of-range platforms return core.ErrCorruptData.
func Unmarshal(b []byte) (*CompiledAsset, error) {
	out := &CompiledAsset{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, corrupt(protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case num == fieldCompiledLoader && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return nil, corrupt(protowire.ParseError(n))
			}
			out.Loader = v
			b = b[n:]
		case num == fieldCompiledPlatformData && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, corrupt(protowire.ParseError(n))
			}
			pd, err := unmarshalPlatformData(v)
			if err != nil {
				return nil, err
			}
			out.PlatformData = pd
			b = b[n:]
		case num == fieldCompiledLoader || num == fieldCompiledPlatformData:
			return nil, corrupt(fmt.Errorf("field %d has wire type %d", num, typ))
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, corrupt(protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return out, nil
}

func unmarshalPlatformData(b []byte) (*PlatformData, error) {
	pd := &PlatformData{}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return nil, corrupt(protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case num == fieldPlatformDataPlatform && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return nil, corrupt(protowire.ParseError(n))
			}
			p, err := platform.FromOrdinal(int64(v))
			if err != nil {
				return nil, corrupt(err)
			}
			pd.Platform = p
			b = b[n:]
		case num == fieldPlatformDataData && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return nil, corrupt(protowire.ParseError(n))
			}
			pd.Data = append([]byte{}, v...)
			b = b[n:]
		case num == fieldPlatformDataPlatform || num == fieldPlatformDataData:
			return nil, corrupt(fmt.Errorf("field %d has wire type %d", num, typ))
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return nil, corrupt(protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return pd, nil
}

func corrupt(err error) error {
	return fmt.Errorf("%w: %v", core.ErrCorruptData, err)
}
