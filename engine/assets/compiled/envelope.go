package compiled

import (
	"bufio"
	"bytes"
	"fmt"
	"io"

	"github.com/ulikunitz/xz/lzma"
)

// FormatLZMACompressed is the only envelope version currently written or read.
const FormatLZMACompressed byte = 0

// Encode writes the version byte followed by the LZMA-compressed message.
func Encode(w io.Writer, c *CompiledAsset) error {
	msg := c.Marshal()

	if _, err := w.Write([]byte{FormatLZMACompressed}); err != nil {
		return err
	}

	cfg := lzma.WriterConfig{
		SizeInHeader: true,
		Size:         int64(len(msg)),
	}
	lw, err := cfg.NewWriter(w)
	if err != nil {
		return err
	}
	if _, err := lw.Write(msg); err != nil {
		return err
	}
	return lw.Close()
}

// EncodeBytes is Encode into a fresh buffer.
func EncodeBytes(c *CompiledAsset) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Decode reads an envelope written by Encode.
func Decode(r io.Reader) (*CompiledAsset, error) {
	br := bufio.NewReader(r)
	version, err := br.ReadByte()
	if err != nil {
		if err == io.EOF {
			return nil, corrupt(fmt.Errorf("empty compiled file"))
		}
		return nil, err
	}
	if version != FormatLZMACompressed {
		return nil, corrupt(fmt.Errorf("unsupported envelope version %d", version))
	}

	lr, err := lzma.NewReader(br)
	if err != nil {
		return nil, corrupt(err)
	}
	msg, err := io.ReadAll(lr)
	if err != nil {
		return nil, corrupt(err)
	}
	return Unmarshal(msg)
}

func DecodeBytes(data []byte) (*CompiledAsset, error) {
	return Decode(bytes.NewReader(data))
}
