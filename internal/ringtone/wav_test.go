package ringtone

import (
	"bytes"
	"context"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/require"
)

// buildWAV assembles a minimal valid WAV file for parser tests.
func buildWAV(t *testing.T, sampleRate uint32, channels, bitDepth uint16, pcm []byte) []byte {
	t.Helper()

	var body bytes.Buffer

	body.WriteString("WAVE")
	body.WriteString("fmt ")
	_ = binary.Write(&body, binary.LittleEndian, uint32(16))
	_ = binary.Write(&body, binary.LittleEndian, uint16(1)) // PCM
	_ = binary.Write(&body, binary.LittleEndian, channels)
	_ = binary.Write(&body, binary.LittleEndian, sampleRate)
	_ = binary.Write(&body, binary.LittleEndian, sampleRate*uint32(channels)*uint32(bitDepth)/8)
	_ = binary.Write(&body, binary.LittleEndian, channels*bitDepth/8)
	_ = binary.Write(&body, binary.LittleEndian, bitDepth)
	body.WriteString("data")
	_ = binary.Write(&body, binary.LittleEndian, uint32(len(pcm)))
	body.Write(pcm)

	var file bytes.Buffer

	file.WriteString("RIFF")
	_ = binary.Write(&file, binary.LittleEndian, uint32(body.Len()))
	file.Write(body.Bytes())

	return file.Bytes()
}

// TestParseWAV_ValidFile extracts format and PCM data.
func TestParseWAV_ValidFile(t *testing.T) {
	t.Parallel()

	pcm := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	data := buildWAV(t, 44100, 2, 16, pcm)

	format, audio, err := parseWAV(data)
	require.NoError(t, err)
	require.Equal(t, 44100, format.SampleRate)
	require.Equal(t, 2, format.Channels)
	require.Equal(t, 16, format.BitDepth)
	require.Equal(t, pcm, audio)
}

// TestParseWAV_Rejections covers malformed inputs.
func TestParseWAV_Rejections(t *testing.T) {
	t.Parallel()

	cases := map[string][]byte{
		"empty":          {},
		"not riff":       []byte("OGGSxxxxxxxxxxxxxxxx"),
		"no data chunk":  append([]byte("RIFF\x04\x00\x00\x00WAVE"), nil...),
		"truncated riff": []byte("RIFF"),
	}

	for name, data := range cases {
		data := data
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, _, err := parseWAV(data)
			require.Error(t, err)
		})
	}
}

// TestSilentPlayer tracks playback state and is idempotent on stop.
func TestSilentPlayer(t *testing.T) {
	t.Parallel()

	p := NewSilent()
	ctx := context.Background()

	require.False(t, p.IsPlaying())
	require.NoError(t, p.PlayRingtone(ctx))
	require.True(t, p.IsPlaying())

	p.StopRingtone(ctx)
	p.StopRingtone(ctx)
	require.False(t, p.IsPlaying())
}
