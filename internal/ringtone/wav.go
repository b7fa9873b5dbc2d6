package ringtone

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// wavFormat holds the playback parameters read from a WAV header.
type wavFormat struct {
	SampleRate int
	Channels   int
	BitDepth   int
}

// errNoDataChunk is returned when a WAV file carries no audio data.
var errNoDataChunk = errors.New("wav: no data chunk")

// parseWAV reads a RIFF/WAVE file and returns its format and raw PCM data.
func parseWAV(data []byte) (*wavFormat, []byte, error) {
	reader := bytes.NewReader(data)

	header := make([]byte, 12)
	if _, err := io.ReadFull(reader, header); err != nil {
		return nil, nil, fmt.Errorf("wav: read header: %w", err)
	}

	if string(header[:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		return nil, nil, errors.New("wav: not a RIFF/WAVE file")
	}

	format := &wavFormat{}

	for {
		chunkID := make([]byte, 4)
		if _, err := io.ReadFull(reader, chunkID); err != nil {
			if errors.Is(err, io.EOF) {
				return nil, nil, errNoDataChunk
			}

			return nil, nil, fmt.Errorf("wav: read chunk id: %w", err)
		}

		var chunkSize uint32
		if err := binary.Read(reader, binary.LittleEndian, &chunkSize); err != nil {
			return nil, nil, fmt.Errorf("wav: read chunk size: %w", err)
		}

		switch string(chunkID) {
		case "fmt ":
			var (
				audioFormat   uint16
				numChannels   uint16
				sampleRate    uint32
				byteRate      uint32
				blockAlign    uint16
				bitsPerSample uint16
			)

			for _, field := range []any{&audioFormat, &numChannels, &sampleRate, &byteRate, &blockAlign, &bitsPerSample} {
				if err := binary.Read(reader, binary.LittleEndian, field); err != nil {
					return nil, nil, fmt.Errorf("wav: read format chunk: %w", err)
				}
			}

			format.Channels = int(numChannels)
			format.SampleRate = int(sampleRate)
			format.BitDepth = int(bitsPerSample)

			// Skip any extra format bytes.
			if extra := int64(chunkSize) - 16; extra > 0 {
				if _, err := reader.Seek(extra, io.SeekCurrent); err != nil {
					return nil, nil, fmt.Errorf("wav: skip format extra: %w", err)
				}
			}
		case "data":
			if format.SampleRate == 0 {
				return nil, nil, errors.New("wav: data chunk before format chunk")
			}

			audioData := make([]byte, chunkSize)
			if _, err := io.ReadFull(reader, audioData); err != nil {
				return nil, nil, fmt.Errorf("wav: read audio data: %w", err)
			}

			return format, audioData, nil
		default:
			if _, err := reader.Seek(int64(chunkSize), io.SeekCurrent); err != nil {
				return nil, nil, fmt.Errorf("wav: skip chunk: %w", err)
			}
		}
	}
}
