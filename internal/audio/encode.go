package audio

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"
	"github.com/mewkiz/flac/meta"
	"github.com/orcaman/writerseeker"
)

const (
	FormatWAV  = "wav"
	FormatFLAC = "flac"

	bitsPerSample  = 16
	flacBlockSize  = 4096
	wavPCMEncoding = 1
)

// MIMEType returns the upload content type for an encoded format.
func MIMEType(format string) string {
	switch strings.ToLower(format) {
	case FormatFLAC:
		return "audio/flac"
	default:
		return "audio/wav"
	}
}

// Encode renders mono 16-bit samples in the named container format.
func Encode(format string, samples []int16, sampleRate int) ([]byte, error) {
	switch strings.ToLower(format) {
	case "", FormatWAV:
		return EncodeWAV(samples, sampleRate)
	case FormatFLAC:
		return EncodeFLAC(samples, sampleRate)
	default:
		return nil, fmt.Errorf("unsupported audio format %q", format)
	}
}

// EncodeWAV writes a RIFF/WAVE file.
func EncodeWAV(samples []int16, sampleRate int) ([]byte, error) {
	out := &writerseeker.WriterSeeker{}
	enc := wav.NewEncoder(out, sampleRate, bitsPerSample, 1, wavPCMEncoding)

	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = int(s)
	}
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: bitsPerSample,
	}

	if err := enc.Write(buf); err != nil {
		return nil, fmt.Errorf("encode wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("finish wav: %w", err)
	}
	encoded, err := io.ReadAll(out.Reader())
	if err != nil {
		return nil, fmt.Errorf("read wav: %w", err)
	}
	return encoded, nil
}

// EncodeFLAC writes a FLAC stream using verbatim subframes.
func EncodeFLAC(samples []int16, sampleRate int) ([]byte, error) {
	var out bytes.Buffer
	info := &meta.StreamInfo{
		BlockSizeMin:  16,
		BlockSizeMax:  flacBlockSize,
		SampleRate:    uint32(sampleRate),
		NChannels:     1,
		BitsPerSample: bitsPerSample,
		NSamples:      uint64(len(samples)),
	}
	enc, err := flac.NewEncoder(&out, info)
	if err != nil {
		return nil, fmt.Errorf("create flac encoder: %w", err)
	}
	enc.EnablePredictionAnalysis(true)

	for start := 0; start < len(samples); start += flacBlockSize {
		end := min(start+flacBlockSize, len(samples))
		block := samples[start:end]

		wide := make([]int32, len(block))
		for i, s := range block {
			wide[i] = int32(s)
		}
		f := &frame.Frame{
			Header: frame.Header{
				BlockSize:     uint16(len(block)),
				SampleRate:    uint32(sampleRate),
				Channels:      frame.ChannelsMono,
				BitsPerSample: bitsPerSample,
			},
			Subframes: []*frame.Subframe{{
				SubHeader: frame.SubHeader{Pred: frame.PredVerbatim},
				Samples:   wide,
				NSamples:  len(block),
			}},
		}
		if err := enc.WriteFrame(f); err != nil {
			return nil, fmt.Errorf("write flac frame: %w", err)
		}
	}

	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("finish flac: %w", err)
	}
	return out.Bytes(), nil
}
