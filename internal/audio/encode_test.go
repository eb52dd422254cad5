package audio

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/go-audio/wav"
	"github.com/mewkiz/flac"
	"github.com/stretchr/testify/require"
)

func sineish(n int) []int16 {
	out := make([]int16, n)
	for i := range out {
		out[i] = int16((i%64 - 32) * 512)
	}
	return out
}

func TestEncodeWAVRoundTrip(t *testing.T) {
	samples := sineish(1600)
	data, err := EncodeWAV(samples, 16000)
	require.NoError(t, err)
	require.Equal(t, "RIFF", string(data[:4]))

	dec := wav.NewDecoder(bytes.NewReader(data))
	require.True(t, dec.IsValidFile())
	buf, err := dec.FullPCMBuffer()
	require.NoError(t, err)
	require.Equal(t, 16000, buf.Format.SampleRate)
	require.Equal(t, 1, buf.Format.NumChannels)
	require.Len(t, buf.Data, len(samples))
	require.Equal(t, int(samples[10]), buf.Data[10])
}

func TestEncodeWAVDataChunkIsLittleEndianPCM(t *testing.T) {
	data, err := EncodeWAV([]int16{1, -2}, 8000)
	require.NoError(t, err)

	tail := data[len(data)-4:]
	require.Equal(t, int16(1), int16(binary.LittleEndian.Uint16(tail[0:2])))
	require.Equal(t, int16(-2), int16(binary.LittleEndian.Uint16(tail[2:4])))
}

func TestEncodeFLACRoundTrip(t *testing.T) {
	samples := sineish(flacBlockSize*2 + 100)
	data, err := EncodeFLAC(samples, 16000)
	require.NoError(t, err)
	require.Equal(t, "fLaC", string(data[:4]))

	stream, err := flac.New(bytes.NewReader(data))
	require.NoError(t, err)
	defer stream.Close()
	require.Equal(t, uint32(16000), stream.Info.SampleRate)
	require.Equal(t, uint8(1), stream.Info.NChannels)

	var decoded []int16
	for {
		f, err := stream.ParseNext()
		if err != nil {
			break
		}
		for _, s := range f.Subframes[0].Samples {
			decoded = append(decoded, int16(s))
		}
	}
	require.Equal(t, samples, decoded)
}

func TestEncodeDispatchesByFormat(t *testing.T) {
	wavData, err := Encode("", []int16{0, 1}, 16000)
	require.NoError(t, err)
	require.Equal(t, "RIFF", string(wavData[:4]))

	flacData, err := Encode("FLAC", []int16{0, 1}, 16000)
	require.NoError(t, err)
	require.Equal(t, "fLaC", string(flacData[:4]))

	_, err = Encode("mp3", nil, 16000)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unsupported audio format")
}

func TestMIMEType(t *testing.T) {
	require.Equal(t, "audio/wav", MIMEType(FormatWAV))
	require.Equal(t, "audio/flac", MIMEType(FormatFLAC))
	require.Equal(t, "audio/wav", MIMEType("other"))
}
