package sound

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// BitDepth of the written PCM samples.
const BitDepth = 16

// ErrInvalidWAV is returned when a file is not a readable WAV file.
var ErrInvalidWAV = errors.New("invalid wav file")

// Encode writes mono float samples in [-1, 1] as 16-bit PCM WAV.
func Encode(w io.WriteSeeker, samples []float64) error {
	enc := wav.NewEncoder(w, SampleRate, BitDepth, 1, 1)

	data := make([]int, len(samples))
	for i, s := range samples {
		data[i] = toPCM(s)
	}

	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: SampleRate},
		Data:           data,
		SourceBitDepth: BitDepth,
	}
	if err := enc.Write(buf); err != nil {
		return fmt.Errorf("write samples: %w", err)
	}
	return enc.Close()
}

// Decode reads a WAV file back into float samples in [-1, 1] and its sample rate.
func Decode(r io.ReadSeeker) ([]float64, int, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, 0, ErrInvalidWAV
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, 0, fmt.Errorf("read samples: %w", err)
	}

	scale := math.Pow(2, float64(dec.BitDepth)-1)
	out := make([]float64, len(buf.Data))
	for i, v := range buf.Data {
		out[i] = float64(v) / scale
	}
	return out, int(dec.SampleRate), nil
}

// WriteFile renders samples into a WAV file at path. The file is written
// under a temporary name and renamed into place, so readers never see a
// partial sample.
func WriteFile(path string, samples []float64) error {
	f, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+"-*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()

	if err := Encode(f, samples); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Chmod(tmp, 0644); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename sample: %w", err)
	}
	return nil
}

// ReadFile decodes the WAV file at path.
func ReadFile(path string) ([]float64, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer f.Close()
	return Decode(f)
}

func toPCM(s float64) int {
	s = math.Max(-1, math.Min(1, s))
	return int(math.Round(s * math.MaxInt16))
}
