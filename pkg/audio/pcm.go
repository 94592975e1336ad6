package audio

// MonoToStereo duplicates each int16 mono sample into an L+R pair. Input is
// little-endian int16 PCM; a trailing odd byte is dropped.
func MonoToStereo(pcm []byte) []byte {
	out := make([]byte, (len(pcm)/2)*4)
	for i := 0; i+1 < len(pcm); i += 2 {
		lo, hi := pcm[i], pcm[i+1]
		j := i * 2
		out[j] = lo
		out[j+1] = hi
		out[j+2] = lo
		out[j+3] = hi
	}
	return out
}

func sample(pcm []byte, i int) int16 {
	return int16(pcm[i]) | int16(pcm[i+1])<<8
}

func putSample(out []byte, i int, s int16) {
	out[i] = byte(s)
	out[i+1] = byte(s >> 8)
}

// Resample16 converts 16-bit PCM with the given channel count from srcRate
// to dstRate by linear interpolation per channel. Equal or invalid rates
// return the input unchanged.
func Resample16(pcm []byte, channels, srcRate, dstRate int) []byte {
	frameSize := 2 * channels
	if channels <= 0 || srcRate <= 0 || dstRate <= 0 || srcRate == dstRate || len(pcm) < frameSize {
		return pcm
	}
	srcFrames := len(pcm) / frameSize
	dstFrames := int(int64(srcFrames) * int64(dstRate) / int64(srcRate))
	if dstFrames == 0 {
		return nil
	}

	out := make([]byte, dstFrames*frameSize)
	ratio := float64(srcRate) / float64(dstRate)
	for i := range dstFrames {
		pos := float64(i) * ratio
		idx := int(pos)
		frac := pos - float64(idx)
		next := idx + 1
		if next >= srcFrames {
			next = idx
		}
		for ch := range channels {
			s0 := sample(pcm, idx*frameSize+ch*2)
			s1 := sample(pcm, next*frameSize+ch*2)
			putSample(out, i*frameSize+ch*2, int16(float64(s0)*(1-frac)+float64(s1)*frac))
		}
	}
	return out
}

// ToFormat converts PCM from src to dst. Only mono to stereo channel
// expansion is supported; other channel mismatches are returned as-is after
// resampling.
func ToFormat(pcm []byte, src, dst Format) []byte {
	out := Resample16(pcm, src.Channels, src.SampleRate, dst.SampleRate)
	if src.Channels == 1 && dst.Channels == 2 {
		out = MonoToStereo(out)
	}
	return out
}
