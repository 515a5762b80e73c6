package interview

import (
	"io"
)

// Mix combines two mono 16-bit little-endian PCM streams into one by
// sample-wise addition with clipping. When one source ends, the other
// passes through unchanged. This is the single destination stream the
// recorder consumes, so backend transcription sees both speakers.
func Mix(a, b io.Reader) io.Reader {
	return &mixer{a: a, b: b}
}

type mixer struct {
	a, b       io.Reader
	aDone      bool
	bDone      bool
	bufA, bufB []byte
}

func (m *mixer) Read(p []byte) (int, error) {
	if len(p) < 2 {
		return 0, io.ErrShortBuffer
	}
	p = p[:len(p)-len(p)%2] // whole samples only

	na := m.fill(&m.a, &m.aDone, &m.bufA, len(p))
	nb := m.fill(&m.b, &m.bDone, &m.bufB, len(p))

	if na == 0 && nb == 0 {
		if m.aDone && m.bDone {
			return 0, io.EOF
		}
		return 0, nil
	}

	// A stream can end mid-sample; never hand back a torn one.
	n := max(na, nb)
	n -= n % 2
	if n == 0 {
		if m.aDone && m.bDone {
			return 0, io.EOF
		}
		return 0, nil
	}
	for i := 0; i+1 < n; i += 2 {
		var sa, sb int
		if i+1 < na {
			sa = int(int16(uint16(m.bufA[i]) | uint16(m.bufA[i+1])<<8))
		}
		if i+1 < nb {
			sb = int(int16(uint16(m.bufB[i]) | uint16(m.bufB[i+1])<<8))
		}
		s := sa + sb
		if s > 32767 {
			s = 32767
		} else if s < -32768 {
			s = -32768
		}
		p[i] = byte(uint16(s))
		p[i+1] = byte(uint16(s) >> 8)
	}

	m.bufA = m.bufA[min(na, n):]
	m.bufB = m.bufB[min(nb, n):]
	return n, nil
}

// fill tops the side buffer up to want bytes, tolerating EOF.
func (m *mixer) fill(r *io.Reader, done *bool, buf *[]byte, want int) int {
	for !*done && len(*buf) < want {
		chunk := make([]byte, want-len(*buf))
		n, err := (*r).Read(chunk)
		*buf = append(*buf, chunk[:n]...)
		if err == io.EOF {
			*done = true
			break
		}
		if err != nil {
			*done = true
			break
		}
		if n == 0 {
			break
		}
	}
	if len(*buf) < want {
		return len(*buf)
	}
	return want
}
