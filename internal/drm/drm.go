package drm

// Format is a DRM fourcc pixel format code.
type Format uint32

const (
	FormatARGB8888 Format = 'A' | ('R' << 8) | ('2' << 16) | ('4' << 24)
	FormatRGBA8888 Format = 'R' | ('A' << 8) | ('2' << 16) | ('4' << 24)
	FormatABGR8888 Format = 'A' | ('B' << 8) | ('2' << 16) | ('4' << 24)

	FormatBigEndian Format = 1 << 31
)

// String returns the four character code, with a suffix if the big
// endian bit is set.
func (f Format) String() string {
	c := f &^ FormatBigEndian
	s := string([]byte{byte(c), byte(c >> 8), byte(c >> 16), byte(c >> 24)})
	if f&FormatBigEndian != 0 {
		s += "_BE"
	}
	return s
}
