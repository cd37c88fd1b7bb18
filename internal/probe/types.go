package probe

// FormatInfo holds container-level metadata from ffprobe's format section.
type FormatInfo struct {
	Filename       string
	NbStreams      int
	FormatName     string
	FormatLongName string
	Duration       float64
	Size           int64
	BitRate        int64
	Tags           map[string]string
}

// AudioStream holds the parsed properties of a single audio stream.
type AudioStream struct {
	Index         int
	Codec         string
	Channels      int
	ChannelLayout string
	SampleRate    int
	BitDepth      int
	BitRate       int64
	Language      string
}

// Result is the fully parsed output of a single ffprobe JSON call.
type Result struct {
	Format       FormatInfo
	AudioStreams []AudioStream
	HasCoverArt  bool
}

// HasAudio reports whether at least one audio stream is present.
func (r *Result) HasAudio() bool { return len(r.AudioStreams) > 0 }

// Duration returns the container duration in seconds (0 when unknown).
func (r *Result) Duration() float64 { return r.Format.Duration }

// PrimaryAudio returns the first audio stream, or nil if none.
func (r *Result) PrimaryAudio() *AudioStream {
	if len(r.AudioStreams) == 0 {
		return nil
	}
	return &r.AudioStreams[0]
}
