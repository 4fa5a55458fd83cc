package captions

import (
	"math"
	"strings"
	"unicode/utf8"
)

// DefaultLeadFrames delays every cue start to compensate for recognizer sync bias.
const DefaultLeadFrames = 15

// Segment is one timed span of transcribed text. Start and End are seconds.
type Segment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Cue is a single caption line and the inclusive frame range it is shown for.
type Cue struct {
	Line       string `json:"line"`
	StartFrame int    `json:"start_frame"`
	EndFrame   int    `json:"end_frame"`
}

// Frames returns the number of frames between start and end.
func (c Cue) Frames() int {
	return c.EndFrame - c.StartFrame
}

// Segmenter converts transcript segments into width-fitted cues.
type Segmenter struct {
	// LeadFrames is added to every cue's start and end.
	LeadFrames int
}

// NewSegmenter returns a Segmenter with the default lead offset.
func NewSegmenter() Segmenter {
	return Segmenter{LeadFrames: DefaultLeadFrames}
}

// Segment converts segments into cues in segment order. charWidth is the
// estimated pixel width of one character, frameWidth the target width. It
// never fails: empty text yields a zero-span cue, a non-positive fps yields
// zero-span cues, and a word wider than the frame still gets its own line.
func (s Segmenter) Segment(segments []Segment, fps, charWidth float64, frameWidth int) []Cue {
	cues := make([]Cue, 0, len(segments))
	for _, seg := range segments {
		cues = append(cues, s.segmentOne(seg, fps, charWidth, frameWidth)...)
	}
	return cues
}

func (s Segmenter) segmentOne(seg Segment, fps, charWidth float64, frameWidth int) []Cue {
	if fps < 0 || math.IsNaN(fps) || math.IsInf(fps, 0) {
		fps = 0
	}
	totalFrames := roundFrames((seg.End - seg.Start) * fps)
	if totalFrames < 0 {
		totalFrames = 0
	}
	cursor := roundFrames(seg.Start * fps)

	lines := packLines(strings.Fields(seg.Text), charWidth, float64(frameWidth))
	if len(lines) == 0 {
		start := cursor + s.LeadFrames
		return []Cue{{Line: "", StartFrame: start, EndFrame: start}}
	}

	totalChars := 0
	for _, line := range lines {
		totalChars += utf8.RuneCountInString(line)
	}

	cues := make([]Cue, 0, len(lines))
	for _, line := range lines {
		share := float64(utf8.RuneCountInString(line)) / float64(totalChars)
		lineFrames := roundFrames(share * float64(totalFrames))
		start := cursor + s.LeadFrames
		cues = append(cues, Cue{Line: line, StartFrame: start, EndFrame: start + lineFrames})
		cursor += lineFrames
	}
	return cues
}

// packLines greedily fills lines while their width, spaces included, stays
// within maxWidth. The first word of a line is always accepted.
func packLines(words []string, charWidth, maxWidth float64) []string {
	var lines []string
	var current []string
	chars := 0
	for _, word := range words {
		if word == "" {
			continue
		}
		n := utf8.RuneCountInString(word)
		if len(current) == 0 {
			current = append(current, word)
			chars = n
			continue
		}
		if float64(chars+1+n)*charWidth <= maxWidth {
			current = append(current, word)
			chars += 1 + n
			continue
		}
		lines = append(lines, strings.Join(current, " "))
		current = []string{word}
		chars = n
	}
	if len(current) > 0 {
		lines = append(lines, strings.Join(current, " "))
	}
	return lines
}

func roundFrames(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(math.Round(v))
}
