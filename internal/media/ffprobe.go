package media

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ffprobeOutput is the subset of `ffprobe -print_format json` we read.
type ffprobeOutput struct {
	Streams []ffprobeStream `json:"streams"`
	Format  struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

type ffprobeStream struct {
	CodecType string `json:"codec_type"`
	Width     int64  `json:"width"`
	Height    int64  `json:"height"`
	Duration  string `json:"duration"`
}

func parseFFprobe(data []byte) (*ffprobeOutput, error) {
	var out ffprobeOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parsing ffprobe output: %w", err)
	}
	if len(out.Streams) == 0 {
		return nil, fmt.Errorf("no media streams")
	}
	return &out, nil
}

func (o *ffprobeOutput) firstStream(codecType string) *ffprobeStream {
	for i := range o.Streams {
		if o.Streams[i].CodecType == codecType {
			return &o.Streams[i]
		}
	}
	return nil
}

// durationMs prefers the container duration and falls back to the longest
// stream duration. ffprobe prints "N/A" for unknown values.
func (o *ffprobeOutput) durationMs() (int64, bool) {
	if ms, ok := parseSeconds(o.Format.Duration); ok {
		return ms, true
	}
	var best int64
	for _, s := range o.Streams {
		if ms, ok := parseSeconds(s.Duration); ok && ms > best {
			best = ms
		}
	}
	return best, best > 0
}

func parseSeconds(s string) (int64, bool) {
	if s == "" || s == "N/A" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	ms := secondsToMs(v)
	return ms, ms > 0
}
