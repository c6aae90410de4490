package video

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/kballard/go-shellquote"
)

// DefaultProbeTimeout bounds a metadata probe.
const DefaultProbeTimeout = 5 * time.Second

var errEmptyProbeCmd = errors.New("probe command is empty")

// Metadata is the best-effort result of a probe. Zero values mean unknown.
type Metadata struct {
	Duration time.Duration `json:"duration,omitempty"`
	FPS      float64       `json:"fps,omitempty"`
}

// runFunc executes the probe command and returns its standard output.
type runFunc func(ctx context.Context, name string, args ...string) ([]byte, error)

// Prober reads container metadata with ffprobe.
type Prober struct {
	logger  *slog.Logger
	run     runFunc
	command []string
	timeout time.Duration
}

// NewProber returns a Prober that runs cmd, a shell-quoted ffprobe
// invocation such as "ffprobe -v error". A timeout of zero uses
// DefaultProbeTimeout.
func NewProber(cmd string, timeout time.Duration, logger *slog.Logger) (*Prober, error) {
	command, err := shellquote.Split(cmd)
	if err != nil {
		return nil, err
	}

	if len(command) == 0 {
		return nil, errEmptyProbeCmd
	}

	if timeout <= 0 {
		timeout = DefaultProbeTimeout
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &Prober{
		command: command,
		timeout: timeout,
		logger:  logger,
		run:     runCommand,
	}, nil
}

func runCommand(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

type probeResult struct {
	err error
	out []byte
}

// Probe returns whatever metadata can be read from the file at path within
// the timeout. It never fails: load errors and timeouts both produce empty
// metadata. The probe process is killed when the timeout elapses.
func (p *Prober) Probe(ctx context.Context, path string) Metadata {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	args := append(p.command[1:len(p.command):len(p.command)],
		"-show_entries", "format=duration:stream=codec_type,r_frame_rate,avg_frame_rate",
		"-of", "json",
		path,
	)

	ch := make(chan probeResult, 1)

	go func() {
		out, err := p.run(ctx, p.command[0], args...)
		ch <- probeResult{out: out, err: err}
	}()

	select {
	case <-ctx.Done():
		p.logger.Warn("metadata probe timed out",
			slog.String("path", path),
			slog.Duration("timeout", p.timeout),
		)

		return Metadata{}
	case res := <-ch:
		if res.err != nil {
			p.logger.Warn("metadata probe failed",
				slog.String("path", path),
				slog.Any("error", res.err),
			)

			return Metadata{}
		}

		return parseProbe(res.out)
	}
}

type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType    string `json:"codec_type"`
		RFrameRate   string `json:"r_frame_rate"`
		AvgFrameRate string `json:"avg_frame_rate"`
	} `json:"streams"`
}

func parseProbe(out []byte) Metadata {
	var probe ffprobeOutput

	if err := json.Unmarshal(out, &probe); err != nil {
		return Metadata{}
	}

	var m Metadata

	secs, err := strconv.ParseFloat(strings.TrimSpace(probe.Format.Duration), 64)
	if err == nil && secs > 0 && !math.IsInf(secs, 0) && !math.IsNaN(secs) {
		m.Duration = time.Duration(secs * float64(time.Second))
	}

	for _, s := range probe.Streams {
		if s.CodecType != "video" {
			continue
		}

		if fps := parseRate(s.AvgFrameRate); fps > 0 {
			m.FPS = fps
		} else {
			m.FPS = parseRate(s.RFrameRate)
		}

		break
	}

	return m
}

// parseRate parses an ffprobe rational such as "30000/1001".
func parseRate(rate string) float64 {
	num, den, found := strings.Cut(rate, "/")

	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0
	}

	if !found {
		return n
	}

	d, err := strconv.ParseFloat(den, 64)
	if err != nil || d == 0 {
		return 0
	}

	return n / d
}
