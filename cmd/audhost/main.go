// SPDX-License-Identifier: EPL-2.0

// Command audhost plays audio files through an effect chain into a WAV file or
// a level meter.
//
//	audhost [-config audhost.yaml] [-o out.wav] [-rate 48000] file...
//
// Ctrl-C stops playback cleanly; a partially written WAV file stays valid.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ik5/audhost"
	"github.com/ik5/audhost/audio"
	"github.com/ik5/audhost/config"
	"github.com/ik5/audhost/dsp"
	"github.com/ik5/audhost/formats/wav"
	"github.com/ik5/audhost/service"
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "audhost:", err)
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("audhost", flag.ContinueOnError)
	fs.SetOutput(stderr)
	cfgPath := fs.String("config", "", "YAML configuration file")
	outPath := fs.String("o", "", "write the rendered audio to this WAV file")
	rate := fs.Int("rate", -1, "output sample rate, 0 keeps the source rate")
	list := fs.Bool("list", false, "list decoders and effects, then exit")
	fs.Usage = func() {
		fmt.Fprintln(stderr, "usage: audhost [flags] file...")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg := config.Default()
	if *cfgPath != "" {
		var err error
		if cfg, err = config.Load(*cfgPath); err != nil {
			return err
		}
	}
	if *outPath != "" {
		cfg.Output.Path = *outPath
	}
	if *rate >= 0 {
		cfg.Output.SampleRate = *rate
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logs := cfg.LoggerFactory(stderr)
	reg := service.NewRegistry(service.WithLogger(logs))
	audhost.RegisterBuiltins(reg, audio.WithLogger(logs))
	if len(cfg.Decoders) > 0 {
		if err := reg.UseDecoders(cfg.Decoders...); err != nil {
			return fmt.Errorf("decoders: %w", err)
		}
	}

	if *list {
		return listCapabilities(stdout, reg)
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("no input files")
	}

	host := audhost.New(
		audhost.WithRegistry(reg),
		audhost.WithLogger(logs),
		audhost.WithBlockFrames(cfg.BlockFrames),
		audhost.WithChain(cfg.Chain...),
		audhost.WithOpenHook(func(path string, info *audio.FileInfo) {
			printInfo(stdout, path, info)
		}),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	abort, detach := audio.AbortOnDone(ctx)
	defer detach()

	meter := &audhost.MeterSink{}
	var sink audhost.Sink = meter
	var wavSink *wav.Sink
	var out *os.File
	if cfg.Output.Path != "" {
		var err error
		if out, err = os.Create(cfg.Output.Path); err != nil {
			return err
		}
		if wavSink, err = wav.NewSink(out, cfg.Output.BitDepth); err != nil {
			return errors.Join(err, out.Close())
		}
		sink = audhost.Tee(wavSink, meter)
	}
	if cfg.Output.SampleRate > 0 {
		sink = audhost.NewResampleSink(sink, cfg.Output.SampleRate)
	}

	stats, err := host.PlayList(fs.Args(), sink, abort)
	if wavSink != nil {
		err = closeOutput(err, wavSink, out)
	}

	fmt.Fprintf(stdout, "%d track(s), %d frames, %s, peak %.1f dBFS, rms %.3f",
		stats.Tracks, meter.Frames, meter.Duration().Round(1e6), meter.PeakDB(), meter.RMS())
	if stats.Latency > 0 {
		fmt.Fprintf(stdout, ", chain latency %d frames", stats.Latency)
	}
	if stats.Aborted {
		fmt.Fprint(stdout, " (aborted)")
	}
	fmt.Fprintln(stdout)

	return err
}

// closeOutput finalizes the WAV header and closes the file, keeping every
// error so a failed flush is not reported as success.
func closeOutput(playErr error, sink *wav.Sink, f io.Closer) error {
	return errors.Join(playErr, sink.Close(), f.Close())
}

func printInfo(w io.Writer, path string, info *audio.FileInfo) {
	st := info.Stream
	fmt.Fprintf(w, "%s: %d Hz, %d ch", path, st.SampleRate, st.Channels)
	if st.LengthKnown() {
		fmt.Fprintf(w, ", %.2fs", st.Length)
	}
	if st.Bitrate > 0 {
		fmt.Fprintf(w, ", %d kbps", st.Bitrate)
	}
	fmt.Fprintln(w)
	for _, name := range info.Meta.Names() {
		fmt.Fprintf(w, "  %s: %s\n", name, strings.Join(info.Meta.Values(name), "; "))
	}
}

func listCapabilities(w io.Writer, reg *service.Registry) error {
	fmt.Fprintln(w, "decoders:", strings.Join(reg.Names(service.KindDecoder), " "))
	fmt.Fprintln(w, "effects:")
	for _, name := range reg.Names(service.KindEffect) {
		e, err := reg.CreateEffectByName(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  %s", name)
		if cfg, ok := e.(dsp.Configurable); ok {
			for _, p := range cfg.Params() {
				fmt.Fprintf(w, " %s=%g[%g..%g]", p.Name, p.Default, p.Min, p.Max)
			}
		}
		fmt.Fprintln(w)
	}
	return nil
}
