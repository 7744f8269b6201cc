// Package main provides the quizsound command-line player.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/quizsound/internal/app/audio"
	"github.com/osa030/quizsound/internal/app/notification"
	"github.com/osa030/quizsound/internal/app/voice"
	"github.com/osa030/quizsound/internal/domain/cue"
	"github.com/osa030/quizsound/internal/infra/config"
	"github.com/osa030/quizsound/internal/infra/logger"
	"github.com/osa030/quizsound/internal/infra/synth"
)

// tail leaves room for release stages to ring out before exit.
const tail = 1500 * time.Millisecond

var (
	app        = kingpin.New("quizsound", "Quiz sound cue player")
	configPath = app.Flag("config", "Path to config file").Default("config/quizsound.yaml").String()
	verbose    = app.Flag("verbose", "Enable verbose (DEBUG) logging").Short('v').Bool()
	logfile    = app.Flag("logfile", "Path to log file (default: stdout)").String()

	// demo command (default)
	demoCmd      = app.Command("demo", "Play every quiz cue, then background music (default)").Default()
	demoDuration = demoCmd.Flag("duration", "How long to play background music").Default("12s").Duration()

	// play command
	playCmd    = app.Command("play", "Play one or more cues")
	playCues   = playCmd.Arg("cue", "Cue names (click, success, error, celebration, timer)").Required().Strings()
	playVolume = playCmd.Flag("volume", "Cue volume from 0 to 1").Default("0.5").Float64()
	playDelay  = playCmd.Flag("delay", "Schedule delay on the audio clock").Default("0s").Duration()
	playGap    = playCmd.Flag("gap", "Pause between cues").Default("700ms").Duration()

	// music command
	musicCmd      = app.Command("music", "Play background music")
	musicDuration = musicCmd.Flag("duration", "How long to play (0 = until interrupted)").Default("0s").Duration()

	// list-cues command
	listCuesCmd = app.Command("list-cues", "List available cues and their voices and exit")
)

func main() {
	// Load .env file if it exists (errors are ignored)
	_ = godotenv.Load()

	// Parse command
	command := kingpin.MustParse(app.Parse(os.Args[1:]))

	// Initialize logger
	loggerConfig := logger.Config{
		Output: "stdout",
		Level:  "info",
	}
	// Override with command-line flags if specified
	if *verbose {
		loggerConfig.Level = "debug"
	}
	if *logfile != "" {
		loggerConfig.Output = *logfile
		loggerConfig.File = *logfile
	}
	logCloser, err := logger.Init(loggerConfig)
	if err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logCloser.Close()

	// Load config
	zlog.Info().Msgf("Loading config from %s", *configPath)
	cfg, err := config.Load(*configPath)
	if err != nil {
		zlog.Fatal().Msgf("Failed to load config: %v", err)
	}

	voices, err := voice.NewSpecsFromConfig(cfg)
	if err != nil {
		zlog.Fatal().Msgf("Failed to build voices: %v", err)
	}

	if command == listCuesCmd.FullCommand() {
		printCues(voices)
		return
	}

	if err := run(command, cfg, voices); err != nil {
		zlog.Error().Msgf("quizsound error: %v", err)
		logCloser.Close()
		os.Exit(1)
	}
}

// run executes the selected command. Using a separate function ensures
// defer statements are executed even when returning with an error.
func run(command string, cfg *config.Config, voices []synth.VoiceSpec) error {
	audioConfig, err := audio.NewConfig(cfg)
	if err != nil {
		return errors.Wrap(err, "invalid audio config")
	}

	engine := synth.NewEngine(synth.Options{
		SampleRate:   cfg.Audio.SampleRate,
		BufferSize:   cfg.Audio.BufferSize(),
		MasterVolume: cfg.Audio.EffectiveVolume(),
	})

	svc, err := audio.New(engine, voices, audioConfig)
	if err != nil {
		return errors.Wrap(err, "failed to create audio service")
	}
	defer func() {
		if err := svc.Close(); err != nil {
			zlog.Error().Msgf("Failed to close audio service: %v", err)
		}
	}()
	svc.Subscribe(logEvent)

	// Cancel on shutdown signal
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case <-sigCh:
			zlog.Info().Msg("Received shutdown signal...")
			cancel()
		case <-ctx.Done():
		}
	}()

	svc.Initialize(ctx)
	if !svc.Initialized() {
		return errors.New("audio device unavailable")
	}

	switch command {
	case playCmd.FullCommand():
		runPlay(ctx, svc)
	case musicCmd.FullCommand():
		runMusic(ctx, svc, *musicDuration)
	default:
		runDemo(ctx, svc, *demoDuration)
	}

	zlog.Info().Msg("Done")
	return nil
}

func runPlay(ctx context.Context, svc *audio.Service) {
	for i, name := range *playCues {
		if i > 0 && !sleep(ctx, *playGap) {
			return
		}
		svc.PlaySound(ctx, cue.Name(name), cue.WithVolume(*playVolume), cue.WithDelay(*playDelay))
	}
	sleep(ctx, *playDelay+tail)
}

func runMusic(ctx context.Context, svc *audio.Service, d time.Duration) {
	if !svc.StartBackgroundMusic(ctx) {
		zlog.Warn().Msg("Background music is not available")
		return
	}
	if d > 0 {
		zlog.Info().Msgf("Playing background music for %v", d)
		sleep(ctx, d)
	} else {
		zlog.Info().Msg("Playing background music, press Ctrl+C to stop")
		<-ctx.Done()
	}
	svc.StopBackgroundMusic()
	// Let the release stage finish even after an interrupt.
	time.Sleep(tail)
}

func runDemo(ctx context.Context, svc *audio.Service, musicFor time.Duration) {
	steps := []struct {
		label string
		play  func(context.Context)
	}{
		{"button click", svc.ButtonClick},
		{"navigation", svc.Navigation},
		{"correct answer", svc.CorrectAnswer},
		{"wrong answer", svc.WrongAnswer},
		{"time warning", svc.TimeWarning},
		{"quiz complete", svc.QuizComplete},
		{"achievement", svc.Achievement},
	}
	for _, step := range steps {
		zlog.Info().Msgf("Demo: %s", step.label)
		step.play(ctx)
		if !sleep(ctx, 1200*time.Millisecond) {
			return
		}
	}

	zlog.Info().Msg("Demo: background music")
	runMusic(ctx, svc, musicFor)
}

// sleep waits for d and reports whether ctx is still live.
func sleep(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}

// logEvent logs scheduler events.
func logEvent(e notification.Event) {
	switch e.Type {
	case notification.EventInitFailed, notification.EventCueFailed, notification.EventChordFailed:
		zlog.Warn().Msgf("Event #%d %s: cue=%s error=%v", e.SequenceNo, e.Type, e.Cue, e.Err)
	case notification.EventCueUnknown:
		zlog.Warn().Msgf("Event #%d %s: unknown cue %q", e.SequenceNo, e.Type, e.Cue)
	case notification.EventChordFired:
		zlog.Info().Msgf("Event #%d %s: chord=%v index=%d chain=%s", e.SequenceNo, e.Type, e.Chord, e.Cursor, e.ChainID)
	default:
		zlog.Debug().Msgf("Event #%d %s: cue=%s chord=%v at=%v", e.SequenceNo, e.Type, e.Cue, e.Chord, e.At)
	}
}

// printCues prints available cues.
func printCues(voices []synth.VoiceSpec) {
	byName := make(map[string]synth.VoiceSpec, len(voices))
	for _, v := range voices {
		byName[v.Name] = v
	}

	fmt.Println("Available Cues:")
	for _, name := range cue.Known() {
		v, ok := byName[string(name)]
		if !ok {
			fmt.Printf("  %-12s - (no voice)\n", name)
			continue
		}
		fmt.Printf("  %-12s - %s, polyphony %d, attack %v, release %v\n",
			name, v.Waveform, v.Polyphony, v.Envelope.Attack, v.Envelope.Release)
	}
}
