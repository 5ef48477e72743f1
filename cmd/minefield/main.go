package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"os"
	"time"

	"github.com/nsf/termbox-go"
	"github.com/sirupsen/logrus"
	"github.com/snowzach/rotatefilehook"

	"github.com/vancomm/minefield/internal/mines"
)

var (
	log = logrus.New()

	width, height, mineCount int
	seed                     string
	logPath                  string
	debug                    bool
)

func init() {
	flag.IntVar(&width, "width", mines.Beginner.Width, "board width")
	flag.IntVar(&height, "height", mines.Beginner.Height, "board height")
	flag.IntVar(&mineCount, "mines", mines.Beginner.MineCount, "number of mines")
	flag.StringVar(&seed, "seed", "", "board as width:height:mines, overrides the other board flags")
	flag.StringVar(&logPath, "log", "minefield.log", "log file path")
	flag.BoolVar(&debug, "debug", false, "log engine debug output")
}

// setupLogging sends everything to a rotated file, the terminal belongs to
// termbox.
func setupLogging() error {
	level := logrus.InfoLevel
	if debug {
		level = logrus.DebugLevel
	}
	log.SetLevel(level)
	log.SetOutput(io.Discard)

	hook, err := rotatefilehook.NewRotateFileHook(rotatefilehook.RotateFileConfig{
		Filename:   logPath,
		MaxSize:    5,
		MaxBackups: 3,
		MaxAge:     7,
		Level:      level,
		Formatter:  &logrus.JSONFormatter{},
	})
	if err != nil {
		return err
	}
	log.AddHook(hook)
	return nil
}

func run() error {
	params := mines.Params{Width: width, Height: height, MineCount: mineCount}
	if seed != "" {
		p, err := mines.ParseSeed(seed)
		if err != nil {
			return err
		}
		params = *p
	}
	m, err := newModel(log, params, rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())))
	if err != nil {
		return err
	}
	log.WithField("seed", params.Seed()).Info("starting")

	if err := termbox.Init(); err != nil {
		return err
	}
	defer termbox.Close()

	events := make(chan termbox.Event)
	go func() {
		for {
			events <- termbox.PollEvent()
		}
	}()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		if err := termbox.Clear(termbox.ColorDefault, termbox.ColorDefault); err != nil {
			return err
		}
		m.draw(screenFunc(termbox.SetCell))
		if err := termbox.Flush(); err != nil {
			return err
		}

		select {
		case <-ticker.C:
			m.tick()
		case ev := <-events:
			switch ev.Type {
			case termbox.EventKey:
				if m.handleKey(ev) {
					log.Info("quit")
					return nil
				}
			case termbox.EventError:
				return ev.Err
			}
		}
	}
}

type screenFunc func(x, y int, ch rune, fg, bg termbox.Attribute)

func (f screenFunc) SetCell(x, y int, ch rune, fg, bg termbox.Attribute) {
	f(x, y, ch, fg, bg)
}

func main() {
	flag.Parse()

	if err := setupLogging(); err != nil {
		fmt.Fprintln(os.Stderr, "unable to open log file:", err)
		os.Exit(1)
	}

	engineLog := log.WriterLevel(logrus.DebugLevel)
	defer engineLog.Close()
	mines.Log = slog.New(slog.NewTextHandler(engineLog, &slog.HandlerOptions{Level: slog.LevelDebug}))

	if err := run(); err != nil {
		log.WithError(err).Error("exiting")
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
