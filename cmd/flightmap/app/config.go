package app

import (
	"errors"
	"flag"
	"fmt"
)

const defaultFontPath = "/usr/share/fonts/truetype/dejavu/DejaVuSansMono.ttf"

type Config struct {
	DBPath     string
	SessionID  int64
	OutputFile string
	Width      int
	FontPath   string
	Verbose    bool
}

func NewConfig() *Config {
	return &Config{
		Width:    1200,
		FontPath: defaultFontPath,
	}
}

func NewConfigFromCLI() (*Config, error) {
	c := NewConfig()

	flag.StringVar(&c.DBPath, "db", "", "Path to the profiling database file")
	flag.Int64Var(&c.SessionID, "s", 1, "Session ID")
	flag.StringVar(&c.OutputFile, "o", "", "Path to the output file (\".png\" is appended)")
	flag.IntVar(&c.Width, "w", c.Width, "Timeline width in pixels")
	flag.StringVar(&c.FontPath, "font", c.FontPath, "TrueType font for labels (empty disables annotations)")
	flag.BoolVar(&c.Verbose, "verbose", false, "Enable more verbose output")
	flag.Parse()

	var err error
	if c.DBPath == "" {
		err = errors.New("db path is required")
	} else if c.SessionID <= 0 {
		err = errors.New("session id is required")
	} else if c.OutputFile == "" {
		err = errors.New("output file is required")
	} else if c.Width < 200 {
		err = fmt.Errorf("timeline width %d is too small", c.Width)
	}

	if err != nil {
		flag.Usage()
		return nil, err
	}

	c.OutputFile = fmt.Sprintf("%s.png", c.OutputFile)
	return c, nil
}
