package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/doichev-kostia/computer-enhance/sim86/pkg/decoder"
	"github.com/doichev-kostia/computer-enhance/sim86/pkg/memory"
	"github.com/doichev-kostia/computer-enhance/sim86/pkg/sim"
	"github.com/doichev-kostia/computer-enhance/sim86/pkg/text"
)

func main() {
	annotate := term.IsTerminal(int(os.Stdout.Fd()))
	if err := run(os.Args[1:], os.Stdout, os.Stderr, annotate); err != nil {
		exit(err)
	}
}

type options struct {
	exec     bool
	annotate bool
	labels   bool
	maxSteps int
}

func run(args []string, stdout io.Writer, stderr io.Writer, annotate bool) error {
	logger := log.New(stderr, "sim86: ", 0)

	fs := flag.NewFlagSet("sim86", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: sim86 [-exec] [-annotate | -labels] [-max-steps N] file...\n")
		fs.PrintDefaults()
	}

	var opts options
	fs.BoolVar(&opts.exec, "exec", false, "execute the program and print the trace")
	fs.BoolVar(&opts.annotate, "annotate", annotate, "append the address and the bytes of every instruction")
	fs.BoolVar(&opts.labels, "labels", false, "point the jumps to labels instead of $+n")
	fs.IntVar(&opts.maxSteps, "max-steps", sim.DefaultMaxSteps, "stop the execution after N instructions, 0 - no limit")
	if err := fs.Parse(args); err != nil {
		return err
	}

	filenames := fs.Args()
	if len(filenames) == 0 {
		fs.Usage()
		return fmt.Errorf("invalid number of arguments, expected at least one for the filename")
	}

	for _, filename := range filenames {
		if !fileExists(filename) {
			return fmt.Errorf("The specified file %s doesn't exist", filename)
		}
	}

	// every file gets its own memory, the listings are printed in the order of the arguments
	outputs := make([]bytes.Buffer, len(filenames))
	failures := make([]error, len(filenames))

	var eg errgroup.Group
	eg.SetLimit(runtime.NumCPU())
	for idx, filename := range filenames {
		idx, filename := idx, filename
		eg.Go(func() error {
			failures[idx] = process(filename, &outputs[idx], opts)
			return nil
		})
	}
	_ = eg.Wait()

	failed := 0
	for idx := range filenames {
		if _, err := outputs[idx].WriteTo(stdout); err != nil {
			return fmt.Errorf("failed to write the output: %w", err)
		}
		if failures[idx] != nil {
			logger.Println(failures[idx])
			failed++
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed", failed, len(filenames))
	}

	return nil
}

func process(filename string, out *bytes.Buffer, opts options) error {
	image := memory.NewImage()
	n, err := image.LoadFile(filename, 0)
	if err != nil {
		return fmt.Errorf("Failed to read the file %s. Error = %w", filename, err)
	}

	out.WriteString(text.Header(filename))

	if opts.exec {
		m := sim.NewMachine(image, n)
		m.MaxSteps = opts.maxSteps

		err = m.Run(out)
		fmt.Fprintln(out)
		if dumpErr := m.Dump(out); dumpErr != nil {
			return dumpErr
		}
	} else if opts.labels {
		d := decoder.NewDecoder(image, memory.Cursor{}, n)
		var instructions []decoder.Instruction
		instructions, err = d.Decode()
		if writeErr := text.WriteLabeled(out, instructions); writeErr != nil {
			return writeErr
		}
	} else {
		d := decoder.NewDecoder(image, memory.Cursor{}, n)
		err = text.NewListing(out, image, opts.annotate).WriteAll(d)
	}

	if err != nil {
		return fmt.Errorf("%s: %w", filename, err)
	}

	return nil
}

func exit(err error) {
	fmt.Fprintln(os.Stderr, err.Error())
	os.Exit(1)
}

func fileExists(filename string) bool {
	_, err := os.Stat(filename)

	return !errors.Is(err, os.ErrNotExist)
}
