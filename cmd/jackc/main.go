package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"golang.org/x/exp/slices"

	"github.com/jacklang/jackc/engine"
	"github.com/jacklang/jackc/jackerr"
	"github.com/jacklang/jackc/logger"
	"github.com/jacklang/jackc/token"
	"github.com/jacklang/jackc/vm"
)

func main() {
	var filename, dirname string
	var verbose bool
	flag.StringVar(&filename, "f", "", "the filename of the jack source file")
	flag.StringVar(&dirname, "d", "", "the directory of the jack source files")
	flag.BoolVar(&verbose, "v", false, "verbose logging")
	flag.Parse()
	logger.Toggle(verbose)

	// a bare positional path is also accepted, e.g. `jackc myProg/`,
	// matching every zero-flag example in the retrieval pack.
	if filename == "" && dirname == "" && flag.NArg() == 1 {
		filename, dirname = dispatchPath(flag.Arg(0))
	}
	if filename == "" && dirname == "" {
		fmt.Fprintln(os.Stderr, "usage: jackc -f <file.jack> | -d <directory> | <path>")
		os.Exit(1)
	}

	var errs []error
	if filename != "" {
		errs = append(errs, compileFile(filename))
	}
	if dirname != "" {
		dirname = strings.TrimSuffix(dirname, "/")
		for _, name := range dirFilenames(dirname) {
			errs = append(errs, compileFile(name))
		}
	}

	if err := errors.Join(errs...); err != nil {
		logger.Error(err)
		os.Exit(1)
	}
}

// dispatchPath decides, per spec.md §6, whether a bare positional path
// names a .jack file or a directory.
func dispatchPath(path string) (filename, dirname string) {
	info, err := os.Stat(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %s\n", path, err)
		os.Exit(1)
	}
	if info.IsDir() {
		return "", path
	}
	if strings.HasSuffix(path, ".jack") {
		return path, ""
	}
	fmt.Fprintf(os.Stderr, "%s: not a .jack file or a directory\n", path)
	os.Exit(1)
	return "", ""
}

func compileFile(filename string) error {
	logger.Printf("input:\t%s\n", filename)

	src, err := os.Open(filename)
	if err != nil {
		return &jackerr.UnreadableInput{Path: filename, Err: err}
	}
	defer src.Close()

	tk, err := token.New(src)
	if err != nil {
		return &jackerr.UnreadableInput{Path: filename, Err: err}
	}

	outputFilename := strings.Replace(filename, ".jack", ".vm", 1)
	dst, err := os.Create(outputFilename)
	if err != nil {
		return &jackerr.UnwritableOutput{Path: outputFilename, Err: err}
	}
	defer dst.Close()

	w := vm.New(dst)
	if err := engine.New(w).Compile(tk); err != nil {
		return fmt.Errorf("%s: %w", filename, err)
	}
	if err := w.Close(); err != nil {
		return &jackerr.UnwritableOutput{Path: outputFilename, Err: err}
	}

	logger.Printf("output:\t%s\n", outputFilename)
	return nil
}

// dirFilenames lists the immediate .jack children of dirname in
// deterministic (sorted) order, per spec.md §6's "unspecified but
// deterministic order".
func dirFilenames(dirname string) []string {
	entries, err := os.ReadDir(dirname)
	if err != nil {
		log.Fatalf("error reading directory %s: %s", dirname, err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(entry.Name(), ".jack") {
			names = append(names, entry.Name())
		}
	}
	slices.Sort(names)

	filenames := make([]string, 0, len(names))
	for _, name := range names {
		filenames = append(filenames, dirname+"/"+name)
	}
	return filenames
}
