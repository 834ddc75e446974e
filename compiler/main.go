package main

import (
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"strings"

	"compiler_for_6502a/assembler"
	"compiler_for_6502a/compiler/internal"
	"compiler_for_6502a/config"
	"compiler_for_6502a/logging"

	"github.com/ComedicChimera/olive"
)

const version = "0.1.0"

// bytes per printed image row, 8 rows for a whole image
const rowLength = 32

func main() {
	cli := olive.NewCLI("compiler", "compiler turns block language programs into 6502a images", true)

	buildCmd := cli.AddSubcommand("build", "compile every program of a source file", true)
	buildCmd.AddPrimaryArg("source-path", "the path to the source file", true)
	buildCmd.AddFlag("quiet", "q", "suppress DEBUG diagnostics")
	buildCmd.AddFlag("listing", "l", "print the disassembly of every image")
	buildCmd.AddStringArg("config", "c", "the path to the config file", false)
	buildCmd.AddStringArg("output", "o", "the file the images are written to", false)

	asmCmd := cli.AddSubcommand("asm", "assemble a mnemonic listing into an image", true)
	asmCmd.AddPrimaryArg("listing-path", "the path to the listing", true)
	asmCmd.AddStringArg("output", "o", "the file the image is written to", false)

	disasmCmd := cli.AddSubcommand("disasm", "print the instructions of an image", true)
	disasmCmd.AddPrimaryArg("image-path", "the path to the image", true)

	cli.AddSubcommand("version", "print the compiler version", false)

	result, err := olive.ParseArgs(cli, os.Args)
	if err != nil {
		logging.PrintErrorMessage("CLI Usage Error", err)
		os.Exit(2)
	}

	subcmdName, subResult, _ := result.Subcommand()
	switch subcmdName {
	case "build":
		err = execBuildCommand(subResult)
	case "asm":
		err = execAsmCommand(subResult)
	case "disasm":
		err = execDisasmCommand(subResult)
	case "version":
		logging.PrintInfoMessage("Compiler Version", version)
	}
	if err != nil {
		os.Exit(1)
	}
}

func stringArg(result *olive.ArgParseResult, name string) string {
	if value, ok := result.Arguments[name]; ok {
		return value.(string)
	}
	return ""
}

// openOutput returns stdout when path is empty.
func openOutput(path string) (io.WriteCloser, error) {
	if path == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error {
	return nil
}

func execBuildCommand(result *olive.ArgParseResult) error {
	sourcePath, _ := result.PrimaryArg()
	cfg, err := config.Load(stringArg(result, "config"))
	if err != nil {
		logging.PrintErrorMessage("Config Error", err)
		return err
	}
	if result.HasFlag("quiet") {
		cfg.Verbose = false
	}
	if result.HasFlag("listing") {
		cfg.Listing = true
	}
	if output := stringArg(result, "output"); output != "" {
		cfg.Output = output
	}

	source, err := ioutil.ReadFile(sourcePath)
	if err != nil {
		logging.PrintErrorMessage("File Error", err)
		return err
	}
	w, err := openOutput(cfg.Output)
	if err != nil {
		logging.PrintErrorMessage("File Error", err)
		return err
	}
	defer w.Close()

	sink := logging.NewConsoleSink()
	failed := 0
	programs := internal.SplitPrograms(string(source))
	for i, program := range programs {
		sink.BeginProgram(i + 1)
		compiled, err := internal.Compile(program, internal.Options{Sink: sink, Verbose: cfg.Verbose})
		sink.EndProgram(err == nil)
		if err != nil {
			failed++
			continue
		}
		if err := logging.PrintImage(w, compiled.Image.Cells, rowLength); err != nil {
			logging.PrintErrorMessage("Output Error", err)
			return err
		}
		if cfg.Listing {
			instructions, err := assembler.Disassemble(compiled.Image.Cells)
			if err != nil {
				logging.PrintErrorMessage("Listing Error", err)
				return err
			}
			fmt.Print(assembler.Listing(instructions))
		}
	}
	if failed > 0 {
		return errors.New(fmt.Sprintf("%d of %d program(s) failed", failed, len(programs)))
	}
	return nil
}

func execAsmCommand(result *olive.ArgParseResult) error {
	listingPath, _ := result.PrimaryArg()
	f, err := os.Open(listingPath)
	if err != nil {
		logging.PrintErrorMessage("File Error", err)
		return err
	}
	defer f.Close()

	asm := assembler.CreateAssembler()
	image, err := asm.Assemble(f)
	if err != nil {
		logging.PrintErrorMessage("Assembler Error", err)
		return err
	}
	w, err := openOutput(stringArg(result, "output"))
	if err != nil {
		logging.PrintErrorMessage("File Error", err)
		return err
	}
	defer w.Close()
	return logging.PrintImage(w, image, rowLength)
}

func execDisasmCommand(result *olive.ArgParseResult) error {
	imagePath, _ := result.PrimaryArg()
	content, err := ioutil.ReadFile(imagePath)
	if err != nil {
		logging.PrintErrorMessage("File Error", err)
		return err
	}
	instructions, err := assembler.Disassemble(strings.Fields(string(content)))
	if err != nil {
		logging.PrintErrorMessage("Disassembler Error", err)
		return err
	}
	fmt.Print(assembler.Listing(instructions))
	return nil
}
