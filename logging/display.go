package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pterm/pterm"
)

var (
	SuccessColorFG = pterm.FgLightGreen
	SuccessStyleBG = pterm.NewStyle(pterm.BgLightGreen, pterm.FgBlack)
	WarnColorFG    = pterm.FgYellow
	WarnStyleBG    = pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	ErrorColorFG   = pterm.FgRed
	ErrorStyleBG   = pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	DebugColorFG   = pterm.FgCyan
	DebugStyleBG   = pterm.NewStyle(pterm.BgCyan, pterm.FgBlack)
	InfoColorFG    = SuccessColorFG
	InfoStyleBG    = SuccessStyleBG
)

// widest level name, used to line the banners up
const maxLevelLength = len("ERROR")

func newPrefixPrinter(style *pterm.Style, text string) *pterm.PrefixPrinter {
	return &pterm.PrefixPrinter{
		MessageStyle: pterm.NewStyle(pterm.FgDefault),
		Prefix: pterm.Prefix{
			Style: style,
			Text:  text + strings.Repeat(" ", maxLevelLength-len(text)),
		},
	}
}

// ConsoleSink renders diagnostics to the terminal. Every entry gets a colored level
// banner followed by the stage that raised it. Structured DEBUG fields are printed
// as key=value pairs on the same line.
type ConsoleSink struct {
	printers map[Level]*pterm.PrefixPrinter

	program      int
	errorCount   int
	warningCount int
}

func NewConsoleSink() *ConsoleSink {
	return &ConsoleSink{
		printers: map[Level]*pterm.PrefixPrinter{
			LevelInfo:  newPrefixPrinter(InfoStyleBG, LevelInfo.String()),
			LevelDebug: newPrefixPrinter(DebugStyleBG, LevelDebug.String()),
			LevelWarn:  newPrefixPrinter(WarnStyleBG, LevelWarn.String()),
			LevelError: newPrefixPrinter(ErrorStyleBG, LevelError.String()),
		},
	}
}

func (sink *ConsoleSink) Write(entry Entry) {
	switch entry.Level {
	case LevelError:
		sink.errorCount++
	case LevelWarn:
		sink.warningCount++
	}
	printer, ok := sink.printers[entry.Level]
	if !ok {
		printer = sink.printers[LevelInfo]
	}
	printer.Println(sink.formatEntry(entry))
}

func (sink *ConsoleSink) formatEntry(entry Entry) string {
	bf := strings.Builder{}
	bf.WriteString(fmt.Sprintf("%-18s %s", entry.Stage, entry.Message))
	for _, field := range entry.Fields {
		bf.WriteString(fmt.Sprintf("  %s=%v", field.Key, field.Value))
	}
	return bf.String()
}

// BeginProgram prints the banner that separates the diagnostics of two programs.
func (sink *ConsoleSink) BeginProgram(index int) {
	sink.program = index
	sink.errorCount, sink.warningCount = 0, 0
	fmt.Print("\n-- ")
	InfoStyleBG.Print(fmt.Sprintf("Program %d", index))
	fmt.Println(" " + strings.Repeat("-", 40))
}

// EndProgram prints the closing summary of the current program.
func (sink *ConsoleSink) EndProgram(success bool) {
	if success {
		SuccessColorFG.Print("All done! ")
	} else {
		ErrorColorFG.Print("Oh no! ")
	}
	fmt.Print("(")
	switch sink.errorCount {
	case 0:
		SuccessColorFG.Print(0)
		fmt.Print(" errors, ")
	case 1:
		ErrorColorFG.Print(1)
		fmt.Print(" error, ")
	default:
		ErrorColorFG.Print(sink.errorCount)
		fmt.Print(" errors, ")
	}
	switch sink.warningCount {
	case 0:
		SuccessColorFG.Print(0)
		fmt.Println(" warnings)")
	case 1:
		WarnColorFG.Print(1)
		fmt.Println(" warning)")
	default:
		WarnColorFG.Print(sink.warningCount)
		fmt.Println(" warnings)")
	}
}

// PrintErrorMessage prints a standard Go error to the console.
func PrintErrorMessage(tag string, err error) {
	ErrorStyleBG.Print(tag)
	ErrorColorFG.Println(" " + err.Error())
}

// PrintInfoMessage prints an informational message to the user.
func PrintInfoMessage(tag, msg string) {
	InfoStyleBG.Print(tag)
	InfoColorFG.Println(" " + msg)
}

// PrintImage writes the cells of an image as rows of rowLen space separated bytes.
func PrintImage(w io.Writer, cells []string, rowLen int) error {
	if w == nil {
		w = os.Stdout
	}
	for i := 0; i < len(cells); i += rowLen {
		end := i + rowLen
		if end > len(cells) {
			end = len(cells)
		}
		if _, err := fmt.Fprintln(w, strings.Join(cells[i:end], " ")); err != nil {
			return err
		}
	}
	return nil
}
