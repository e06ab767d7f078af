package ui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/VectorBits/clearsign/src/internal/checker"
)

const (
	Reset  = "\033[0m"
	Red    = "\033[31m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Blue   = "\033[34m"
	Purple = "\033[35m"
	Cyan   = "\033[36m"
	Gray   = "\033[37m"
	Bold   = "\033[1m"
)

var mu sync.Mutex

func PrintBanner(version string) {
	banner := `
       _                     _
   ___| | ___  __ _ _ __ ___(_) __ _ _ __
  / __| |/ _ \/ _` + "`" + ` | '__/ __| |/ _` + "`" + ` | '_ \
 | (__| |  __/ (_| | |  \__ \ | (_| | | | |
  \___|_|\___|\__,_|_|  |___/_|\__, |_| |_|
                               |___/
`
	fmt.Println(Cyan + banner + Reset)
	fmt.Println(Gray + "  " + version + " - ERC-7730 clear-signing descriptor generator and checker" + Reset)
	fmt.Println()
}

func clearLine() {
	fmt.Print("\r\033[K")
}

func LogSuccess(format string, a ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	clearLine()
	fmt.Printf(Green+"[SUCCESS] "+Reset+format+"\n", a...)
}

func LogInfo(format string, a ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	clearLine()
	fmt.Printf(Blue+"[INFO] "+Reset+format+"\n", a...)
}

func LogWarn(format string, a ...interface{}) {
	FprintWarn(os.Stdout, format, a...)
}

// FprintWarn writes a warning line to w.
func FprintWarn(w io.Writer, format string, a ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprint(w, "\r\033[K")
	fmt.Fprintf(w, Yellow+"[WARN] "+Reset+format+"\n", a...)
}

func LogError(format string, a ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	clearLine()
	fmt.Printf(Red+"[ERROR] "+Reset+format+"\n", a...)
}

// FunctionRow is one line of the generate summary table.
type FunctionRow struct {
	Selector  string
	Signature string
	Intent    string
}

func PrintFunctions(w io.Writer, rows []FunctionRow) {
	if len(rows) == 0 {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	for _, row := range rows {
		fmt.Fprintf(w, "  %s%s%s  %-45s %s%s%s\n", Purple, row.Selector, Reset, row.Signature, Gray, row.Intent, Reset)
	}
}

// PrintCheckReport prints the findings for one descriptor. Suggestions are
// shown only in strict mode.
func PrintCheckReport(w io.Writer, r *checker.Report, strict bool) {
	mu.Lock()
	defer mu.Unlock()

	rule := strings.Repeat("=", 60)
	fmt.Fprintf(w, "Validating: %s\n%s\n\n", r.Path, rule)

	printFindings(w, Red+"ERRORS", r.Errors)
	printFindings(w, Yellow+"WARNINGS", r.Warnings)
	if strict {
		printFindings(w, Cyan+"SUGGESTIONS", r.Suggestions)
	}

	color := Green
	if !r.Passed() {
		color = Red
	}
	fmt.Fprintf(w, "%s%s%s\n%s\n", color, r.Verdict(strict), Reset, rule)
}

func printFindings(w io.Writer, title string, messages []string) {
	if len(messages) == 0 {
		return
	}
	fmt.Fprintf(w, "%s (%d):%s\n", title, len(messages), Reset)
	for _, msg := range messages {
		fmt.Fprintf(w, "  • %s\n", msg)
	}
	fmt.Fprintln(w)
}

func PrintStats(total, success, failed, functions int, duration time.Duration) {
	fmt.Println()
	fmt.Println(Gray + strings.Repeat("─", 50) + Reset)
	fmt.Printf("🏁 Completed in %s\n", duration.Round(time.Millisecond))
	fmt.Printf("📊 Total: %d | ✅ Success: %d | ❌ Failed: %d | 🔏 Functions: %d\n", total, success, failed, functions)
	fmt.Println(Gray + strings.Repeat("─", 50) + Reset)
}
