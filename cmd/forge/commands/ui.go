package commands

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/forgeworks-io/forge-client/pkg/forge"
	"github.com/spf13/viper"
)

// ConsoleLogger renders leveled client output on stderr. All coloring lives
// here; the library only ever sees the forge.Logger interface.
type ConsoleLogger struct {
	warnColor *color.Color
	errColor  *color.Color
	okColor   *color.Color
}

// NewConsoleLogger creates a console logger honoring the no-color setting.
func NewConsoleLogger() *ConsoleLogger {
	if viper.GetBool("no-color") {
		color.NoColor = true
	}

	return &ConsoleLogger{
		warnColor: color.New(color.FgYellow),
		errColor:  color.New(color.FgRed),
		okColor:   color.New(color.FgGreen),
	}
}

func (l *ConsoleLogger) write(c *color.Color, level, msg string, fields map[string]interface{}) {
	line := msg
	if len(fields) > 0 {
		parts := make([]string, 0, len(fields))
		for key, value := range fields {
			parts = append(parts, fmt.Sprintf("%s=%v", key, value))
		}

		sort.Strings(parts)
		line += " " + strings.Join(parts, " ")
	}

	if c != nil {
		fmt.Fprintln(os.Stderr, c.Sprintf("%s: %s", level, line))

		return
	}

	fmt.Fprintf(os.Stderr, "%s: %s\n", level, line)
}

// Debug implements forge.Logger.
func (l *ConsoleLogger) Debug(msg string, fields map[string]interface{}) {
	l.write(nil, "debug", msg, fields)
}

// Info implements forge.Logger.
func (l *ConsoleLogger) Info(msg string, fields map[string]interface{}) {
	l.write(l.okColor, "info", msg, fields)
}

// Warn implements forge.Logger.
func (l *ConsoleLogger) Warn(msg string, fields map[string]interface{}) {
	l.write(l.warnColor, "warn", msg, fields)
}

// Error implements forge.Logger.
func (l *ConsoleLogger) Error(msg string, fields map[string]interface{}) {
	l.write(l.errColor, "error", msg, fields)
}

// Ok prints a success line on stdout.
func (l *ConsoleLogger) Ok(msg string) {
	fmt.Println(l.okColor.Sprint(msg))
}

// artifactNamer is the CLI's naming policy for downloaded artifacts.
type artifactNamer struct{}

func (artifactNamer) FileName(jobID string, artifactType forge.ArtifactType) string {
	ext := "bin"

	switch artifactType {
	case forge.ArtifactTypeArchive:
		ext = "tar.gz"
	case forge.ArtifactTypeLogs:
		ext = "log"
	case forge.ArtifactTypeReport:
		ext = "html"
	case forge.ArtifactTypeMetadata:
		ext = "json"
	}

	return fmt.Sprintf("job-%s-%s.%s", jobID, artifactType, ext)
}
