package cmd

import (
	"context"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	apperrors "github.com/renalog/renalog/internal/errors"
)

// summaryCmd asks the AI service for a summary of all records.
var summaryCmd = &cobra.Command{
	Use:     "summary",
	Aliases: []string{"summarize"},
	Short:   "Summarize your records with AI",
	Long: `Send your records and profile to the configured AI service and print a
short plain-language summary. Without an API key, or when the service cannot
be reached, a fixed notice is printed instead.

Set the key with RENALOG_AI_API_KEY (or GEMINI_API_KEY).`,
	Args: cobra.NoArgs,
	RunE: runSummary,
}

// transcribeCmd transcribes a voice note.
var transcribeCmd = &cobra.Command{
	Use:   "transcribe FILE",
	Short: "Transcribe a voice note with AI",
	Long: `Transcribe an audio file (mp3, wav, m4a, ogg, webm, flac). Prints
nothing when transcription is unavailable.

Examples:
  renalog transcribe note.m4a
  renalog record add -w 73 -d 70 --voice note.m4a`,
	Args: cobra.ExactArgs(1),
	RunE: runTranscribe,
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(transcribeCmd)
}

func runSummary(cmd *cobra.Command, args []string) error {
	c, cancel := context.WithTimeout(cmd.Context(), ctx.Config.AI.Timeout)
	defer cancel()

	text := ctx.App.Summarize(c)
	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintText(text)
	}
	ctx.Formatter.Println(text)
	return nil
}

func runTranscribe(cmd *cobra.Command, args []string) error {
	text, err := transcribeFile(cmd, args[0])
	if err != nil {
		return err
	}

	if ctx.IsJSON() {
		return ctx.JSONFormatter().PrintText(text)
	}
	if text == "" {
		ctx.CLIFormatter().Muted("No transcription available.")
		return nil
	}
	ctx.Formatter.Println(text)
	return nil
}

// audioTypes covers extensions the system mime table often lacks.
var audioTypes = map[string]string{
	".m4a":  "audio/mp4",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".ogg":  "audio/ogg",
	".oga":  "audio/ogg",
	".webm": "audio/webm",
	".flac": "audio/flac",
	".aac":  "audio/aac",
}

// audioMimeType returns the MIME type for an audio file name.
func audioMimeType(path string) (string, bool) {
	ext := strings.ToLower(filepath.Ext(path))
	if t, ok := audioTypes[ext]; ok {
		return t, true
	}
	t := mime.TypeByExtension(ext)
	if strings.HasPrefix(t, "audio/") {
		return strings.SplitN(t, ";", 2)[0], true
	}
	return "", false
}

// transcribeFile reads an audio file and returns its transcription, or ""
// when the AI service gives none.
func transcribeFile(cmd *cobra.Command, path string) (string, error) {
	mimeType, ok := audioMimeType(path)
	if !ok {
		return "", apperrors.NewUserErrorWithField("file", path,
			"Unsupported audio format", "Use an mp3, wav, m4a, ogg, webm or flac file")
	}

	audio, err := os.ReadFile(path)
	if err != nil {
		return "", apperrors.NewUserErrorWithField("file", path,
			"Cannot read audio file", "Check the path and permissions").WithCause(err)
	}

	c, cancel := context.WithTimeout(cmd.Context(), ctx.Config.AI.Timeout)
	defer cancel()
	return ctx.App.Transcribe(c, audio, mimeType), nil
}
