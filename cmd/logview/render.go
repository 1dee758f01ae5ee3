package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pmaederyork/apprised/app"
	"github.com/pmaederyork/apprised/chatmodel"
	"github.com/pmaederyork/apprised/transcript"
)

func renderLog(path string, cfg cliConfig) (string, error) {
	chat, title, err := loadChat(path)
	if err != nil {
		return "", err
	}

	styles := app.NewStyles(app.ThemeByName(cfg.theme))

	var md *app.MarkdownRenderer
	if cfg.enableMarkdown {
		if r, err := app.NewMarkdownRenderer(cfg.width, styles.Palette.GlamourStyle); err == nil {
			md = r
		}
	}

	var b strings.Builder
	b.WriteString(styles.Title.Render(title))
	if agents := chat.Agents(); len(agents) > 0 {
		b.WriteString("\n")
		b.WriteString(styles.Dim.Render("agents: " + strings.Join(agents, ", ")))
	}
	b.WriteString("\n\n")
	b.WriteString(app.RenderConversation(chat.Lines(), styles, md, cfg.width, time.Now()))
	return b.String(), nil
}

// loadChat reads either a saved transcript document or a raw stream
// log. Transcripts are a single JSON object; stream logs are
// data:-prefixed lines, so the first byte tells them apart.
func loadChat(path string) (*chatmodel.Model, string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}

	if isTranscriptDoc(raw) {
		tr, err := transcript.ReadFile(path)
		if err != nil {
			return nil, "", err
		}
		title := tr.Title
		if strings.TrimSpace(title) == "" {
			title = filepath.Base(path)
		}
		return chatmodel.FromLines(tr.Lines), title, nil
	}

	chat, err := chatmodel.LoadStreamLog(path)
	if err != nil {
		return nil, "", err
	}
	return chat, filepath.Base(path), nil
}

func isTranscriptDoc(raw []byte) bool {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	return len(trimmed) > 0 && trimmed[0] == '{'
}
