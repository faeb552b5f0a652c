package ui

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	markdown "github.com/MichaelMure/go-term-markdown"
	tea "github.com/charmbracelet/bubbletea"
	gomarkdown "github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/parser"
	"github.com/mattn/go-runewidth"

	"dealchat/api"
	"dealchat/config"
	appmodel "dealchat/model"
)

// Pre-compiled regex patterns for better performance
var (
	inlineCodeRegex = regexp.MustCompile(`(?s)\x1b\[44;3m(.*?)\x1b\[0m`)
	mdLinkRegex     = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^\)]+)\)`)
	urlRegex        = regexp.MustCompile(`(https?://[^\s]+)`)
	ansiRegex       = regexp.MustCompile(`\x1b\[[0-9;]*m`)
)

const codeBar = "┃"

func (a *AppView) updateViewportContent(gotoBottom bool) {
	messages := a.dataModel.Messages()
	if len(messages) == 0 {
		a.viewport.SetContent("No messages yet. Start chatting!")
		return
	}

	proposal, armed := a.dataModel.PendingProposal()

	var content strings.Builder
	for _, msg := range messages {
		timestamp := DimStyle.Render(msg.Timestamp.Format("[15:04]"))

		if msg.Role == appmodel.RoleUser {
			content.WriteString(formatUserMessage(timestamp, UserStyle.Render("You"), msg.Text()))
			continue
		}

		body := msg.Rendered
		if body == "" {
			body = msg.Text()
		}
		if calls := toolCallSummary(msg.ToolCalls); calls != "" {
			if body != "" {
				body += "\n"
			}
			body += calls
		}

		role := AssistantStyle.Render("Assistant")
		if msg.Local {
			role = DimStyle.Render("Notice")
		}
		content.WriteString(fmt.Sprintf("%s %s\n%s\n\n", timestamp, role, body))

		if armed && msg.ProposalID == proposal.ID {
			content.WriteString(formatProposalCard(buildProposalContent(proposal)))
		}
	}

	if a.dataModel.Awaiting() {
		content.WriteString(fmt.Sprintf("%s %s\n", a.loadingSpinner.View(), DimStyle.Render("Waiting for response...")))
	}

	a.viewport.SetContent(content.String())
	if gotoBottom {
		a.viewport.GotoBottom()
	}
}

func toolCallSummary(calls []api.ToolCallRecord) string {
	if len(calls) == 0 {
		return ""
	}
	var b strings.Builder
	for _, c := range calls {
		name := c.Name
		if name == "" {
			name = "tool"
		}
		b.WriteString(DimStyle.Render("╰── used " + name))
		b.WriteString("\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func formatUserMessage(timestamp, role, content string) string {
	greenBold := "\x1b[32;1m"
	reset := "\x1b[0m"
	bar := greenBold + codeBar + reset

	lines := strings.Split(content, "\n")

	var result strings.Builder
	result.WriteString(fmt.Sprintf("%s %s %s\n", bar, timestamp, role))

	for _, line := range lines {
		result.WriteString(fmt.Sprintf("%s %s\n", bar, line))
	}

	result.WriteString("\n")

	return result.String()
}

// buildProposalContent creates the card shown under a message awaiting a decision
func buildProposalContent(p appmodel.ToolProposal) string {
	var content strings.Builder
	maxWidth := 60 // Conservative width for wrapping

	content.WriteString("⚠ Confirmation required\n\n")
	content.WriteString(wordWrapWithIndent(p.ToolName, "╰── Action: ", maxWidth))

	keyWidth := 0
	for _, f := range p.PreviewFields {
		if w := runewidth.StringWidth(f.Key); w > keyWidth {
			keyWidth = w
		}
	}
	for _, f := range p.PreviewFields {
		prefix := "╰── " + runewidth.FillRight(f.Key+":", keyWidth+1) + " "
		content.WriteString(wordWrapWithIndent(f.Value, prefix, maxWidth))
	}

	content.WriteString("\n")
	greenBold := "\x1b[32;1m"
	redBold := "\x1b[31;1m"
	reset := "\x1b[0m"

	content.WriteString(greenBold + "[y]" + reset + " Confirm    ")
	content.WriteString(redBold + "[n]" + reset + " Cancel")

	return content.String()
}

// formatProposalCard renders the card with a vertical bar (like formatUserMessage)
func formatProposalCard(content string) string {
	warnBold := "\x1b[33;1m"
	reset := "\x1b[0m"
	bar := warnBold + "│" + reset

	var result strings.Builder
	for _, line := range strings.Split(content, "\n") {
		result.WriteString(fmt.Sprintf("%s %s\n", bar, line))
	}
	result.WriteString("\n")

	return result.String()
}

func postProcessMarkdown(rendered string, width int) string {
	// 1. Fix inline code: Blue background → Red text (glamour style)
	rendered = fixInlineCode(rendered)

	// 2. Color plain URLs red (autolink disabled keeps URLs plain)
	rendered = fixMarkdownLinks(rendered)

	// 3. Frame code blocks with horizontal lines
	rendered = frameCodeBlocks(rendered, width)

	return rendered
}

func preprocessLinks(content string) string {
	// [text](url) → url, so every link is colored the same way
	return mdLinkRegex.ReplaceAllString(content, "$2")
}

func fixInlineCode(s string) string {
	return inlineCodeRegex.ReplaceAllString(s, "\x1b[31m$1\x1b[0m")
}

func fixMarkdownLinks(s string) string {
	redColor := "\x1b[31m"
	reset := "\x1b[0m"

	lines := strings.Split(s, "\n")

	for i, line := range lines {
		// Skip code blocks
		if !strings.Contains(line, codeBar) {
			lines[i] = urlRegex.ReplaceAllString(line, redColor+"$1"+reset)
		}
	}

	return strings.Join(lines, "\n")
}

func frameCodeBlocks(s string, width int) string {
	lines := strings.Split(s, "\n")
	var result []string
	var codeBlockLines []string
	inCodeBlock := false

	darkGray := "\x1b[90m"
	reset := "\x1b[0m"
	lineLen := width - 4
	if lineLen < 10 {
		lineLen = 10
	}
	bottom := darkGray + strings.Repeat("━", lineLen) + reset

	for _, line := range lines {
		if strings.Contains(line, codeBar) {
			if !inCodeBlock {
				inCodeBlock = true
				codeBlockLines = []string{}
				result = append(result, "")

				label := "[code]"
				leftLen := (lineLen - len(label)) / 2
				rightLen := lineLen - len(label) - leftLen
				border := darkGray + strings.Repeat("━", leftLen) + reset + label + darkGray + strings.Repeat("━", rightLen) + reset

				result = append(result, border, "")
			}
			codeBlockLines = append(codeBlockLines, stripCodeBlockPrefix(line))
			continue
		}

		if inCodeBlock {
			result = append(result, codeBlockLines...)
			result = append(result, "", bottom, "")
			codeBlockLines = nil
			inCodeBlock = false
		}
		result = append(result, line)
	}

	// Code block at end of content
	if inCodeBlock && len(codeBlockLines) > 0 {
		result = append(result, codeBlockLines...)
		result = append(result, "", bottom, "")
	}

	return strings.Join(result, "\n")
}

func stripCodeBlockPrefix(line string) string {
	idx := strings.Index(line, codeBar)
	if idx < 0 {
		return line
	}
	after := idx + len(codeBar)
	if after < len(line) && line[after] == ' ' {
		after++
	}
	if after < len(line) {
		return line[after:]
	}
	return ""
}

// renderMarkdownAsync renders an assistant message off the update loop.
// Messages are addressed by ID so a render finishing after a reset is dropped.
func (a AppView) renderMarkdownAsync(messageID, content string) tea.Cmd {
	width := a.width
	return func() tea.Msg {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[UI] Starting async markdown render for message %s - length: %d chars", messageID, len(content))
		}
		startTime := time.Now()

		content = preprocessLinks(content)

		// Autolink stays off so terminals handle URL detection themselves
		customExt := markdown.Extensions() &^ parser.Autolink
		p := parser.NewWithExtensions(customExt)
		r := markdown.NewRenderer(width-4, 0)
		doc := p.Parse([]byte(content))
		rendered := gomarkdown.Render(doc, r)

		processed := strings.TrimRight(postProcessMarkdown(string(rendered), width), "\n")

		if config.DebugLog != nil {
			config.DebugLog.Printf("[UI] Markdown rendered in %v", time.Since(startTime))
		}

		return markdownRenderedMsg{
			MessageID: messageID,
			Rendered:  processed,
		}
	}
}

// renderPendingMarkdown schedules a render for every assistant message
// without a cached rendering.
func (a AppView) renderPendingMarkdown() tea.Cmd {
	if a.width == 0 {
		return nil
	}
	var cmds []tea.Cmd
	for _, msg := range a.dataModel.Messages() {
		if msg.Role != appmodel.RoleAssistant || msg.Rendered != "" || msg.Local {
			continue
		}
		if text := msg.Text(); text != "" {
			cmds = append(cmds, a.renderMarkdownAsync(msg.ID, text))
		}
	}
	return tea.Batch(cmds...)
}

// wordWrapWithIndent wraps text to maxWidth while preserving indentation for continuation lines
func wordWrapWithIndent(text string, prefix string, maxWidth int) string {
	prefixLen := runewidth.StringWidth(stripANSI(prefix))
	availableWidth := maxWidth - prefixLen

	if availableWidth <= 0 {
		return prefix + text + "\n"
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return prefix + "\n"
	}

	var result strings.Builder
	var currentLine strings.Builder
	lineWidth := 0
	indent := strings.Repeat(" ", prefixLen)
	isFirstLine := true

	flush := func() {
		if isFirstLine {
			result.WriteString(prefix)
			isFirstLine = false
		} else {
			result.WriteString(indent)
		}
		result.WriteString(currentLine.String())
		result.WriteString("\n")
		currentLine.Reset()
		lineWidth = 0
	}

	for _, word := range words {
		w := runewidth.StringWidth(word)
		testLen := lineWidth + w
		if lineWidth > 0 {
			testLen++
		}

		if testLen > availableWidth && lineWidth > 0 {
			flush()
		}

		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}
		currentLine.WriteString(word)
		lineWidth += w
	}

	if lineWidth > 0 {
		flush()
	}

	return result.String()
}

// stripANSI removes ANSI escape codes for accurate length calculation
func stripANSI(s string) string {
	return ansiRegex.ReplaceAllString(s, "")
}
