package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"dealchat/api"
	appmodel "dealchat/model"
)

type AppView struct {
	// Reference to core data model
	dataModel *appmodel.Model

	// UI Components
	viewport viewport.Model
	textarea textarea.Model

	// Window state
	width  int
	height int
	ready  bool

	// Spinner shown while a chat or confirm round trip is awaiting
	loadingSpinner spinner.Model

	showHelp  bool
	showAbout bool

	// Conversation list
	showConversationList bool
	conversationList     ConversationListState
	confirmDelete        *api.ConversationSummary

	// Acknowledge modal (for warnings/errors requiring only acknowledgement)
	showAcknowledgeModal  bool
	acknowledgeModalTitle string
	acknowledgeModalMsg   string
	acknowledgeModalType  ModalType

	// One-line notice shown in the footer (copy, export, offline listing)
	flash   string
	flashID int

	version string
	license string
}

func NewAppView(dataModel *appmodel.Model, version, license string) AppView {
	ta := textarea.New()
	ta.Placeholder = "Ask about your clients, or tell me what to update..."
	ta.Focus()
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.SetWidth(80)

	// Alt+Enter for newline, Enter alone sends (handled separately)
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter"))

	ta.SetPromptFunc(2, func(lineIdx int) string {
		if lineIdx == 0 {
			return "> "
		}
		return "| "
	})

	vp := viewport.New(0, 0)

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(accentColor)

	filterInput := textinput.New()
	filterInput.Prompt = "Filter: "
	filterInput.CharLimit = 64

	return AppView{
		dataModel:      dataModel,
		textarea:       ta,
		viewport:       vp,
		loadingSpinner: sp,
		conversationList: ConversationListState{
			filterInput: filterInput,
		},
		version: version,
		license: license,
	}
}

func (a AppView) Init() tea.Cmd {
	// Don't render markdown here - wait for WindowSizeMsg to get correct width
	return tea.Batch(
		textarea.Blink,
		a.loadingSpinner.Tick,
		a.dataModel.FetchConversationList(),
	)
}

func (a AppView) View() string {
	if !a.ready {
		return "Loading dealchat..."
	}

	// Modal rendering order (top to bottom layers):
	// 1. Acknowledge
	// 2. Help
	// 3. Delete confirmation
	// 4. Export in progress
	// 5. Conversation list
	// 6. About

	if a.showAcknowledgeModal {
		return RenderAcknowledgeModal(
			a.acknowledgeModalTitle,
			a.acknowledgeModalMsg,
			a.acknowledgeModalType,
			a.width,
			a.height,
		)
	}

	if a.showHelp {
		return renderHelpModal(a.width, a.height)
	}

	if a.confirmDelete != nil {
		return renderDeleteConfirmation(*a.confirmDelete, a.width, a.height)
	}

	if a.conversationList.exporting {
		return renderSpinner("Exporting conversation...", a.loadingSpinner.View(), a.width, a.height)
	}

	if a.showConversationList {
		return renderConversationList(a.conversationList, a.dataModel.ConversationID(), a.width, a.height)
	}

	if a.showAbout {
		return renderAboutModal(a.width, a.height, a.version, a.license)
	}

	appText := AssistantStyle.Render("dealchat")
	convTitle := "New conversation"
	if id := a.dataModel.ConversationID(); id != "" {
		convTitle = a.conversationTitle(id)
	}
	title := appText + UserStyle.Render(fmt.Sprintf(" - %s", convTitle))

	if a.dataModel.Awaiting() {
		title += TitleStyle.Render(fmt.Sprintf(" | %s", a.loadingSpinner.View()))
	}

	// Empty line between header and messages
	separator := ""

	return lipgloss.JoinVertical(
		lipgloss.Left,
		title,
		separator,
		a.viewport.View(),
		a.textarea.View(),
		a.renderStatusBar(),
	)
}

func (a AppView) renderStatusBar() string {
	if a.flash != "" {
		return StatusStyle.Render(a.flash)
	}

	// Main chat uses user green for descriptions
	descStyle := lipgloss.NewStyle().Foreground(successColor).Bold(true)
	pair := func(k, desc string) string {
		return k + " " + descStyle.Render(desc)
	}

	if _, armed := a.dataModel.PendingProposal(); armed && !a.dataModel.Awaiting() {
		return ProposalStyle.Render("Confirm this change? ") + StatusStyle.Render(pair("y", "Confirm")+"  "+pair("n", "Cancel")+"  "+pair("Alt+N", "Abandon")+"  "+pair("Alt+Q", "Quit"))
	}

	return StatusStyle.Render(fmt.Sprintf("%s  %s  %s  %s  %s  %s",
		pair("Alt+Q", "Quit"),
		pair("Alt+N", "New chat"),
		pair("Alt+S", "Conversations"),
		pair("Enter", "Send"),
		pair("Alt+Y", "Copy"),
		pair("Alt+H", "Help"),
	))
}

// conversationTitle looks the open conversation up in the last listing
func (a AppView) conversationTitle(id string) string {
	for _, c := range a.dataModel.Listing() {
		if c.ID == id {
			return conversationDisplayTitle(c)
		}
	}
	return id
}

// syncInputFocus enables the textarea only when a new turn may be sent
func (a *AppView) syncInputFocus() {
	if a.dataModel.CanSend() {
		a.textarea.Focus()
		return
	}
	a.textarea.Blur()
}

func (a *AppView) closeAllModals() {
	a.showHelp = false
	a.showAbout = false
	a.showConversationList = false
	a.showAcknowledgeModal = false
	a.confirmDelete = nil
	a.conversationList.filterMode = false

	if a.conversationList.filterInput.Focused() {
		a.conversationList.filterInput.Blur()
	}
}

func (a *AppView) showAcknowledge(title, msg string, modalType ModalType) {
	a.showAcknowledgeModal = true
	a.acknowledgeModalTitle = title
	a.acknowledgeModalMsg = msg
	a.acknowledgeModalType = modalType
}
