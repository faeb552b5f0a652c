package ui

import (
	"errors"
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"dealchat/config"
	appmodel "dealchat/model"
	"dealchat/storage"
)

const flashDuration = 3 * time.Second

func (a AppView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

		// Reserve space for title (1 line), separator (1 line), textarea (3 lines), and status bar (1 line)
		a.viewport.Width = a.width
		a.viewport.Height = a.height - 6
		a.textarea.SetWidth(a.width)

		a.ready = true

		// Width changed, so every cached rendering is stale
		for _, m := range a.dataModel.Messages() {
			a.dataModel.SetRendered(m.ID, "")
		}
		a.updateViewportContent(true)
		return a, a.renderPendingMarkdown()

	case tea.KeyMsg:
		return a.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.loadingSpinner, cmd = a.loadingSpinner.Update(msg)
		if a.dataModel.Awaiting() {
			a.updateViewportContent(true)
		}
		return a, cmd

	case turnCompletedMsg:
		if !a.dataModel.ApplyTurn(msg) {
			return a, nil
		}
		return a, a.afterModelChange()

	case decisionCompletedMsg:
		if !a.dataModel.ApplyDecision(msg) {
			return a, nil
		}
		return a, a.afterModelChange()

	case conversationLoadedMsg:
		if !a.dataModel.ApplyLoad(msg) {
			if msg.Err != nil && msg.Generation == a.dataModel.Generation() {
				a.showAcknowledge("Could not open conversation", msg.Err.Error(), ModalTypeError)
			}
			return a, nil
		}
		return a, a.afterModelChange()

	case conversationDeletedMsg:
		if !a.dataModel.ApplyDelete(msg) {
			a.showAcknowledge("Could not delete conversation", msg.Err.Error(), ModalTypeError)
			return a, nil
		}
		a.conversationList.setItems(a.dataModel.Listing(), a.conversationList.cached)
		return a, tea.Batch(a.afterModelChange(), a.setFlash("Conversation deleted"))

	case conversationsListMsg:
		if !a.dataModel.ApplyList(msg) {
			a.conversationList.loading = false
			if a.showConversationList {
				a.showAcknowledge("Could not list conversations", msg.Err.Error(), ModalTypeWarning)
			}
			return a, nil
		}
		a.conversationList.setItems(a.dataModel.Listing(), msg.Cached)
		if msg.Cached && a.showConversationList {
			return a, a.setFlash("Backend unreachable: showing cached conversations")
		}
		return a, nil

	case conversationExportedMsg:
		a.conversationList.exporting = false
		if msg.Err != nil {
			a.showAcknowledge("Export failed", msg.Err.Error(), ModalTypeError)
			return a, nil
		}
		a.showAcknowledge("Conversation exported", fmt.Sprintf("Saved to:\n%s", msg.Path), ModalTypeInfo)
		return a, nil

	case markdownRenderedMsg:
		if config.DebugLog != nil {
			config.DebugLog.Printf("[UI] markdownRenderedMsg received for message %s", msg.MessageID)
		}
		// Unknown IDs belong to a conversation that has since been replaced
		if a.dataModel.SetRendered(msg.MessageID, msg.Rendered) {
			a.updateViewportContent(true)
		}
		return a, nil

	case flashClearMsg:
		if msg.ID == a.flashID {
			a.flash = ""
		}
		return a, nil
	}

	// Cursor blink and friends
	var cmd tea.Cmd
	if a.conversationList.filterMode {
		a.conversationList.filterInput, cmd = a.conversationList.filterInput.Update(msg)
		return a, cmd
	}
	if a.dataModel.CanSend() {
		a.textarea, cmd = a.textarea.Update(msg)
	}
	return a, cmd
}

// afterModelChange redraws after the conversation changed underneath the view
func (a *AppView) afterModelChange() tea.Cmd {
	a.syncInputFocus()
	a.updateViewportContent(true)
	return a.renderPendingMarkdown()
}

func (a *AppView) setFlash(text string) tea.Cmd {
	a.flashID++
	a.flash = text
	id := a.flashID
	return tea.Tick(flashDuration, func(time.Time) tea.Msg {
		return flashClearMsg{ID: id}
	})
}

func (a AppView) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Always-global
	if msg.String() == "alt+q" || msg.String() == "ctrl+c" {
		if config.DebugLog != nil {
			config.DebugLog.Printf("[UI] %s pressed - quitting", msg.String())
		}
		if _, armed := a.dataModel.PendingProposal(); armed && config.DebugLog != nil {
			config.DebugLog.Printf("[UI] Quitting with an undecided proposal; nothing was executed")
		}
		return a, tea.Quit
	}

	if a.showAcknowledgeModal {
		if msg.String() == "enter" || msg.String() == "esc" {
			a.showAcknowledgeModal = false
		}
		return a, nil
	}

	if a.showHelp {
		if msg.String() == "alt+h" || msg.String() == "esc" {
			a.showHelp = false
		}
		return a, nil
	}

	if a.confirmDelete != nil {
		switch msg.String() {
		case "y":
			id := a.confirmDelete.ID
			a.confirmDelete = nil
			return a, a.dataModel.DeleteConversation(id)
		case "n", "esc":
			a.confirmDelete = nil
		}
		return a, nil
	}

	if a.showConversationList {
		return a.handleConversationListKey(msg)
	}

	if a.showAbout {
		if msg.String() == "alt+a" || msg.String() == "esc" {
			a.showAbout = false
		}
		return a, nil
	}

	return a.handleChatKey(msg)
}

func (a AppView) handleChatKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "alt+h":
		a.showHelp = true
		return a, nil

	case "alt+a":
		a.showAbout = true
		return a, nil

	case "alt+n":
		a.dataModel.StartNew()
		return a, a.afterModelChange()

	case "alt+s":
		a.showConversationList = true
		a.conversationList.selectedIdx = 0
		a.conversationList.setItems(a.dataModel.Listing(), a.conversationList.cached)
		a.conversationList.loading = true
		return a, a.dataModel.FetchConversationList()

	case "alt+y":
		messages := a.dataModel.Messages()
		for i := len(messages) - 1; i >= 0; i-- {
			if messages[i].Role == appmodel.RoleAssistant && !messages[i].Local {
				if err := clipboard.WriteAll(messages[i].Text()); err != nil {
					return a, a.setFlash("Copy failed: " + err.Error())
				}
				return a, a.setFlash("Copied last response")
			}
		}
		return a, nil

	case "alt+j", "alt+down":
		a.viewport.LineDown(1)
		return a, nil

	case "alt+k", "alt+up":
		a.viewport.LineUp(1)
		return a, nil

	case "alt+d":
		a.viewport.HalfViewDown()
		return a, nil

	case "alt+u":
		a.viewport.HalfViewUp()
		return a, nil

	case "pgdown":
		a.viewport.ViewDown()
		return a, nil

	case "pgup":
		a.viewport.ViewUp()
		return a, nil

	case "alt+g":
		a.viewport.GotoTop()
		return a, nil

	case "alt+G":
		a.viewport.GotoBottom()
		return a, nil
	}

	// An armed gate owns the keyboard until a decision is made
	if _, armed := a.dataModel.PendingProposal(); armed {
		if a.dataModel.Awaiting() {
			return a, nil
		}
		switch msg.String() {
		case "y", "Y":
			return a.resolve(appmodel.DecisionConfirm)
		case "n", "N":
			return a.resolve(appmodel.DecisionCancel)
		}
		return a, nil
	}

	if msg.String() == "enter" {
		cmd, err := a.dataModel.SendUserTurn(a.textarea.Value())
		if err != nil {
			if errors.Is(err, appmodel.ErrEmptyMessage) {
				return a, nil
			}
			return a, a.setFlash(err.Error())
		}
		a.textarea.Reset()
		a.syncInputFocus()
		a.updateViewportContent(true)
		return a, tea.Batch(cmd, a.loadingSpinner.Tick)
	}

	if !a.dataModel.CanSend() {
		return a, nil
	}

	var cmd tea.Cmd
	a.textarea, cmd = a.textarea.Update(msg)
	return a, cmd
}

func (a AppView) resolve(d appmodel.Decision) (tea.Model, tea.Cmd) {
	cmd, err := a.dataModel.ResolvePendingAction(d)
	if err != nil {
		return a, a.setFlash(err.Error())
	}
	a.syncInputFocus()
	a.updateViewportContent(true)
	return a, tea.Batch(cmd, a.loadingSpinner.Tick)
}

func (a AppView) handleConversationListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	list := &a.conversationList

	if list.filterMode {
		switch msg.String() {
		case "esc":
			list.filterMode = false
			list.filterInput.Blur()
			list.filterInput.SetValue("")
			list.applyFilter()
			return a, nil
		case "enter":
			return a.loadSelected()
		case "alt+j", "down":
			list.moveSelection(1)
			return a, nil
		case "alt+k", "up":
			list.moveSelection(-1)
			return a, nil
		}

		var cmd tea.Cmd
		list.filterInput, cmd = list.filterInput.Update(msg)
		list.applyFilter()
		return a, cmd
	}

	switch msg.String() {
	case "esc", "alt+s":
		a.closeAllModals()
		return a, nil

	case "/":
		list.filterMode = true
		list.filterInput.SetValue("")
		list.filterInput.Focus()
		list.applyFilter()
		return a, textinput.Blink

	case "j", "down":
		list.moveSelection(1)

	case "k", "up":
		list.moveSelection(-1)

	case "enter":
		return a.loadSelected()

	case "r":
		list.loading = true
		return a, a.dataModel.FetchConversationList()

	case "d":
		if sel, ok := list.selected(); ok {
			a.confirmDelete = &sel
		}

	case "x":
		sel, ok := list.selected()
		if !ok || list.exporting {
			return a, nil
		}
		list.exporting = true
		path := storage.GenerateExportPath(conversationDisplayTitle(sel))
		if config.DebugLog != nil {
			config.DebugLog.Printf("[UI] Exporting conversation %s to %s", sel.ID, path)
		}
		return a, a.dataModel.ExportConversation(sel.ID, path)
	}

	return a, nil
}

func (a AppView) loadSelected() (tea.Model, tea.Cmd) {
	sel, ok := a.conversationList.selected()
	if !ok {
		return a, nil
	}
	a.closeAllModals()
	if sel.ID == a.dataModel.ConversationID() {
		return a, nil
	}
	return a, a.dataModel.LoadConversation(sel.ID)
}
