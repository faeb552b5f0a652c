package ui

import (
	appmodel "dealchat/model"
)

type Message = appmodel.Message

type turnCompletedMsg = appmodel.TurnCompletedMsg
type decisionCompletedMsg = appmodel.DecisionCompletedMsg
type conversationLoadedMsg = appmodel.ConversationLoadedMsg
type conversationDeletedMsg = appmodel.ConversationDeletedMsg
type conversationsListMsg = appmodel.ConversationsListMsg
type conversationExportedMsg = appmodel.ConversationExportedMsg

type markdownRenderedMsg struct {
	MessageID string
	Rendered  string
}

// flashClearMsg clears the footer notice once it has been shown long enough
type flashClearMsg struct {
	ID int
}
