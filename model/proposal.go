package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/google/uuid"

	"dealchat/api"
)

type Decision int

const (
	DecisionConfirm Decision = iota
	DecisionCancel
)

func (d Decision) String() string {
	if d == DecisionConfirm {
		return "confirm"
	}
	return "cancel"
}

const (
	StatusConfirmed = "✓ Confirmed — executing..."
	StatusCancelled = "✗ Cancelled."
	replyCancelled  = "Cancelled."
	replyDone       = "Done."
)

type PreviewField struct {
	Key   string
	Value string
}

// ToolProposal is a pending irreversible action awaiting a human decision.
// ToolArgs, ToolUseID, AssistantMessage and HistorySnapshot are echoed back to
// the backend exactly as received.
type ToolProposal struct {
	ID                     string
	ToolName               string
	ToolArgs               json.RawMessage
	ToolUseID              string
	AssistantMessage       json.RawMessage
	PreviewFields          []PreviewField
	OriginatingUserMessage string
	HistorySnapshot        []json.RawMessage
	ConversationID         string
}

func newToolProposal(resp *api.ChatResponse, userText, currentID string) ToolProposal {
	conversationID := resp.ConversationID
	if conversationID == "" {
		conversationID = currentID
	}

	preview := resp.ConfirmationPreview
	if len(preview) == 0 {
		// Fall back to the raw arguments when the backend sent no preview
		dec := json.NewDecoder(bytes.NewReader(resp.ToolArgs))
		dec.UseNumber()
		_ = dec.Decode(&preview)
	}

	return ToolProposal{
		ID:                     uuid.New().String(),
		ToolName:               resp.ToolName,
		ToolArgs:               resp.ToolArgs,
		ToolUseID:              resp.ToolUseID,
		AssistantMessage:       resp.AssistantMessage,
		PreviewFields:          flattenPreview(preview),
		OriginatingUserMessage: userText,
		HistorySnapshot:        append([]json.RawMessage(nil), resp.UpdatedHistory...),
		ConversationID:         conversationID,
	}
}

func (p ToolProposal) confirmRequest(d Decision) api.ConfirmRequest {
	history := p.HistorySnapshot
	if history == nil {
		history = []json.RawMessage{}
	}
	return api.ConfirmRequest{
		ToolName:            p.ToolName,
		ToolArgs:            p.ToolArgs,
		ToolUseID:           p.ToolUseID,
		AssistantMessage:    p.AssistantMessage,
		Confirmed:           d == DecisionConfirm,
		ConversationHistory: history,
		UserMessage:         p.OriginatingUserMessage,
		ConversationID:      api.OptionalID(p.ConversationID),
	}
}

// flattenPreview projects a preview object into sorted key/value pairs.
// Nested values are shown as compact JSON.
func flattenPreview(preview map[string]any) []PreviewField {
	if len(preview) == 0 {
		return nil
	}

	keys := make([]string, 0, len(preview))
	for k := range preview {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fields := make([]PreviewField, 0, len(keys))
	for _, k := range keys {
		fields = append(fields, PreviewField{Key: k, Value: previewValue(preview[k])})
	}
	return fields
}

func previewValue(v any) string {
	switch val := v.(type) {
	case nil:
		return "—"
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		// Never exponent notation: 1500000 must read as 1500000
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(data)
	}
}

// proposalText is the assistant text shown above the confirmation card.
func proposalText(resp *api.ChatResponse) string {
	if resp.Reply != "" {
		return resp.Reply
	}
	return fmt.Sprintf("I'd like to run **%s**. Please confirm or cancel.", resp.ToolName)
}

func statusLine(d Decision) string {
	if d == DecisionConfirm {
		return StatusConfirmed
	}
	return StatusCancelled
}

// applyDecisionPatch is the display projection of a decision: the status
// line is added and the affordance removed.
func applyDecisionPatch(msg Message, d Decision) Message {
	msg.Status = statusLine(d)
	msg.ProposalID = ""
	msg.Rendered = ""
	return msg
}
