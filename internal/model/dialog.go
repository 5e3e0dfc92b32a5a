package model

// Slot names reported in pending_slots
const (
	SlotCategoryOrProduct        = "category_or_product"
	SlotColor                    = "color"
	SlotPrice                    = "price"
	SlotCategoryOrProductOrPrice = "category_or_product_or_price"
)

// DialogContext is the caller-owned state carried between turns.
type DialogContext struct {
	LastFilters  *Filter  `json:"last_filters"`
	PendingSlots []string `json:"pending_slots"`
}

// PendingSlot returns the slot the previous turn asked about, if any.
func (c *DialogContext) PendingSlot() string {
	if c == nil || len(c.PendingSlots) == 0 {
		return ""
	}
	return c.PendingSlots[0]
}

// ClarificationResult is the policy decision for one turn.
type ClarificationResult struct {
	NeedsClarification bool     `json:"needs_clarification"`
	Question           string   `json:"question"`
	PendingSlots       []string `json:"pending_slots"`
}

// TurnResult is the full response of one resolved turn.
type TurnResult struct {
	Filters      *Filter        `json:"filters"`
	Matches      []Product      `json:"matches"`
	Clarify      bool           `json:"clarify"`
	Question     string         `json:"question"`
	PendingSlots []string       `json:"pending_slots"`
	Context      *DialogContext `json:"context"`
}

// ParseVoiceRequest is the body of POST /parse-voice
type ParseVoiceRequest struct {
	Text    string         `json:"text"`
	Context *DialogContext `json:"context,omitempty"`
}
