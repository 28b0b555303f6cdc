package domain

// MetadataJoinURLKey is the one metadata key the engine recognizes: a link
// more specific than the request's ActionURL (e.g. a video visit join link).
const MetadataJoinURLKey = "join_url"

// DispatchRequest is the ephemeral input to one dispatch call. It is never
// persisted as-is.
type DispatchRequest struct {
	UserID     string                 `json:"user_id"`
	EventKind  string                 `json:"event_kind"`
	Title      string                 `json:"title"`
	Body       string                 `json:"body"`
	Severity   string                 `json:"severity,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	ActionURL  string                 `json:"action_url,omitempty"`
	EntityType string                 `json:"entity_type,omitempty"`
	EntityID   string                 `json:"entity_id,omitempty"`
}

// JoinURL extracts the recognized metadata override link, if present.
func (r *DispatchRequest) JoinURL() string {
	if r.Metadata == nil {
		return ""
	}
	if v, ok := r.Metadata[MetadataJoinURLKey].(string); ok {
		return v
	}
	return ""
}

// GuestDispatchRequest targets a raw contact with no durable account:
// no preferences, no practice policy, no inbox entry.
type GuestDispatchRequest struct {
	Email    string                 `json:"email,omitempty"`
	Phone    string                 `json:"phone,omitempty"`
	Title    string                 `json:"title"`
	Body     string                 `json:"body"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}

func (r *GuestDispatchRequest) JoinURL() string {
	if r.Metadata == nil {
		return ""
	}
	if v, ok := r.Metadata[MetadataJoinURLKey].(string); ok {
		return v
	}
	return ""
}

// DispatchResult is the aggregate outcome of one dispatch call. Success is
// false only when the request itself could not be processed; per-channel
// declines and provider failures are folded into Errors.
type DispatchResult struct {
	Success      bool     `json:"success"`
	ChannelsSent []string `json:"channels_sent"`
	Errors       []string `json:"errors"`
}

func (r *DispatchResult) MarkSent(ch Channel) {
	r.ChannelsSent = append(r.ChannelsSent, string(ch))
}

func (r *DispatchResult) AddError(reason string) {
	r.Errors = append(r.Errors, reason)
}
