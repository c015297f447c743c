package errorsx

// ReasonCode is a short machine-readable error reason.
type ReasonCode string

const (
	ReasonUnknown ReasonCode = "unknown"

	// ReasonTransientUpstream covers reasoning-service timeouts and 5xx responses.
	ReasonTransientUpstream ReasonCode = "transient_upstream"
	// ReasonDataAbsent marks a recognised branch, not a failure (no evidence, no local data).
	ReasonDataAbsent        ReasonCode = "data_absent"
	ReasonProtocolViolation ReasonCode = "protocol_violation"
	ReasonSafetyViolation   ReasonCode = "safety_violation"
	ReasonStoreUnavailable  ReasonCode = "store_unavailable"

	ReasonEmbeddingSpaceMismatch ReasonCode = "embedding_space_mismatch"
	ReasonInvalidPayload         ReasonCode = "invalid_payload"
	ReasonDeliverySend           ReasonCode = "delivery_send"
)
