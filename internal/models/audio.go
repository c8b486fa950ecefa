package models

// AudioRequest asks for the voice rendering of a reply. Text is only needed
// when the id is not cached yet.
type AudioRequest struct {
	ID   string `json:"id" validate:"required"`
	Text string `json:"text"`
}

// AudioJob is a background synthesis request for the prefetch pool.
type AudioJob struct {
	ID   string
	Text string
}
