package reporting

import "time"

type TimeRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// CallsSummary aggregates journal entries in a time range.
//
// TotalCalls counts arrivals: calls that were queued plus calls connected on arrival.
type CallsSummary struct {
	Range TimeRange `json:"range"`

	TotalCalls         int `json:"total_calls"`
	ConnectedOnArrival int `json:"connected_on_arrival"`
	QueuedCalls        int `json:"queued_calls"`
	ConnectedFromQueue int `json:"connected_from_queue"`
	EndedCalls         int `json:"ended_calls"`

	TotalTalkSeconds   int `json:"total_talk_seconds"`
	AverageTalkSeconds int `json:"average_talk_seconds"`
	AverageWaitSeconds int `json:"average_wait_seconds"`
	LongestWaitSeconds int `json:"longest_wait_seconds"`

	// ImmediateAnswerRate is ConnectedOnArrival / TotalCalls.
	ImmediateAnswerRate float64 `json:"immediate_answer_rate"`
}
