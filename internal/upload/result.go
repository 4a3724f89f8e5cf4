package upload

import "fmt"

// BalanceUnavailable is shown in place of the balance when it cannot be read.
const BalanceUnavailable = "Failed to fetch balance"

type Status int

const (
	StatusIdle Status = iota
	StatusFailed
	StatusSuccess
)

func (s Status) String() string {
	switch s {
	case StatusFailed:
		return "failed"
	case StatusSuccess:
		return "success"
	default:
		return "idle"
	}
}

// Stage names the step a submission failed in.
type Stage string

const (
	StageBuild  Stage = "build"
	StageFee    Stage = "fee"
	StageSubmit Stage = "submit"
)

// Result is the outcome of one submit attempt.
type Result struct {
	Status        Status
	Stage         Stage
	Reason        string
	StatusCode    int
	TransactionID string
	Fee           string
}

func Succeeded(id, fee string) Result {
	return Result{Status: StatusSuccess, TransactionID: id, Fee: fee}
}

func Failed(stage Stage, reason string) Result {
	return Result{Status: StatusFailed, Stage: stage, Reason: reason}
}

// Message is the line shown to the user after a submit.
func (r Result) Message() string {
	switch r.Status {
	case StatusSuccess:
		return fmt.Sprintf("Success! Transaction ID: %s", r.TransactionID)
	case StatusFailed:
		if r.StatusCode != 0 {
			return fmt.Sprintf("Failed to upload file to Arweave. Status: %d", r.StatusCode)
		}
		return fmt.Sprintf("Failed to upload file to Arweave: %s", r.Reason)
	default:
		return ""
	}
}
